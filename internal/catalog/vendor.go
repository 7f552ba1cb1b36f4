package catalog

import (
	"context"
	"errors"
	"fmt"

	"whatsfresh/internal/model"

	"gorm.io/gorm"
)

const vendorEntity = "Vendor"

// ListVendorsPage returns vendors ordered by name
func (s *Service) ListVendorsPage(ctx context.Context, pageParam string, size int) (Page[model.Vendor], error) {
	return paginate[model.Vendor](s.conn(ctx).Order("name").Order("id"), pageParam, size)
}

// ListVendors returns every vendor with its offerings, newest first
func (s *Service) ListVendors(ctx context.Context) ([]model.Vendor, error) {
	var vendors []model.Vendor
	err := s.conn(ctx).
		Preload("VendorProducts", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("VendorProducts.ProductPreparation.Product").
		Preload("VendorProducts.ProductPreparation.Preparation").
		Order("id desc").
		Find(&vendors).Error
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	return vendors, nil
}

// GetVendor loads one vendor together with the product preparations it sells
func (s *Service) GetVendor(ctx context.Context, id uint) (*model.Vendor, error) {
	return getByID[model.Vendor](s.conn(ctx).
		Preload("VendorProducts", func(db *gorm.DB) *gorm.DB { return db.Order("id") }),
		vendorEntity, id,
		"VendorProducts.ProductPreparation.Product",
		"VendorProducts.ProductPreparation.Preparation")
}

// SaveVendor stores v and makes its offerings equal preparationIDs, all in
// one transaction. A zero v.ID creates a vendor; otherwise the stored vendor
// with that id is replaced by v.
func (s *Service) SaveVendor(ctx context.Context, v model.Vendor, preparationIDs []uint) (*model.Vendor, ReconcileResult, error) {
	var result ReconcileResult
	id := v.ID
	v.VendorProducts = nil

	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if v.StoryID != nil {
			if err := requireIDs(tx, &model.Story{}, "story", []uint{*v.StoryID}); err != nil {
				return err
			}
		}
		if err := upsert(tx, vendorEntity, id, &v); err != nil {
			return err
		}
		var err error
		result, err = ReconcileVendorProducts(tx, v.ID, preparationIDs)
		return err
	})
	if err != nil {
		return nil, ReconcileResult{}, err
	}

	saved, err := s.GetVendor(ctx, v.ID)
	if err != nil {
		return nil, result, err
	}
	return saved, result, nil
}

// DeleteVendor removes a vendor and its offerings
func (s *Service) DeleteVendor(ctx context.Context, id uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Vendor{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("find vendor %d: %w", id, err)
		}
		if count == 0 {
			return notFound(vendorEntity, id)
		}
		if err := tx.Where("vendor_id = ?", id).Delete(&model.VendorProduct{}).Error; err != nil {
			return fmt.Errorf("delete vendor products: %w", err)
		}
		return deleteByID[model.Vendor](tx, vendorEntity, id)
	})
}

// ProductPreparationChoice is one selectable product preparation
type ProductPreparationChoice struct {
	ID          uint   `json:"value"`
	Preparation string `json:"name"`
	Product     string `json:"-"`
}

// ProductPreparationChoices returns every product preparation grouped by
// product name, for the vendor product picker.
func (s *Service) ProductPreparationChoices(ctx context.Context) (map[string][]ProductPreparationChoice, []string, error) {
	var pps []model.ProductPreparation
	err := s.conn(ctx).
		Preload("Product").
		Preload("Preparation").
		Order("product_id").Order("id").
		Find(&pps).Error
	if err != nil {
		return nil, nil, fmt.Errorf("list product preparations: %w", err)
	}

	choices := map[string][]ProductPreparationChoice{}
	var names []string
	var products []model.Product
	if err := s.conn(ctx).Order("name").Find(&products).Error; err != nil {
		return nil, nil, fmt.Errorf("list products: %w", err)
	}
	for _, p := range products {
		if _, ok := choices[p.Name]; !ok {
			names = append(names, p.Name)
			choices[p.Name] = []ProductPreparationChoice{}
		}
	}
	for _, pp := range pps {
		choices[pp.Product.Name] = append(choices[pp.Product.Name], ProductPreparationChoice{
			ID:          pp.ID,
			Preparation: pp.Preparation.Name,
			Product:     pp.Product.Name,
		})
	}
	return choices, names, nil
}

// DescribeProductPreparations loads the product and preparation names for
// ids, in the order given. A missing id fails with a ReferenceError.
func (s *Service) DescribeProductPreparations(ctx context.Context, ids []uint) ([]ProductPreparationChoice, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var pps []model.ProductPreparation
	err := s.conn(ctx).Preload("Product").Preload("Preparation").Where("id IN ?", ids).Find(&pps).Error
	if err != nil {
		return nil, fmt.Errorf("load product preparations: %w", err)
	}
	byID := make(map[uint]model.ProductPreparation, len(pps))
	for _, pp := range pps {
		byID[pp.ID] = pp
	}
	out := make([]ProductPreparationChoice, 0, len(ids))
	for _, id := range ids {
		pp, ok := byID[id]
		if !ok {
			return nil, &ReferenceError{Entity: "product preparation", ID: id}
		}
		out = append(out, ProductPreparationChoice{ID: pp.ID, Preparation: pp.Preparation.Name, Product: pp.Product.Name})
	}
	return out, nil
}

// IsNotFound reports whether err means a requested or referenced row is missing
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
