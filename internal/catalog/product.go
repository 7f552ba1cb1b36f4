package catalog

import (
	"context"
	"fmt"

	"whatsfresh/internal/model"

	"gorm.io/gorm"
)

const productEntity = "Product"

// ListProducts returns every product with its image, newest first
func (s *Service) ListProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := s.conn(ctx).Preload("Image").Order("id desc").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// ListProductsPage returns products ordered by name
func (s *Service) ListProductsPage(ctx context.Context, pageParam string, size int) (Page[model.Product], error) {
	return paginate[model.Product](s.conn(ctx).Order("name").Order("id"), pageParam, size)
}

// GetProduct loads one product with its image and preparations
func (s *Service) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	return getByID[model.Product](s.conn(ctx).
		Preload("ProductPreparations", func(db *gorm.DB) *gorm.DB { return db.Order("preparation_id") }),
		productEntity, id,
		"Image", "ProductPreparations.Preparation")
}

// SaveProduct stores p and pairs it with exactly preparationIDs in one
// transaction. A zero p.ID creates a product.
func (s *Service) SaveProduct(ctx context.Context, p model.Product, preparationIDs []uint) (*model.Product, ReconcileResult, error) {
	var result ReconcileResult
	id := p.ID
	p.Image, p.Story, p.ProductPreparations = nil, nil, nil

	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if p.ImageID != nil {
			if err := requireIDs(tx, &model.Image{}, "image", []uint{*p.ImageID}); err != nil {
				return err
			}
		}
		if p.StoryID != nil {
			if err := requireIDs(tx, &model.Story{}, "story", []uint{*p.StoryID}); err != nil {
				return err
			}
		}
		if err := upsert(tx, productEntity, id, &p); err != nil {
			return err
		}
		var err error
		result, err = ReconcileProductPreparations(tx, p.ID, preparationIDs)
		return err
	})
	if err != nil {
		return nil, ReconcileResult{}, err
	}

	saved, err := s.GetProduct(ctx, p.ID)
	if err != nil {
		return nil, result, err
	}
	return saved, result, nil
}

// DeleteProduct removes a product, its preparations and the vendor offerings
// that referenced them.
func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("find product %d: %w", id, err)
		}
		if count == 0 {
			return notFound(productEntity, id)
		}
		pps := tx.Model(&model.ProductPreparation{}).Select("id").Where("product_id = ?", id)
		if err := tx.Where("product_preparation_id IN (?)", pps).Delete(&model.VendorProduct{}).Error; err != nil {
			return fmt.Errorf("delete vendor products: %w", err)
		}
		if err := tx.Where("product_id = ?", id).Delete(&model.ProductPreparation{}).Error; err != nil {
			return fmt.Errorf("delete product preparations: %w", err)
		}
		return deleteByID[model.Product](tx, productEntity, id)
	})
}
