package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"whatsfresh/internal/model"

	"gorm.io/gorm"
)

// ReconcileResult counts the association rows written by a reconciliation
type ReconcileResult struct {
	Created int
	Deleted int
}

// Changed reports whether any row was created or deleted
func (r ReconcileResult) Changed() bool {
	return r.Created > 0 || r.Deleted > 0
}

// ParseIDs splits a comma-separated id list, dropping blanks and duplicates.
// The result is sorted.
func ParseIDs(raw string) ([]uint, error) {
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 0)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		ids = append(ids, uint(id))
	}
	return DedupeIDs(ids), nil
}

// DedupeIDs returns the distinct ids in ascending order
func DedupeIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DiffIDs returns existing minus target (to remove) and target minus
// existing (to add). Ids in both sets appear in neither result.
func DiffIDs(existing, target []uint) (remove, add []uint) {
	inTarget := make(map[uint]struct{}, len(target))
	for _, id := range target {
		inTarget[id] = struct{}{}
	}
	inExisting := make(map[uint]struct{}, len(existing))
	for _, id := range existing {
		inExisting[id] = struct{}{}
		if _, ok := inTarget[id]; !ok {
			remove = append(remove, id)
		}
	}
	for _, id := range DedupeIDs(target) {
		if _, ok := inExisting[id]; !ok {
			add = append(add, id)
		}
	}
	return DedupeIDs(remove), add
}

// ReconcileVendorProducts makes the vendor's VendorProduct rows reference
// exactly the product preparations in target. Rows for ids in both sets are
// left alone. Every id to be added must exist or nothing is written; callers
// run this inside the transaction that saved the vendor.
func ReconcileVendorProducts(tx *gorm.DB, vendorID uint, target []uint) (ReconcileResult, error) {
	var result ReconcileResult
	target = DedupeIDs(target)
	if len(target) == 0 {
		return result, ErrNoSelection
	}

	var existing []uint
	if err := tx.Model(&model.VendorProduct{}).
		Where("vendor_id = ?", vendorID).
		Pluck("product_preparation_id", &existing).Error; err != nil {
		return result, fmt.Errorf("load vendor products: %w", err)
	}

	remove, add := DiffIDs(existing, target)
	if err := requireIDs(tx, &model.ProductPreparation{}, "product preparation", add); err != nil {
		return result, err
	}

	if len(remove) > 0 {
		res := tx.Where("vendor_id = ? AND product_preparation_id IN ?", vendorID, remove).
			Delete(&model.VendorProduct{})
		if res.Error != nil {
			return result, fmt.Errorf("delete vendor products: %w", res.Error)
		}
		result.Deleted = int(res.RowsAffected)
	}

	if len(add) > 0 {
		rows := make([]model.VendorProduct, 0, len(add))
		for _, id := range add {
			rows = append(rows, model.VendorProduct{VendorID: vendorID, ProductPreparationID: id})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return result, fmt.Errorf("create vendor products: %w", err)
		}
		result.Created = len(rows)
	}

	return result, nil
}

// ReconcileProductPreparations makes the product's ProductPreparation rows
// pair it with exactly the preparations in target. Dropping a pairing also
// drops the vendor offerings that referenced it.
func ReconcileProductPreparations(tx *gorm.DB, productID uint, target []uint) (ReconcileResult, error) {
	var result ReconcileResult
	target = DedupeIDs(target)
	if len(target) == 0 {
		return result, ErrNoSelection
	}

	var existing []uint
	if err := tx.Model(&model.ProductPreparation{}).
		Where("product_id = ?", productID).
		Pluck("preparation_id", &existing).Error; err != nil {
		return result, fmt.Errorf("load product preparations: %w", err)
	}

	remove, add := DiffIDs(existing, target)
	if err := requireIDs(tx, &model.Preparation{}, "preparation", add); err != nil {
		return result, err
	}

	if len(remove) > 0 {
		var stale []uint
		if err := tx.Model(&model.ProductPreparation{}).
			Where("product_id = ? AND preparation_id IN ?", productID, remove).
			Pluck("id", &stale).Error; err != nil {
			return result, fmt.Errorf("load stale product preparations: %w", err)
		}
		if err := tx.Where("product_preparation_id IN ?", stale).Delete(&model.VendorProduct{}).Error; err != nil {
			return result, fmt.Errorf("delete vendor products: %w", err)
		}
		res := tx.Where("id IN ?", stale).Delete(&model.ProductPreparation{})
		if res.Error != nil {
			return result, fmt.Errorf("delete product preparations: %w", res.Error)
		}
		result.Deleted = int(res.RowsAffected)
	}

	if len(add) > 0 {
		rows := make([]model.ProductPreparation, 0, len(add))
		for _, id := range add {
			rows = append(rows, model.ProductPreparation{ProductID: productID, PreparationID: id})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return result, fmt.Errorf("create product preparations: %w", err)
		}
		result.Created = len(rows)
	}

	return result, nil
}

// requireIDs fails with a ReferenceError naming the smallest id of ids that
// has no row in the table of m.
func requireIDs(tx *gorm.DB, m interface{}, entity string, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	var found []uint
	if err := tx.Model(m).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return fmt.Errorf("check %s ids: %w", entity, err)
	}
	if len(found) == len(ids) {
		return nil
	}
	have := make(map[uint]struct{}, len(found))
	for _, id := range found {
		have[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := have[id]; !ok {
			return &ReferenceError{Entity: entity, ID: id}
		}
	}
	return nil
}
