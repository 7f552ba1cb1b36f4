package catalog

import (
	"errors"
	"testing"

	"whatsfresh/internal/model"
	"whatsfresh/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestParseIDs(t *testing.T) {
	t.Run("dedupes and sorts", func(t *testing.T) {
		ids, err := ParseIDs("3, 1,3,,2")
		require.NoError(t, err)
		assert.Equal(t, []uint{1, 2, 3}, ids)
	})

	t.Run("empty input yields no ids", func(t *testing.T) {
		ids, err := ParseIDs("")
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("rejects junk", func(t *testing.T) {
		_, err := ParseIDs("1,abc")
		assert.Error(t, err)

		_, err = ParseIDs("0")
		assert.Error(t, err)
	})
}

func TestDiffIDs(t *testing.T) {
	tests := []struct {
		name       string
		existing   []uint
		target     []uint
		wantRemove []uint
		wantAdd    []uint
	}{
		{"new vendor", nil, []uint{2, 1}, nil, []uint{1, 2}},
		{"identical", []uint{1, 3}, []uint{3, 1}, nil, nil},
		{"swap one", []uint{1, 3}, []uint{1, 4}, []uint{3}, []uint{4}},
		{"disjoint", []uint{1, 2}, []uint{3}, []uint{1, 2}, []uint{3}},
		{"duplicates in target", []uint{1}, []uint{2, 2, 1}, nil, []uint{2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remove, add := DiffIDs(tt.existing, tt.target)
			assert.Equal(t, tt.wantRemove, nilIfEmpty(remove))
			assert.Equal(t, tt.wantAdd, nilIfEmpty(add))
		})
	}
}

func nilIfEmpty(ids []uint) []uint {
	if len(ids) == 0 {
		return nil
	}
	return ids
}

func vendorProductRowIDs(t *testing.T, db *gorm.DB, vendorID uint) map[uint]uint {
	t.Helper()
	var rows []model.VendorProduct
	require.NoError(t, db.Where("vendor_id = ?", vendorID).Find(&rows).Error)
	out := map[uint]uint{}
	for _, r := range rows {
		out[r.ProductPreparationID] = r.ID
	}
	return out
}

func TestReconcileVendorProducts(t *testing.T) {
	t.Run("matches target and keeps shared rows", func(t *testing.T) {
		db := testutil.NewDB(t)
		testutil.Seed(t, db)
		before := vendorProductRowIDs(t, db, 1)

		res, err := ReconcileVendorProducts(db, 1, []uint{1, 2, 4})
		require.NoError(t, err)
		assert.Equal(t, ReconcileResult{Created: 2, Deleted: 1}, res)
		assert.Equal(t, []uint{1, 2, 4}, testutil.VendorPreparationIDs(t, db, 1))

		after := vendorProductRowIDs(t, db, 1)
		assert.Equal(t, before[1], after[1], "row for an id in both sets must not be recreated")
	})

	t.Run("identical target is a no-op", func(t *testing.T) {
		db := testutil.NewDB(t)
		testutil.Seed(t, db)
		before := vendorProductRowIDs(t, db, 1)

		res, err := ReconcileVendorProducts(db, 1, []uint{3, 1})
		require.NoError(t, err)
		assert.False(t, res.Changed())
		assert.Equal(t, before, vendorProductRowIDs(t, db, 1))
	})

	t.Run("second run is idempotent", func(t *testing.T) {
		db := testutil.NewDB(t)
		testutil.Seed(t, db)

		first, err := ReconcileVendorProducts(db, 1, []uint{2, 4})
		require.NoError(t, err)
		assert.True(t, first.Changed())

		second, err := ReconcileVendorProducts(db, 1, []uint{4, 2, 2})
		require.NoError(t, err)
		assert.Equal(t, ReconcileResult{}, second)
		assert.Equal(t, []uint{2, 4}, testutil.VendorPreparationIDs(t, db, 1))
	})

	t.Run("other vendors are untouched", func(t *testing.T) {
		db := testutil.NewDB(t)
		testutil.Seed(t, db)
		other := model.Vendor{Name: "Other", Street: "1 A St", City: "Newport", State: "OR", Zip: "97365"}
		require.NoError(t, db.Create(&other).Error)
		_, err := ReconcileVendorProducts(db, other.ID, []uint{1, 3})
		require.NoError(t, err)
		otherRows := vendorProductRowIDs(t, db, other.ID)

		_, err = ReconcileVendorProducts(db, 1, []uint{2})
		require.NoError(t, err)
		assert.Equal(t, otherRows, vendorProductRowIDs(t, db, other.ID))
	})

	t.Run("empty target is rejected", func(t *testing.T) {
		db := testutil.NewDB(t)
		testutil.Seed(t, db)

		_, err := ReconcileVendorProducts(db, 1, nil)
		assert.ErrorIs(t, err, ErrNoSelection)
		assert.Equal(t, []uint{1, 3}, testutil.VendorPreparationIDs(t, db, 1))
	})

	t.Run("unknown id writes nothing", func(t *testing.T) {
		db := testutil.NewDB(t)
		testutil.Seed(t, db)

		_, err := ReconcileVendorProducts(db, 1, []uint{2, 99})
		require.Error(t, err)
		var refErr *ReferenceError
		require.True(t, errors.As(err, &refErr))
		assert.Equal(t, uint(99), refErr.ID)
		assert.True(t, IsNotFound(err))
		assert.Equal(t, []uint{1, 3}, testutil.VendorPreparationIDs(t, db, 1))
	})
}

func TestReconcileProductPreparations(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.Seed(t, db)

	// product 1 has preparations 1 and 2; vendor 1 sells product preparation 1
	res, err := ReconcileProductPreparations(db, 1, []uint{2, 3})
	require.NoError(t, err)
	assert.Equal(t, ReconcileResult{Created: 1, Deleted: 1}, res)

	var preps []uint
	require.NoError(t, db.Model(&model.ProductPreparation{}).Where("product_id = ?", 1).
		Order("preparation_id").Pluck("preparation_id", &preps).Error)
	assert.Equal(t, []uint{2, 3}, preps)

	assert.Equal(t, []uint{3}, testutil.VendorPreparationIDs(t, db, 1),
		"offerings of a dropped product preparation go with it")

	_, err = ReconcileProductPreparations(db, 1, []uint{42})
	assert.True(t, IsNotFound(err))
}
