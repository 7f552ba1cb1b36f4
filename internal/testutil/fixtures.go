package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"whatsfresh/internal/model"
	"whatsfresh/pkg/geocode"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// FixtureTime is the creation time of every fixture row
var FixtureTime = time.Date(2014, 8, 8, 23, 27, 5, 568395000, time.UTC)

// Catalog holds the rows created by Seed
type Catalog struct {
	Images              []model.Image
	Stories             []model.Story
	Preparations        []model.Preparation
	Products            []model.Product
	ProductPreparations []model.ProductPreparation
	Vendors             []model.Vendor
}

func boolPtr(b bool) *bool { return &b }
func uintPtr(u uint) *uint { return &u }

// Seed creates two images, two stories, three preparations, two products,
// four product preparations and one vendor selling two of them.
func Seed(t *testing.T, db *gorm.DB) Catalog {
	t.Helper()
	var c Catalog

	c.Images = []model.Image{
		{ID: 1, Image: "/media/cat.jpg", BlobKey: "cat.jpg", Name: "A cat", Caption: "Meow!", CreatedAt: FixtureTime, UpdatedAt: FixtureTime},
		{ID: 2, Image: "/media/dog.jpg", BlobKey: "dog.jpg", Name: "A dog", Caption: "Woof!", CreatedAt: FixtureTime, UpdatedAt: FixtureTime},
	}
	c.Stories = []model.Story{
		{ID: 1, Name: "Star Trek", History: "The history of the Enterprise", Facts: "Boldly going", Buying: "Buy a ticket", Preparing: "Engage", Products: "Tribbles", Season: "Seven seasons", CreatedAt: FixtureTime, UpdatedAt: FixtureTime},
		{ID: 2, Name: "Deep Space Nine", History: "A station", Facts: "Near a wormhole", Buying: "Latinum", Preparing: "Raktajino", Products: "Root beer", Season: "Seven seasons", CreatedAt: FixtureTime, UpdatedAt: FixtureTime},
	}
	c.Preparations = []model.Preparation{
		{ID: 1, Name: "Frozen", Description: "Frozen whole", CreatedAt: FixtureTime, UpdatedAt: FixtureTime},
		{ID: 2, Name: "Live", Description: "Still swimming", CreatedAt: FixtureTime, UpdatedAt: FixtureTime},
		{ID: 3, Name: "Smoked", Description: "Smoked over alder", CreatedAt: FixtureTime, UpdatedAt: FixtureTime},
	}
	c.Products = []model.Product{
		{
			ID: 1, Name: "Ezri Dax", Variety: "Freshwater Eel", AltName: "Jadzia",
			Description: "That's not actually an eel, it's a symbiote.", Origin: "Trill",
			Season: "Season 7", Available: boolPtr(true), MarketPrice: "$32.64 per season",
			Link:    "http://www.amazon.com/Star-Trek-Deep-Space-Nine/dp/B00008KA57/",
			ImageID: uintPtr(1), StoryID: uintPtr(2), CreatedAt: FixtureTime, UpdatedAt: FixtureTime,
		},
		{
			ID: 2, Name: "Starfish Voyager", Variety: "Tuna", AltName: "The Stargazer",
			Description: "This is one sweet fish!", Origin: "The Delta Quadrant",
			Season: "Season 1", Available: boolPtr(true), MarketPrice: "$33.31",
			Link:    "http://www.amazon.com/Star-Trek-Voyager-Complete-Seventh/dp/B00062IDCO/",
			ImageID: uintPtr(2), StoryID: uintPtr(1), CreatedAt: FixtureTime, UpdatedAt: FixtureTime,
		},
	}
	c.ProductPreparations = []model.ProductPreparation{
		{ID: 1, ProductID: 1, PreparationID: 1},
		{ID: 2, ProductID: 1, PreparationID: 2},
		{ID: 3, ProductID: 2, PreparationID: 1},
		{ID: 4, ProductID: 2, PreparationID: 3},
	}
	c.Vendors = []model.Vendor{
		{
			ID: 1, Name: "No Name", Description: "Has no name", Hours: "9-5",
			Street: "1500 SW Jefferson Ave", City: "Corvallis", State: "OR", Zip: "97331",
			LocationDescription: "Next to the dock", ContactName: "Jimmy",
			Phone: "5415551234", Website: "http://example.com", Email: "jimmy@example.com",
			Location: model.Point{Lat: 44.56, Lon: -123.28}, StoryID: uintPtr(1),
			CreatedAt: FixtureTime, UpdatedAt: FixtureTime,
		},
	}

	require.NoError(t, db.Create(&c.Images).Error)
	require.NoError(t, db.Create(&c.Stories).Error)
	require.NoError(t, db.Create(&c.Preparations).Error)
	require.NoError(t, db.Omit("Image", "Story", "ProductPreparations").Create(&c.Products).Error)
	require.NoError(t, db.Omit("Product", "Preparation").Create(&c.ProductPreparations).Error)
	require.NoError(t, db.Omit("Story", "VendorProducts").Create(&c.Vendors).Error)
	require.NoError(t, db.Create(&[]model.VendorProduct{
		{VendorID: 1, ProductPreparationID: 1},
		{VendorID: 1, ProductPreparationID: 3},
	}).Error)

	return c
}

// VendorPreparationIDs returns the product preparation ids a vendor sells,
// ascending.
func VendorPreparationIDs(t *testing.T, db *gorm.DB, vendorID uint) []uint {
	t.Helper()
	var ids []uint
	require.NoError(t, db.Model(&model.VendorProduct{}).
		Where("vendor_id = ?", vendorID).
		Order("product_preparation_id").
		Pluck("product_preparation_id", &ids).Error)
	return ids
}

// FakeGeocoder resolves every complete address to Point unless Err is set
type FakeGeocoder struct {
	mu    sync.Mutex
	Point geocode.Point
	Err   error
	Calls []geocode.Address
}

func (f *FakeGeocoder) Geocode(ctx context.Context, addr geocode.Address) (geocode.Point, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, addr)
	if f.Err != nil {
		return geocode.Point{}, f.Err
	}
	if !addr.Complete() {
		return geocode.Point{}, geocode.ErrBadAddress
	}
	return f.Point, nil
}
