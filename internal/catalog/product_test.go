package catalog

import (
	"context"
	"testing"

	"whatsfresh/internal/model"
	"whatsfresh/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListProductsNewestFirst(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.Seed(t, db)
	svc := NewService(db)

	products, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, uint(2), products[0].ID)
	require.NotNil(t, products[0].ImagePath())
	assert.Equal(t, "/media/dog.jpg", *products[0].ImagePath())
}

func TestSaveProduct(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.Seed(t, db)
	svc := NewService(db)
	story := uint(1)
	image := uint(1)

	p := model.Product{
		ID: 1, Name: "Salmon", Variety: "Pacific", AltName: "Pacific Salmon",
		Origin: "The Pacific", Description: "It's salmon -- from the Pacific!",
		Season: "Always", MarketPrice: "$3 a pack", StoryID: &story, ImageID: &image,
		Link: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	}
	saved, _, err := svc.SaveProduct(context.Background(), p, []uint{1, 2})
	require.NoError(t, err)
	assert.Equal(t, "Salmon", saved.Name)
	assert.Nil(t, saved.Available)
	assert.Equal(t, uint(1), *saved.StoryID)
	require.Len(t, saved.ProductPreparations, 2)
	assert.Equal(t, uint(1), saved.ProductPreparations[0].PreparationID)
	assert.Equal(t, uint(2), saved.ProductPreparations[1].PreparationID)

	missingStory := uint(9)
	p.StoryID = &missingStory
	_, _, err = svc.SaveProduct(context.Background(), p, []uint{1})
	assert.True(t, IsNotFound(err))
}

func TestDeleteProduct(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.Seed(t, db)
	svc := NewService(db)

	require.NoError(t, svc.DeleteProduct(context.Background(), 2))
	assert.Equal(t, int64(0), testutil.Count(t, db, &model.ProductPreparation{}, "product_id = ?", 2))
	assert.Equal(t, []uint{1}, testutil.VendorPreparationIDs(t, db, 1))

	assert.True(t, IsNotFound(svc.DeleteProduct(context.Background(), 2)))
}

func TestStoriesAndImages(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.Seed(t, db)
	svc := NewService(db)

	require.NoError(t, svc.DeleteStory(context.Background(), 1))
	product, err := svc.GetProduct(context.Background(), 2)
	require.NoError(t, err)
	assert.Nil(t, product.StoryID)

	img, err := svc.DeleteImage(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "dog.jpg", img.BlobKey)
	product, err = svc.GetProduct(context.Background(), 2)
	require.NoError(t, err)
	assert.Nil(t, product.ImageID)

	_, err = svc.GetStory(context.Background(), 1)
	assert.True(t, IsNotFound(err))
}
