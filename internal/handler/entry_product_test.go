package handler

import (
	"net/http"
	"net/url"
	"testing"

	"whatsfresh/internal/model"
	"whatsfresh/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductEntryRequiresLogin(t *testing.T) {
	ts := newTestServer(t, true)

	rec := ts.get("/entry/products/1", false)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?next=/entry/products/1", rec.Header().Get("Location"))
}

func TestUpdateProduct(t *testing.T) {
	ts := newTestServer(t, true)

	rec := ts.post("/entry/products/1", url.Values{
		"name":            {"Salmon"},
		"variety":         {"Pacific"},
		"story":           {"1"},
		"alt_name":        {"Pacific Salmon"},
		"origin":          {"The Pacific"},
		"description":     {"It's salmon -- from the Pacific!"},
		"season":          {"Always"},
		"available":       {""},
		"image":           {"1"},
		"market_price":    {"$3 a pack"},
		"preparation_ids": {"1,2"},
		"link":            {"https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
	})
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	assert.Equal(t, "/entry/products?saved=true", rec.Header().Get("Location"))

	var product model.Product
	require.NoError(t, ts.db.First(&product, 1).Error)
	assert.Equal(t, "Salmon", product.Name)
	assert.Equal(t, "Pacific", product.Variety)
	assert.Equal(t, "Pacific Salmon", product.AltName)
	assert.Equal(t, "The Pacific", product.Origin)
	assert.Equal(t, "It's salmon -- from the Pacific!", product.Description)
	assert.Equal(t, "Always", product.Season)
	assert.Nil(t, product.Available)
	assert.Equal(t, "$3 a pack", product.MarketPrice)
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", product.Link)
	require.NotNil(t, product.StoryID)
	assert.Equal(t, uint(1), *product.StoryID)
	require.NotNil(t, product.ImageID)
	assert.Equal(t, uint(1), *product.ImageID)

	var preparations []uint
	require.NoError(t, ts.db.Model(&model.ProductPreparation{}).Where("product_id = ?", 1).Order("preparation_id").Pluck("preparation_id", &preparations).Error)
	assert.Equal(t, []uint{1, 2}, preparations)
}

func TestUpdateProductDropsStaleOfferings(t *testing.T) {
	ts := newTestServer(t, true)

	rec := ts.post("/entry/products/2", url.Values{
		"name":            {"Starfish Voyager"},
		"preparation_ids": {"3"},
	})
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())

	// product preparation 3 paired product 2 with preparation 1
	assert.Equal(t, []uint{1}, testutil.VendorPreparationIDs(t, ts.db, 1))
	assert.Equal(t, int64(0), testutil.Count(t, ts.db, &model.ProductPreparation{}, "id = ?", 3))
}

func TestProductForm(t *testing.T) {
	ts := newTestServer(t, true)

	rec := ts.get("/entry/products/1", true)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Edit Ezri Dax")
	assert.Contains(t, body, `name="variety" value="Freshwater Eel"`)
	assert.Contains(t, body, `name="preparation_ids" value="1,2"`)
	assert.Contains(t, body, `<option value="true" selected>Yes</option>`)
	assert.Contains(t, body, `<option value="2" selected>Deep Space Nine</option>`)
}

func TestSaveProductRejected(t *testing.T) {
	ts := newTestServer(t, true)

	rec := ts.post("/entry/products/new", url.Values{"link": {"not a link"}})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, msgChoosePreparation)
	assert.Contains(t, body, "This field is required.")
	assert.Contains(t, body, "Enter a valid URL.")
	assert.Equal(t, int64(2), testutil.Count(t, ts.db, &model.Product{}))

	rec = ts.post("/entry/products/new", url.Values{"name": {"Crab"}, "image": {"9"}, "preparation_ids": {"1"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Select a valid choice.")
	assert.Equal(t, int64(2), testutil.Count(t, ts.db, &model.Product{}))
}

func TestSaveProductRejectsBlankSelection(t *testing.T) {
	ts := newTestServer(t, true)

	rec := ts.post("/entry/products/1", url.Values{"name": {"Eel"}, "preparation_ids": {" , "}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), msgChoosePreparation)
	assert.Equal(t, int64(2), testutil.Count(t, ts.db, &model.ProductPreparation{}, "product_id = ?", 1))
}

func TestSaveProductZeroReference(t *testing.T) {
	ts := newTestServer(t, true)

	for _, field := range []string{"image", "story"} {
		rec := ts.post("/entry/products/1", url.Values{"name": {"Eel"}, field: {"0"}, "preparation_ids": {"1"}})
		require.Equal(t, http.StatusOK, rec.Code, field)
		assert.Contains(t, rec.Body.String(), msgInvalidChoice, field)
	}

	var product model.Product
	require.NoError(t, ts.db.First(&product, 1).Error)
	assert.NotEqual(t, "Eel", product.Name)
}

func TestCreateProduct(t *testing.T) {
	ts := newTestServer(t, true)

	rec := ts.post("/entry/products/new", url.Values{
		"name":            {"Dungeness Crab"},
		"available":       {"true"},
		"preparation_ids": {"2,3"},
	})
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())

	var product model.Product
	require.NoError(t, ts.db.Where("name = ?", "Dungeness Crab").First(&product).Error)
	require.NotNil(t, product.Available)
	assert.True(t, *product.Available)
	assert.Nil(t, product.ImageID)
	assert.Equal(t, int64(2), testutil.Count(t, ts.db, &model.ProductPreparation{}, "product_id = ?", product.ID))
}

func TestDeleteProduct(t *testing.T) {
	ts := newTestServer(t, true)

	rec := ts.delete("/entry/products/2")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(0), testutil.Count(t, ts.db, &model.Product{}, "id = ?", 2))
	assert.Equal(t, []uint{1}, testutil.VendorPreparationIDs(t, ts.db, 1))

	rec = ts.delete("/entry/products/2")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
