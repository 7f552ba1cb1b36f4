package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"testing"

	"whatsfresh/internal/model"
	"whatsfresh/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func imageUpload(t *testing.T, filename string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("\x89PNG fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func TestUploadAndDeleteImage(t *testing.T) {
	ts := newTestServer(t, true)

	body, contentType := imageUpload(t, "fish.PNG", map[string]string{"name": "A fish", "caption": "Blub"})
	rec := ts.postBody("/entry/images/new", contentType, body)
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	assert.Equal(t, "/entry/images?saved=true", rec.Header().Get("Location"))

	var img model.Image
	require.NoError(t, ts.db.Where("name = ?", "A fish").First(&img).Error)
	assert.Equal(t, "Blub", img.Caption)
	assert.True(t, ts.blobs.Has(img.BlobKey))
	assert.Equal(t, "/media/"+img.BlobKey, img.Image)
	assert.Contains(t, img.BlobKey, ".png")

	require.NoError(t, ts.db.Model(&model.Product{}).Where("id = ?", 1).Update("image_id", img.ID).Error)

	rec = ts.delete("/entry/images/" + itoa(img.ID))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, ts.blobs.Has(img.BlobKey))
	var product model.Product
	require.NoError(t, ts.db.First(&product, 1).Error)
	assert.Nil(t, product.ImageID)

	rec = ts.delete("/entry/images/" + itoa(img.ID))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadImageRejected(t *testing.T) {
	ts := newTestServer(t, true)

	body, contentType := imageUpload(t, "", map[string]string{"name": "Nothing"})
	rec := ts.postBody("/entry/images/new", contentType, body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "This field is required.")

	body, contentType = imageUpload(t, "notes.txt", nil)
	rec = ts.postBody("/entry/images/new", contentType, body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Upload a valid image.")
	assert.Equal(t, int64(2), testutil.Count(t, ts.db, &model.Image{}))
}

func TestEditImageText(t *testing.T) {
	ts := newTestServer(t, true)

	body, contentType := imageUpload(t, "", map[string]string{"name": "A tabby", "caption": "Purr"})
	rec := ts.postBody("/entry/images/1", contentType, body)
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())

	var img model.Image
	require.NoError(t, ts.db.First(&img, 1).Error)
	assert.Equal(t, "A tabby", img.Name)
	assert.Equal(t, "/media/cat.jpg", img.Image)
}
