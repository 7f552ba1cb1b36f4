package handler

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"whatsfresh/internal/catalog"
	"whatsfresh/internal/model"
	"whatsfresh/pkg/logger"
	"whatsfresh/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const maxImageSize = 10 << 20

var imageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

type imageForm struct {
	Name    string `form:"name" validate:"max=255"`
	Caption string `form:"caption"`
}

// ListImages handles GET /entry/images
func (h *Handler) ListImages(c echo.Context) error {
	page, err := h.catalog.ListImagesPage(c.Request().Context(), c.QueryParam("page"), h.pageLength)
	if err != nil {
		return h.failEntry(c, "image", err)
	}

	items := make([]listItem, 0, len(page.Items))
	for _, img := range page.Items {
		name := img.Name
		if name == "" {
			name = img.Image
		}
		items = append(items, listItem{Name: name, Description: img.Caption, Link: "/entry/images/" + strconv.FormatUint(uint64(img.ID), 10)})
	}

	data := h.page(c, "All Images", []crumb{homeCrumb})
	data["Message"] = listMessage(c, "Image")
	data["NewURL"] = "/entry/images/new"
	data["NewText"] = "New Image"
	data["ItemClassification"] = "image"
	data["Items"] = items
	setPage(data, page)
	return c.Render(http.StatusOK, "list.html", data)
}

// ImageForm handles GET /entry/images/new and /entry/images/:id
func (h *Handler) ImageForm(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return h.notFoundPage(c, "Image", c.Param("id"))
	}
	if id == 0 {
		return h.renderImageForm(c, nil, &imageForm{}, nil, nil)
	}
	img, err := h.catalog.GetImage(c.Request().Context(), id)
	if err != nil {
		return h.failEntry(c, "image", err)
	}
	return h.renderImageForm(c, img, &imageForm{Name: img.Name, Caption: img.Caption}, nil, nil)
}

// SaveImage handles POST /entry/images/new, which uploads a file, and
// POST /entry/images/:id, which edits the name and caption only.
func (h *Handler) SaveImage(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	id, ok := pathID(c)
	if !ok {
		return h.notFoundPage(c, "Image", c.Param("id"))
	}
	var current *model.Image
	if id != 0 {
		img, err := h.catalog.GetImage(ctx, id)
		if err != nil {
			return h.failEntry(c, "image", err)
		}
		current = img
	}

	var form imageForm
	if err := c.Bind(&form); err != nil {
		log.Warn("Failed to bind image form", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form submission")
	}
	fields := fieldErrors(c.Validate(&form))

	if current != nil {
		if len(fields) > 0 {
			return h.renderImageForm(c, current, &form, nil, fields)
		}
		saved, err := h.catalog.UpdateImageText(ctx, id, form.Name, form.Caption)
		if err != nil {
			return h.failEntry(c, "image", err)
		}
		prometheus.RecordEntryOperation("image", "update")
		log.Info("Image updated", zap.Uint("image_id", saved.ID))
		return c.Redirect(http.StatusFound, "/entry/images?saved=true")
	}

	file, err := c.FormFile("image")
	if err != nil {
		fields["image"] = "This field is required."
	} else if _, ok := imageExtensions[strings.ToLower(filepath.Ext(file.Filename))]; !ok {
		fields["image"] = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	} else if file.Size > maxImageSize {
		fields["image"] = "The uploaded image is too large."
	}
	if len(fields) > 0 {
		return h.renderImageForm(c, nil, &form, nil, fields)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	src, err := file.Open()
	if err != nil {
		log.Error("Failed to open uploaded image", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid upload")
	}
	defer src.Close()

	key := uuid.New().String() + ext
	info, err := h.blobs.Put(ctx, key, src, imageExtensions[ext])
	if err != nil {
		log.Error("Failed to store image", zap.String("key", key), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "The image could not be stored.")
	}

	name := form.Name
	if name == "" {
		name = file.Filename
	}
	saved, err := h.catalog.CreateImage(ctx, model.Image{
		Image:   info.URL,
		BlobKey: info.Key,
		Name:    name,
		Caption: form.Caption,
	})
	if err != nil {
		if derr := h.blobs.Delete(ctx, info.Key); derr != nil {
			log.Warn("Failed to remove orphaned image", zap.String("key", info.Key), zap.Error(derr))
		}
		return h.failEntry(c, "image", err)
	}

	prometheus.RecordEntryOperation("image", "create")
	log.Info("Image uploaded",
		zap.Uint("image_id", saved.ID),
		zap.String("key", info.Key),
		zap.Int64("size", info.Size))
	return c.Redirect(http.StatusFound, "/entry/images?saved=true")
}

// DeleteImage handles DELETE /entry/images/:id
func (h *Handler) DeleteImage(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	id, ok := pathID(c)
	if !ok {
		return c.NoContent(http.StatusNotFound)
	}
	img, err := h.catalog.DeleteImage(ctx, id)
	if err != nil {
		if catalog.IsNotFound(err) {
			return c.NoContent(http.StatusNotFound)
		}
		log.Error("Failed to delete image", zap.Uint("image_id", id), zap.Error(err))
		return c.NoContent(http.StatusInternalServerError)
	}
	if img.BlobKey != "" {
		if err := h.blobs.Delete(ctx, img.BlobKey); err != nil {
			log.Warn("Failed to remove image blob", zap.String("key", img.BlobKey), zap.Error(err))
		}
	}

	prometheus.RecordEntryOperation("image", "delete")
	log.Info("Image deleted", zap.Uint("image_id", id))
	return c.NoContent(http.StatusOK)
}

func (h *Handler) renderImageForm(c echo.Context, current *model.Image, form *imageForm, errs []string, fields map[string]string) error {
	title := "Add an Image"
	postURL := "/entry/images/new"
	if current != nil {
		title = "Edit " + form.Name
		if current.Name != "" {
			title = "Edit " + current.Name
		}
		postURL = "/entry/images/" + strconv.FormatUint(uint64(current.ID), 10)
	}
	data := h.page(c, title, []crumb{homeCrumb, {URL: "/entry/images", Name: "Images"}})
	data["PostURL"] = postURL
	data["Form"] = form
	data["Errors"] = errs
	if current != nil {
		data["Current"] = current.Image
	}
	if fields != nil {
		data["FieldErrors"] = fields
	}
	return c.Render(http.StatusOK, "image.html", data)
}
