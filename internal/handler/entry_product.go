package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"whatsfresh/internal/catalog"
	"whatsfresh/internal/model"
	"whatsfresh/pkg/logger"
	"whatsfresh/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const msgChoosePreparation = "You must choose at least one preparation."

type productForm struct {
	Name           string `form:"name" validate:"required,max=255"`
	Variety        string `form:"variety" validate:"max=255"`
	AltName        string `form:"alt_name" validate:"max=255"`
	Description    string `form:"description"`
	Origin         string `form:"origin"`
	Season         string `form:"season" validate:"max=255"`
	Available      string `form:"available" validate:"omitempty,oneof=true false on off 1 0 unknown"`
	MarketPrice    string `form:"market_price" validate:"max=255"`
	Link           string `form:"link" validate:"omitempty,url"`
	Image          string `form:"image" validate:"omitempty,numeric"`
	Story          string `form:"story" validate:"omitempty,numeric"`
	PreparationIDs string `form:"preparation_ids"`
}

// available reads the three-state availability field. Blank means unknown.
func (f *productForm) available() *bool {
	var v bool
	switch f.Available {
	case "true", "on", "1":
		v = true
	case "false", "off", "0":
		v = false
	default:
		return nil
	}
	return &v
}

func productFormFrom(p *model.Product) *productForm {
	ids := make([]string, 0, len(p.ProductPreparations))
	for _, pp := range p.ProductPreparations {
		ids = append(ids, strconv.FormatUint(uint64(pp.PreparationID), 10))
	}
	available := ""
	if p.Available != nil {
		available = strconv.FormatBool(*p.Available)
	}
	return &productForm{
		Name:           p.Name,
		Variety:        p.Variety,
		AltName:        p.AltName,
		Description:    p.Description,
		Origin:         p.Origin,
		Season:         p.Season,
		Available:      available,
		MarketPrice:    p.MarketPrice,
		Link:           p.Link,
		Image:          formatOptionalID(p.ImageID),
		Story:          formatOptionalID(p.StoryID),
		PreparationIDs: strings.Join(ids, ","),
	}
}

// ListProducts handles GET /entry/products
func (h *Handler) ListProducts(c echo.Context) error {
	page, err := h.catalog.ListProductsPage(c.Request().Context(), c.QueryParam("page"), h.pageLength)
	if err != nil {
		return h.failEntry(c, "product", err)
	}

	items := make([]listItem, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, listItem{Name: p.Name, Description: p.Description, Link: "/entry/products/" + strconv.FormatUint(uint64(p.ID), 10)})
	}

	data := h.page(c, "All Products", []crumb{homeCrumb})
	data["Message"] = listMessage(c, "Product")
	data["NewURL"] = "/entry/products/new"
	data["NewText"] = "New Product"
	data["ItemClassification"] = "product"
	data["Items"] = items
	setPage(data, page)
	return c.Render(http.StatusOK, "list.html", data)
}

// ProductForm handles GET /entry/products/new and /entry/products/:id
func (h *Handler) ProductForm(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return h.notFoundPage(c, "Product", c.Param("id"))
	}
	if id == 0 {
		return h.renderProductForm(c, 0, "", &productForm{}, nil, nil)
	}
	product, err := h.catalog.GetProduct(c.Request().Context(), id)
	if err != nil {
		return h.failEntry(c, "product", err)
	}
	return h.renderProductForm(c, id, product.Name, productFormFrom(product), nil, nil)
}

// SaveProduct handles POST /entry/products/new and /entry/products/:id
func (h *Handler) SaveProduct(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	id, ok := pathID(c)
	if !ok {
		return h.notFoundPage(c, "Product", c.Param("id"))
	}
	name := ""
	if id != 0 {
		current, err := h.catalog.GetProduct(ctx, id)
		if err != nil {
			return h.failEntry(c, "product", err)
		}
		name = current.Name
	}

	var form productForm
	if err := c.Bind(&form); err != nil {
		log.Warn("Failed to bind product form", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form submission")
	}

	var errs []string
	ids, err := catalog.ParseIDs(form.PreparationIDs)
	switch {
	case err != nil:
		errs = append(errs, "Invalid preparation selection.")
	case len(ids) == 0:
		errs = append(errs, msgChoosePreparation)
	}

	fields := fieldErrors(c.Validate(&form))
	imageID, ok := optionalID(form.Image)
	if _, bad := fields["image"]; !bad && !ok {
		fields["image"] = msgInvalidChoice
	}
	storyID, ok := optionalID(form.Story)
	if _, bad := fields["story"]; !bad && !ok {
		fields["story"] = msgInvalidChoice
	}

	if len(errs) > 0 || len(fields) > 0 {
		log.Info("Product submission rejected", zap.Uint("product_id", id), zap.Strings("errors", errs), zap.Int("field_errors", len(fields)))
		return h.renderProductForm(c, id, name, &form, errs, fields)
	}

	product := model.Product{
		ID:          id,
		Name:        strings.TrimSpace(form.Name),
		Variety:     form.Variety,
		AltName:     form.AltName,
		Description: form.Description,
		Origin:      form.Origin,
		Season:      form.Season,
		Available:   form.available(),
		MarketPrice: form.MarketPrice,
		Link:        form.Link,
		ImageID:     imageID,
		StoryID:     storyID,
	}
	start := time.Now()
	saved, result, err := h.catalog.SaveProduct(ctx, product, ids)
	prometheus.TrackDBOperation("transaction")(start)
	if err != nil {
		var ref *catalog.ReferenceError
		if errors.As(err, &ref) && (ref.Entity == "image" || ref.Entity == "story") {
			fields[ref.Entity] = msgInvalidChoice
			return h.renderProductForm(c, id, name, &form, errs, fields)
		}
		return h.failEntry(c, "product", err)
	}

	operation := operationName(id)
	prometheus.RecordEntryOperation("product", operation)
	prometheus.RecordAssociationChanges("product_preparation", result.Created, result.Deleted)
	log.Info("Product saved",
		zap.Uint("product_id", saved.ID),
		zap.String("product_name", saved.Name),
		zap.String("operation", operation))

	return c.Redirect(http.StatusFound, "/entry/products?saved=true")
}

// DeleteProduct handles DELETE /entry/products/:id
func (h *Handler) DeleteProduct(c echo.Context) error {
	log := logger.FromEcho(c)

	id, ok := pathID(c)
	if !ok {
		return c.NoContent(http.StatusNotFound)
	}
	if err := h.catalog.DeleteProduct(c.Request().Context(), id); err != nil {
		if catalog.IsNotFound(err) {
			return c.NoContent(http.StatusNotFound)
		}
		log.Error("Failed to delete product", zap.Uint("product_id", id), zap.Error(err))
		return c.NoContent(http.StatusInternalServerError)
	}
	prometheus.RecordEntryOperation("product", "delete")
	log.Info("Product deleted", zap.Uint("product_id", id))
	return c.NoContent(http.StatusOK)
}

func (h *Handler) renderProductForm(c echo.Context, id uint, name string, form *productForm, errs []string, fields map[string]string) error {
	ctx := c.Request().Context()

	preparations, err := h.catalog.ListPreparations(ctx)
	if err != nil {
		return h.failEntry(c, "preparation", err)
	}
	images, err := h.catalog.ListImages(ctx)
	if err != nil {
		return h.failEntry(c, "image", err)
	}
	stories, err := h.catalog.ListStories(ctx)
	if err != nil {
		return h.failEntry(c, "story", err)
	}

	selected := map[uint]bool{}
	if ids, err := catalog.ParseIDs(form.PreparationIDs); err == nil {
		for _, pid := range ids {
			selected[pid] = true
		}
	}

	title := "Add a Product"
	message := msgRequiredFields
	postURL := "/entry/products/new"
	if id != 0 {
		title = "Edit " + name
		message = ""
		postURL = "/entry/products/" + strconv.FormatUint(uint64(id), 10)
	}

	data := h.page(c, title, []crumb{homeCrumb, {URL: "/entry/products", Name: "Products"}})
	data["Message"] = message
	data["PostURL"] = postURL
	data["Form"] = form
	data["Errors"] = errs
	if fields != nil {
		data["FieldErrors"] = fields
	}
	data["Preparations"] = preparations
	data["Selected"] = selected
	data["Images"] = images
	data["Stories"] = stories
	return c.Render(http.StatusOK, "product.html", data)
}
