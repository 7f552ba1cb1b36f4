package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"whatsfresh/internal/catalog"
	"whatsfresh/internal/model"
	"whatsfresh/pkg/geocode"
	"whatsfresh/pkg/logger"
	"whatsfresh/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	msgAddressRequired = "Full address is required."
	msgChooseProduct   = "You must choose at least one product."
	msgInvalidProduct  = "Invalid product selection."
	msgRequiredFields  = "* = Required field"
	msgInvalidChoice   = "Select a valid choice. That choice is not one of the available choices."
)

// vendorForm is the submitted vendor entry form
type vendorForm struct {
	Name                string `form:"name" validate:"required,max=255"`
	Description         string `form:"description"`
	Hours               string `form:"hours" validate:"max=255"`
	Street              string `form:"street"`
	City                string `form:"city"`
	State               string `form:"state"`
	Zip                 string `form:"zip"`
	LocationDescription string `form:"location_description"`
	ContactName         string `form:"contact_name" validate:"max=255"`
	Phone               string `form:"phone" validate:"max=50"`
	Website             string `form:"website" validate:"omitempty,url,max=255"`
	Email               string `form:"email" validate:"omitempty,email,max=255"`
	Story               string `form:"story" validate:"omitempty,numeric"`
	PreparationIDs      string `form:"preparation_ids"`
}

func (f *vendorForm) address() geocode.Address {
	return geocode.Address{Street: f.Street, City: f.City, State: f.State, Zip: f.Zip}
}

// vendor builds the record that replaces vendor id
func (f *vendorForm) vendor(id uint, storyID *uint, at geocode.Point) model.Vendor {
	return model.Vendor{
		ID:                  id,
		Name:                strings.TrimSpace(f.Name),
		Description:         f.Description,
		Hours:               f.Hours,
		Street:              f.Street,
		City:                f.City,
		State:               f.State,
		Zip:                 f.Zip,
		LocationDescription: f.LocationDescription,
		ContactName:         f.ContactName,
		Phone:               f.Phone,
		Website:             f.Website,
		Email:               f.Email,
		Location:            model.Point{Lat: at.Lat, Lon: at.Lon},
		StoryID:             storyID,
	}
}

func vendorFormFrom(v *model.Vendor) *vendorForm {
	ids := make([]string, 0, len(v.VendorProducts))
	for _, vp := range v.VendorProducts {
		ids = append(ids, strconv.FormatUint(uint64(vp.ProductPreparationID), 10))
	}
	return &vendorForm{
		Name:                v.Name,
		Description:         v.Description,
		Hours:               v.Hours,
		Street:              v.Street,
		City:                v.City,
		State:               v.State,
		Zip:                 v.Zip,
		LocationDescription: v.LocationDescription,
		ContactName:         v.ContactName,
		Phone:               v.Phone,
		Website:             v.Website,
		Email:               v.Email,
		Story:               formatOptionalID(v.StoryID),
		PreparationIDs:      strings.Join(ids, ","),
	}
}

// ListVendors handles GET /entry/vendors
func (h *Handler) ListVendors(c echo.Context) error {
	log := logger.FromEcho(c)

	page, err := h.catalog.ListVendorsPage(c.Request().Context(), c.QueryParam("page"), h.pageLength)
	if err != nil {
		return h.failEntry(c, "vendor", err)
	}

	items := make([]listItem, 0, len(page.Items))
	for _, v := range page.Items {
		items = append(items, listItem{Name: v.Name, Description: v.Description, Link: "/entry/vendors/" + strconv.FormatUint(uint64(v.ID), 10)})
	}

	data := h.page(c, "All Vendors", []crumb{homeCrumb})
	data["Message"] = listMessage(c, "Vendor")
	data["NewURL"] = "/entry/vendors/new"
	data["NewText"] = "New Vendor"
	data["ItemClassification"] = "vendor"
	data["Items"] = items
	setPage(data, page)

	log.Debug("Listed vendors", zap.Int("page", page.Number), zap.Int("count", len(items)))
	return c.Render(http.StatusOK, "list.html", data)
}

// VendorForm handles GET /entry/vendors/new and /entry/vendors/:id
func (h *Handler) VendorForm(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return h.notFoundPage(c, "Vendor", c.Param("id"))
	}
	if id == 0 {
		return h.renderVendorForm(c, 0, "", &vendorForm{}, nil, nil, nil)
	}

	vendor, err := h.catalog.GetVendor(c.Request().Context(), id)
	if err != nil {
		return h.failEntry(c, "vendor", err)
	}
	existing := make([]catalog.ProductPreparationChoice, 0, len(vendor.VendorProducts))
	for _, vp := range vendor.VendorProducts {
		existing = append(existing, catalog.ProductPreparationChoice{
			ID:          vp.ProductPreparationID,
			Preparation: vp.ProductPreparation.Preparation.Name,
			Product:     vp.ProductPreparation.Product.Name,
		})
	}
	return h.renderVendorForm(c, id, vendor.Name, vendorFormFrom(vendor), existing, nil, nil)
}

// SaveVendor handles POST /entry/vendors/new and /entry/vendors/:id. Every
// problem with the submission is collected before the form is shown again.
// An accepted submission stores the vendor and its offerings together.
func (h *Handler) SaveVendor(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	id, ok := pathID(c)
	if !ok {
		return h.notFoundPage(c, "Vendor", c.Param("id"))
	}
	name := ""
	if id != 0 {
		current, err := h.catalog.GetVendor(ctx, id)
		if err != nil {
			return h.failEntry(c, "vendor", err)
		}
		name = current.Name
	}

	var form vendorForm
	if err := c.Bind(&form); err != nil {
		log.Warn("Failed to bind vendor form", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form submission")
	}

	var errs []string
	point, err := h.geocoder.Geocode(ctx, form.address())
	if err != nil {
		prometheus.RecordGeocodeFailure()
		if errors.Is(err, geocode.ErrBadAddress) {
			log.Info("Vendor address could not be resolved", zap.String("address", form.address().String()))
		} else {
			log.Warn("Geocoder failed", zap.String("address", form.address().String()), zap.Error(err))
		}
		errs = append(errs, msgAddressRequired)
	}

	ids, err := catalog.ParseIDs(form.PreparationIDs)
	switch {
	case err != nil:
		log.Info("Malformed preparation ids", zap.String("preparation_ids", form.PreparationIDs))
		errs = append(errs, msgInvalidProduct)
		ids = nil
	case len(ids) == 0:
		errs = append(errs, msgChooseProduct)
	}

	fields := fieldErrors(c.Validate(&form))
	storyID, ok := optionalID(form.Story)
	if _, bad := fields["story"]; !bad && !ok {
		fields["story"] = msgInvalidChoice
	} else if !bad && storyID != nil {
		if _, err := h.catalog.GetStory(ctx, *storyID); err != nil {
			if !catalog.IsNotFound(err) {
				return h.failEntry(c, "story", err)
			}
			fields["story"] = msgInvalidChoice
		}
	}

	if len(errs) > 0 || len(fields) > 0 {
		existing, err := h.catalog.DescribeProductPreparations(ctx, ids)
		if err != nil {
			return h.failEntry(c, "vendor", err)
		}
		log.Info("Vendor submission rejected",
			zap.Uint("vendor_id", id),
			zap.Strings("errors", errs),
			zap.Int("field_errors", len(fields)))
		return h.renderVendorForm(c, id, name, &form, existing, errs, fields)
	}

	start := time.Now()
	saved, result, err := h.catalog.SaveVendor(ctx, form.vendor(id, storyID, point), ids)
	prometheus.TrackDBOperation("transaction")(start)
	if err != nil {
		return h.failEntry(c, "vendor", err)
	}

	operation := operationName(id)
	prometheus.RecordEntryOperation("vendor", operation)
	prometheus.RecordAssociationChanges("vendor_product", result.Created, result.Deleted)
	log.Info("Vendor saved",
		zap.Uint("vendor_id", saved.ID),
		zap.String("vendor_name", saved.Name),
		zap.String("operation", operation),
		zap.Int("offerings_created", result.Created),
		zap.Int("offerings_deleted", result.Deleted))

	return c.Redirect(http.StatusFound, "/entry/vendors?saved=true")
}

// DeleteVendor handles DELETE /entry/vendors/:id
func (h *Handler) DeleteVendor(c echo.Context) error {
	log := logger.FromEcho(c)

	id, ok := pathID(c)
	if !ok {
		return c.NoContent(http.StatusNotFound)
	}
	if err := h.catalog.DeleteVendor(c.Request().Context(), id); err != nil {
		if catalog.IsNotFound(err) {
			log.Info("Vendor to delete not found", zap.Uint("vendor_id", id))
			return c.NoContent(http.StatusNotFound)
		}
		log.Error("Failed to delete vendor", zap.Uint("vendor_id", id), zap.Error(err))
		return c.NoContent(http.StatusInternalServerError)
	}

	prometheus.RecordEntryOperation("vendor", "delete")
	log.Info("Vendor deleted", zap.Uint("vendor_id", id))
	return c.NoContent(http.StatusOK)
}

func (h *Handler) renderVendorForm(c echo.Context, id uint, name string, form *vendorForm, existing []catalog.ProductPreparationChoice, errs []string, fields map[string]string) error {
	ctx := c.Request().Context()

	choices, productNames, err := h.catalog.ProductPreparationChoices(ctx)
	if err != nil {
		return h.failEntry(c, "vendor", err)
	}
	stories, err := h.catalog.ListStories(ctx)
	if err != nil {
		return h.failEntry(c, "story", err)
	}

	title := "Add a Vendor"
	message := msgRequiredFields
	postURL := "/entry/vendors/new"
	if id != 0 {
		title = "Edit " + name
		message = ""
		postURL = "/entry/vendors/" + strconv.FormatUint(uint64(id), 10)
	}

	data := h.page(c, title, []crumb{homeCrumb, {URL: "/entry/vendors", Name: "Vendors"}})
	data["Message"] = message
	data["PostURL"] = postURL
	data["Form"] = form
	data["Errors"] = errs
	if fields != nil {
		data["FieldErrors"] = fields
	}
	data["Existing"] = existing
	data["Stories"] = stories
	data["JSONPreparations"] = choices
	data["ProductList"] = productNames
	return c.Render(http.StatusOK, "vendor.html", data)
}
