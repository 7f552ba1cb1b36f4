package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"whatsfresh/internal/catalog"
	"whatsfresh/pkg/logger"
	"whatsfresh/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type productListResponse struct {
	Error    *APIError     `json:"error"`
	Products []productJSON `json:"products"`
}

type vendorListResponse struct {
	Error   *APIError    `json:"error"`
	Vendors []vendorJSON `json:"vendors"`
}

// APIListProducts handles GET /products
func (h *Handler) APIListProducts(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	products, err := h.catalog.ListProducts(c.Request().Context())
	if err != nil {
		log.Error("Failed to list products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": serverError()})
	}
	if len(products) == 0 {
		log.Info("No products to list")
		prometheus.RecordAPINotFound("product")
		return c.JSON(http.StatusNotFound, echo.Map{"error": emptyListError("Products")})
	}

	resp := productListResponse{Error: noError(), Products: make([]productJSON, 0, len(products))}
	for i := range products {
		resp.Products = append(resp.Products, productToJSON(&products[i], nil))
	}
	log.Info("Products retrieved successfully", zap.Int("count", len(products)))
	return c.JSON(http.StatusOK, resp)
}

// APIListVendors handles GET /vendors
func (h *Handler) APIListVendors(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	vendors, err := h.catalog.ListVendors(c.Request().Context())
	if err != nil {
		log.Error("Failed to list vendors", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": serverError()})
	}
	if len(vendors) == 0 {
		log.Info("No vendors to list")
		prometheus.RecordAPINotFound("vendor")
		return c.JSON(http.StatusNotFound, echo.Map{"error": emptyListError("Vendors")})
	}

	resp := vendorListResponse{Error: noError(), Vendors: make([]vendorJSON, 0, len(vendors))}
	for i := range vendors {
		resp.Vendors = append(resp.Vendors, vendorToJSON(&vendors[i], nil))
	}
	log.Info("Vendors retrieved successfully", zap.Int("count", len(vendors)))
	return c.JSON(http.StatusOK, resp)
}

// APIGetProduct handles GET /products/:id
func (h *Handler) APIGetProduct(c echo.Context) error {
	return apiDetail(c, "Product", h.catalog.GetProduct, productToJSON)
}

// APIGetStory handles GET /stories/:id
func (h *Handler) APIGetStory(c echo.Context) error {
	return apiDetail(c, "Story", h.catalog.GetStory, storyToJSON)
}

// APIGetVendor handles GET /vendors/:id
func (h *Handler) APIGetVendor(c echo.Context) error {
	return apiDetail(c, "Vendor", h.catalog.GetVendor, vendorToJSON)
}

// APIGetPreparation handles GET /preparations/:id
func (h *Handler) APIGetPreparation(c echo.Context) error {
	return apiDetail(c, "Preparation", h.catalog.GetPreparation, preparationToJSON)
}

// apiDetail answers a single-record lookup. The record is serialized with an
// empty error block, a missing record with the not found envelope alone.
func apiDetail[T any, J any](c echo.Context, entity string, load func(context.Context, uint) (*T, error), toJSON func(*T, *APIError) J) error {
	log := logger.FromEcho(c)
	raw := c.Param("id")

	var rec *T
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		err = &catalog.NotFoundError{Entity: entity, ID: raw}
	} else {
		start := time.Now()
		rec, err = load(c.Request().Context(), uint(id))
		prometheus.TrackDBOperation("query")(start)
	}

	if err != nil {
		if !catalog.IsNotFound(err) {
			log.Error("Failed to load record", zap.String("entity", entity), zap.String("id", raw), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": serverError()})
		}
		log.Info("Record not found", zap.String("entity", entity), zap.String("id", raw))
		prometheus.RecordAPINotFound(strings.ToLower(entity))
		return c.JSON(http.StatusNotFound, echo.Map{"error": notFoundError(entity, raw, err)})
	}

	log.Info("Record retrieved successfully", zap.String("entity", entity), zap.String("id", raw))
	return c.JSON(http.StatusOK, toJSON(rec, noError()))
}
