package handler

import (
	"errors"
	"net/http"
	"strconv"

	"whatsfresh/internal/account"
	"whatsfresh/internal/catalog"
	"whatsfresh/internal/middleware"
	"whatsfresh/pkg/blob"
	"whatsfresh/pkg/geocode"
	"whatsfresh/pkg/jwtutil"
	"whatsfresh/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler serves the public API, the staff entry pages and sign-in
type Handler struct {
	db           *gorm.DB
	catalog      *catalog.Service
	accounts     *account.Service
	geocoder     geocode.Geocoder
	blobs        blob.Store
	jwt          *jwtutil.JWTUtil
	cookieName   string
	secureCookie bool
	pageLength   int
	validator    *FormValidator
}

// Options carries the collaborators of a Handler
type Options struct {
	DB           *gorm.DB
	Geocoder     geocode.Geocoder
	Blobs        blob.Store
	JWT          *jwtutil.JWTUtil
	CookieName   string
	SecureCookie bool
	PageLength   int
}

// New builds a Handler over one store handle
func New(opts Options) *Handler {
	pageLength := opts.PageLength
	if pageLength <= 0 {
		pageLength = 20
	}
	return &Handler{
		db:           opts.DB,
		catalog:      catalog.NewService(opts.DB),
		accounts:     account.NewService(opts.DB),
		geocoder:     opts.Geocoder,
		blobs:        opts.Blobs,
		jwt:          opts.JWT,
		cookieName:   opts.CookieName,
		secureCookie: opts.SecureCookie,
		pageLength:   pageLength,
		validator:    NewFormValidator(),
	}
}

// Register mounts every route on e. Entry pages are wrapped in entryAuth.
func (h *Handler) Register(e *echo.Echo, entryAuth echo.MiddlewareFunc) {
	e.Validator = h.validator

	e.GET("/health", h.Health)

	e.GET("/login", h.LoginForm)
	e.POST("/login", h.Login)
	e.GET("/logout", h.Logout)

	e.GET("/products", h.APIListProducts)
	e.GET("/products/:id", h.APIGetProduct)
	e.GET("/stories/:id", h.APIGetStory)
	e.GET("/vendors", h.APIListVendors)
	e.GET("/vendors/:id", h.APIGetVendor)
	e.GET("/preparations/:id", h.APIGetPreparation)

	entry := e.Group("/entry", entryAuth)
	entry.GET("", h.EntryHome)
	entry.GET("/", h.EntryHome)

	entry.GET("/vendors", h.ListVendors)
	entry.GET("/vendors/new", h.VendorForm)
	entry.POST("/vendors/new", h.SaveVendor)
	entry.GET("/vendors/:id", h.VendorForm)
	entry.POST("/vendors/:id", h.SaveVendor)
	entry.DELETE("/vendors/:id", h.DeleteVendor)

	entry.GET("/products", h.ListProducts)
	entry.GET("/products/new", h.ProductForm)
	entry.POST("/products/new", h.SaveProduct)
	entry.GET("/products/:id", h.ProductForm)
	entry.POST("/products/:id", h.SaveProduct)
	entry.DELETE("/products/:id", h.DeleteProduct)

	entry.GET("/preparations", h.ListPreparations)
	entry.GET("/preparations/new", h.PreparationForm)
	entry.POST("/preparations/new", h.SavePreparation)
	entry.GET("/preparations/:id", h.PreparationForm)
	entry.POST("/preparations/:id", h.SavePreparation)

	entry.GET("/stories", h.ListStories)
	entry.GET("/stories/new", h.StoryForm)
	entry.POST("/stories/new", h.SaveStory)
	entry.GET("/stories/:id", h.StoryForm)
	entry.POST("/stories/:id", h.SaveStory)
	entry.DELETE("/stories/:id", h.DeleteStory)

	entry.GET("/images", h.ListImages)
	entry.GET("/images/new", h.ImageForm)
	entry.POST("/images/new", h.SaveImage)
	entry.GET("/images/:id", h.ImageForm)
	entry.POST("/images/:id", h.SaveImage)
	entry.DELETE("/images/:id", h.DeleteImage)
}

// EntryHome links the entry lists
func (h *Handler) EntryHome(c echo.Context) error {
	data := h.page(c, "Entry", nil)
	return c.Render(http.StatusOK, "home.html", data)
}

type crumb struct {
	URL  string
	Name string
}

var homeCrumb = crumb{URL: "/entry", Name: "Home"}

// page starts the template data shared by every entry page
func (h *Handler) page(c echo.Context, title string, crumbs []crumb) echo.Map {
	data := echo.Map{
		"Title":       title,
		"Crumbs":      crumbs,
		"FieldErrors": map[string]string{},
	}
	if staff, ok := middleware.StaffFromContext(c); ok {
		data["Staff"] = staff.Username
	}
	return data
}

// listMessage turns the saved/success flags of a list URL into a message
func listMessage(c echo.Context, entity string) string {
	switch {
	case c.QueryParam("success") == "true":
		return entity + " deleted successfully!"
	case c.QueryParam("saved") == "true":
		return entity + " saved successfully!"
	}
	return ""
}

type listItem struct {
	Name        string
	Description string
	Link        string
}

func setPage[T any](data echo.Map, p catalog.Page[T]) {
	data["Paged"] = true
	data["Number"] = p.Number
	data["NumPages"] = p.NumPages
	data["HasPrevious"] = p.HasPrevious()
	data["HasNext"] = p.HasNext()
	data["Previous"] = p.Previous()
	data["Next"] = p.Next()
}

// pathID reads the :id route parameter. New-record routes have none and
// yield zero.
func pathID(c echo.Context) (uint, bool) {
	raw := c.Param("id")
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func optionalID(raw string) (*uint, bool) {
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return nil, false
	}
	v := uint(id)
	return &v, true
}

func formatOptionalID(id *uint) string {
	if id == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*id), 10)
}

// notFoundPage renders the entry 404 page for a missing record
func (h *Handler) notFoundPage(c echo.Context, entity, raw string) error {
	data := h.page(c, entity+" Not Found", []crumb{homeCrumb})
	data["Detail"] = entity + " id " + raw + " was not found."
	return c.Render(http.StatusNotFound, "not_found.html", data)
}

// failEntry answers an entry request whose store call failed. Missing rows
// become the 404 page, anything else a 500.
func (h *Handler) failEntry(c echo.Context, entity string, err error) error {
	log := logger.FromEcho(c)
	var nf *catalog.NotFoundError
	var ref *catalog.ReferenceError
	switch {
	case errors.As(err, &nf):
		log.Info("Entry record not found", zap.String("entity", nf.Entity), zap.String("id", nf.ID))
		return h.notFoundPage(c, nf.Entity, nf.ID)
	case errors.As(err, &ref):
		log.Info("Entry references a missing record", zap.String("entity", ref.Entity), zap.Uint("id", ref.ID))
		return h.notFoundPage(c, capitalize(ref.Entity), strconv.FormatUint(uint64(ref.ID), 10))
	}
	log.Error("Entry request failed", zap.String("entity", entity), zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, "The request could not be completed.")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
