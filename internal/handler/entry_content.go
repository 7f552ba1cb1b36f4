package handler

import (
	"net/http"
	"strconv"
	"strings"

	"whatsfresh/internal/catalog"
	"whatsfresh/internal/model"
	"whatsfresh/pkg/logger"
	"whatsfresh/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type preparationForm struct {
	Name           string `form:"name" validate:"required,max=255"`
	Description    string `form:"description"`
	AdditionalInfo string `form:"additional_info"`
}

type storyForm struct {
	Name      string `form:"name" validate:"required,max=255"`
	History   string `form:"history"`
	Facts     string `form:"facts"`
	Buying    string `form:"buying"`
	Preparing string `form:"preparing"`
	Products  string `form:"products"`
	Season    string `form:"season"`
}

// ListPreparations handles GET /entry/preparations
func (h *Handler) ListPreparations(c echo.Context) error {
	preparations, err := h.catalog.ListPreparations(c.Request().Context())
	if err != nil {
		return h.failEntry(c, "preparation", err)
	}

	items := make([]listItem, 0, len(preparations))
	for _, p := range preparations {
		items = append(items, listItem{Name: p.Name, Description: p.Description, Link: "/entry/preparations/" + strconv.FormatUint(uint64(p.ID), 10)})
	}

	data := h.page(c, "All Preparations", []crumb{homeCrumb})
	data["Message"] = listMessage(c, "Preparation")
	data["NewURL"] = "/entry/preparations/new"
	data["NewText"] = "New Preparation"
	data["ItemClassification"] = "preparation"
	data["Items"] = items
	return c.Render(http.StatusOK, "list.html", data)
}

// PreparationForm handles GET /entry/preparations/new and /entry/preparations/:id
func (h *Handler) PreparationForm(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return h.notFoundPage(c, "Preparation", c.Param("id"))
	}
	form := &preparationForm{}
	name := ""
	if id != 0 {
		p, err := h.catalog.GetPreparation(c.Request().Context(), id)
		if err != nil {
			return h.failEntry(c, "preparation", err)
		}
		form = &preparationForm{Name: p.Name, Description: p.Description, AdditionalInfo: p.AdditionalInfo}
		name = p.Name
	}
	return h.renderPreparationForm(c, id, name, form, nil)
}

// SavePreparation handles POST /entry/preparations/new and /entry/preparations/:id
func (h *Handler) SavePreparation(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	id, ok := pathID(c)
	if !ok {
		return h.notFoundPage(c, "Preparation", c.Param("id"))
	}
	name := ""
	if id != 0 {
		current, err := h.catalog.GetPreparation(ctx, id)
		if err != nil {
			return h.failEntry(c, "preparation", err)
		}
		name = current.Name
	}

	var form preparationForm
	if err := c.Bind(&form); err != nil {
		log.Warn("Failed to bind preparation form", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form submission")
	}
	if fields := fieldErrors(c.Validate(&form)); len(fields) > 0 {
		return h.renderPreparationForm(c, id, name, &form, fields)
	}

	saved, err := h.catalog.SavePreparation(ctx, model.Preparation{
		ID:             id,
		Name:           strings.TrimSpace(form.Name),
		Description:    form.Description,
		AdditionalInfo: form.AdditionalInfo,
	})
	if err != nil {
		return h.failEntry(c, "preparation", err)
	}

	prometheus.RecordEntryOperation("preparation", operationName(id))
	log.Info("Preparation saved", zap.Uint("preparation_id", saved.ID), zap.String("preparation_name", saved.Name))
	return c.Redirect(http.StatusFound, "/entry/preparations?saved=true")
}

func (h *Handler) renderPreparationForm(c echo.Context, id uint, name string, form *preparationForm, fields map[string]string) error {
	title := "New Preparation"
	postURL := "/entry/preparations/new"
	if id != 0 {
		title = "Edit " + name
		postURL = "/entry/preparations/" + strconv.FormatUint(uint64(id), 10)
	}
	data := h.page(c, title, []crumb{homeCrumb, {URL: "/entry/preparations", Name: "Preparations"}})
	data["Message"] = "Fields marked with bold are required."
	data["PostURL"] = postURL
	data["Form"] = form
	if fields != nil {
		data["FieldErrors"] = fields
	}
	return c.Render(http.StatusOK, "preparation.html", data)
}

// ListStories handles GET /entry/stories
func (h *Handler) ListStories(c echo.Context) error {
	page, err := h.catalog.ListStoriesPage(c.Request().Context(), c.QueryParam("page"), h.pageLength)
	if err != nil {
		return h.failEntry(c, "story", err)
	}

	items := make([]listItem, 0, len(page.Items))
	for _, s := range page.Items {
		items = append(items, listItem{Name: s.Name, Description: s.History, Link: "/entry/stories/" + strconv.FormatUint(uint64(s.ID), 10)})
	}

	data := h.page(c, "All Stories", []crumb{homeCrumb})
	data["Message"] = listMessage(c, "Story")
	data["NewURL"] = "/entry/stories/new"
	data["NewText"] = "New Story"
	data["ItemClassification"] = "story"
	data["Items"] = items
	setPage(data, page)
	return c.Render(http.StatusOK, "list.html", data)
}

// StoryForm handles GET /entry/stories/new and /entry/stories/:id
func (h *Handler) StoryForm(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return h.notFoundPage(c, "Story", c.Param("id"))
	}
	form := &storyForm{}
	name := ""
	if id != 0 {
		s, err := h.catalog.GetStory(c.Request().Context(), id)
		if err != nil {
			return h.failEntry(c, "story", err)
		}
		form = &storyForm{
			Name: s.Name, History: s.History, Facts: s.Facts, Buying: s.Buying,
			Preparing: s.Preparing, Products: s.Products, Season: s.Season,
		}
		name = s.Name
	}
	return h.renderStoryForm(c, id, name, form, nil)
}

// SaveStory handles POST /entry/stories/new and /entry/stories/:id
func (h *Handler) SaveStory(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	id, ok := pathID(c)
	if !ok {
		return h.notFoundPage(c, "Story", c.Param("id"))
	}
	name := ""
	if id != 0 {
		current, err := h.catalog.GetStory(ctx, id)
		if err != nil {
			return h.failEntry(c, "story", err)
		}
		name = current.Name
	}

	var form storyForm
	if err := c.Bind(&form); err != nil {
		log.Warn("Failed to bind story form", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form submission")
	}
	if fields := fieldErrors(c.Validate(&form)); len(fields) > 0 {
		return h.renderStoryForm(c, id, name, &form, fields)
	}

	saved, err := h.catalog.SaveStory(ctx, model.Story{
		ID:        id,
		Name:      strings.TrimSpace(form.Name),
		History:   form.History,
		Facts:     form.Facts,
		Buying:    form.Buying,
		Preparing: form.Preparing,
		Products:  form.Products,
		Season:    form.Season,
	})
	if err != nil {
		return h.failEntry(c, "story", err)
	}

	prometheus.RecordEntryOperation("story", operationName(id))
	log.Info("Story saved", zap.Uint("story_id", saved.ID), zap.String("story_name", saved.Name))
	return c.Redirect(http.StatusFound, "/entry/stories?saved=true")
}

// DeleteStory handles DELETE /entry/stories/:id
func (h *Handler) DeleteStory(c echo.Context) error {
	log := logger.FromEcho(c)

	id, ok := pathID(c)
	if !ok {
		return c.NoContent(http.StatusNotFound)
	}
	if err := h.catalog.DeleteStory(c.Request().Context(), id); err != nil {
		if catalog.IsNotFound(err) {
			return c.NoContent(http.StatusNotFound)
		}
		log.Error("Failed to delete story", zap.Uint("story_id", id), zap.Error(err))
		return c.NoContent(http.StatusInternalServerError)
	}
	prometheus.RecordEntryOperation("story", "delete")
	log.Info("Story deleted", zap.Uint("story_id", id))
	return c.NoContent(http.StatusOK)
}

func (h *Handler) renderStoryForm(c echo.Context, id uint, name string, form *storyForm, fields map[string]string) error {
	title := "Add a Story"
	message := msgRequiredFields
	postURL := "/entry/stories/new"
	if id != 0 {
		title = "Edit " + name
		message = ""
		postURL = "/entry/stories/" + strconv.FormatUint(uint64(id), 10)
	}
	data := h.page(c, title, []crumb{homeCrumb, {URL: "/entry/stories", Name: "Stories"}})
	data["Message"] = message
	data["PostURL"] = postURL
	data["Form"] = form
	if fields != nil {
		data["FieldErrors"] = fields
	}
	return c.Render(http.StatusOK, "story.html", data)
}

func operationName(id uint) string {
	if id == 0 {
		return "create"
	}
	return "update"
}
