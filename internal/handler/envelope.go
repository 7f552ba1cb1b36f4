package handler

import (
	"errors"
	"fmt"
	"time"

	"whatsfresh/internal/catalog"
	"whatsfresh/internal/model"
)

// APIError is the error block carried by every public API response. Unset
// fields serialize as null.
type APIError struct {
	Status bool    `json:"status"`
	Name   *string `json:"name"`
	Text   *string `json:"text"`
	Debug  *string `json:"debug"`
	Level  *string `json:"level"`
}

func str(s string) *string { return &s }

func noError() *APIError { return &APIError{} }

// notFoundError describes a lookup of entity by raw id that matched nothing
func notFoundError(entity, raw string, err error) APIError {
	return APIError{
		Status: true,
		Name:   str(entity + " Not Found"),
		Text:   str(fmt.Sprintf("%s id %s was not found.", entity, raw)),
		Debug:  str(fmt.Sprintf("%s: %s", errorKind(err), err.Error())),
		Level:  str("Error"),
	}
}

// emptyListError describes a collection with no members
func emptyListError(plural string) APIError {
	return APIError{
		Status: true,
		Name:   str("No " + plural),
		Text:   str(fmt.Sprintf("No %s found", plural)),
		Debug:  str(""),
		Level:  str("Error"),
	}
}

func serverError() APIError {
	return APIError{
		Status: true,
		Name:   str("Server Error"),
		Text:   str("The request could not be completed."),
		Debug:  str(""),
		Level:  str("Error"),
	}
}

func errorKind(err error) string {
	var nf *catalog.NotFoundError
	var ref *catalog.ReferenceError
	switch {
	case errors.As(err, &nf):
		return "NotFoundError"
	case errors.As(err, &ref):
		return "ReferenceError"
	}
	return "Error"
}

// formatTimestamp renders t in UTC as "2006-01-02 15:04:05.000000+00:00",
// leaving out the fraction when there are no microseconds.
func formatTimestamp(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond()/1000 == 0 {
		return t.Format("2006-01-02 15:04:05-07:00")
	}
	return t.Format("2006-01-02 15:04:05.000000-07:00")
}

type productJSON struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Variety     string    `json:"variety"`
	AltName     string    `json:"alt_name"`
	Description string    `json:"description"`
	Origin      string    `json:"origin"`
	Season      string    `json:"season"`
	Available   *bool     `json:"available"`
	MarketPrice string    `json:"market_price"`
	Link        string    `json:"link"`
	Image       *string   `json:"image"`
	StoryID     *uint     `json:"story_id"`
	Created     string    `json:"created"`
	Modified    string    `json:"modified"`
	Error       *APIError `json:"error,omitempty"`
}

func productToJSON(p *model.Product, apiErr *APIError) productJSON {
	return productJSON{
		ID:          p.ID,
		Name:        p.Name,
		Variety:     p.Variety,
		AltName:     p.AltName,
		Description: p.Description,
		Origin:      p.Origin,
		Season:      p.Season,
		Available:   p.Available,
		MarketPrice: p.MarketPrice,
		Link:        p.Link,
		Image:       p.ImagePath(),
		StoryID:     p.StoryID,
		Created:     formatTimestamp(p.CreatedAt),
		Modified:    formatTimestamp(p.UpdatedAt),
		Error:       apiErr,
	}
}

type storyJSON struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	History   string    `json:"history"`
	Facts     string    `json:"facts"`
	Buying    string    `json:"buying"`
	Preparing string    `json:"preparing"`
	Products  string    `json:"products"`
	Season    string    `json:"season"`
	Created   string    `json:"created"`
	Modified  string    `json:"modified"`
	Error     *APIError `json:"error,omitempty"`
}

func storyToJSON(s *model.Story, apiErr *APIError) storyJSON {
	return storyJSON{
		ID:        s.ID,
		Name:      s.Name,
		History:   s.History,
		Facts:     s.Facts,
		Buying:    s.Buying,
		Preparing: s.Preparing,
		Products:  s.Products,
		Season:    s.Season,
		Created:   formatTimestamp(s.CreatedAt),
		Modified:  formatTimestamp(s.UpdatedAt),
		Error:     apiErr,
	}
}

type preparationJSON struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	AdditionalInfo string    `json:"additional_info"`
	Created        string    `json:"created"`
	Modified       string    `json:"modified"`
	Error          *APIError `json:"error,omitempty"`
}

func preparationToJSON(p *model.Preparation, apiErr *APIError) preparationJSON {
	return preparationJSON{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		AdditionalInfo: p.AdditionalInfo,
		Created:        formatTimestamp(p.CreatedAt),
		Modified:       formatTimestamp(p.UpdatedAt),
		Error:          apiErr,
	}
}

type vendorProductJSON struct {
	ProductID     uint   `json:"product_id"`
	PreparationID uint   `json:"preparation_id"`
	Name          string `json:"name"`
	Preparation   string `json:"preparation"`
}

type vendorJSON struct {
	ID                  uint                `json:"id"`
	Name                string              `json:"name"`
	Description         string              `json:"description"`
	Hours               string              `json:"hours"`
	Street              string              `json:"street"`
	City                string              `json:"city"`
	State               string              `json:"state"`
	Zip                 string              `json:"zip"`
	LocationDescription string              `json:"location_description"`
	ContactName         string              `json:"contact_name"`
	Phone               string              `json:"phone"`
	Website             string              `json:"website"`
	Email               string              `json:"email"`
	Lat                 float64             `json:"lat"`
	Lng                 float64             `json:"lng"`
	StoryID             *uint               `json:"story_id"`
	Products            []vendorProductJSON `json:"products"`
	Created             string              `json:"created"`
	Modified            string              `json:"modified"`
	Error               *APIError           `json:"error,omitempty"`
}

func vendorToJSON(v *model.Vendor, apiErr *APIError) vendorJSON {
	products := make([]vendorProductJSON, 0, len(v.VendorProducts))
	for _, vp := range v.VendorProducts {
		pp := vp.ProductPreparation
		products = append(products, vendorProductJSON{
			ProductID:     pp.ProductID,
			PreparationID: pp.PreparationID,
			Name:          pp.Product.Name,
			Preparation:   pp.Preparation.Name,
		})
	}
	return vendorJSON{
		ID:                  v.ID,
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
		Lat:                 v.Location.Lat,
		Lng:                 v.Location.Lon,
		StoryID:             v.StoryID,
		Products:            products,
		Created:             formatTimestamp(v.CreatedAt),
		Modified:            formatTimestamp(v.UpdatedAt),
		Error:               apiErr,
	}
}
