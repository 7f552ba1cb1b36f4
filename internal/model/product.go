package model

import (
	"time"
)

// Product represents a catalog food product
type Product struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null;index"`
	Variety     string    `json:"variety" gorm:"type:varchar(255)"`
	AltName     string    `json:"alt_name" gorm:"type:varchar(255)"`
	Description string    `json:"description" gorm:"type:text"`
	Origin      string    `json:"origin" gorm:"type:text"`
	Season      string    `json:"season" gorm:"type:varchar(255)"`
	Available   *bool     `json:"available"`
	MarketPrice string    `json:"market_price" gorm:"type:varchar(255)"`
	Link        string    `json:"link" gorm:"type:text"`
	ImageID     *uint     `json:"image_id" gorm:"index"`
	Image       *Image    `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	StoryID     *uint     `json:"story_id" gorm:"index"`
	Story       *Story    `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	CreatedAt   time.Time `json:"created"`
	UpdatedAt   time.Time `json:"modified"`

	ProductPreparations []ProductPreparation `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// ImagePath returns the stored path of the product image, if one is loaded
func (p *Product) ImagePath() *string {
	if p.Image == nil {
		return nil
	}
	path := p.Image.Image
	return &path
}

// ProductPreparation pairs a product with one way of preparing it
type ProductPreparation struct {
	ID            uint        `json:"id" gorm:"primarykey"`
	ProductID     uint        `json:"product_id" gorm:"not null;uniqueIndex:idx_product_preparation"`
	Product       Product     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	PreparationID uint        `json:"preparation_id" gorm:"not null;uniqueIndex:idx_product_preparation;index"`
	Preparation   Preparation `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time   `json:"created"`
	UpdatedAt     time.Time   `json:"modified"`
}

// Preparation is a way of preparing a product, e.g. "Frozen" or "Smoked"
type Preparation struct {
	ID             uint      `json:"id" gorm:"primarykey"`
	Name           string    `json:"name" gorm:"type:varchar(255);not null"`
	Description    string    `json:"description" gorm:"type:text"`
	AdditionalInfo string    `json:"additional_info" gorm:"type:text"`
	CreatedAt      time.Time `json:"created"`
	UpdatedAt      time.Time `json:"modified"`
}
