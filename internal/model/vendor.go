package model

import (
	"time"
)

// Point is a WGS84 coordinate resolved from a street address
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lng"`
}

// Vendor is a seller of catalog products at a physical location
type Vendor struct {
	ID                  uint      `json:"id" gorm:"primarykey"`
	Name                string    `json:"name" gorm:"type:varchar(255);not null;index"`
	Description         string    `json:"description" gorm:"type:text"`
	Hours               string    `json:"hours" gorm:"type:varchar(255)"`
	Street              string    `json:"street" gorm:"type:varchar(255);not null"`
	City                string    `json:"city" gorm:"type:varchar(100);not null"`
	State               string    `json:"state" gorm:"type:varchar(50);not null"`
	Zip                 string    `json:"zip" gorm:"type:varchar(20);not null"`
	LocationDescription string    `json:"location_description" gorm:"type:text"`
	ContactName         string    `json:"contact_name" gorm:"type:varchar(255)"`
	Phone               string    `json:"phone" gorm:"type:varchar(50)"`
	Website             string    `json:"website" gorm:"type:varchar(255)"`
	Email               string    `json:"email" gorm:"type:varchar(255)"`
	Location            Point     `json:"location" gorm:"embedded;embeddedPrefix:location_"`
	StoryID             *uint     `json:"story_id" gorm:"index"`
	Story               *Story    `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	CreatedAt           time.Time `json:"created"`
	UpdatedAt           time.Time `json:"modified"`

	VendorProducts []VendorProduct `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// VendorProduct records that a vendor sells one product prepared one way
type VendorProduct struct {
	ID                   uint               `json:"id" gorm:"primarykey"`
	VendorID             uint               `json:"vendor_id" gorm:"not null;uniqueIndex:idx_vendor_product_preparation"`
	ProductPreparationID uint               `json:"product_preparation_id" gorm:"not null;uniqueIndex:idx_vendor_product_preparation;index"`
	ProductPreparation   ProductPreparation `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt            time.Time          `json:"created"`
	UpdatedAt            time.Time          `json:"modified"`
}
