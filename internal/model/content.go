package model

import (
	"time"
)

// Story holds the background content shown alongside products and vendors
type Story struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	History   string    `json:"history" gorm:"type:text"`
	Facts     string    `json:"facts" gorm:"type:text"`
	Buying    string    `json:"buying" gorm:"type:text"`
	Preparing string    `json:"preparing" gorm:"type:text"`
	Products  string    `json:"products" gorm:"type:text"`
	Season    string    `json:"season" gorm:"type:text"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"modified"`
}

// Image is an uploaded picture. Image holds the public path of the blob.
type Image struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Image     string    `json:"image" gorm:"type:varchar(500);not null"`
	BlobKey   string    `json:"-" gorm:"type:varchar(500);not null"`
	Name      string    `json:"name" gorm:"type:varchar(255)"`
	Caption   string    `json:"caption" gorm:"type:text"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"modified"`
}
