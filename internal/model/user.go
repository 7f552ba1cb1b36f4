package model

import (
	"time"
)

// Group names that may use the data entry pages
const (
	GroupAdministration = "Administration Users"
	GroupDataEntry      = "Data Entry Users"
)

// User is a staff account for the data entry pages
type User struct {
	ID           uint      `json:"id" gorm:"primarykey"`
	Username     string    `json:"username" gorm:"type:varchar(150);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	Active       bool      `json:"active" gorm:"not null"`
	Groups       []Group   `json:"groups" gorm:"many2many:user_groups;"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GroupNames returns the names of the groups the user belongs to
func (u *User) GroupNames() []string {
	names := make([]string, 0, len(u.Groups))
	for _, g := range u.Groups {
		names = append(names, g.Name)
	}
	return names
}

// Group is a named set of users
type Group struct {
	ID   uint   `json:"id" gorm:"primarykey"`
	Name string `json:"name" gorm:"type:varchar(150);uniqueIndex;not null"`
}
