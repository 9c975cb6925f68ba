package models

import "gorm.io/gorm"

const DefaultCategoryIcon = "fa-box"

type Category struct {
	gorm.Model
	Name      string `gorm:"size:100;not null"`
	Slug      string `gorm:"size:100;uniqueIndex;not null"`
	IconClass string `gorm:"size:50;not null"`
}
