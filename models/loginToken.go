package models

import (
	"gorm.io/gorm"
	"time"
)

type LoginToken struct {
	gorm.Model
	Token          string `gorm:"type:varchar(1024);not null"`
	ExpirationTime time.Time
	UserID         uint `gorm:"index"`
	Role           Role `gorm:"type:varchar(10)"`
}
