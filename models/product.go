package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const LowStockThreshold = 10

type Product struct {
	gorm.Model
	CategoryID  uint `gorm:"index;not null"`
	Category    Category
	Name        string          `gorm:"size:200;not null"`
	Slug        string          `gorm:"size:200;uniqueIndex;not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(12,0);not null"`
	Stock       int             `gorm:"not null;check:chk_products_stock,stock >= 0"`
	ImageURL    string
	IsActive    bool `gorm:"index;not null"`
}

func (p *Product) InStock() bool {
	return p.Stock > 0
}

// 庫存大於0但低於門檻
func (p *Product) LowStock() bool {
	return p.Stock > 0 && p.Stock < LowStockThreshold
}
