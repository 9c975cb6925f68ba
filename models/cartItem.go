package models

import (
	"github.com/shopspring/decimal"
	"time"
)

// 購物車商品直接刪除，不使用軟刪除，避免(cart_id, product_id)唯一索引衝突
type CartItem struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	CartID    uint `gorm:"uniqueIndex:idx_cart_product;not null"`
	ProductID uint `gorm:"uniqueIndex:idx_cart_product;not null"`
	Product   Product
	Quantity  int `gorm:"not null"`
}

func (i *CartItem) Subtotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
