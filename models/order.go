package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusShipped,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// 訂單狀態允許的轉換
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:    {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped: {OrderStatusCompleted},
}

// 計入營收的訂單狀態
var RevenueStatuses = []OrderStatus{OrderStatusPaid, OrderStatusCompleted}

func (s OrderStatus) Valid() bool {
	for _, status := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(orderTransitions[s]) == 0
}

func (s OrderStatus) Label() string {
	switch s {
	case OrderStatusPending:
		return "Pending"
	case OrderStatusPaid:
		return "Paid"
	case OrderStatusShipped:
		return "Shipped"
	case OrderStatusCompleted:
		return "Completed"
	case OrderStatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

type PaymentMethod string

const (
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentEWallet      PaymentMethod = "ewallet"
	PaymentCOD          PaymentMethod = "cod"
	PaymentCreditCard   PaymentMethod = "credit_card"
)

var PaymentMethods = []PaymentMethod{
	PaymentBankTransfer,
	PaymentEWallet,
	PaymentCOD,
	PaymentCreditCard,
}

func (m PaymentMethod) Valid() bool {
	for _, method := range PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}

func (m PaymentMethod) Label() string {
	switch m {
	case PaymentBankTransfer:
		return "Bank Transfer"
	case PaymentEWallet:
		return "E-Wallet"
	case PaymentCOD:
		return "COD (Cash on Delivery)"
	case PaymentCreditCard:
		return "Credit Card"
	}
	return string(m)
}

type Order struct {
	gorm.Model
	UserID          uint `gorm:"index;not null"`
	User            User
	OrderNumber     string          `gorm:"size:20;uniqueIndex;not null"`
	Status          OrderStatus     `gorm:"type:varchar(20);index;not null"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(20);not null"`
	ShippingAddress string          `gorm:"type:text;not null"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentReceipt  string
	Items           []OrderItem `gorm:"foreignKey:OrderID"`
}
