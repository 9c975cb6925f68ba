package services

import (
	"time"

	"gorm.io/gorm"

	"storefront/jwt"
)

type Services struct {
	Accounts  *AccountService
	Catalog   *CatalogService
	Carts     *CartService
	Checkout  *CheckoutService
	Orders    *OrderService
	Dashboard *DashboardService
}

func New(db *gorm.DB, tokens *jwt.Manager, cache StatsCache, now func() time.Time) *Services {
	return &Services{
		Accounts:  NewAccountService(db, tokens, now),
		Catalog:   NewCatalogService(db),
		Carts:     NewCartService(db),
		Checkout:  NewCheckoutService(db, now),
		Orders:    NewOrderService(db),
		Dashboard: NewDashboardService(db, cache, now),
	}
}
