package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"storefront/models"
)

const (
	//低庫存與缺貨清單各只列出前5筆，缺貨總數見OutOfStock
	stockListLimit      = 5
	recentAdminOrders   = 10
	recentCustomerOrder = 5
)

var ErrStaleDashboard = errors.New("dashboard data is stale")

// 儲存最後一次成功的管理員儀表板資料
type StatsCache interface {
	LoadAdminStats(ctx context.Context) (*AdminStats, error)
	StoreAdminStats(ctx context.Context, stats *AdminStats) error
}

type nopStatsCache struct{}

func (nopStatsCache) LoadAdminStats(context.Context) (*AdminStats, error) { return nil, nil }
func (nopStatsCache) StoreAdminStats(context.Context, *AdminStats) error  { return nil }

type StockEntry struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Stock int    `json:"stock"`
}

type OrderSummary struct {
	ID          uint               `json:"id"`
	OrderNumber string             `json:"orderNumber"`
	Username    string             `json:"username,omitempty"`
	Status      models.OrderStatus `json:"status"`
	TotalPrice  decimal.Decimal    `json:"totalPrice"`
	CreatedAt   time.Time          `json:"createdAt"`
}

type AdminStats struct {
	TotalOrders        int64           `json:"totalOrders"`
	PendingOrders      int64           `json:"pendingOrders"`
	TotalUsers         int64           `json:"totalUsers"`
	TodayOrders        int64           `json:"todayOrders"`
	NewUsersToday      int64           `json:"newUsersToday"`
	TodayRevenue       decimal.Decimal `json:"todayRevenue"`
	WeekRevenue        decimal.Decimal `json:"weekRevenue"`
	MonthRevenue       decimal.Decimal `json:"monthRevenue"`
	OutOfStock         int64           `json:"outOfStock"`
	LowStockProducts   []StockEntry    `json:"lowStockProducts"`
	OutOfStockProducts []StockEntry    `json:"outOfStockProducts"`
	RecentOrders       []OrderSummary  `json:"recentOrders"`
	GeneratedAt        time.Time       `json:"generatedAt"`
	Stale              bool            `json:"stale"`
}

type CustomerStats struct {
	TotalOrders   int64           `json:"totalOrders"`
	PendingOrders int64           `json:"pendingOrders"`
	TotalSpent    decimal.Decimal `json:"totalSpent"`
	RecentOrders  []OrderSummary  `json:"recentOrders"`
}

type DashboardService struct {
	db    *gorm.DB
	cache StatsCache
	now   func() time.Time
}

func NewDashboardService(db *gorm.DB, cache StatsCache, now func() time.Time) *DashboardService {
	if cache == nil {
		cache = nopStatsCache{}
	}
	if now == nil {
		now = time.Now
	}
	return &DashboardService{db: db, cache: cache, now: now}
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func sumRevenue(db *gorm.DB, scope func(*gorm.DB) *gorm.DB) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := db.Model(&models.Order{}).
		Scopes(scope).
		Where("status IN ?", models.RevenueStatuses).
		Select("COALESCE(SUM(total_price), 0) AS total").
		Scan(&row).
		Error
	return row.Total, err
}

func since(t time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("created_at >= ?", t)
	}
}

func stockEntries(db *gorm.DB, where string, args ...interface{}) ([]StockEntry, error) {
	var entries []StockEntry
	err := db.Model(&models.Product{}).
		Select("id", "name", "slug", "stock").
		Where("is_active = ?", true).
		Where(where, args...).
		Order("stock").
		Order("id").
		Limit(stockListLimit).
		Scan(&entries).
		Error
	return entries, err
}

func recentOrders(db *gorm.DB, userID uint, limit int) ([]OrderSummary, error) {
	query := db.Preload("User").Order("created_at DESC").Order("id DESC").Limit(limit)
	if userID != 0 {
		query = query.Where("user_id = ?", userID)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}

	summaries := make([]OrderSummary, 0, len(orders))
	for _, order := range orders {
		summaries = append(summaries, OrderSummary{
			ID:          order.ID,
			OrderNumber: order.OrderNumber,
			Username:    order.User.Username,
			Status:      order.Status,
			TotalPrice:  order.TotalPrice,
			CreatedAt:   order.CreatedAt,
		})
	}
	return summaries, nil
}

func (s *DashboardService) collectAdminStats(ctx context.Context) (*AdminStats, error) {
	now := s.now()
	today := startOfDay(now)
	weekAgo := today.AddDate(0, 0, -7)
	monthAgo := today.AddDate(0, 0, -30)

	stats := &AdminStats{GeneratedAt: now}
	g, ctx := errgroup.WithContext(ctx)
	db := func() *gorm.DB { return s.db.WithContext(ctx) }

	g.Go(func() error {
		return db().Model(&models.Order{}).Count(&stats.TotalOrders).Error
	})
	g.Go(func() error {
		return db().Model(&models.Order{}).Where("status = ?", models.OrderStatusPending).Count(&stats.PendingOrders).Error
	})
	g.Go(func() error {
		return db().Model(&models.User{}).Count(&stats.TotalUsers).Error
	})
	g.Go(func() error {
		return db().Model(&models.Order{}).Scopes(since(today)).Count(&stats.TodayOrders).Error
	})
	g.Go(func() error {
		return db().Model(&models.User{}).Scopes(since(today)).Count(&stats.NewUsersToday).Error
	})
	g.Go(func() (err error) {
		stats.TodayRevenue, err = sumRevenue(db(), since(today))
		return err
	})
	g.Go(func() (err error) {
		stats.WeekRevenue, err = sumRevenue(db(), since(weekAgo))
		return err
	})
	g.Go(func() (err error) {
		stats.MonthRevenue, err = sumRevenue(db(), since(monthAgo))
		return err
	})
	g.Go(func() error {
		return db().Model(&models.Product{}).Where("is_active = ? AND stock = ?", true, 0).Count(&stats.OutOfStock).Error
	})
	g.Go(func() (err error) {
		stats.LowStockProducts, err = stockEntries(db(), "stock > ? AND stock < ?", 0, models.LowStockThreshold)
		return err
	})
	g.Go(func() (err error) {
		stats.OutOfStockProducts, err = stockEntries(db(), "stock = ?", 0)
		return err
	})
	g.Go(func() (err error) {
		stats.RecentOrders, err = recentOrders(db(), 0, recentAdminOrders)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

// 管理員儀表板，查詢失敗時回傳最後一次成功的資料並標記Stale，同時回傳錯誤
func (s *DashboardService) AdminDashboard(ctx context.Context, actor Actor) (*AdminStats, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	stats, err := s.collectAdminStats(ctx)
	if err == nil {
		if cacheErr := s.cache.StoreAdminStats(ctx, stats); cacheErr != nil {
			log.Printf("無法儲存儀表板資料: %v", cacheErr)
		}
		return stats, nil
	}

	cached, cacheErr := s.cache.LoadAdminStats(ctx)
	if cacheErr != nil {
		log.Printf("無法讀取儀表板快取: %v", cacheErr)
	}
	if cached == nil {
		return nil, fmt.Errorf("admin dashboard: %w", err)
	}
	cached.Stale = true
	return cached, fmt.Errorf("%w: %v", ErrStaleDashboard, err)
}

func (s *DashboardService) CustomerDashboard(ctx context.Context, userID uint) (*CustomerStats, error) {
	db := s.db.WithContext(ctx)
	stats := &CustomerStats{}

	byUser := func(tx *gorm.DB) *gorm.DB {
		return tx.Where("user_id = ?", userID)
	}

	if err := db.Model(&models.Order{}).Scopes(byUser).Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}
	err := db.Model(&models.Order{}).
		Scopes(byUser).
		Where("status = ?", models.OrderStatusPending).
		Count(&stats.PendingOrders).
		Error
	if err != nil {
		return nil, err
	}
	if stats.TotalSpent, err = sumRevenue(db, byUser); err != nil {
		return nil, err
	}
	if stats.RecentOrders, err = recentOrders(db, userID, recentCustomerOrder); err != nil {
		return nil, err
	}
	return stats, nil
}
