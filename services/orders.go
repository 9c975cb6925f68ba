package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"storefront/models"
)

const (
	customerOrderPageSize = 10
	adminOrderPageSize    = 20
)

type OrderService struct {
	db *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

type OrderList struct {
	Orders     []models.Order
	TotalCount int64
	Page       Page
}

func listOrders(db *gorm.DB, scope func(*gorm.DB) *gorm.DB, page Page) (*OrderList, error) {
	var total int64
	if err := db.Model(&models.Order{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, err
	}

	var orders []models.Order
	err := db.
		Scopes(scope, page.apply).
		Preload("User").
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).
		Error
	if err != nil {
		return nil, err
	}
	return &OrderList{Orders: orders, TotalCount: total, Page: page}, nil
}

// 查詢使用者自己的訂單列表
func (s *OrderService) ListForUser(ctx context.Context, userID uint, page Page) (*OrderList, error) {
	return listOrders(s.db.WithContext(ctx), func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}, page.normalize(customerOrderPageSize))
}

type AdminOrderFilter struct {
	Status models.OrderStatus
	Query  string
	Page   Page
}

// 管理員查詢所有訂單，可依狀態篩選，關鍵字比對訂單編號或使用者名稱
func (s *OrderService) AdminList(ctx context.Context, actor Actor, filter AdminOrderFilter) (*OrderList, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, validationError("unknown order status %q", filter.Status)
	}

	return listOrders(s.db.WithContext(ctx), func(db *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		if q := strings.TrimSpace(filter.Query); q != "" {
			pattern := likePattern(q)
			db = db.Where(
				"LOWER(order_number) LIKE ? OR user_id IN (?)",
				pattern,
				s.db.Model(&models.User{}).Select("id").Where("LOWER(username) LIKE ?", pattern),
			)
		}
		return db
	}, filter.Page.normalize(adminOrderPageSize))
}

// 管理員可查看所有訂單，一般使用者只能查看自己的訂單
func (s *OrderService) Get(ctx context.Context, actor Actor, orderID uint) (*models.Order, error) {
	if err := requireLogin(actor); err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Preload("User").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).
		Preload("Items.Product", func(db *gorm.DB) *gorm.DB {
			return db.Unscoped()
		}).
		Where("id = ?", orderID)
	if !actor.IsAdmin() {
		query = query.Where("user_id = ?", actor.UserID)
	}

	var order models.Order
	if err := query.First(&order).Error; err != nil {
		return nil, wrapLookup(err, "order")
	}
	return &order, nil
}

// 更新單筆訂單狀態，只允許合法的狀態轉換
func (s *OrderService) UpdateStatus(ctx context.Context, actor Actor, orderID uint, status models.OrderStatus) (*models.Order, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, validationError("unknown order status %q", status)
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			return wrapLookup(err, "order")
		}
		if !order.Status.CanTransitionTo(status) {
			return invalidTransition(order.Status, status)
		}

		result := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Update("status", status)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return conflictError("order %s was modified concurrently", order.OrderNumber)
		}
		order.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

type BulkStatusResult struct {
	Updated  []uint
	Skipped  []uint
	NotFound []uint
	Status   models.OrderStatus
}

// 批次更新訂單狀態，不合法的轉換會略過並回報
func (s *OrderService) BulkUpdateStatus(ctx context.Context, actor Actor, orderIDs []uint, status models.OrderStatus) (*BulkStatusResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, validationError("unknown order status %q", status)
	}
	if len(orderIDs) == 0 {
		return nil, validationError("no orders selected")
	}

	result := &BulkStatusResult{Status: status}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var orders []models.Order
		if err := tx.Where("id IN ?", orderIDs).Find(&orders).Error; err != nil {
			return err
		}

		found := make(map[uint]models.OrderStatus, len(orders))
		for _, order := range orders {
			found[order.ID] = order.Status
		}

		//依目前狀態分組，同一狀態一次更新
		byStatus := make(map[models.OrderStatus][]uint)
		seen := make(map[uint]bool, len(orderIDs))
		for _, id := range orderIDs {
			if seen[id] {
				continue
			}
			seen[id] = true

			current, ok := found[id]
			switch {
			case !ok:
				result.NotFound = append(result.NotFound, id)
			case current.CanTransitionTo(status):
				byStatus[current] = append(byStatus[current], id)
				result.Updated = append(result.Updated, id)
			default:
				result.Skipped = append(result.Skipped, id)
			}
		}

		for current, ids := range byStatus {
			err := tx.Model(&models.Order{}).
				Where("id IN ? AND status = ?", ids, current).
				Update("status", status).
				Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// 上傳付款證明，訂單擁有者或管理員可操作
func (s *OrderService) AttachReceipt(ctx context.Context, actor Actor, orderID uint, receipt string) (*models.Order, error) {
	if err := requireLogin(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(receipt) == "" {
		return nil, validationError("payment receipt is required")
	}

	var order models.Order
	query := s.db.WithContext(ctx).Where("id = ?", orderID)
	if !actor.IsAdmin() {
		query = query.Where("user_id = ?", actor.UserID)
	}
	if err := query.First(&order).Error; err != nil {
		return nil, wrapLookup(err, "order")
	}

	err := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", order.ID).
		Update("payment_receipt", receipt).
		Error
	if err != nil {
		return nil, err
	}
	order.PaymentReceipt = receipt
	return &order, nil
}
