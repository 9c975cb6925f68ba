package services

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/models"
)

type CartService struct {
	db *gorm.DB
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

func findOrCreateCart(db *gorm.DB, userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := db.
		Where(models.Cart{UserID: userID}).
		FirstOrCreate(&cart).
		Error
	if isDuplicateKey(err) {
		//同時建立購物車時，改為讀取已建立的購物車
		err = db.Where("user_id = ?", userID).First(&cart).Error
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func loadCartItems(db *gorm.DB, cart *models.Cart) error {
	return db.
		Preload("Product").
		Where("cart_id = ?", cart.ID).
		Order("id").
		Find(&cart.Items).
		Error
}

// 取得使用者購物車，沒有則建立
func (s *CartService) GetOrCreateCart(ctx context.Context, userID uint) (*models.Cart, error) {
	db := s.db.WithContext(ctx)
	cart, err := findOrCreateCart(db, userID)
	if err != nil {
		return nil, err
	}
	if err := loadCartItems(db, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func insufficientStock(product *models.Product, requested int) error {
	return &InsufficientStockError{
		ProductID:   product.ID,
		ProductName: product.Name,
		Available:   product.Stock,
		Requested:   requested,
	}
}

// 新增商品至購物車，已有相同商品則增加數量
func (s *CartService) AddItem(ctx context.Context, userID, productID uint, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, validationError("quantity must be at least 1")
	}

	var item models.CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Where("id = ? AND is_active = ?", productID, true).First(&product).Error; err != nil {
			return wrapLookup(err, "product")
		}
		if quantity > product.Stock {
			return insufficientStock(&product, quantity)
		}

		cart, err := findOrCreateCart(tx, userID)
		if err != nil {
			return err
		}

		err = tx.Where("cart_id = ? AND product_id = ?", cart.ID, productID).First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			//購物車沒有相同商品，新增此商品
			item = models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity}
			if err := tx.Omit(clause.Associations).Create(&item).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		} else {
			//購物車有相同商品，增加數量
			err = tx.Model(&models.CartItem{}).
				Where("id = ?", item.ID).
				UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity)).
				Error
			if err != nil {
				return err
			}
			item.Quantity += quantity
		}

		item.Product = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *CartService) findOwnedItem(tx *gorm.DB, userID, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := tx.
		Preload("Product").
		Where("id = ? AND cart_id IN (?)", itemID, tx.Model(&models.Cart{}).Select("id").Where("user_id = ?", userID)).
		First(&item).
		Error
	if err != nil {
		return nil, wrapLookup(err, "cart item")
	}
	return &item, nil
}

// 設定購物車商品數量，數量小於等於0則刪除，回傳nil表示已刪除
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID uint, quantity int) (*models.CartItem, error) {
	var updated *models.CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.findOwnedItem(tx, userID, itemID)
		if err != nil {
			return err
		}
		if quantity > item.Product.Stock {
			return insufficientStock(&item.Product, quantity)
		}
		if quantity <= 0 {
			return tx.Delete(&models.CartItem{}, item.ID).Error
		}

		if err := tx.Model(&models.CartItem{}).Where("id = ?", item.ID).UpdateColumn("quantity", quantity).Error; err != nil {
			return err
		}
		item.Quantity = quantity
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.findOwnedItem(tx, userID, itemID)
		if err != nil {
			return err
		}
		return tx.Delete(&models.CartItem{}, item.ID).Error
	})
}

// 清空購物車，購物車本身保留
func (s *CartService) Clear(ctx context.Context, userID uint) error {
	db := s.db.WithContext(ctx)
	cart, err := findOrCreateCart(db, userID)
	if err != nil {
		return err
	}
	return db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error
}
