package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/models"
)

// 固定運費與手續費
var (
	ShippingFee = decimal.NewFromInt(15000)
	ServiceFee  = decimal.NewFromInt(2000)
	CODFee      = decimal.NewFromInt(5000)
)

// 訂單編號衝突時重新執行整個交易的次數上限
const maxCheckoutAttempts = 5

type CheckoutInput struct {
	FullName      string
	Phone         string
	Email         string
	Address       string
	City          string
	PostalCode    string
	Notes         string
	PaymentMethod models.PaymentMethod
}

func (in *CheckoutInput) normalize() error {
	if in.PaymentMethod == "" {
		in.PaymentMethod = models.PaymentBankTransfer
	}
	if !in.PaymentMethod.Valid() {
		return validationError("unknown payment method %q", in.PaymentMethod)
	}

	required := []struct {
		field string
		value *string
	}{
		{"full_name", &in.FullName},
		{"phone", &in.Phone},
		{"address", &in.Address},
		{"city", &in.City},
		{"postal_code", &in.PostalCode},
	}
	for _, r := range required {
		*r.value = strings.TrimSpace(*r.value)
		if *r.value == "" {
			return validationError("%s is required", r.field)
		}
	}
	in.Email = strings.TrimSpace(in.Email)
	in.Notes = strings.TrimSpace(in.Notes)
	return nil
}

// 將結帳表單組成訂單上的收件資訊
func ComposeShippingAddress(in CheckoutInput) string {
	notes := in.Notes
	if notes == "" {
		notes = "-"
	}
	lines := []string{
		in.FullName,
		in.Phone,
		in.Email,
		in.Address,
		strings.TrimSpace(in.City + " " + in.PostalCode),
		"",
		"Notes: " + notes,
		"Payment method: " + in.PaymentMethod.Label(),
	}
	return strings.Join(lines, "\n")
}

type FeeBreakdown struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shippingFee"`
	ServiceFee  decimal.Decimal `json:"serviceFee"`
	CODFee      decimal.Decimal `json:"codFee"`
	Total       decimal.Decimal `json:"total"`
}

func ComputeTotal(subtotal decimal.Decimal, method models.PaymentMethod) FeeBreakdown {
	fees := FeeBreakdown{
		Subtotal:    subtotal,
		ShippingFee: ShippingFee,
		ServiceFee:  ServiceFee,
		CODFee:      decimal.Zero,
	}
	if method == models.PaymentCOD {
		fees.CODFee = CODFee
	}
	fees.Total = subtotal.Add(fees.ShippingFee).Add(fees.ServiceFee).Add(fees.CODFee)
	return fees
}

type CheckoutService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewCheckoutService(db *gorm.DB, now func() time.Time) *CheckoutService {
	if now == nil {
		now = time.Now
	}
	return &CheckoutService{db: db, now: now}
}

type CheckoutPreview struct {
	Cart   *models.Cart
	Totals map[models.PaymentMethod]FeeBreakdown
}

// 結帳前預覽各付款方式的金額，不寫入資料
func (s *CheckoutService) Preview(ctx context.Context, userID uint) (*CheckoutPreview, error) {
	db := s.db.WithContext(ctx)
	cart, err := findOrCreateCart(db, userID)
	if err != nil {
		return nil, err
	}
	if err := loadCartItems(db, cart); err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	preview := &CheckoutPreview{Cart: cart, Totals: map[models.PaymentMethod]FeeBreakdown{}}
	for _, method := range models.PaymentMethods {
		preview.Totals[method] = ComputeTotal(cart.TotalPrice(), method)
	}
	return preview, nil
}

func checkStock(cart *models.Cart) error {
	for i := range cart.Items {
		item := &cart.Items[i]
		if item.Quantity > item.Product.Stock {
			return insufficientStock(&item.Product, item.Quantity)
		}
	}
	return nil
}

// 將購物車轉為訂單：檢查庫存、建立訂單與明細、扣庫存、清空購物車，全部在同一交易內完成
func (s *CheckoutService) Checkout(ctx context.Context, userID uint, input CheckoutInput) (*models.Order, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}

	//交易前先檢查，空購物車或庫存不足時不開啟交易
	db := s.db.WithContext(ctx)
	cart, err := findOrCreateCart(db, userID)
	if err != nil {
		return nil, err
	}
	if err := loadCartItems(db, cart); err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if err := checkStock(cart); err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		order, err := s.placeOrder(ctx, userID, input)
		if err == nil {
			return order, nil
		}
		if !isDuplicateKey(err) {
			return nil, err
		}
		if attempt >= maxCheckoutAttempts {
			return nil, conflictError("could not assign a unique order number after %d attempts", attempt)
		}
		log.Printf("訂單編號重複，重新結帳(第%d次): %v", attempt, err)
	}
}

func (s *CheckoutService) placeOrder(ctx context.Context, userID uint, input CheckoutInput) (*models.Order, error) {
	var order models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//交易內重新讀取購物車與商品，價格與庫存以此為準
		cart, err := findOrCreateCart(tx, userID)
		if err != nil {
			return err
		}
		if err := loadCartItems(tx, cart); err != nil {
			return err
		}
		if cart.IsEmpty() {
			return ErrEmptyCart
		}
		if err := checkStock(cart); err != nil {
			return err
		}

		now := s.now()
		orderNumber, err := NextOrderNumber(tx, now)
		if err != nil {
			return err
		}

		fees := ComputeTotal(cart.TotalPrice(), input.PaymentMethod)
		order = models.Order{
			UserID:          userID,
			OrderNumber:     orderNumber,
			Status:          models.OrderStatusPending,
			PaymentMethod:   input.PaymentMethod,
			ShippingAddress: ComposeShippingAddress(input),
			TotalPrice:      fees.Total,
		}
		order.CreatedAt = now
		order.UpdatedAt = now
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(cart.Items))
		for _, cartItem := range cart.Items {
			items = append(items, models.OrderItem{
				OrderID:   order.ID,
				ProductID: cartItem.ProductID,
				Quantity:  cartItem.Quantity,
				Price:     cartItem.Product.Price,
			})
		}
		if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
			return err
		}

		//條件式扣庫存，庫存不足時不更新任何列
		for _, cartItem := range cart.Items {
			result := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", cartItem.ProductID, cartItem.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", cartItem.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected != 1 {
				var current models.Product
				if err := tx.Unscoped().First(&current, cartItem.ProductID).Error; err != nil {
					return err
				}
				return insufficientStock(&current, cartItem.Quantity)
			}
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}

		order.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}
