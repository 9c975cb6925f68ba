package services

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/models"
)

const (
	productPageSize  = 12
	relatedLimit     = 4
	featuredLimit    = 8
	newArrivalsLimit = 4
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// 由名稱產生slug，例如"iPhone 15 Pro" -> "iphone-15-pro"
func Slugify(name string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

type ProductFilter struct {
	CategorySlug    string
	Query           string
	IncludeInactive bool
	Page            Page
}

type ProductList struct {
	Products   []models.Product
	TotalCount int64
	Page       Page
}

func likePattern(q string) string {
	return "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
}

// 查詢商品列表，可依分類與關鍵字篩選
func (s *CatalogService) ListProducts(ctx context.Context, actor Actor, filter ProductFilter) (*ProductList, error) {
	page := filter.Page.normalize(productPageSize)

	var categoryID uint
	if filter.CategorySlug != "" {
		category, err := s.GetCategoryBySlug(ctx, filter.CategorySlug)
		if err != nil {
			return nil, err
		}
		categoryID = category.ID
	}

	scope := func(db *gorm.DB) *gorm.DB {
		if !filter.IncludeInactive || !actor.IsAdmin() {
			db = db.Where("is_active = ?", true)
		}
		if categoryID != 0 {
			db = db.Where("category_id = ?", categoryID)
		}
		if strings.TrimSpace(filter.Query) != "" {
			pattern := likePattern(filter.Query)
			db = db.Where(
				"LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR category_id IN (?)",
				pattern, pattern,
				s.db.Model(&models.Category{}).Select("id").Where("LOWER(name) LIKE ?", pattern),
			)
		}
		return db
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, err
	}

	var products []models.Product
	err := s.db.WithContext(ctx).
		Scopes(scope, page.apply).
		Preload("Category").
		Order("created_at DESC").
		Order("id DESC").
		Find(&products).
		Error
	if err != nil {
		return nil, err
	}

	return &ProductList{Products: products, TotalCount: total, Page: page}, nil
}

// 非管理員只能看到上架中的商品
func (s *CatalogService) GetProductBySlug(ctx context.Context, actor Actor, slug string) (*models.Product, error) {
	var product models.Product
	query := s.db.WithContext(ctx).Preload("Category").Where("slug = ?", slug)
	if !actor.IsAdmin() {
		query = query.Where("is_active = ?", true)
	}
	if err := query.First(&product).Error; err != nil {
		return nil, wrapLookup(err, "product")
	}
	return &product, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).Preload("Category").First(&product, id).Error; err != nil {
		return nil, wrapLookup(err, "product")
	}
	return &product, nil
}

func (s *CatalogService) RelatedProducts(ctx context.Context, product *models.Product) ([]models.Product, error) {
	var related []models.Product
	err := s.db.WithContext(ctx).
		Where("category_id = ? AND is_active = ? AND id <> ?", product.CategoryID, true, product.ID).
		Order("created_at DESC").
		Limit(relatedLimit).
		Find(&related).
		Error
	return related, err
}

type HomePage struct {
	Featured    []models.Product
	NewArrivals []models.Product
	Categories  []models.Category
}

func (s *CatalogService) Home(ctx context.Context) (*HomePage, error) {
	db := s.db.WithContext(ctx)
	home := &HomePage{}

	var ids []uint
	if err := db.Model(&models.Product{}).Where("is_active = ?", true).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	if len(ids) > featuredLimit {
		ids = ids[:featuredLimit]
	}
	if len(ids) > 0 {
		if err := db.Where("id IN ?", ids).Find(&home.Featured).Error; err != nil {
			return nil, err
		}
	}

	err := db.Where("is_active = ?", true).
		Order("created_at DESC").
		Order("id DESC").
		Limit(newArrivalsLimit).
		Find(&home.NewArrivals).
		Error
	if err != nil {
		return nil, err
	}

	categories, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	home.Categories = categories
	return home, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.WithContext(ctx).Order("name").Find(&categories).Error
	return categories, err
}

func (s *CatalogService) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, wrapLookup(err, "category")
	}
	return &category, nil
}

type CategoryInput struct {
	Name      string
	Slug      string
	IconClass string
}

func (s *CatalogService) CreateCategory(ctx context.Context, actor Actor, input CategoryInput) (*models.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("category name is required")
	}
	slug := input.Slug
	if slug == "" {
		slug = Slugify(name)
	}
	icon := input.IconClass
	if icon == "" {
		icon = models.DefaultCategoryIcon
	}

	category := models.Category{Name: name, Slug: slug, IconClass: icon}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, conflictError("category slug %q already exists", slug)
		}
		return nil, err
	}
	return &category, nil
}

// 仍有商品使用此分類時不允許刪除
func (s *CatalogService) DeleteCategory(ctx context.Context, actor Actor, id uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, id).Error; err != nil {
			return wrapLookup(err, "category")
		}

		var count int64
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return conflictError("category %q still has %d products", category.Name, count)
		}

		return tx.Delete(&category).Error
	})
}

type ProductInput struct {
	CategoryID  uint
	Name        string
	Slug        string
	Description string
	Price       decimal.Decimal
	Stock       int
	ImageURL    string
	IsActive    bool
}

type ProductPatch struct {
	CategoryID  *uint
	Name        *string
	Slug        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	ImageURL    *string
	IsActive    *bool
}

func validateProduct(product *models.Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return validationError("product name is required")
	}
	if product.Slug == "" {
		return validationError("product slug is required")
	}
	if product.CategoryID == 0 {
		return validationError("product category is required")
	}
	if product.Price.IsNegative() {
		return validationError("price must not be negative")
	}
	if !product.Price.Equal(product.Price.Truncate(0)) {
		return validationError("price must be a whole currency amount")
	}
	if product.Stock < 0 {
		return validationError("stock must not be negative")
	}
	return nil
}

func (s *CatalogService) checkCategory(tx *gorm.DB, id uint) error {
	var category models.Category
	if err := tx.Select("id").First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return validationError("category %d does not exist", id)
		}
		return err
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, actor Actor, input ProductInput) (*models.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	product := models.Product{
		CategoryID:  input.CategoryID,
		Name:        strings.TrimSpace(input.Name),
		Slug:        input.Slug,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		ImageURL:    input.ImageURL,
		IsActive:    input.IsActive,
	}
	if product.Slug == "" {
		product.Slug = Slugify(product.Name)
	}
	if err := validateProduct(&product); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkCategory(tx, product.CategoryID); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(&product).Error
	})
	if err != nil {
		if isDuplicateKey(err) {
			return nil, conflictError("product slug %q already exists", product.Slug)
		}
		return nil, err
	}
	return &product, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, actor Actor, id uint, patch ProductPatch) (*models.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var product models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, id).Error; err != nil {
			return wrapLookup(err, "product")
		}

		//如果有提供資料則覆蓋，只寫回有提供的欄位，避免蓋掉結帳扣除的庫存
		updates := map[string]interface{}{}
		if patch.CategoryID != nil {
			if err := s.checkCategory(tx, *patch.CategoryID); err != nil {
				return err
			}
			product.CategoryID = *patch.CategoryID
			updates["category_id"] = product.CategoryID
		}
		if patch.Name != nil {
			product.Name = strings.TrimSpace(*patch.Name)
			updates["name"] = product.Name
		}
		if patch.Slug != nil {
			product.Slug = *patch.Slug
			updates["slug"] = product.Slug
		}
		if patch.Description != nil {
			product.Description = *patch.Description
			updates["description"] = product.Description
		}
		if patch.Price != nil {
			product.Price = *patch.Price
			updates["price"] = product.Price
		}
		if patch.Stock != nil {
			product.Stock = *patch.Stock
			updates["stock"] = product.Stock
		}
		if patch.ImageURL != nil {
			product.ImageURL = *patch.ImageURL
			updates["image_url"] = product.ImageURL
		}
		if patch.IsActive != nil {
			product.IsActive = *patch.IsActive
			updates["is_active"] = product.IsActive
		}
		if err := validateProduct(&product); err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&product, product.ID).Error
	})
	if err != nil {
		if isDuplicateKey(err) {
			return nil, conflictError("product slug %q already exists", product.Slug)
		}
		return nil, err
	}
	return &product, nil
}

// 商品為軟刪除，已成立訂單的明細仍可查到商品
func (s *CatalogService) DeleteProduct(ctx context.Context, actor Actor, id uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, id).Error; err != nil {
			return wrapLookup(err, "product")
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&product).Error
	})
}
