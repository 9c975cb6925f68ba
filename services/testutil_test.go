package services

import (
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"storefront/jwt"
	"storefront/models"
)

var (
	testKeyOnce sync.Once
	testKey     *rsa.PrivateKey
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	//memory資料庫每個連線各自獨立，必須只用一個連線
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func newTestTokens(t *testing.T) *jwt.Manager {
	t.Helper()
	testKeyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		testKey = key
	})
	return jwt.NewManager(testKey, &testKey.PublicKey, time.Hour)
}

func fixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

var testNow = time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)

func seedUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
		Role:     role,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	category := models.Category{Name: name, Slug: Slugify(name), IconClass: models.DefaultCategoryIcon}
	require.NoError(t, db.Create(&category).Error)
	return &category
}

func seedProduct(t *testing.T, db *gorm.DB, category *models.Category, name string, price int64, stock int) *models.Product {
	t.Helper()
	product := models.Product{
		CategoryID:  category.ID,
		Name:        name,
		Slug:        Slugify(name),
		Description: name + " description",
		Price:       decimal.NewFromInt(price),
		Stock:       stock,
		IsActive:    true,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(&product).Error)
	return &product
}

func seedOrder(t *testing.T, db *gorm.DB, user *models.User, number string, status models.OrderStatus, total int64, createdAt time.Time) *models.Order {
	t.Helper()
	order := models.Order{
		UserID:          user.ID,
		OrderNumber:     number,
		Status:          status,
		PaymentMethod:   models.PaymentBankTransfer,
		ShippingAddress: "somewhere",
		TotalPrice:      decimal.NewFromInt(total),
	}
	order.CreatedAt = createdAt
	order.UpdatedAt = createdAt
	require.NoError(t, db.Omit(clause.Associations).Create(&order).Error)
	return &order
}

func reloadProduct(t *testing.T, db *gorm.DB, id uint) *models.Product {
	t.Helper()
	var product models.Product
	require.NoError(t, db.Unscoped().First(&product, id).Error)
	return &product
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Count(&count).Error)
	return count
}

func adminActor(user *models.User) Actor {
	return Actor{UserID: user.ID, Role: models.RoleAdmin}
}

func customerActor(user *models.User) Actor {
	return Actor{UserID: user.ID, Role: models.RoleCustomer}
}

// 在指定資料表的create或update執行前插入一次操作，模擬同時進行的另一筆交易
// fn收到與原操作同一交易的連線，以及原操作要寫入的資料
func interleaveOnce(t *testing.T, db *gorm.DB, op, table string, fn func(conn *gorm.DB, dest interface{})) *int {
	t.Helper()
	calls := 0
	callback := func(tx *gorm.DB) {
		if calls > 0 || tx.Statement.Schema == nil || tx.Statement.Schema.Table != table {
			return
		}
		calls++
		fn(tx.Session(&gorm.Session{NewDB: true}), tx.Statement.Dest)
	}

	name := "test:interleave_" + op + "_" + table
	var err error
	switch op {
	case "create":
		err = db.Callback().Create().Before("gorm:create").Register(name, callback)
	case "update":
		err = db.Callback().Update().Before("gorm:update").Register(name, callback)
	default:
		t.Fatalf("unsupported operation %q", op)
	}
	require.NoError(t, err)
	return &calls
}
