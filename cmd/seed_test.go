package cmd

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront/config"
	"storefront/models"
)

func TestSeedCategoriesIsIdempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, config.Migrate(db))

	seed := config.Seed{Categories: []config.SeedCategory{
		{Name: "Smartphone", Slug: "smartphone", Icon: "fa-mobile-alt"},
		{Name: "Smart Watch"},
	}}

	created, err := seedCategories(db, seed)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = seedCategories(db, seed)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	var watch models.Category
	require.NoError(t, db.Where("slug = ?", "smart-watch").First(&watch).Error)
	assert.Equal(t, models.DefaultCategoryIcon, watch.IconClass)
}
