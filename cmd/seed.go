package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"storefront/config"
	"storefront/models"
	"storefront/services"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the default product categories",
	Long: `Read categories from the seed file and insert the ones that do not
exist yet. Existing categories are left untouched.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "config/seed.yaml", "path to the seed file")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	seed, err := config.LoadSeed(seedFile)
	if err != nil {
		return err
	}

	_, db, closeDB, err := openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()

	created, err := seedCategories(db, seed)
	if err != nil {
		return err
	}
	fmt.Printf("新增 %d 個分類，共 %d 個\n", created, len(seed.Categories))
	return nil
}

// 依slug建立尚未存在的分類，回傳新增數量
func seedCategories(db *gorm.DB, seed config.Seed) (int, error) {
	created := 0
	for _, entry := range seed.Categories {
		category := models.Category{
			Name:      entry.Name,
			Slug:      entry.Slug,
			IconClass: entry.Icon,
		}
		if category.Slug == "" {
			category.Slug = services.Slugify(entry.Name)
		}
		if category.IconClass == "" {
			category.IconClass = models.DefaultCategoryIcon
		}

		//已刪除的分類仍佔用slug，一併略過
		var count int64
		if err := db.Unscoped().Model(&models.Category{}).Where("slug = ?", category.Slug).Count(&count).Error; err != nil {
			return created, err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&category).Error; err != nil {
			return created, fmt.Errorf("failed to seed category %q: %w", entry.Name, err)
		}
		created++
	}
	return created, nil
}
