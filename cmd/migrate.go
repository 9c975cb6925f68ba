package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"storefront/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	_, db, closeDB, err := openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := config.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	fmt.Println("資料表建立完成")
	return nil
}
