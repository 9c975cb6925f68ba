package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"storefront/config"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront - online shop backend",
	Long: `Storefront serves the shop API: catalog, per-user carts, checkout,
order management and dashboards.

Use "storefront serve" to start the HTTP server, or the other commands to
prepare the database.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config/config.yaml", "path to the config file")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// 讀取設定並連接資料庫，呼叫者負責關閉連線
func openDatabase() (config.Config, *gorm.DB, func(), error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return cfg, nil, nil, err
	}

	db, err := config.SetupMySQLConnection(cfg)
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("無法連接到資料庫: %w", err)
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return cfg, db, closeDB, nil
}
