package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"storefront/services"
)

var adminInput services.RegisterInput

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account or promote an existing user",
	RunE:  runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().StringVar(&adminInput.Username, "username", "", "admin username")
	createAdminCmd.Flags().StringVar(&adminInput.Email, "email", "", "admin email (new accounts only)")
	createAdminCmd.Flags().StringVar(&adminInput.Password, "password", "", "admin password (new accounts only)")
	_ = createAdminCmd.MarkFlagRequired("username")
	rootCmd.AddCommand(createAdminCmd)
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	_, db, closeDB, err := openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()

	//只使用資料庫，不需要簽發Token
	accounts := services.NewAccountService(db, nil, nil)
	user, created, err := accounts.EnsureAdmin(context.Background(), adminInput)
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	if created {
		fmt.Printf("已建立管理員 %s\n", user.Username)
	} else {
		fmt.Printf("已將使用者 %s 設為管理員\n", user.Username)
	}
	return nil
}
