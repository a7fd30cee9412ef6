package admin

import (
	"fmt"

	"github.com/spf13/cobra"
)

func AccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
		Long:  "Create and list accounts that own API keys and preferences",
	}

	cmd.AddCommand(AccountCreateCmd())
	cmd.AddCommand(AccountListCmd())

	return cmd
}

func AccountCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			outputFormat, _ := cmd.Flags().GetString("output")

			pool, err := getDBPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			account, err := newAuthService(pool).CreateAccount(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to create account: %w", err)
			}

			if outputFormat == "json" {
				return printJSON(map[string]interface{}{
					"id":         account.ID,
					"name":       account.Name,
					"created_at": account.CreatedAt,
				})
			}
			fmt.Printf("Account created: %s (id: %s)\n", account.Name, account.ID)
			return nil
		},
	}

	cmd.Flags().StringP("output", "", "text", "Output format (text or json)")

	return cmd
}

func AccountListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			outputFormat, _ := cmd.Flags().GetString("output")

			pool, err := getDBPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			accounts, err := newAuthService(pool).ListAccounts(ctx)
			if err != nil {
				return fmt.Errorf("failed to list accounts: %w", err)
			}

			if outputFormat == "json" {
				data := make([]map[string]interface{}, len(accounts))
				for i, a := range accounts {
					data[i] = map[string]interface{}{
						"id":         a.ID,
						"name":       a.Name,
						"created_at": a.CreatedAt,
					}
				}
				return printJSON(map[string]interface{}{"items": data})
			}

			if len(accounts) == 0 {
				fmt.Println("No accounts found")
				return nil
			}
			for _, a := range accounts {
				fmt.Printf("  %s: %s (created: %s)\n", a.ID, a.Name, a.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}

	cmd.Flags().StringP("output", "", "text", "Output format (text or json)")

	return cmd
}
