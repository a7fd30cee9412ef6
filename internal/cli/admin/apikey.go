package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloo-solutions/onetool/internal/domain"
	"github.com/cloo-solutions/onetool/internal/service"
	"github.com/spf13/cobra"
)

func resolveAccountID(ctx context.Context, authSvc *service.AuthService, accountRef string) (string, error) {
	account, err := authSvc.ResolveAccount(ctx, accountRef)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return "", fmt.Errorf("account not found: %s", accountRef)
		}
		return "", err
	}
	return account.ID, nil
}

func APIKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage API keys",
		Long:  "Create, list, and revoke API keys",
	}

	cmd.AddCommand(APIKeyCreateCmd())
	cmd.AddCommand(APIKeyListCmd())
	cmd.AddCommand(APIKeyRevokeCmd())

	return cmd
}

func APIKeyCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new API key",
		Long:  "Create a new API key for an account",
		RunE:  runAPIKeyCreate,
	}

	cmd.Flags().StringP("account", "a", "", "Account ID or name (required)")
	cmd.Flags().StringP("name", "n", "", "API key name (required)")
	cmd.Flags().StringP("output", "", "text", "Output format (text or json)")
	cmd.MarkFlagRequired("account")
	cmd.MarkFlagRequired("name")

	return cmd
}

func runAPIKeyCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	accountRef, _ := cmd.Flags().GetString("account")
	name, _ := cmd.Flags().GetString("name")
	outputFormat, _ := cmd.Flags().GetString("output")

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	authSvc := newAuthService(pool)

	accountID, err := resolveAccountID(ctx, authSvc, accountRef)
	if err != nil {
		return err
	}

	plaintext, key, err := authSvc.CreateAPIKey(ctx, accountID, name)
	if err != nil {
		return fmt.Errorf("failed to create API key: %w", err)
	}

	if outputFormat == "json" {
		return printJSON(map[string]interface{}{
			"id":         key.ID,
			"name":       key.Name,
			"account_id": accountID,
			"token":      plaintext,
		})
	}

	fmt.Printf("API key created for account %s\n", accountID)
	fmt.Printf("Key ID: %s\n", key.ID)
	fmt.Printf("Key Name: %s\n", key.Name)
	fmt.Printf("Token: %s\n", plaintext)
	fmt.Println("\nSave this token now. You won't be able to see it again!")
	return nil
}

func APIKeyListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List API keys for an account",
		Long:  "List all API keys for a specific account, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			accountRef, _ := cmd.Flags().GetString("account")
			outputFormat, _ := cmd.Flags().GetString("output")
			return runAPIKeyList(cmd.Context(), accountRef, outputFormat)
		},
	}

	cmd.Flags().StringP("account", "a", "", "Account ID or name (required)")
	cmd.Flags().StringP("output", "", "text", "Output format (text or json)")
	cmd.MarkFlagRequired("account")

	return cmd
}

func runAPIKeyList(ctx context.Context, accountRef, outputFormat string) error {
	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	authSvc := newAuthService(pool)

	accountID, err := resolveAccountID(ctx, authSvc, accountRef)
	if err != nil {
		return err
	}

	keys, err := authSvc.ListAPIKeys(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to list API keys: %w", err)
	}

	if outputFormat == "json" {
		data := make([]map[string]interface{}, len(keys))
		for i, key := range keys {
			data[i] = map[string]interface{}{
				"id":         key.ID,
				"name":       key.Name,
				"account_id": key.AccountID,
				"created_at": key.CreatedAt,
				"revoked_at": key.RevokedAt,
				"status":     key.Status(),
			}
		}
		return printJSON(map[string]interface{}{"items": data})
	}

	if len(keys) == 0 {
		fmt.Printf("No API keys found for account %s\n", accountID)
		return nil
	}
	fmt.Printf("API keys for account %s:\n", accountID)
	for _, key := range keys {
		fmt.Printf("  %s: %s (%s, created: %s)\n", key.ID, key.Name, key.Status(), key.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func APIKeyRevokeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revoke <id>",
		Short: "Revoke an API key",
		Long:  "Revoke an API key by its ID",
		Args:  cobra.ExactArgs(1),
		RunE:  runAPIKeyRevoke,
	}

	cmd.Flags().StringP("output", "", "text", "Output format (text or json)")

	return cmd
}

func runAPIKeyRevoke(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	keyID := args[0]
	outputFormat, _ := cmd.Flags().GetString("output")

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := newAuthService(pool).RevokeAPIKey(ctx, keyID); err != nil {
		return fmt.Errorf("failed to revoke API key: %w", err)
	}

	if outputFormat == "json" {
		return printJSON(map[string]interface{}{
			"id":      keyID,
			"revoked": true,
			"message": "API key revoked successfully",
		})
	}

	fmt.Printf("API key %s revoked successfully\n", keyID)
	return nil
}
