package client

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type createdAccount struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type createdKey struct {
	ID    string `json:"id"`
	Token string `json:"token"`
	Name  string `json:"name"`
}

// InitCmd registers a new account on the server, issues an API key for it
// and stores the credentials in the global config.
func InitCmd() *cobra.Command {
	var (
		accountName string
		keyName     string
		apiURL      string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an account and store an API key",
		Long:  "Creates an account on the OneTool server, issues an API key, and saves both to ~/.config/onetool/config.json.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runInit(cmd.Context(), accountName, keyName, apiURL, outputJSON)
		},
	}

	cmd.Flags().StringVar(&accountName, "account", "", "Account name (defaults to the current user name)")
	cmd.Flags().StringVar(&keyName, "key-name", "cli", "Name for the issued API key")
	cmd.Flags().StringVar(&apiURL, "url", "", "API base URL (default: http://localhost:8080)")

	return cmd
}

func runInit(ctx context.Context, accountName, keyName, apiURL string, outputJSON bool) error {
	existing, err := LoadGlobalConfig()
	if err != nil {
		return err
	}
	if existing != nil && existing.APIKey != "" {
		return fmt.Errorf("already initialized (run 'onetool auth logout' first)")
	}

	if apiURL == "" {
		apiURL = os.Getenv(envAPIURL)
	}
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	if accountName == "" {
		accountName = os.Getenv("USER")
	}
	if accountName == "" {
		return fmt.Errorf("--account is required")
	}

	api := NewAPIClientWithConfig("", apiURL)

	resp, err := api.Post(ctx, "/accounts", map[string]string{"name": accountName})
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	var account createdAccount
	if err := decodeData(resp, &account); err != nil {
		return err
	}

	resp, err = api.Post(ctx, "/apikeys", map[string]string{
		"account_id": account.ID,
		"name":       keyName,
	})
	if err != nil {
		return fmt.Errorf("failed to create API key: %w", err)
	}
	var key createdKey
	if err := decodeData(resp, &key); err != nil {
		return err
	}

	if err := SaveGlobalConfig(&GlobalConfig{APIKey: key.Token, APIURL: apiURL, AccountName: accountName}); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	if outputJSON {
		return printJSON(map[string]interface{}{
			"success":    true,
			"account_id": account.ID,
			"account":    account.Name,
			"key_id":     key.ID,
			"api_url":    apiURL,
		})
	}

	fmt.Printf("Created account '%s' (id: %s)\n", account.Name, account.ID)
	fmt.Printf("API key '%s' saved to global config\n", key.Name)
	return nil
}
