package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// AuthCmd creates the auth parent command
func AuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage stored OneTool credentials",
		Long:  "Log in with an API key, log out, or show which credentials the CLI will use",
	}

	cmd.AddCommand(AuthLoginCmd())
	cmd.AddCommand(AuthLogoutCmd())
	cmd.AddCommand(AuthStatusCmd())

	return cmd
}

// AuthLoginCmd creates the auth login command
func AuthLoginCmd() *cobra.Command {
	var apiKey, apiURL string
	var verify bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save an API key to the global config",
		Long: `Store an API key and server URL in ~/.config/onetool/config.json.

The key is read from stdin when --api-key is not given. With --verify the
key is checked against the server before it is saved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiKey == "" {
				key, err := promptAPIKey()
				if err != nil {
					return err
				}
				apiKey = key
			}
			if verify && IsValidAPIKey(apiKey) {
				if err := verifyCredentials(cmd.Context(), apiKey, apiURL); err != nil {
					return err
				}
			}
			return runAuthLogin(apiKey, apiURL)
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (otk_...)")
	cmd.Flags().StringVar(&apiURL, "url", defaultAPIURL, "API URL")
	cmd.Flags().BoolVar(&verify, "verify", false, "Check the key against the server before saving")

	return cmd
}

// AuthLogoutCmd creates the auth logout command
func AuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogout()
		},
	}
}

type statusOptions struct {
	outputJSON bool
	flagKey    string
	flagURL    string
	verify     bool
}

// AuthStatusCmd creates the auth status command
func AuthStatusCmd() *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which credentials are in effect",
		Long:  "Resolve credentials the same way other commands do (flags, environment, global config) and report the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := statusOptions{verify: verify}
			opts.outputJSON, _ = cmd.Flags().GetBool("output")
			opts.flagKey, _ = cmd.Flags().GetString("api-key")
			opts.flagURL, _ = cmd.Flags().GetString("api-url")
			return runAuthStatus(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "Call the server to confirm the key is accepted")

	return cmd
}

func promptAPIKey() (string, error) {
	fmt.Fprint(os.Stderr, "Enter API key: ")
	input, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && input == "" {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	return strings.TrimSpace(input), nil
}

func runAuthLogin(apiKey, apiURL string) error {
	if !IsValidAPIKey(apiKey) {
		return fmt.Errorf("invalid API key format (expected: otk_ + 64 hex characters)")
	}
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	if err := SaveGlobalConfig(&GlobalConfig{APIKey: apiKey, APIURL: apiURL}); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	fmt.Println("Successfully logged in")
	return nil
}

func runAuthLogout() error {
	if err := DeleteGlobalConfig(); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}

	fmt.Println("Successfully logged out")
	return nil
}

// verifyCredentials calls an authenticated endpoint and maps a 401 to a
// readable error.
func verifyCredentials(ctx context.Context, apiKey, apiURL string) error {
	api := NewAPIClientWithConfig(apiKey, apiURL)
	if _, err := api.Get(ctx, "/favorites", nil); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("server rejected the API key: %s", apiErr.Message)
		}
		return fmt.Errorf("failed to reach %s: %w", apiURL, err)
	}
	return nil
}

func runAuthStatus(ctx context.Context, opts statusOptions) error {
	source, apiKey, apiURL := GetCredentialSource(opts.flagKey, opts.flagURL)

	status := map[string]interface{}{
		"authenticated": source != SourceNone,
		"source":        string(source),
	}
	if source != SourceNone {
		status["api_key"] = maskAPIKey(apiKey)
		status["api_url"] = apiURL
	}

	var verifyErr error
	if opts.verify && source != SourceNone {
		verifyErr = verifyCredentials(ctx, apiKey, apiURL)
		status["verified"] = verifyErr == nil
		if verifyErr != nil {
			status["verify_error"] = verifyErr.Error()
		}
	}

	if opts.outputJSON {
		return printJSON(status)
	}

	if source == SourceNone {
		fmt.Println("Not authenticated")
		fmt.Println("Run 'onetool init' or 'onetool auth login' to authenticate")
		return nil
	}

	fmt.Println("Authenticated: yes")
	fmt.Printf("Source: %s\n", source)
	fmt.Printf("API Key: %s\n", maskAPIKey(apiKey))
	fmt.Printf("API URL: %s\n", apiURL)
	if opts.verify {
		if verifyErr != nil {
			fmt.Printf("Verified: no (%v)\n", verifyErr)
		} else {
			fmt.Println("Verified: yes")
		}
	}
	return nil
}

func maskAPIKey(key string) string {
	if len(key) < 8 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}
