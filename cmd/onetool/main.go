package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cloo-solutions/onetool/internal/cli"
	"github.com/cloo-solutions/onetool/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "onetool",
		Short: "OneTool CLI - find and use everyday utilities",
		Long: `OneTool CLI searches the tool catalog, runs calculators and manages
your favorites and stored preferences.

Environment variables:
  ONETOOL_API_KEY   API key for authenticated commands
  ONETOOL_API_URL   API base URL (default: http://localhost:8080)`,
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-key", "", "API key for authentication (overrides env and config)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.InitCmd())
	rootCmd.AddCommand(client.AuthCmd())
	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.SelectCmd())
	rootCmd.AddCommand(client.ToolsCmd())
	rootCmd.AddCommand(client.CalcCmd())
	rootCmd.AddCommand(client.FavoritesCmd())
	rootCmd.AddCommand(client.RecentCmd())
	rootCmd.AddCommand(client.PrefsCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
