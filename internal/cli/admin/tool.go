package admin

import (
	"fmt"

	"github.com/cloo-solutions/onetool/internal/catalog"
	"github.com/cloo-solutions/onetool/internal/config"
	"github.com/cloo-solutions/onetool/internal/jobs"
	"github.com/cloo-solutions/onetool/internal/storage"
	"github.com/spf13/cobra"
)

func ToolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tool",
		Short: "Manage the tool catalog",
		Long:  "List catalog entries, toggle their visibility, and re-seed the built-in tools",
	}

	cmd.AddCommand(ToolListCmd())
	cmd.AddCommand(toolToggleCmd("enable", true))
	cmd.AddCommand(toolToggleCmd("disable", false))
	cmd.AddCommand(ToolSeedCmd())
	cmd.AddCommand(ToolSnapshotCmd())

	return cmd
}

func ToolListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every tool, including disabled ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			outputFormat, _ := cmd.Flags().GetString("output")

			pool, err := getDBPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			tools, err := newCatalogService(pool).ListAll(ctx)
			if err != nil {
				return fmt.Errorf("failed to list tools: %w", err)
			}

			if outputFormat == "json" {
				data := make([]map[string]interface{}, len(tools))
				for i, t := range tools {
					data[i] = map[string]interface{}{
						"slug":     t.Slug,
						"title":    t.Title,
						"category": t.Category,
						"path":     t.Path,
						"enabled":  t.Enabled,
					}
				}
				return printJSON(map[string]interface{}{"items": data})
			}

			for _, t := range tools {
				status := "enabled"
				if !t.Enabled {
					status = "disabled"
				}
				fmt.Printf("  %-28s %-40s %-12s %s\n", t.Slug, t.Title, t.Category, status)
			}
			return nil
		},
	}

	cmd.Flags().StringP("output", "", "text", "Output format (text or json)")

	return cmd
}

func toolToggleCmd(use string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <slug>",
		Short: "Set whether a tool is visible in the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			pool, err := getDBPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := newCatalogService(pool).SetEnabled(ctx, args[0], enabled); err != nil {
				return fmt.Errorf("failed to %s tool: %w", use, err)
			}
			fmt.Printf("Tool %s %sd\n", args[0], use)
			return nil
		},
	}
}

func ToolSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Upsert the built-in tool catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			pool, err := getDBPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			n, err := newCatalogService(pool).Seed(ctx, catalog.Builtin())
			if err != nil {
				return fmt.Errorf("failed to seed catalog: %w", err)
			}
			fmt.Printf("Seeded %d tools\n", n)
			return nil
		},
	}
}

// ToolSnapshotCmd publishes the catalog snapshot immediately instead of
// waiting for the server's snapshot worker.
func ToolSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Export the enabled catalog to object storage now",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if !cfg.HasS3() {
				return fmt.Errorf("S3 is not configured (set ONETOOL_S3_ENDPOINT and credentials)")
			}

			pool, err := getDBPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			s3Client, err := storage.NewS3Client(ctx, cfg.S3())
			if err != nil {
				return fmt.Errorf("failed to create S3 client: %w", err)
			}
			if err := s3Client.EnsureBucket(ctx); err != nil {
				return err
			}

			uploaded, err := jobs.NewSnapshotExporter(newCatalogService(pool), s3Client).Export(ctx)
			if err != nil {
				return fmt.Errorf("failed to export snapshot: %w", err)
			}
			if !uploaded {
				fmt.Println("Catalog unchanged; snapshot not re-uploaded")
			}

			url, err := s3Client.GenerateDownloadURL(ctx, jobs.SnapshotLatestKey)
			if err != nil {
				return err
			}
			fmt.Printf("Latest snapshot: %s\n", url)
			return nil
		},
	}
}
