package client

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/cloo-solutions/onetool/internal/catalog"
	"github.com/spf13/cobra"
)

// ToolsCmd creates the tools command with subcommands.
func ToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Browse the tool catalog",
	}

	cmd.AddCommand(toolsListCmd())
	cmd.AddCommand(toolsGetCmd())
	cmd.AddCommand(toolsCategoriesCmd())

	return cmd
}

type toolPage struct {
	Items   []Tool `json:"items"`
	Cursor  string `json:"cursor,omitempty"`
	HasMore bool   `json:"has_more"`
}

func toolsListCmd() *cobra.Command {
	var (
		category string
		cursor   string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClientWithCmd(cmd, false)
			if err != nil {
				return err
			}

			q := url.Values{}
			if category != "" {
				q.Set("category", category)
			}
			if cursor != "" {
				q.Set("cursor", cursor)
			}
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}

			resp, err := api.Get(cmd.Context(), "/tools", q)
			if err != nil {
				return fmt.Errorf("failed to list tools: %w", err)
			}

			var page toolPage
			if err := decodeData(resp, &page); err != nil {
				return err
			}

			if outputJSON {
				return printJSON(page)
			}

			if len(page.Items) == 0 {
				fmt.Println("No tools found.")
				return nil
			}
			for _, t := range page.Items {
				fmt.Printf("  %-28s %-40s %s\n", t.Slug, t.Title, t.CategoryLabel)
			}
			if page.HasMore && page.Cursor != "" {
				fmt.Printf("\nMore results available. Use --cursor %s\n", page.Cursor)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Filter by category")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results")

	return cmd
}

func toolsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <slug>",
		Short: "Show a tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClientWithCmd(cmd, false)
			if err != nil {
				return err
			}

			resp, err := api.Get(cmd.Context(), "/tools/"+url.PathEscape(args[0]), nil)
			if err != nil {
				return fmt.Errorf("failed to get tool: %w", err)
			}

			var t Tool
			if err := decodeData(resp, &t); err != nil {
				return err
			}

			if outputJSON {
				return printJSON(t)
			}
			fmt.Printf("%s (%s)\n", t.Title, t.Slug)
			fmt.Printf("Category: %s\n", t.CategoryLabel)
			fmt.Printf("Path: %s\n", t.Path)
			if t.Description != "" {
				fmt.Printf("\n%s\n", t.Description)
			}
			return nil
		},
	}
}

func toolsCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories with tool counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClientWithCmd(cmd, false)
			if err != nil {
				return err
			}

			resp, err := api.Get(cmd.Context(), "/tools/categories", nil)
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}

			var cats []catalog.Category
			if err := decodeData(resp, &cats); err != nil {
				return err
			}

			if outputJSON {
				return printJSON(cats)
			}
			for _, c := range cats {
				fmt.Printf("  %-12s %-20s %d\n", c.ID, c.Label, c.Count)
			}
			return nil
		},
	}
}
