package client

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/cloo-solutions/onetool/internal/catalog"
	"github.com/cloo-solutions/onetool/internal/domain"
	"github.com/cloo-solutions/onetool/internal/fuzzy"
	"github.com/spf13/cobra"
)

// Tool mirrors the tool representation returned by the API.
type Tool struct {
	Slug          string   `json:"slug"`
	Title         string   `json:"title"`
	Category      string   `json:"category"`
	CategoryLabel string   `json:"category_label"`
	Description   string   `json:"description,omitempty"`
	Path          string   `json:"path"`
	Keywords      []string `json:"keywords,omitempty"`
}

// SearchResult is a tool with its edit distance when the fuzzy phase answered.
type SearchResult struct {
	Tool
	Distance *int `json:"distance,omitempty"`
}

// SearchResponse represents the search API response.
type SearchResponse struct {
	SearchID string         `json:"search_id,omitempty"`
	Query    string         `json:"query"`
	Phase    string         `json:"phase"`
	Total    int            `json:"total"`
	Results  []SearchResult `json:"results"`
}

type searchOptions struct {
	category  string
	threshold float64
	limit     int
	offline   bool
}

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search tools",
		Long: `Searches the tool catalog by title and category.

Titles or categories containing the query win; when nothing matches literally,
tools whose titles are within the typo threshold are returned, closest first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			query := ""
			if len(args) == 1 {
				query = args[0]
			}

			var (
				resp *SearchResponse
				err  error
			)
			if opts.offline {
				resp, err = offlineSearch(query, opts)
				if err != nil {
					return err
				}
			} else {
				resp, err = onlineSearch(cmd, query, opts)
				if err != nil {
					return err
				}
			}

			if outputJSON {
				return printJSON(resp)
			}
			printSearch(resp)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.category, "category", "c", "", "Restrict to a category (e.g. finance)")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "Typo tolerance between 0 and 1 (default 0.4)")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "Search the built-in catalog without contacting the server")

	return cmd
}

func onlineSearch(cmd *cobra.Command, query string, opts searchOptions) (*SearchResponse, error) {
	api, err := NewAPIClientWithCmd(cmd, false)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("q", query)
	if opts.category != "" {
		q.Set("category", opts.category)
	}
	if opts.threshold != 0 {
		q.Set("threshold", strconv.FormatFloat(opts.threshold, 'f', -1, 64))
	}
	if opts.limit != 0 {
		q.Set("limit", strconv.Itoa(opts.limit))
	}

	resp, err := api.Get(cmd.Context(), "/search", q)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var out SearchResponse
	if err := decodeData(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// offlineSearch runs the matcher locally over the built-in catalog with the
// same validation and ordering as the server.
func offlineSearch(query string, opts searchOptions) (*SearchResponse, error) {
	category := domain.ToolCategory(opts.category)
	threshold, err := catalog.ResolveSearch(catalog.SearchParams{
		Category:  category,
		Threshold: opts.threshold,
		Limit:     opts.limit,
	})
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	tools := catalog.FilterByCategory(catalog.SortBySlug(catalog.Builtin()), category)

	ranked := fuzzy.Rank(query, tools, threshold)

	resp := &SearchResponse{
		Query:   query,
		Phase:   string(ranked.Phase),
		Total:   len(ranked.Items),
		Results: make([]SearchResult, 0, len(ranked.Items)),
	}
	for i, t := range ranked.Items {
		if opts.limit > 0 && i >= opts.limit {
			break
		}
		r := SearchResult{Tool: toolFromDomain(t)}
		if ranked.Phase == fuzzy.PhaseFuzzy {
			d := ranked.Matches[i].Distance
			r.Distance = &d
		}
		resp.Results = append(resp.Results, r)
	}
	return resp, nil
}

func toolFromDomain(t *domain.Tool) Tool {
	return Tool{
		Slug:          t.Slug,
		Title:         t.Title,
		Category:      string(t.Category),
		CategoryLabel: t.Category.Label(),
		Description:   t.Description,
		Path:          t.Path,
		Keywords:      t.Keywords,
	}
}

func printSearch(resp *SearchResponse) {
	if len(resp.Results) == 0 {
		fmt.Println("No tools found.")
		return
	}

	fmt.Printf("Found %d tools (%s match):\n\n", resp.Total, resp.Phase)
	for i, r := range resp.Results {
		fmt.Printf("%d. %s [%s]\n", i+1, r.Title, r.CategoryLabel)
		if r.Description != "" {
			fmt.Printf("   %s\n", truncate(r.Description, 100))
		}
		fmt.Printf("   %s", r.Path)
		if r.Distance != nil {
			fmt.Printf("  (distance %d)", *r.Distance)
		}
		fmt.Println()
	}
	if resp.SearchID != "" {
		fmt.Printf("\nSearch ID: %s (use 'onetool select %s <slug>' to record your pick)\n", resp.SearchID, resp.SearchID)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
