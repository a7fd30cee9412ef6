package client

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// SearchFeedbackRequest records which tool was picked from a prior search.
type SearchFeedbackRequest struct {
	SearchID string `json:"search_id"`
	Slug     string `json:"slug"`
}

// SelectCmd creates the select command.
func SelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <search-id> <slug>",
		Short: "Record the tool chosen from a search",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd, true)
			if err != nil {
				return err
			}
			if err := sendSearchFeedback(cmd.Context(), api, args[0], args[1]); err != nil {
				return fmt.Errorf("failed to record selection: %w", err)
			}
			fmt.Printf("Recorded %s for search %s\n", args[1], args[0])
			return nil
		},
	}
}

func sendSearchFeedback(ctx context.Context, api *APIClient, searchID, slug string) error {
	if api == nil || searchID == "" || slug == "" {
		return nil
	}
	_, err := api.Post(ctx, "/search/feedback", SearchFeedbackRequest{
		SearchID: searchID,
		Slug:     slug,
	})
	return err
}
