package client

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

type slugList struct {
	Slugs []string `json:"slugs"`
}

// FavoritesCmd creates the fav command.
func FavoritesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fav",
		Aliases: []string{"favorites"},
		Short:   "Manage favorite tools",
	}

	cmd.AddCommand(slugListCmd("list", "List favorite tools", "GET", "/favorites", false))
	cmd.AddCommand(slugListCmd("add <slug>", "Add a tool to favorites", "PUT", "/favorites/", true))
	cmd.AddCommand(slugListCmd("rm <slug>", "Remove a tool from favorites", "DELETE", "/favorites/", true))

	return cmd
}

// RecentCmd creates the recent command.
func RecentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show or record recently used tools",
	}

	cmd.AddCommand(slugListCmd("list", "List recently used tools, newest first", "GET", "/recent", false))
	cmd.AddCommand(slugListCmd("add <slug>", "Record a visit to a tool", "POST", "/recent/", true))

	return cmd
}

func slugListCmd(use, short, method, path string, withSlug bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClientWithCmd(cmd, true)
			if err != nil {
				return err
			}

			target := path
			if withSlug {
				target += url.PathEscape(args[0])
			}

			var resp *APIResponse
			switch method {
			case "PUT":
				resp, err = api.Put(cmd.Context(), target, nil)
			case "POST":
				resp, err = api.Post(cmd.Context(), target, nil)
			case "DELETE":
				resp, err = api.Delete(cmd.Context(), target)
			default:
				resp, err = api.Get(cmd.Context(), target, nil)
			}
			if err != nil {
				return err
			}

			var list slugList
			if err := decodeData(resp, &list); err != nil {
				return err
			}

			if outputJSON {
				return printJSON(list)
			}
			if len(list.Slugs) == 0 {
				fmt.Println("(empty)")
				return nil
			}
			for _, s := range list.Slugs {
				fmt.Printf("  %s\n", s)
			}
			return nil
		},
	}
	if withSlug {
		cmd.Args = cobra.ExactArgs(1)
	}
	return cmd
}
