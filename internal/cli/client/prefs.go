package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

type preference struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value,omitempty"`
	SizeBytes int64           `json:"size_bytes"`
	UpdatedAt string          `json:"updated_at,omitempty"`
}

type preferenceList struct {
	Items []preference `json:"items"`
	Usage struct {
		UsedBytes      int64 `json:"used_bytes"`
		QuotaBytes     int64 `json:"quota_bytes"`
		RemainingBytes int64 `json:"remaining_bytes"`
		Keys           int   `json:"keys"`
	} `json:"usage"`
}

// PrefsCmd creates the prefs command.
func PrefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Manage stored preferences",
		Long:  "Read and write the JSON values stored for your account, subject to a per-account quota.",
	}

	cmd.AddCommand(prefsListCmd())
	cmd.AddCommand(prefsGetCmd())
	cmd.AddCommand(prefsSetCmd())
	cmd.AddCommand(prefsRmCmd())
	cmd.AddCommand(prefsClearCmd())

	return cmd
}

func prefsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List keys and quota usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClientWithCmd(cmd, true)
			if err != nil {
				return err
			}
			resp, err := api.Get(cmd.Context(), "/preferences", nil)
			if err != nil {
				return fmt.Errorf("failed to list preferences: %w", err)
			}

			var list preferenceList
			if err := decodeData(resp, &list); err != nil {
				return err
			}
			if outputJSON {
				return printJSON(list)
			}

			for _, p := range list.Items {
				fmt.Printf("  %-32s %8d bytes  %s\n", p.Key, p.SizeBytes, p.UpdatedAt)
			}
			fmt.Printf("\nUsed %d of %d bytes (%d keys)\n", list.Usage.UsedBytes, list.Usage.QuotaBytes, list.Usage.Keys)
			return nil
		},
	}
}

func prefsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a stored value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd, true)
			if err != nil {
				return err
			}
			resp, err := api.Get(cmd.Context(), "/preferences/"+url.PathEscape(args[0]), nil)
			if err != nil {
				return err
			}

			var p preference
			if err := decodeData(resp, &p); err != nil {
				return err
			}
			fmt.Println(string(p.Value))
			return nil
		},
	}
}

func prefsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> [json]",
		Short: "Store a JSON value (reads stdin when the value is omitted)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			if len(args) == 2 {
				raw = []byte(args[1])
			} else {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				raw = data
			}
			if !json.Valid(raw) {
				return fmt.Errorf("value is not valid JSON")
			}

			api, err := NewAPIClientWithCmd(cmd, true)
			if err != nil {
				return err
			}
			resp, err := api.PutRaw(cmd.Context(), "/preferences/"+url.PathEscape(args[0]), raw)
			if err != nil {
				return err
			}

			var p preference
			if err := decodeData(resp, &p); err != nil {
				return err
			}
			fmt.Printf("Stored %s (%d bytes)\n", p.Key, p.SizeBytes)
			return nil
		},
	}
}

func prefsRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <key>",
		Short: "Delete a stored value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd, true)
			if err != nil {
				return err
			}
			if _, err := api.Delete(cmd.Context(), "/preferences/"+url.PathEscape(args[0])); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		},
	}
}

func prefsClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored value",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd, true)
			if err != nil {
				return err
			}
			resp, err := api.Delete(cmd.Context(), "/preferences")
			if err != nil {
				return err
			}

			var out struct {
				Deleted int64 `json:"deleted"`
			}
			if err := decodeData(resp, &out); err != nil {
				return err
			}
			fmt.Printf("Deleted %d preferences\n", out.Deleted)
			return nil
		},
	}
}
