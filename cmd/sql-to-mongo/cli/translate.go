package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mongobridge/sql-to-mongo/lib/mongoql"
	"github.com/mongobridge/sql-to-mongo/lib/mongosh"
)

// TranslateOptions holds flags for the translate command.
type TranslateOptions struct {
	Caps []string
}

// NewTranslateCommand translates a single SQL statement and prints the
// shell invocation.
func NewTranslateCommand(root *RootOptions) *cobra.Command {
	opts := &TranslateOptions{}

	cmd := &cobra.Command{
		Use:   "translate [sql]",
		Short: "Translate a SQL statement into a mongo shell command",
		Long:  "Translates the SQL statement given as an argument, or read from stdin when no argument is supplied.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, err := readStatement(cmd, args)
			if err != nil {
				return err
			}

			caps, err := parseCaps(opts.Caps)
			if err != nil {
				return err
			}

			ps, err := mongoql.Classify(sql)
			if err != nil {
				return err
			}
			result, err := mongoql.Translate(ps, caps)
			if err != nil {
				return err
			}
			invocation, err := mongosh.Render(result, sql)
			if err != nil {
				return err
			}

			if root.Format == "json" {
				out := map[string]any{
					"kind":        result.Kind,
					"tier":        result.Kind.Tier(),
					"high_impact": result.Kind.HighImpact(),
					"collection":  result.Collection,
					"command":     invocation.Text,
					"tokens":      invocation.Tokens,
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			fmt.Fprintln(cmd.OutOrStdout(), invocation.Text)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&opts.Caps, "caps", []string{"all"}, "enabled capabilities (all, select, insert, update, delete, create_table, drop_table)")
	return cmd
}

func readStatement(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	sql := strings.TrimSpace(string(data))
	if sql == "" {
		return "", fmt.Errorf("no SQL statement supplied")
	}
	return sql, nil
}

func parseCaps(names []string) (mongoql.Capabilities, error) {
	caps := mongoql.Capabilities{}
	for _, name := range names {
		switch mongoql.Capability(strings.ToLower(strings.TrimSpace(name))) {
		case "all":
			return mongoql.AllowAll(), nil
		case mongoql.CapabilitySelect:
			caps.Select = true
		case mongoql.CapabilityInsert:
			caps.Insert = true
		case mongoql.CapabilityUpdate:
			caps.Update = true
		case mongoql.CapabilityDelete:
			caps.Delete = true
		case mongoql.CapabilityCreateTable:
			caps.CreateTable = true
		case mongoql.CapabilityDropTable:
			caps.DropTable = true
		default:
			return caps, fmt.Errorf("unknown capability %q", name)
		}
	}
	return caps, nil
}
