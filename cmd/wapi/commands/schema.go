package commands

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewSchemaCommand creates the schema command, which also serves as a
// credentials check.
func NewSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Show the grid master's WAPI schema",
		Long:  "Display the WAPI versions and object types the grid master supports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closer, err := newSession()
			if err != nil {
				return err
			}
			defer closer()

			schema, err := s.Schema(cmd.Context())
			if err != nil {
				return err
			}

			done, err := encode(cmd.OutOrStdout(), schema, outputFormat())
			if done {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Property", "Value")
			_ = table.Append([]string{"Endpoint", s.BaseURL()})
			_ = table.Append([]string{"Requested Version", schema.RequestedVersion})
			_ = table.Append([]string{"Supported Versions", strings.Join(schema.SupportedVersions, ", ")})
			_ = table.Append([]string{"Supported Objects", fmt.Sprintf("%d", len(schema.SupportedObjects))})

			err = table.Render()
			if err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			return nil
		},
	}
}
