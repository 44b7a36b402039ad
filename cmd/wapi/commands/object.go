package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/wapi/internal/constants"
	"github.com/fivetwenty-io/wapi/pkg/objects"
	"github.com/fivetwenty-io/wapi/pkg/wapi"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewObjectsCommand creates the command group for objects addressed by
// reference id.
func NewObjectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "objects",
		Aliases: []string{"object", "obj"},
		Short:   "Work with objects by reference",
		Long:    "Fetch any registered object kind by its WAPI reference id",
	}

	cmd.AddCommand(newObjectsGetCommand())
	cmd.AddCommand(newObjectsKindsCommand())

	return cmd
}

func newObjectsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get REF",
		Short: "Get an object by reference",
		Long:  "Fetch an object by reference id, e.g. record:host/ZG5z...:app1.example.com/default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closer, err := newSession()
			if err != nil {
				return err
			}
			defer closer()

			kind, ok := s.Registry().Resolve(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", wapi.ErrUnknownKind, args[0])
			}

			obj, err := s.Mapper().New(kind, args[0], nil)
			if err != nil {
				return err
			}

			found, err := obj.Fetch(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get object: %w", err)
			}

			if !found {
				return fmt.Errorf("%w: %s", constants.ErrObjectNotFound, args[0])
			}

			return renderObject(cmd.OutOrStdout(), obj, outputFormat())
		},
	}
}

func newObjectsKindsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List registered object kinds",
		Long:  "List the object kinds known to the CLI, including those from the configured catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := loadRegistry()
			if err != nil {
				return err
			}

			return renderKinds(cmd.OutOrStdout(), registry, outputFormat())
		},
	}
}

// loadRegistry returns the built-in kinds plus the configured catalog's.
func loadRegistry() (*wapi.Registry, error) {
	registry := objects.DefaultRegistry()

	catalog := loadConfig().Catalog
	if catalog == "" {
		return registry, nil
	}

	kinds, err := objects.LoadKinds(catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	for _, kind := range kinds {
		registry.Register(kind)
	}

	return registry, nil
}

type kindInfo struct {
	Type     string   `json:"type"                yaml:"type"`
	Aliases  []string `json:"aliases,omitempty"   yaml:"aliases,omitempty"`
	Supports []string `json:"supports"            yaml:"supports"`
	SearchBy []string `json:"search_by,omitempty" yaml:"search_by,omitempty"`
	Fields   int      `json:"fields"              yaml:"fields"`
}

func renderKinds(w io.Writer, registry *wapi.Registry, output string) error {
	kinds := registry.Kinds()
	infos := make([]kindInfo, 0, len(kinds))

	for _, kind := range kinds {
		supports := make([]string, 0, len(kind.Supports))
		for _, op := range kind.Supports {
			supports = append(supports, string(op))
		}

		infos = append(infos, kindInfo{
			Type:     kind.Type,
			Aliases:  kind.Aliases,
			Supports: supports,
			SearchBy: kind.SearchBy,
			Fields:   len(kind.Fields),
		})
	}

	done, err := encode(w, infos, output)
	if done {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("Type", "Aliases", "Supports", "Search By", "Fields")

	for _, info := range infos {
		_ = table.Append([]string{
			info.Type,
			strings.Join(info.Aliases, ", "),
			strings.Join(info.Supports, ", "),
			strings.Join(info.SearchBy, ", "),
			strconv.Itoa(info.Fields),
		})
	}

	err = table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
