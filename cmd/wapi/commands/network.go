package commands

import (
	"context"
	"fmt"
	"net"

	"github.com/fivetwenty-io/wapi/internal/constants"
	"github.com/fivetwenty-io/wapi/pkg/objects"
	"github.com/fivetwenty-io/wapi/pkg/wapi"
	"github.com/spf13/cobra"
)

// NewNetworksCommand creates the network command group.
func NewNetworksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "networks",
		Aliases: []string{"network", "net"},
		Short:   "Manage DHCP networks",
		Long:    "View, search, update and delete IPv4 networks",
	}

	cmd.AddCommand(newNetworksGetCommand())
	cmd.AddCommand(newNetworksSearchCommand())
	cmd.AddCommand(newNetworksUpdateCommand())
	cmd.AddCommand(newNetworksDeleteCommand())

	return cmd
}

func networkValues(cidr, view string) (wapi.Values, error) {
	_, _, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", constants.ErrInvalidCIDR, cidr)
	}

	if view == "" {
		view = constants.DefaultNetworkView
	}

	return wapi.Values{"network": cidr, "network_view": view}, nil
}

func findNetwork(ctx context.Context, m *wapi.Mapper, cidr, view string) (*objects.Network, error) {
	values, err := networkValues(cidr, view)
	if err != nil {
		return nil, err
	}

	network, err := objects.LoadNetwork(ctx, m, "", values)
	if err != nil {
		return nil, fmt.Errorf("failed to get network: %w", err)
	}

	if !network.Identified() {
		return nil, fmt.Errorf("%w: %s in view %s", constants.ErrNetworkNotFound, cidr, values["network_view"])
	}

	return network, nil
}

func newNetworksGetCommand() *cobra.Command {
	var view string

	cmd := &cobra.Command{
		Use:   "get CIDR",
		Short: "Get network details",
		Long:  "Display a network by its address in CIDR notation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closer, err := newSession()
			if err != nil {
				return err
			}
			defer closer()

			network, err := findNetwork(cmd.Context(), s.Mapper(), args[0], view)
			if err != nil {
				return err
			}

			return renderObject(cmd.OutOrStdout(), network.Object, outputFormat())
		},
	}

	cmd.Flags().StringVar(&view, "view", "", "network view (default \"default\")")

	return cmd
}

func newNetworksSearchCommand() *cobra.Command {
	var (
		comment   string
		container string
		view      string
		ipv4addr  string
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search networks",
		Long:  "List networks matching a comment, container, view or contained address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria := wapi.Values{}

			for key, value := range map[string]string{
				"comment":           comment,
				"network_container": container,
				"network_view":      view,
				"ipv4addr":          ipv4addr,
			} {
				if value != "" {
					criteria[key] = value
				}
			}

			s, closer, err := newSession()
			if err != nil {
				return err
			}
			defer closer()

			networks, err := objects.SearchNetworks(cmd.Context(), s.Mapper(), criteria)
			if err != nil {
				return fmt.Errorf("failed to search networks: %w", err)
			}

			objs := make([]*wapi.Object, 0, len(networks))
			for _, n := range networks {
				objs = append(objs, n.Object)
			}

			return renderObjects(cmd.OutOrStdout(), objects.NetworkKind, objs, outputFormat())
		},
	}

	cmd.Flags().StringVar(&comment, "comment", "", "match the network comment")
	cmd.Flags().StringVar(&container, "container", "", "match the parent network container")
	cmd.Flags().StringVar(&view, "view", "", "match the network view")
	cmd.Flags().StringVar(&ipv4addr, "ipv4addr", "", "match networks containing this address")

	return cmd
}

func newNetworksUpdateCommand() *cobra.Command {
	var (
		view    string
		comment string
		disable bool
	)

	cmd := &cobra.Command{
		Use:   "update CIDR",
		Short: "Update a network",
		Long:  "Change the comment or DHCP state of a network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changes := map[string]interface{}{}
			if cmd.Flags().Changed("comment") {
				changes["comment"] = comment
			}

			if cmd.Flags().Changed("disable") {
				changes["disable"] = disable
			}

			if len(changes) == 0 {
				return constants.ErrNoChanges
			}

			s, closer, err := newSession()
			if err != nil {
				return err
			}
			defer closer()

			network, err := findNetwork(cmd.Context(), s.Mapper(), args[0], view)
			if err != nil {
				return err
			}

			for field, value := range changes {
				err = network.Set(field, value)
				if err != nil {
					return err
				}
			}

			_, err = network.Save(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to update network: %w", err)
			}

			return renderObject(cmd.OutOrStdout(), network.Object, outputFormat())
		},
	}

	cmd.Flags().StringVar(&view, "view", "", "network view (default \"default\")")
	cmd.Flags().StringVar(&comment, "comment", "", "new comment")
	cmd.Flags().BoolVar(&disable, "disable", false, "disable DHCP for the network")

	return cmd
}

func newNetworksDeleteCommand() *cobra.Command {
	var view string

	cmd := &cobra.Command{
		Use:   "delete CIDR",
		Short: "Delete a network",
		Long:  "Delete a network and everything it contains",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closer, err := newSession()
			if err != nil {
				return err
			}
			defer closer()

			network, err := findNetwork(cmd.Context(), s.Mapper(), args[0], view)
			if err != nil {
				return err
			}

			ref := network.Ref()

			_, err = network.Delete(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to delete network: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted network %s (%s)\n", args[0], ref)

			return nil
		},
	}

	cmd.Flags().StringVar(&view, "view", "", "network view (default \"default\")")

	return cmd
}
