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

// NewHostsCommand creates the host record command group.
func NewHostsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "hosts",
		Aliases: []string{"host"},
		Short:   "Manage host records",
		Long:    "View, create, delete and re-address DNS host records",
	}

	cmd.AddCommand(newHostsGetCommand())
	cmd.AddCommand(newHostsCreateCommand())
	cmd.AddCommand(newHostsDeleteCommand())
	cmd.AddCommand(newHostsAddIPCommand())
	cmd.AddCommand(newHostsRemoveIPCommand())

	return cmd
}

type hostLookup struct {
	ipv4addr string
	ipv6addr string
	mac      string
}

func (l hostLookup) values(name string) wapi.Values {
	values := wapi.Values{}

	for key, value := range map[string]string{
		"name":     name,
		"ipv4addr": l.ipv4addr,
		"ipv6addr": l.ipv6addr,
		"mac":      l.mac,
	} {
		if value != "" {
			values[key] = value
		}
	}

	return values
}

func findHost(ctx context.Context, m *wapi.Mapper, values wapi.Values) (*objects.Host, error) {
	host, err := objects.LoadHost(ctx, m, "", values)
	if err != nil {
		return nil, fmt.Errorf("failed to get host: %w", err)
	}

	if !host.Identified() {
		return nil, fmt.Errorf("%w: %v", constants.ErrHostNotFound, values)
	}

	return host, nil
}

func newHostsGetCommand() *cobra.Command {
	var lookup hostLookup

	cmd := &cobra.Command{
		Use:   "get [NAME]",
		Short: "Get host record details",
		Long:  "Display a host record found by name, address or MAC",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) > 0 {
				name = args[0]
			}

			values := lookup.values(name)
			if len(values) == 0 {
				return fmt.Errorf("%w: pass a name, --ipv4addr, --ipv6addr or --mac", constants.ErrHostNotFound)
			}

			s, closer, err := newSession()
			if err != nil {
				return err
			}
			defer closer()

			host, err := findHost(cmd.Context(), s.Mapper(), values)
			if err != nil {
				return err
			}

			return renderObject(cmd.OutOrStdout(), host.Object, outputFormat())
		},
	}

	cmd.Flags().StringVar(&lookup.ipv4addr, "ipv4addr", "", "find the host owning this IPv4 address")
	cmd.Flags().StringVar(&lookup.ipv6addr, "ipv6addr", "", "find the host owning this IPv6 address")
	cmd.Flags().StringVar(&lookup.mac, "mac", "", "find the host with this MAC address")

	return cmd
}

func newHostsCreateCommand() *cobra.Command {
	var (
		ipv4addrs []string
		ipv6addrs []string
		comment   string
		view      string
		noDNS     bool
	)

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a host record",
		Long:  "Create a host record with one or more addresses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closer, err := newSession()
			if err != nil {
				return err
			}
			defer closer()

			host, err := objects.NewHost(s.Mapper(), args[0])
			if err != nil {
				return err
			}

			for _, addr := range ipv4addrs {
				err = addIP(host, addr)
				if err != nil {
					return err
				}
			}

			for _, addr := range ipv6addrs {
				err = addIP(host, addr)
				if err != nil {
					return err
				}
			}

			changes := map[string]interface{}{}
			if comment != "" {
				changes["comment"] = comment
			}

			if view != "" {
				changes["view"] = view
			}

			if noDNS {
				changes["configure_for_dns"] = false
			}

			for field, value := range changes {
				err = host.Set(field, value)
				if err != nil {
					return err
				}
			}

			_, err = host.Save(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to create host: %w", err)
			}

			return renderObject(cmd.OutOrStdout(), host.Object, outputFormat())
		},
	}

	cmd.Flags().StringSliceVar(&ipv4addrs, "ipv4addr", nil, "IPv4 address (repeatable)")
	cmd.Flags().StringSliceVar(&ipv6addrs, "ipv6addr", nil, "IPv6 address (repeatable)")
	cmd.Flags().StringVar(&comment, "comment", "", "record comment")
	cmd.Flags().StringVar(&view, "view", "", "DNS view (default \"default\")")
	cmd.Flags().BoolVar(&noDNS, "no-dns", false, "create the host without DNS records")

	return cmd
}

func newHostsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a host record",
		Long:  "Delete a host record and all of its addresses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closer, err := newSession()
			if err != nil {
				return err
			}
			defer closer()

			host, err := findHost(cmd.Context(), s.Mapper(), wapi.Values{"name": args[0]})
			if err != nil {
				return err
			}

			ref := host.Ref()

			_, err = host.Delete(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to delete host: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted host %s (%s)\n", args[0], ref)

			return nil
		},
	}
}

func newHostsAddIPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add-ip NAME ADDRESS",
		Short: "Add an address to a host record",
		Long:  "Add an IPv4 or IPv6 address to an existing host record",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateHostAddresses(cmd, args[0], func(host *objects.Host) error {
				return addIP(host, args[1])
			})
		},
	}
}

func newHostsRemoveIPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-ip NAME ADDRESS",
		Short: "Remove an address from a host record",
		Long:  "Remove an IPv4 or IPv6 address from an existing host record",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateHostAddresses(cmd, args[0], func(host *objects.Host) error {
				return removeIP(host, args[1])
			})
		},
	}
}

func updateHostAddresses(cmd *cobra.Command, name string, change func(host *objects.Host) error) error {
	s, closer, err := newSession()
	if err != nil {
		return err
	}
	defer closer()

	host, err := findHost(cmd.Context(), s.Mapper(), wapi.Values{"name": name})
	if err != nil {
		return err
	}

	err = change(host)
	if err != nil {
		return err
	}

	_, err = host.Save(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to update host: %w", err)
	}

	return renderObject(cmd.OutOrStdout(), host.Object, outputFormat())
}

func addIP(host *objects.Host, addr string) error {
	ip := net.ParseIP(addr)
	if ip == nil {
		return fmt.Errorf("%w: %q", constants.ErrInvalidAddress, addr)
	}

	if ip.To4() != nil {
		return host.AddIPv4Addr(addr)
	}

	return host.AddIPv6Addr(addr)
}

func removeIP(host *objects.Host, addr string) error {
	ip := net.ParseIP(addr)
	if ip == nil {
		return fmt.Errorf("%w: %q", constants.ErrInvalidAddress, addr)
	}

	var removed bool
	if ip.To4() != nil {
		removed = host.RemoveIPv4Addr(addr)
	} else {
		removed = host.RemoveIPv6Addr(addr)
	}

	if !removed {
		return fmt.Errorf("%w: %s", constants.ErrAddressNotFound, addr)
	}

	return nil
}
