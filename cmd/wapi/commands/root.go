package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fivetwenty-io/wapi/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand builds the wapi command tree.
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wapi",
		Short: "Infoblox WAPI CLI",
		Long: `A command-line interface for the Infoblox NIOS WAPI.

Host records, networks and any other registered object kind can be
fetched, created, updated and deleted on a grid master.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return InitConfig()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.wapi/config.yml)")
	flags.StringP("host", "H", "", "grid master host name or URL")
	flags.StringP("username", "u", "", "WAPI username")
	flags.StringP("password", "p", "", "WAPI password (prompted when empty)")
	flags.String("wapi-version", "", "WAPI version (default \""+constants.DefaultWAPIVersion+"\")")
	flags.BoolP("insecure", "k", false, "skip TLS certificate verification")
	flags.Duration("timeout", 0, "per-request timeout")
	flags.StringP("output", "o", constants.FormatTable, "output format (table, json, yaml)")
	flags.Bool("debug", false, "log every WAPI request and response")
	flags.String("catalog", "", "YAML, JSON or TOML file of extra object kinds")
	flags.String("nats-url", "", "publish object changes to this NATS server")
	flags.String("subject-prefix", "", "NATS subject prefix (default \""+constants.DefaultSubjectPrefix+"\")")

	bindings := map[string]string{
		"config":          "config",
		"host":            "host",
		"username":        "username",
		"password":        "password",
		"wapi_version":    "wapi-version",
		"skip_tls_verify": "insecure",
		"timeout":         "timeout",
		"output":          "output",
		"debug":           "debug",
		"catalog":         "catalog",
		"nats_url":        "nats-url",
		"subject_prefix":  "subject-prefix",
	}

	for key, flag := range bindings {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewSchemaCommand())
	rootCmd.AddCommand(NewHostsCommand())
	rootCmd.AddCommand(NewNetworksCommand())
	rootCmd.AddCommand(NewObjectsCommand())

	return rootCmd
}

// InitConfig points viper at the config file and the WAPI_* environment.
// A missing config file is not an error.
func InitConfig() error {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}

		viper.AddConfigPath(filepath.Join(home, ".wapi"))
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("WAPI")
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}
