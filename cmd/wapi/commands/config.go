package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fivetwenty-io/wapi/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration.
type Config struct {
	Host          string        `json:"host,omitempty"           yaml:"host,omitempty"`
	Username      string        `json:"username,omitempty"       yaml:"username,omitempty"`
	Password      string        `json:"password,omitempty"       yaml:"password,omitempty"`
	WAPIVersion   string        `json:"wapi_version,omitempty"   yaml:"wapi_version,omitempty"`
	SkipTLSVerify bool          `json:"skip_tls_verify"          yaml:"skip_tls_verify"`
	Timeout       time.Duration `json:"timeout,omitempty"        yaml:"timeout,omitempty"`
	Output        string        `json:"output"                   yaml:"output"`
	Debug         bool          `json:"debug"                    yaml:"debug"`
	Catalog       string        `json:"catalog,omitempty"        yaml:"catalog,omitempty"`
	NATSURL       string        `json:"nats_url,omitempty"       yaml:"nats_url,omitempty"`
	SubjectPrefix string        `json:"subject_prefix,omitempty" yaml:"subject_prefix,omitempty"`
}

// configKey describes one settable configuration key.
type configKey struct {
	set    func(c *Config, v string) error
	unset  func(c *Config)
	secret bool
}

func stringKey(field func(c *Config) *string) configKey {
	return configKey{
		set: func(c *Config, v string) error {
			*field(c) = v

			return nil
		},
		unset: func(c *Config) { *field(c) = "" },
	}
}

func boolKey(field func(c *Config) *bool) configKey {
	return configKey{
		set: func(c *Config, v string) error {
			b, err := parseBoolValue(v)
			if err != nil {
				return err
			}

			*field(c) = b

			return nil
		},
		unset: func(c *Config) { *field(c) = false },
	}
}

var configKeys = map[string]configKey{
	"host":     stringKey(func(c *Config) *string { return &c.Host }),
	"username": stringKey(func(c *Config) *string { return &c.Username }),
	"password": {
		set: func(c *Config, v string) error {
			c.Password = v

			return nil
		},
		unset:  func(c *Config) { c.Password = "" },
		secret: true,
	},
	"wapi_version":    stringKey(func(c *Config) *string { return &c.WAPIVersion }),
	"skip_tls_verify": boolKey(func(c *Config) *bool { return &c.SkipTLSVerify }),
	"timeout": {
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid timeout %q: %w", v, err)
			}

			c.Timeout = d

			return nil
		},
		unset: func(c *Config) { c.Timeout = 0 },
	},
	"output": {
		set: func(c *Config, v string) error {
			switch v {
			case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
				c.Output = v

				return nil
			default:
				return fmt.Errorf("%w: %q", constants.ErrInvalidOutput, v)
			}
		},
		unset: func(c *Config) { c.Output = constants.FormatTable },
	},
	"debug":          boolKey(func(c *Config) *bool { return &c.Debug }),
	"catalog":        stringKey(func(c *Config) *string { return &c.Catalog }),
	"nats_url":       stringKey(func(c *Config) *string { return &c.NATSURL }),
	"subject_prefix": stringKey(func(c *Config) *string { return &c.SubjectPrefix }),
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the grid master connection settings stored in ~/.wapi/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			if config.Password != "" {
				config.Password = constants.MaskedSecret
			}

			return renderConfig(cmd.OutOrStdout(), config, viper.GetString("output"))
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value and persist it to the config file",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			handler, ok := configKeys[key]
			if !ok {
				return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
			}

			config := loadConfig()

			err := handler.set(config, value)
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if handler.secret {
				value = constants.MaskedSecret
			}

			return outputConfigUpdateResult(cmd.OutOrStdout(), "Set", key, value)
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Reset a configuration value to its default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			handler, ok := configKeys[key]
			if !ok {
				return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
			}

			config := loadConfig()
			handler.unset(config)

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			return outputConfigUpdateResult(cmd.OutOrStdout(), "Unset", key, "")
		},
	}
}

func newConfigClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear configuration",
		Long:  "Remove the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile, err := configFilePath()
			if err != nil {
				return err
			}

			err = os.Remove(configFile)
			if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove config file: %w", err)
			}

			return outputConfigUpdateResult(cmd.OutOrStdout(), "Cleared", "all configuration", "")
		},
	}
}

// loadConfig reads the effective configuration: flags, then WAPI_*
// environment variables, then the config file.
func loadConfig() *Config {
	output := viper.GetString("output")
	if output == "" {
		output = constants.FormatTable
	}

	return &Config{
		Host:          viper.GetString("host"),
		Username:      viper.GetString("username"),
		Password:      viper.GetString("password"),
		WAPIVersion:   viper.GetString("wapi_version"),
		SkipTLSVerify: viper.GetBool("skip_tls_verify"),
		Timeout:       viper.GetDuration("timeout"),
		Output:        output,
		Debug:         viper.GetBool("debug"),
		Catalog:       viper.GetString("catalog"),
		NATSURL:       viper.GetString("nats_url"),
		SubjectPrefix: viper.GetString("subject_prefix"),
	}
}

// configFilePath returns the file in use, or ~/.wapi/config.yml.
func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".wapi", "config.yml"), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func parseBoolValue(value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%w: %q", constants.ErrInvalidBoolean, value)
	}

	return b, nil
}

func renderConfig(w io.Writer, config *Config, output string) error {
	switch output {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(config)
	case constants.FormatYAML:
		return yaml.NewEncoder(w).Encode(config)
	}

	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	_ = table.Append([]string{"Host", formatConfigValue(config.Host)})
	_ = table.Append([]string{"Username", formatConfigValue(config.Username)})
	_ = table.Append([]string{"Password", formatConfigValue(config.Password)})
	_ = table.Append([]string{"WAPI Version", formatConfigValue(config.WAPIVersion)})
	_ = table.Append([]string{"Skip TLS Verify", strconv.FormatBool(config.SkipTLSVerify)})
	_ = table.Append([]string{"Output", config.Output})
	_ = table.Append([]string{"Debug", strconv.FormatBool(config.Debug)})

	if config.Timeout > 0 {
		_ = table.Append([]string{"Timeout", config.Timeout.String()})
	}

	if config.Catalog != "" {
		_ = table.Append([]string{"Catalog", config.Catalog})
	}

	if config.NATSURL != "" {
		_ = table.Append([]string{"NATS URL", config.NATSURL})
		_ = table.Append([]string{"Subject Prefix", formatConfigValue(config.SubjectPrefix)})
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func formatConfigValue(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}

func outputConfigUpdateResult(w io.Writer, action, key, value string) error {
	result := map[string]string{
		"action": action,
		"key":    key,
	}

	if value != "" {
		result["value"] = value
	}

	switch viper.GetString("output") {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		err := encoder.Encode(result)
		if err != nil {
			return fmt.Errorf("failed to encode config result as JSON: %w", err)
		}

		return nil
	case constants.FormatYAML:
		err := yaml.NewEncoder(w).Encode(result)
		if err != nil {
			return fmt.Errorf("failed to encode config result as YAML: %w", err)
		}

		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")
	_ = table.Append([]string{"Action", action})
	_ = table.Append([]string{"Key", key})

	if value != "" {
		_ = table.Append([]string{"Value", value})
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
