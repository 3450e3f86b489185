package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/restpath/internal/constants"
)

// Config is the CLI configuration as stored in $HOME/.restpath/config.yml.
type Config struct {
	BaseURL   string `json:"base-url"   yaml:"base-url"`
	User      string `json:"user"       yaml:"user,omitempty"`
	Password  string `json:"password"   yaml:"password,omitempty"`
	Output    string `json:"output"     yaml:"output"`
	Timeout   string `json:"timeout"    yaml:"timeout"`
	Retry     int    `json:"retry"      yaml:"retry"`
	Verbose   bool   `json:"verbose"    yaml:"verbose"`
	LogFormat string `json:"log-format" yaml:"log-format"`
	Cache     string `json:"cache"      yaml:"cache"`
	NATSURL   string `json:"nats-url"   yaml:"nats-url,omitempty"`
}

// loadConfig reads the effective configuration: flags, then RESTPATH_*
// environment, then the config file.
func loadConfig() *Config {
	return &Config{
		BaseURL:   viper.GetString("base-url"),
		User:      viper.GetString("user"),
		Password:  viper.GetString("password"),
		Output:    viper.GetString("output"),
		Timeout:   viper.GetDuration("timeout").String(),
		Retry:     viper.GetInt("retry"),
		Verbose:   viper.GetBool("verbose"),
		LogFormat: viper.GetString("log-format"),
		Cache:     viper.GetString("cache"),
		NATSURL:   viper.GetString("nats-url"),
	}
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show the effective restpath configuration or write it to the config file",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration after flags, environment and config file are merged",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			config.Password = maskSecret(config.Password)

			out := cmd.OutOrStdout()

			switch viper.GetString("output") {
			case constants.FormatJSON:
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")

				return encoder.Encode(config)
			case constants.FormatYAML:
				return yaml.NewEncoder(out).Encode(config)
			default:
				return displayConfigTable(cmd, config)
			}
		},
	}
}

func displayConfigTable(cmd *cobra.Command, config *Config) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Property", "Value")

	_ = table.Append("Base URL", config.BaseURL)
	_ = table.Append("User", config.User)
	_ = table.Append("Password", config.Password)
	_ = table.Append("Output", config.Output)
	_ = table.Append("Timeout", config.Timeout)
	_ = table.Append("Retry", fmt.Sprintf("%d", config.Retry))
	_ = table.Append("Verbose", fmt.Sprintf("%t", config.Verbose))
	_ = table.Append("Log format", config.LogFormat)
	_ = table.Append("Cache", config.Cache)

	if config.NATSURL != "" {
		_ = table.Append("NATS URL", config.NATSURL)
	}

	if file := viper.ConfigFileUsed(); file != "" {
		_ = table.Append("Config file", file)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func newConfigInitCommand() *cobra.Command {
	var (
		path         string
		savePassword bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current configuration to the config file",
		Long:  "Save the effective configuration so later invocations can omit the flags. The password is only saved with --save-password.",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			if !savePassword {
				config.Password = ""
			}

			if path == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("%w: %w", constants.ErrConfigNotWritten, err)
				}

				path = filepath.Join(home, constants.ConfigDirName, constants.ConfigFileName+".yml")
			}

			err := saveConfig(path, config)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)

			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "file to write (default is $HOME/.restpath/config.yml)")
	cmd.Flags().BoolVar(&savePassword, "save-password", false, "store the password in the config file")

	return cmd
}

func saveConfig(path string, config *Config) error {
	err := os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("%w: %w", constants.ErrConfigNotWritten, err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("%w: %w", constants.ErrConfigNotWritten, err)
	}

	err = os.WriteFile(path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("%w: %w", constants.ErrConfigNotWritten, err)
	}

	return nil
}
