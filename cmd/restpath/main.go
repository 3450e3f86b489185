package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/restpath/cmd/restpath/commands"
	"github.com/fivetwenty-io/restpath/internal/constants"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "restpath",
	Short: "Typed REST client CLI",
	Long: `A command-line interface for calling JSON REST APIs.

Paths are resolved against a base URL, query parameters are sent in the
order given, and responses can be printed as a table, JSON or YAML.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.restpath/config.yml)")
	rootCmd.PersistentFlags().StringP("base-url", "b", "", "base URL every path is resolved against")
	rootCmd.PersistentFlags().StringP("user", "u", "", "basic-auth username")
	rootCmd.PersistentFlags().StringP("password", "p", "", "basic-auth password (prompted when --user is set)")
	rootCmd.PersistentFlags().StringP("output", "o", constants.FormatTable, "output format (table, json, yaml)")
	rootCmd.PersistentFlags().Duration("timeout", constants.DefaultHTTPTimeout, "request timeout")
	rootCmd.PersistentFlags().Int("retry", 0, "retries for 5xx, 429 and connection errors")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log requests and responses to stderr")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("cache", "none", "response cache (none, memory, nats)")
	rootCmd.PersistentFlags().String("nats-url", "", "NATS server URL for --cache nats")

	// Bind flags to viper
	for _, name := range []string{
		"config", "base-url", "user", "password", "output", "timeout", "retry",
		"verbose", "log-format", "cache", "nats-url",
	} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewGetCommand())
	rootCmd.AddCommand(commands.NewDeleteCommand())
	rootCmd.AddCommand(commands.NewPostCommand())
	rootCmd.AddCommand(commands.NewPutCommand())
	rootCmd.AddCommand(commands.NewPatchCommand())
}

func initConfig() {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in ~/.restpath/config.yml
		viper.AddConfigPath(filepath.Join(home, constants.ConfigDirName))
		viper.SetConfigType("yml")
		viper.SetConfigName(constants.ConfigFileName)
	}

	// RESTPATH_BASE_URL and friends
	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
