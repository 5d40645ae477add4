// Package cli implements the fetch command line tool.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/adamwoolhether/fetch/client/throttle"
)

const (
	ConfigFileName      = ".fetch"
	ConfigFileExtension = ".yaml"
	EnvPrefix           = "FETCH"
)

// Config is the configuration shared by all commands. Values come from
// flags, FETCH_* environment variables and the YAML config file, in that
// order of precedence.
type Config struct {
	LogLevel        string `mapstructure:"log-level"`
	UserAgent       string `mapstructure:"user-agent"`
	throttle.Config `mapstructure:",squash"`
}

// app carries the state resolved before any subcommand runs.
type app struct {
	v      *viper.Viper
	cfg    Config
	logger *slog.Logger
}

// Execute runs the root command with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd builds the command tree. Each call returns an independent
// tree with its own configuration.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	var cfgFilePath string
	if home, err := homedir.Dir(); err == nil {
		cfgFilePath = filepath.Join(home, ConfigFileName+ConfigFileExtension)
	}

	rootCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Decompose URLs and fetch them over HTTP/1.1",
		Long: `fetch splits URLs into their components, inspects query strings and
sends HTTP/1.1 requests over plain TCP or TLS connections.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd, cfgFilePath)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFilePath, "config", cfgFilePath, "config file (default is $HOME/.fetch.yaml)")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("user-agent", "", "User-Agent header sent with every request")
	flags.Int("rps", 0, "maximum requests per second; 0 disables throttling")
	flags.Int("burst", 1, "throttle burst size")

	rootCmd.AddCommand(
		a.parseCmd(),
		a.queryCmd(),
		a.getCmd(),
		a.serveCmd(),
	)

	return rootCmd
}

func (a *app) initConfig(cmd *cobra.Command, cfgFilePath string) error {
	v := a.v

	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	if cfgFilePath != "" {
		v.SetConfigFile(cfgFilePath)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
		case !cmd.Flags().Changed("config") && errors.Is(err, fs.ErrNotExist):
			// The default config file is optional.
		default:
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(&a.cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(a.cfg.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", a.cfg.LogLevel, err)
	}

	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	return nil
}
