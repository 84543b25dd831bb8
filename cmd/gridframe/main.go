package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gridframe/gridframe/pkg/config"
	"github.com/gridframe/gridframe/pkg/logger"
	"github.com/gridframe/gridframe/pkg/observability"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd(viper.New()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	var shutdown func()

	root := &cobra.Command{
		Use:   "gridframe",
		Short: "gridframe - power grid elements as dataframes",
		Long: `gridframe reads the elements of a power grid network as columns and writes
bulk attribute updates back, in raw or per-unit values.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			if err := logger.Init(logger.Config{
				Level:       cfg.Observability.LogLevel,
				Development: cfg.Observability.Development,
				Encoding:    cfg.Observability.LogEncoding,
			}); err != nil {
				return err
			}
			shutdown = func() { _ = logger.Sync() }
			if cfg.Observability.EnableTracing {
				if err := observability.Init(observability.TracingConfig{
					ServiceName:    "gridframe",
					ServiceVersion: version,
					SamplingRate:   cfg.Observability.TracingSampleRate,
				}); err != nil {
					return err
				}
				shutdown = func() {
					_ = observability.Shutdown(context.Background())
					_ = logger.Sync()
				}
			}
			cmd.SetContext(withConfig(cmd.Context(), cfg))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if shutdown != nil {
				shutdown()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Path to a YAML configuration file")
	flags.Bool("per-unit", false, "Read and write per-unit values")
	flags.Float64("nominal-apparent-power", 100, "Base apparent power in MVA for per-unit values")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-encoding", "json", "Log encoding (json, console)")
	flags.Bool("enable-tracing", false, "Export trace spans to stderr")
	for _, name := range []string{"config", "per-unit", "nominal-apparent-power", "log-level", "log-encoding", "enable-tracing"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
	v.SetEnvPrefix("GRIDFRAME")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "gridframe v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})
	root.AddCommand(newElementsCmd(), newSeriesCmd(), newGetCmd(), newUpdateCmd())
	return root
}

// loadConfig reads the optional configuration file, then applies flags and
// GRIDFRAME_* environment variables that were explicitly set.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg := config.NewDefault()
	if path := v.GetString("config"); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if v.IsSet("per-unit") {
		cfg.Units.PerUnit = v.GetBool("per-unit")
	}
	if v.IsSet("nominal-apparent-power") {
		cfg.Units.NominalApparentPower = v.GetFloat64("nominal-apparent-power")
	}
	if v.IsSet("log-level") {
		cfg.Observability.LogLevel = v.GetString("log-level")
	}
	if v.IsSet("log-encoding") {
		cfg.Observability.LogEncoding = v.GetString("log-encoding")
	}
	if v.IsSet("enable-tracing") {
		cfg.Observability.EnableTracing = v.GetBool("enable-tracing")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type configKey struct{}

func withConfig(ctx context.Context, cfg *config.Config) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, configKey{}, cfg)
}

func configFrom(cmd *cobra.Command) *config.Config {
	if cfg, ok := cmd.Context().Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return config.NewDefault()
}
