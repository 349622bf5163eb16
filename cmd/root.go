package cmd

import (
	"context"
	"fmt"

	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
	"github.com/eliran89c/cloudkeeper/pkg/config"
	"github.com/eliran89c/cloudkeeper/pkg/factory"
	"github.com/eliran89c/cloudkeeper/pkg/metrics"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	// Version information
	version = "dev"
	arch    = "dev"

	// Flags
	configPath  string
	envFile     string
	verbosity   int
	metricsFile string
)

var (
	registry = prometheus.NewRegistry()
	recorder = metrics.NewRecorder(registry)
)

var (
	rootCmd = &cobra.Command{
		Use:          "cloudkeeper",
		SilenceUsage: true,
		Short:        "Manage key-pairs, instances, images, flavors and networks of a cloud project.",
		Long: `Cloudkeeper manages the resources of a cloud project (OpenStack, AWS or an in-memory
mock) through one set of commands. Resources are addressed by name or identifier.

Creating an instance resolves its image, flavor, key-pair and networks first and
fails without side effects when one of them is missing or ambiguous.

The backend is selected by a YAML config file and the standard OS_* and AWS_*
environment variables.`,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if metricsFile == "" {
				return nil
			}
			if err := prometheus.WriteToTextfile(metricsFile, registry); err != nil {
				return fmt.Errorf("error writing metrics: %w", err)
			}
			return nil
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Cloudkeeper version %v %v\n", version, arch)
		},
	}
)

// session holds what a command needs to reach the configured backend
type session struct {
	log     logr.Logger
	conn    cr.Connector
	factory *factory.Factory
}

func newSession(ctx context.Context) (*session, error) {
	log, err := newLogger(verbosity)
	if err != nil {
		return nil, fmt.Errorf("error creating logger: %w", err)
	}

	if envFile != "" {
		if err := config.LoadEnvFile(envFile); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	conn, err := cfg.Connector(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating %s connector: %w", cfg.Backend, err)
	}
	log.V(1).Info("Connected", "backend", conn.Variant())

	return &session{
		log:     log,
		conn:    conn,
		factory: factory.New(factory.WithLogger(log), factory.WithRecorder(recorder)),
	}, nil
}

// manager returns the type-erased manager for the kind named by arg
func (s *session) manager(arg string) (cr.Manager[cr.Item], error) {
	kind, err := cr.ParseKind(arg)
	if err != nil {
		return nil, err
	}
	return s.factory.Create(kind, s.conn)
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(inventoryCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "The path to the config file (YAML format).")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "A .env file with variables to set before loading the config.")
	rootCmd.PersistentFlags().IntVarP(&verbosity, "verbosity", "v", 0, "Log verbosity, 1 logs every backend read.")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-textfile", "", "Write manager metrics to this file in the Prometheus text format.")
}
