package cli

import (
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"zookeeper/internal/adapters/animals"
	"zookeeper/internal/core"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				rootOpts.cfg.Port = port
			}
			return runServe(cmd, rootOpts)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, opts *RootOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := core.NewPrometheusMetricsRecorder(reg)
	if err != nil {
		return err
	}
	svc := core.NewService(store, core.WithLogger(opts.logger), core.WithMetricsRecorder(metrics))

	router := animals.NewRouter(animals.RouterConfig{
		Service:   svc,
		Logger:    opts.logger,
		PublicDir: opts.cfg.PublicDir,
		Gatherer:  reg,
	})
	opts.logger.Info("server listening",
		"addr", opts.cfg.Addr(),
		"driver", opts.cfg.Storage.Driver,
		"animals", store.Len(),
	)
	return animals.Serve(ctx, opts.cfg.Addr(), router)
}
