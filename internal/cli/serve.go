package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/voltlab/gridclosure/internal/server"
	"github.com/voltlab/gridclosure/pkg/pipeline"
)

// serveCommand creates the serve command exposing closure queries over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		cfgPath string
		addr    string
	)
	overrides := configOverrides{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve closure table queries over HTTP",
		Long: `Serve closure table queries over HTTP.

Endpoints:

  GET /healthz
  GET /stats
  GET /nodes/{id}/descendants[?depth=N]
  GET /nodes/{id}/ancestors
  GET /nodes/{id}/at-depth/{n}

With a database backend the server reads whatever the last build stored.
With --store memory the records are loaded and the closure table is built
in-process at startup, which makes the server self-contained for small
networks and demos.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			overrides.apply(cmd, &cfg)
			if cmd.Flags().Changed("addr") {
				cfg.Serve.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "config file (default "+defaultConfigFile+" if present)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	overrides.register(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg Config) error {
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	// The memory backend starts empty; populate it from a fresh build.
	if cfg.Store.Backend == BackendMemory {
		runner := pipeline.NewRunner(st, c.Logger)
		opts := pipeline.Options{
			DataDir:      cfg.DataDir,
			NodesFile:    cfg.NodesFile,
			SegmentsFile: cfg.SegmentsFile,
			RootMarker:   cfg.RootMarker,
		}
		if _, err := runner.Execute(ctx, opts); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              cfg.Serve.Addr,
		Handler:           server.New(st, c.Logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("serving closure queries", "addr", cfg.Serve.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
