package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nutrieve/nutrieve/app/routes"
	"github.com/nutrieve/nutrieve/config"
	"github.com/nutrieve/nutrieve/internal/kernel"
	"github.com/nutrieve/nutrieve/internal/server"
	"github.com/nutrieve/nutrieve/pkg/auth"
	"github.com/nutrieve/nutrieve/pkg/cache"
	"github.com/nutrieve/nutrieve/pkg/database"
	"github.com/nutrieve/nutrieve/pkg/logger"
	"github.com/nutrieve/nutrieve/pkg/mail"
	"github.com/nutrieve/nutrieve/pkg/migration"
	"github.com/nutrieve/nutrieve/pkg/router"
	"github.com/nutrieve/nutrieve/pkg/tracing"
	"github.com/nutrieve/nutrieve/pkg/workerpool"
)

func newServeCmd() *cobra.Command {
	var (
		port    string
		migrate bool
	)

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"run"},
		Short:   "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := bootDB(); err != nil {
				return err
			}
			defer database.Close() //nolint:errcheck

			if config.IsProduction() && config.JWTSecret() == "change-me-in-production" {
				logger.Warn("JWT_SECRET is the built-in default")
			}

			if migrate {
				if _, err := migration.New(database.DB, os.Stdout).Run(); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			connectCache(ctx)
			defer cache.Close() //nolint:errcheck

			shutdownTracing, err := tracing.Init(ctx)
			if err != nil {
				return err
			}
			defer func() {
				fctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdownTracing(fctx); err != nil {
					logger.Warn("flush traces", "error", err)
				}
			}()

			mailPool := workerpool.New("mail", config.Int("MAIL_WORKERS", 4), config.Int("MAIL_QUEUE", 128))
			defer mailPool.Shutdown()

			k := kernel.NewHTTPKernel(deps(mailPool))

			opts := server.Options{Probe: k.Ping}
			if port != "" {
				opts.Addr = ":" + port
			}
			return server.Run(ctx, k.Handler(), opts)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (default APP_PORT)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "run pending migrations before serving")
	return cmd
}

func newRouteListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route:list",
		Short: "List every registered route",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Route registration only builds services; nothing touches the
			// database until a request arrives.
			k := kernel.NewHTTPKernel(routes.Deps{Tokens: auth.NewTokenManager("route-list", time.Hour)})
			return printRoutes(cmd, k.Router())
		},
	}
}

func printRoutes(cmd *cobra.Command, r *router.Router) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "METHOD\tPATH\tNAME")
	for _, ri := range r.Routes() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
	}
	return w.Flush()
}

// connectCache enables Redis. The API works without it, reading the
// catalog straight from the database.
func connectCache(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := cache.Connect(cctx); err != nil {
		logger.Warn("redis unavailable, caching disabled", "addr", config.RedisAddr(), "error", err)
	}
}

func deps(mailPool *workerpool.Pool) routes.Deps {
	return routes.Deps{
		DB:          database.DB,
		Tokens:      auth.NewTokenManager(config.JWTSecret(), auth.DefaultTokenTTL),
		Mailer:      mail.FromConfig().Background(mailPool),
		FrontendURL: config.FrontendURL(),
	}
}
