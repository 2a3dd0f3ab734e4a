package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httpadapter "svw.info/lattice/internal/adapters/http"
	sshadapter "svw.info/lattice/internal/adapters/ssh"
	"svw.info/lattice/internal/generator"
	"svw.info/lattice/internal/session"
	"svw.info/lattice/internal/tui"
	"svw.info/lattice/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the puzzle over SSH and the JSON API over HTTP",
	Long: `Start the credentialless SSH gateway. Every connection gets its own
puzzle session. When http.enabled is set, the JSON API, the landing page
and Prometheus metrics are served alongside.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, table, err := newService(cfg)
	if err != nil {
		return err
	}
	seeder := generator.ProcessSeeder{}

	hostKey, err := sshadapter.LoadOrCreateHostKey(cfg.SSH.HostKey)
	if err != nil {
		return err
	}
	gw, err := sshadapter.New(sshadapter.Options{
		HostKey:     hostKey,
		Logger:      logger,
		MaxSessions: cfg.SSH.MaxSessions,
		AcceptRate:  cfg.SSH.AcceptRate,
		AcceptBurst: cfg.SSH.AcceptBurst,
		IdleTimeout: cfg.GetIdleTimeout(),
		NewModel: func(ctx context.Context, c sshadapter.Client) (tea.Model, error) {
			ctl, err := session.New(ctx, session.Deps{
				Engine: engine,
				Table:  table,
				Seeder: seeder,
				Logger: c.Logger,
			}, session.Options{Debug: cfg.Debug, SplashDuration: cfg.GetSplashDuration()})
			if err != nil {
				return nil, err
			}
			return tui.New(ctl, tui.Options{
				Width:    c.Window.Width,
				Height:   c.Window.Height,
				Renderer: c.Renderer,
				Splash:   web.Splash(),
				Context:  ctx,
			}), nil
		},
	})
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.SSH.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.SSH.Addr, err)
	}
	logger.Info("Serving puzzle",
		zap.String("ssh", cfg.SSH.Addr),
		zap.Bool("debug", cfg.Debug),
		zap.String("invite_file", cfg.InviteFile))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return gw.Serve(gctx, ln) })

	if cfg.HTTP.Enabled {
		gin.SetMode(gin.ReleaseMode)
		h := httpadapter.New(engine, httpadapter.Options{
			Seeder:  seeder,
			Table:   table,
			Logger:  logger.Named("http"),
			SSHPort: cfg.SSHPort(),
		})
		srv := &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           h.NewRouter(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("HTTP listening", zap.String("addr", cfg.HTTP.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped", zap.Error(err))
		return err
	}
	logger.Info("Server stopped")
	return nil
}
