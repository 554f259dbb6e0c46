package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/riverbend-maps/gagemap/internal/markers"
	"github.com/riverbend-maps/gagemap/internal/server"
	"github.com/riverbend-maps/gagemap/internal/tips"
	"github.com/riverbend-maps/gagemap/pkg/geocode"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gage map API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		cache := geocode.NewResultCache(cfg.Geocode.CacheEntries,
			time.Duration(cfg.Geocode.CacheTTLMinutes)*time.Minute)
		chain := geocode.NewChain(
			geocode.DefaultProviders(cfg.Geocode.OpenCageKey),
			geocode.WithCache(cache),
			geocode.WithBatchConcurrency(cfg.Geocode.BatchConcurrency),
		)

		gateway := server.NewGateway(cfg.USGS.BaseURL, cfg.What3Words.Key, cfg.NASA.Key, zap.L())

		tipSvc := tips.NewService(st, zap.L())
		if _, err := tipSvc.MigrateLegacy(ctx); err != nil {
			return eris.Wrap(err, "migrate legacy tip keys")
		}

		srv := server.New(
			chain,
			markers.NewService(st, zap.L()),
			tipSvc,
			gateway,
			zap.L(),
		)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		httpSrv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: srv.Router(server.Options{AllowedOrigins: cfg.Server.AllowedOrigins}),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			httpSrv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
