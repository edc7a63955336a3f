package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/vantagehr/benefits/modules/benefits"
	"github.com/vantagehr/benefits/pkg/composables"
	"github.com/vantagehr/benefits/pkg/configuration"
	"github.com/vantagehr/benefits/pkg/eventbus"
	"github.com/vantagehr/benefits/pkg/queue"
)

func main() {
	root := &cobra.Command{
		Use:           "server",
		Short:         "Benefits HTTP API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	conf := configuration.Use()
	defer conf.Unload()
	log := conf.Logger()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		return err
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{Addr: conf.Redis.URL})
	defer func() { _ = rdb.Close() }()

	mod := benefits.New(benefits.Options{
		Bus:      eventbus.NewEventPublisher(log),
		Producer: queue.NewProducer(rdb, conf.Redis.BatchQueue),
		Conf:     conf,
		Log:      log,
	})

	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(composables.WithPool(req.Context(), pool)))
		})
	})
	mod.RegisterRoutes(r, conf, log)

	// Reconciliation reports are plain files under the uploads root.
	r.PathPrefix("/" + conf.UploadsPath + "/").Handler(
		http.StripPrefix("/"+conf.UploadsPath+"/", http.FileServer(http.Dir(conf.UploadsPath))),
	)
	if conf.Prometheus.Enabled {
		r.Handle(conf.Prometheus.Path, promhttp.Handler())
	}

	srv := &http.Server{
		Addr:         conf.SocketAddress,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", conf.SocketAddress).Info("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
