package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/vantagehr/benefits/modules/benefits"
	"github.com/vantagehr/benefits/modules/benefits/services"
	"github.com/vantagehr/benefits/pkg/composables"
	"github.com/vantagehr/benefits/pkg/configuration"
	"github.com/vantagehr/benefits/pkg/eventbus"
	"github.com/vantagehr/benefits/pkg/queue"
)

func main() {
	root := &cobra.Command{
		Use:           "benefits-worker",
		Short:         "Processes queued benefit batch uploads",
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

	consumer := queue.NewConsumer(rdb, conf.Redis.BatchQueue, conf.Redis.DLQSuffix, log)
	log.WithField("queue", conf.Redis.BatchQueue).Info("worker started")

	err = consumer.Run(ctx, func(jobCtx context.Context, data []byte) error {
		var job services.BatchJob
		if err := json.Unmarshal(data, &job); err != nil {
			return err
		}
		return mod.Orchestrator.Run(composables.WithPool(jobCtx, pool), job.BatchID)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
