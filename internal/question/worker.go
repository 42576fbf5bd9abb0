package question

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/tortaquiz/internal/db/repository"
)

// Prewarmer fills partitions ahead of demand so players hit the stored pool instead of
// waiting on the generator. It only inserts unused batches and never claims.
type Prewarmer struct {
	store     Store
	batches   *BatchGenerator
	queue     chan repository.Partition
	minUnused int64
	timeout   time.Duration
	logger    zerolog.Logger
}

type PrewarmOptions struct {
	MinUnused int
	QueueSize int
	Timeout   time.Duration
}

func NewPrewarmer(store Store, batches *BatchGenerator, logger zerolog.Logger, opts PrewarmOptions) *Prewarmer {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 32
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 90 * time.Second
	}
	return &Prewarmer{
		store:     store,
		batches:   batches,
		queue:     make(chan repository.Partition, opts.QueueSize),
		minUnused: int64(opts.MinUnused),
		timeout:   opts.Timeout,
		logger:    logger.With().Str("component", "question_prewarmer").Logger(),
	}
}

// Enqueue schedules a partition without blocking; false means the queue is full.
func (w *Prewarmer) Enqueue(p repository.Partition) bool {
	select {
	case w.queue <- p:
		return true
	default:
		return false
	}
}

// Run blocks until context cancellation.
func (w *Prewarmer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("question prewarmer stopping")
			return ctx.Err()
		case p := <-w.queue:
			w.handle(ctx, p)
		}
	}
}

func (w *Prewarmer) handle(ctx context.Context, p repository.Partition) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	log := w.logger.With().
		Str("theme", p.Theme).
		Str("difficulty", p.Difficulty).
		Str("age_group", p.AgeGroup).
		Logger()

	unused, err := w.store.CountUnused(ctx, p)
	if err != nil {
		log.Warn().Err(err).Msg("prewarm count failed")
		return
	}
	if unused >= w.minUnused {
		log.Debug().Int64("unused", unused).Msg("partition already warm")
		return
	}

	rows, err := w.batches.Generate(ctx, p)
	if err != nil {
		log.Error().Err(err).Msg("prewarm generation failed")
		return
	}
	log.Info().Int64("unused_before", unused).Int("generated", len(rows)).Msg("partition prewarmed")
}
