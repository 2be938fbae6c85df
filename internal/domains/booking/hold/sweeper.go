package hold

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"inncore/config"
	"inncore/infras/metrics"
	"inncore/infras/otel"
	"inncore/infras/s3"
	"inncore/internal/domains/booking/model"
	"inncore/internal/events"
	"inncore/shared/constant"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const (
	sweepBatch       = 500
	purgeBatch       = 200
	archiveDirectory = "expired-holds"
	archiveType      = "application/x-ndjson"
)

// Store is the part of the booking ledger the sweeper writes to.
type Store interface {
	ExpireHolds(ctx context.Context, now time.Time, limit uint64) ([]model.Booking, error)
	ListPurgeable(ctx context.Context, before time.Time, limit uint64) ([]model.Booking, error)
	Purge(ctx context.Context, ids ...string) (int64, error)
}

// Sweeper cancels lapsed holds on a cron schedule and, when a retention is configured, archives
// and deletes them afterwards.
type Sweeper struct {
	store     Store
	publisher events.Publisher
	archive   s3.S3
	metrics   *metrics.Metrics
	policy    Policy
	cfg       *config.Config
	otel      otel.Otel

	cron    *cron.Cron
	running sync.Mutex
}

func NewSweeper(
	store Store,
	publisher events.Publisher,
	archive s3.S3,
	metrics *metrics.Metrics,
	policy Policy,
	cfg *config.Config,
	otel otel.Otel,
) *Sweeper {
	return &Sweeper{
		store:     store,
		publisher: publisher,
		archive:   archive,
		metrics:   metrics,
		policy:    policy,
		cfg:       cfg,
		otel:      otel,
	}
}

// Start registers the sweep on the configured schedule and starts the scheduler.
func (s *Sweeper) Start(ctx context.Context) error {
	s.cron = cron.New(cron.WithLocation(s.policy.Now().Location()))

	_, err := s.cron.AddFunc(s.cfg.Reservation.SweepSchedule, func() { s.run(context.WithoutCancel(ctx)) })
	if err != nil {
		log.Error().Err(err).Str("schedule", s.cfg.Reservation.SweepSchedule).Msg("invalid sweep schedule")

		return fmt.Errorf("invalid sweep schedule %q: %w", s.cfg.Reservation.SweepSchedule, err)
	}

	s.cron.Start()
	log.Info().Str("schedule", s.cfg.Reservation.SweepSchedule).Msg("Hold sweeper started")

	return nil
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}

	<-s.cron.Stop().Done()
	log.Info().Msg("Hold sweeper stopped")
}

// run skips a tick while the previous one is still working.
func (s *Sweeper) run(ctx context.Context) {
	if !s.running.TryLock() {
		log.Warn().Msg("previous hold sweep still running, skipping tick")

		return
	}
	defer s.running.Unlock()

	if _, err := s.Sweep(ctx); err != nil {
		return
	}

	if s.cfg.Reservation.PurgeAfterHours > 0 {
		_, _ = s.Purge(ctx)
	}
}

// Sweep cancels every pending booking whose hold lapsed, in batches, and publishes one
// booking.hold_expired event per booking. It returns how many bookings were expired.
func (s *Sweeper) Sweep(ctx context.Context) (total int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelWorkerScopeName, constant.OtelWorkerScopeName+".hold.Sweep")
	defer scope.End()
	defer scope.TraceIfError(err)

	now := s.policy.Now()

	for {
		expired, err := s.store.ExpireHolds(ctx, now, sweepBatch)
		if err != nil {
			log.Error().Err(err).Int("expired", total).Msg("failed to expire holds")

			return total, fmt.Errorf("failed to expire holds: %w", err)
		}

		if len(expired) == 0 {
			break
		}

		total += len(expired)
		s.metrics.HoldsExpired(len(expired))

		published := make([]events.BookingEvent, len(expired))
		for i, booking := range expired {
			published[i] = events.NewBookingEvent(events.BookingHoldExpired, booking, now)
		}

		if err = s.publisher.Publish(ctx, published...); err != nil {
			log.Error().Err(err).Int("count", len(published)).Msg("failed to publish hold expiry events")
		}

		if len(expired) < sweepBatch {
			break
		}
	}

	scope.SetAttributes(map[string]any{"hold.expired": total})

	if total > 0 {
		log.Info().Int("expired", total).Msg("Expired pending holds")
	}

	return total, nil
}

// Purge archives expired holds older than the retention to object storage and deletes them.
// A batch is only deleted once its archive was written.
func (s *Sweeper) Purge(ctx context.Context) (total int64, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelWorkerScopeName, constant.OtelWorkerScopeName+".hold.Purge")
	defer scope.End()
	defer scope.TraceIfError(err)

	now := s.policy.Now()
	before := now.Add(-time.Duration(s.cfg.Reservation.PurgeAfterHours) * time.Hour)

	for batch := 0; ; batch++ {
		stale, err := s.store.ListPurgeable(ctx, before, purgeBatch)
		if err != nil {
			log.Error().Err(err).Msg("failed to list purgeable holds")

			return total, fmt.Errorf("failed to list purgeable holds: %w", err)
		}

		if len(stale) == 0 {
			break
		}

		if err = s.archiveBatch(ctx, stale, now, batch); err != nil {
			return total, err
		}

		ids := make([]string, len(stale))
		for i, booking := range stale {
			ids[i] = booking.ID
		}

		n, err := s.store.Purge(ctx, ids...)
		if err != nil {
			log.Error().Err(err).Int("count", len(ids)).Msg("failed to purge expired holds")

			return total, fmt.Errorf("failed to purge expired holds: %w", err)
		}

		total += n
		s.metrics.HoldsPurged(int(n))

		if len(stale) < purgeBatch {
			break
		}
	}

	scope.SetAttributes(map[string]any{"hold.purged": total})

	if total > 0 {
		log.Info().Int64("purged", total).Msg("Purged expired holds")
	}

	return total, nil
}

// archiveBatch writes one JSON document per line.
func (s *Sweeper) archiveBatch(ctx context.Context, bookings []model.Booking, now time.Time, batch int) error {
	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	for _, booking := range bookings {
		if err := encoder.Encode(booking); err != nil {
			log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to encode expired hold")

			return fmt.Errorf("failed to encode expired hold: %w", err)
		}
	}

	fileName := fmt.Sprintf("%s-%03d.ndjson", now.UTC().Format("20060102T150405Z"), batch)

	url, err := s.archive.UploadFileBytes(ctx, s.cfg.Reservation.ArchiveBucket, archiveDirectory, fileName, archiveType, buf.Bytes())
	if err != nil {
		log.Error().Err(err).Str("file", fileName).Msg("failed to archive expired holds")

		return fmt.Errorf("failed to archive expired holds: %w", err)
	}

	log.Debug().Str("url", url).Int("count", len(bookings)).Msg("Archived expired holds")

	return nil
}
