package presence

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"presencia/backend/internal/entity"

	"github.com/redis/go-redis/v9"
)

const snapshotKey = "presence:snapshot"

type VenueSource interface {
	Active(ctx context.Context) ([]entity.Location, error)
}

type WorkerSource interface {
	GetAllActive(ctx context.Context) ([]entity.User, error)
}

type RecordSource interface {
	TodayForAll(ctx context.Context, now time.Time) ([]entity.LogEntry, error)
}

// Refresher periodically rebuilds the venue snapshot and keeps the latest
// one available for the dashboard.
type Refresher struct {
	venues   VenueSource
	workers  WorkerSource
	records  RecordSource
	rdb      *redis.Client
	interval time.Duration
	now      func() time.Time

	mu     sync.RWMutex
	latest Snapshot
	ready  bool
}

func NewRefresher(venues VenueSource, workers WorkerSource, records RecordSource, rdb *redis.Client) *Refresher {
	return &Refresher{
		venues:   venues,
		workers:  workers,
		records:  records,
		rdb:      rdb,
		interval: 10 * time.Second,
		now:      time.Now,
	}
}

// Run refreshes once immediately and then on every tick until ctx is done.
func (r *Refresher) Run(ctx context.Context) {
	if err := r.Refresh(ctx); err != nil {
		log.Println("presence refresh:", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Refresh(ctx); err != nil {
				log.Println("presence refresh:", err)
			}
		}
	}
}

func (r *Refresher) Refresh(ctx context.Context) error {
	now := r.now()

	venues, err := r.venues.Active(ctx)
	if err != nil {
		return err
	}
	workers, err := r.workers.GetAllActive(ctx)
	if err != nil {
		return err
	}
	records, err := r.records.TodayForAll(ctx, now)
	if err != nil {
		return err
	}

	snap := Build(venues, workers, records, now)

	r.mu.Lock()
	r.latest = snap
	r.ready = true
	r.mu.Unlock()

	if r.rdb != nil {
		payload, err := json.Marshal(snap)
		if err != nil {
			return err
		}
		if err := r.rdb.Set(ctx, snapshotKey, payload, time.Minute).Err(); err != nil {
			log.Println("caching presence snapshot:", err)
		}
	}
	return nil
}

// Latest returns the most recent snapshot; ok is false before the first
// successful refresh.
func (r *Refresher) Latest() (Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest, r.ready
}
