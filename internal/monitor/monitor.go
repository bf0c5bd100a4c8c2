package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"outagemonitor/internal/models"
	"outagemonitor/internal/source"
	"outagemonitor/internal/storage"
	"outagemonitor/internal/telemetry"
)

const defaultHistorySize = 288

// Refresher periodically fetches the outage page and stores it as the cached
// snapshot. A failed refresh keeps the previous snapshot in place.
type Refresher struct {
	interval   time.Duration
	timeout    time.Duration
	fetcher    source.Source
	store      storage.PageStore
	log        zerolog.Logger
	metrics    *telemetry.Metrics
	maxHistory int

	mu      sync.RWMutex
	latest  *models.RefreshStatus
	history []models.RefreshStatus

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// Options configures a Refresher.
type Options struct {
	Interval    time.Duration
	Timeout     time.Duration
	HistorySize int
	Logger      zerolog.Logger
	Metrics     *telemetry.Metrics
}

// New creates a refresher that copies pages from fetcher into store.
func New(fetcher source.Source, store storage.PageStore, opts Options) *Refresher {
	interval := opts.Interval
	if interval < time.Minute {
		interval = time.Minute
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	historySize := opts.HistorySize
	if historySize <= 0 {
		historySize = defaultHistorySize
	}

	return &Refresher{
		interval:   interval,
		timeout:    timeout,
		fetcher:    fetcher,
		store:      store,
		log:        opts.Logger,
		metrics:    opts.Metrics,
		maxHistory: historySize,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start launches the refresh loop in a goroutine.
func (r *Refresher) Start() {
	go r.run()
}

// Stop requests graceful loop termination and waits until it is done. It is
// safe to call from several goroutines.
func (r *Refresher) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	<-r.doneCh
}

// RunOnce fetches and stores the page a single time.
func (r *Refresher) RunOnce(ctx context.Context) (models.RefreshStatus, error) {
	started := time.Now()
	status := models.RefreshStatus{StartedAt: started.UTC()}

	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	body, err := r.fetcher.Page(fetchCtx)
	cancel()
	if err == nil {
		status.Bytes = len(body)
		err = r.store.Save(ctx, models.Snapshot{Body: body, FetchedAt: started.UTC()})
	}

	status.DurationMS = time.Since(started).Milliseconds()
	status.OK = err == nil
	if err != nil {
		status.Error = err.Error()
	}
	r.record(status)
	r.metrics.ObserveRefresh(started, err)
	return status, err
}

// Latest returns the most recent refresh attempt.
func (r *Refresher) Latest() (models.RefreshStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.latest == nil {
		return models.RefreshStatus{}, false
	}
	return *r.latest, true
}

// History returns up to maxHistory previous refresh attempts, oldest first.
func (r *Refresher) History() []models.RefreshStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.history) == 0 {
		return nil
	}
	out := make([]models.RefreshStatus, len(r.history))
	copy(out, r.history)
	return out
}

func (r *Refresher) record(status models.RefreshStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.latest = &status
	r.history = append(r.history, status)
	if len(r.history) > r.maxHistory {
		r.history = r.history[len(r.history)-r.maxHistory:]
	}
}

func (r *Refresher) run() {
	defer close(r.doneCh)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-r.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	r.tick(ctx, "initial refresh")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.tick(ctx, "refresh")
		case <-r.stopCh:
			return
		}
	}
}

func (r *Refresher) tick(ctx context.Context, what string) {
	status, err := r.RunOnce(ctx)
	if err != nil {
		r.log.Error().Err(err).Msgf("%s failed, keeping previous snapshot", what)
		return
	}
	r.log.Info().Int("bytes", status.Bytes).Int64("duration_ms", status.DurationMS).Msgf("%s stored", what)
}
