package queue

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/roots/admin-console/internal/core/domain"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Sink persists one audit entry.
type Sink interface {
	Insert(ctx context.Context, a *domain.Activity) error
}

// Dispatcher routes audit entries to a fixed set of workers using consistent
// hashing on the target id, so entries about one request are written in the
// order they were recorded.
type Dispatcher struct {
	workers []chan domain.Activity
	sink    Sink
	log     zerolog.Logger
	wg      sync.WaitGroup

	// mu guards closed; channels are closed under the write lock so a send
	// under the read lock never hits a closed channel.
	mu     sync.RWMutex
	closed bool
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sink Sink, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.Activity, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Activity, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Once ctx is cancelled the dispatcher
// refuses new entries, and workers return after writing everything already
// accepted.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
	go func() {
		<-ctx.Done()
		d.close()
	}()
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands an entry to the worker responsible for its target. It never
// blocks: false is returned when that worker's buffer is full or the
// dispatcher is shutting down.
func (d *Dispatcher) Enqueue(a domain.Activity) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}
	select {
	case d.workers[d.shardIndex(a.TargetID)] <- a:
		return true
	default:
		return false
	}
}

func (d *Dispatcher) close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
}

// shardIndex maps a target id deterministically to a worker index.
func (d *Dispatcher) shardIndex(targetID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(targetID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Activity) {
	defer d.wg.Done()
	writeCtx := context.WithoutCancel(ctx)
	for a := range ch {
		if err := d.sink.Insert(writeCtx, &a); err != nil {
			d.log.Error().Err(err).
				Str("action", a.Action).
				Str("target_id", a.TargetID).
				Int("worker_id", id).
				Msg("activity write failed")
		}
	}
}
