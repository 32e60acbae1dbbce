package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/blogcms/cms-api/internal/api/metrics"
	"github.com/blogcms/cms-api/internal/core/domain"
	"github.com/blogcms/cms-api/internal/core/ports"
)

const (
	defaultWorkers  = 4
	channelBuffer   = 256
	deliveryTimeout = 30 * time.Second
	drainTimeout    = 5 * time.Second
)

// Dispatcher routes comment notifications to a fixed set of workers using
// consistent hashing on the blog id, so notifications for one post are
// delivered in submission order.
type Dispatcher struct {
	workers  []chan domain.CommentNotification
	notifier ports.CommentNotifier
	log      zerolog.Logger
	wg       sync.WaitGroup
}

var _ ports.NotificationQueue = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, notifier ports.CommentNotifier, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan domain.CommentNotification, numWorkers),
		notifier: notifier,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.CommentNotification, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has drained and exited.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands n to the worker responsible for its blog. It never blocks: a
// full channel drops the notification.
func (d *Dispatcher) Enqueue(n domain.CommentNotification) bool {
	idx := d.shardIndex(n.BlogID)
	select {
	case d.workers[idx] <- n:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
		return true
	default:
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("blog_id", n.BlogID).
			Int("worker_id", idx).
			Msg("notification queue full, dropping")
		return false
	}
}

// shardIndex maps a blog id deterministically to a worker index.
func (d *Dispatcher) shardIndex(blogID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(blogID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.CommentNotification) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case n := <-ch:
			metrics.NotificationQueueDepth.WithLabelValues(label).Dec()
			d.deliver(ctx, id, n)
		}
	}
}

// drain delivers whatever is still buffered using a fresh context, since the
// worker context is already done.
func (d *Dispatcher) drain(id int, ch <-chan domain.CommentNotification) {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	label := strconv.Itoa(id)

	for {
		select {
		case n := <-ch:
			metrics.NotificationQueueDepth.WithLabelValues(label).Dec()
			if ctx.Err() != nil {
				metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
				continue
			}
			d.deliver(ctx, id, n)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, id int, n domain.CommentNotification) {
	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	start := time.Now()
	err := d.notifier.Notify(ctx, n)
	metrics.NotificationDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("blog_id", n.BlogID).
			Int("worker_id", id).
			Msg("notification delivery failed")
		return
	}
	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
}
