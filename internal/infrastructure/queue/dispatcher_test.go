package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/blogcms/cms-api/internal/core/domain"
)

type recordingNotifier struct {
	mu    sync.Mutex
	got   []domain.CommentNotification
	err   error
	block chan struct{}
}

func (r *recordingNotifier) Notify(ctx context.Context, n domain.CommentNotification) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
	return r.err
}

func (r *recordingNotifier) snapshot() []domain.CommentNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.CommentNotification(nil), r.got...)
}

func TestDispatcher_DeliversInOrderPerBlog(t *testing.T) {
	rec := &recordingNotifier{}
	d := NewDispatcher(3, rec, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	for i := 0; i < 20; i++ {
		if !d.Enqueue(domain.CommentNotification{BlogID: "b1", Text: string(rune('a' + i))}) {
			t.Fatalf("enqueue %d rejected", i)
		}
	}

	cancel()
	d.Wait()

	got := rec.snapshot()
	if len(got) != 20 {
		t.Fatalf("expected 20 deliveries, got %d", len(got))
	}
	for i, n := range got {
		if n.Text != string(rune('a'+i)) {
			t.Fatalf("delivery %d out of order: %q", i, n.Text)
		}
	}
}

func TestDispatcher_FailedDeliveryDoesNotStopWorker(t *testing.T) {
	rec := &recordingNotifier{err: errors.New("smtp down")}
	d := NewDispatcher(1, rec, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	d.Enqueue(domain.CommentNotification{BlogID: "b1"})
	d.Enqueue(domain.CommentNotification{BlogID: "b2"})

	deadline := time.Now().Add(2 * time.Second)
	for len(rec.snapshot()) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	d.Wait()

	if n := len(rec.snapshot()); n != 2 {
		t.Fatalf("expected 2 attempts, got %d", n)
	}
}

func TestDispatcher_EnqueueNeverBlocks(t *testing.T) {
	rec := &recordingNotifier{block: make(chan struct{})}
	d := NewDispatcher(1, rec, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	// One item is held by the blocked worker; the rest fill the buffer.
	accepted := 0
	for i := 0; i < channelBuffer+10; i++ {
		if d.Enqueue(domain.CommentNotification{BlogID: "b1"}) {
			accepted++
		}
	}
	if accepted > channelBuffer+1 {
		t.Fatalf("accepted %d, more than buffer allows", accepted)
	}
	if accepted == channelBuffer+10 {
		t.Fatalf("expected some notifications to be dropped")
	}

	cancel()
	close(rec.block)
	d.Wait()
}

func TestDispatcher_ShardIndexStable(t *testing.T) {
	d := NewDispatcher(8, &recordingNotifier{}, zerolog.Nop())
	first := d.shardIndex("65a1f0c2e4b0a1b2c3d4e5f6")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("65a1f0c2e4b0a1b2c3d4e5f6"); got != first {
			t.Fatalf("shard changed: %d != %d", got, first)
		}
	}
	if first < 0 || first >= 8 {
		t.Fatalf("shard out of range: %d", first)
	}
}

func TestNewDispatcher_DefaultWorkers(t *testing.T) {
	d := NewDispatcher(0, &recordingNotifier{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
}
