package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/bankpredict/internal/adapters/mq/queue"
	"github.com/okian/bankpredict/internal/adapters/mq/worker"
	"github.com/okian/bankpredict/internal/domain/model"
	logging "github.com/okian/bankpredict/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	ch   chan queue.Record
	once sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{ch: make(chan queue.Record, 100)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan queue.Record { return mq.ch }

func (mq *mockQueue) Close() error {
	mq.once.Do(func() { close(mq.ch) })
	return nil
}

func (mq *mockQueue) add(id string) {
	mq.ch <- model.PredictionRecord{RequestID: id, Probability: 0.6, CreatedAt: time.Now()}
}

type mockWriter struct {
	mu     sync.Mutex
	saved  []string
	errors map[string]error
	delay  time.Duration
}

func newMockWriter() *mockWriter {
	return &mockWriter{errors: make(map[string]error)}
}

func (m *mockWriter) Save(_ context.Context, rec queue.Record) error { //nolint:gocritic // hugeParam
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.errors[rec.RequestID]; ok {
		return err
	}
	m.saved = append(m.saved, rec.RequestID)
	return nil
}

func (m *mockWriter) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

func (m *mockWriter) has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.saved {
		if s == id {
			return true
		}
	}
	return false
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a new InMemoryWorker", t, func() {
		_ = logging.Init()
		q := newMockQueue()
		w := newMockWriter()

		convey.Convey("When creating a worker with options", func() {
			wk := worker.NewInMemoryWorker(q, w, worker.WithName("history-1"), worker.WithLogger(logging.Get()))

			convey.Convey("Then it should be created successfully", func() {
				convey.So(wk, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When running a worker", func() {
			wk := worker.NewInMemoryWorker(q, w)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go wk.Run(ctx)

			convey.Convey("And when processing records", func() {
				q.add("r1")
				q.add("r2")

				convey.Convey("Then it should write them", func() {
					convey.So(waitFor(func() bool { return w.count() == 2 }), convey.ShouldBeTrue)
					convey.So(w.has("r1"), convey.ShouldBeTrue)
				})
			})

			convey.Convey("And when a write fails", func() {
				w.mu.Lock()
				w.errors["bad"] = errors.New("disk full")
				w.mu.Unlock()
				q.add("bad")
				q.add("good")

				convey.Convey("Then later records are still written", func() {
					convey.So(waitFor(func() bool { return w.has("good") }), convey.ShouldBeTrue)
					convey.So(w.has("bad"), convey.ShouldBeFalse)
				})
			})

			convey.Convey("And when shutting down", func() {
				sctx, scancel := context.WithTimeout(context.Background(), time.Second)
				defer scancel()

				convey.Convey("Then it should stop gracefully", func() {
					convey.So(wk.Shutdown(sctx), convey.ShouldBeNil)
					convey.So(wk.Shutdown(sctx), convey.ShouldBeNil)
				})
			})
		})

		convey.Convey("When context is cancelled", func() {
			wk := worker.NewInMemoryWorker(q, w)
			ctx, cancel := context.WithCancel(context.Background())
			go wk.Run(ctx)
			cancel()

			convey.Convey("Then worker should stop", func() {
				select {
				case <-wk.Done():
				case <-time.After(time.Second):
					t.Error("worker did not stop")
				}
			})
		})

		convey.Convey("When queue channel is closed", func() {
			wk := worker.NewInMemoryWorker(q, w)
			q.add("last")
			_ = q.Close()
			go wk.Run(context.Background())

			convey.Convey("Then worker drains and stops", func() {
				select {
				case <-wk.Done():
				case <-time.After(time.Second):
					t.Error("worker did not stop")
				}
				convey.So(w.has("last"), convey.ShouldBeTrue)
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a new worker pool", t, func() {
		q := newMockQueue()
		w := newMockWriter()

		convey.Convey("When created with a non-positive count", func() {
			p := worker.NewPool(0, q, w)

			convey.Convey("Then it uses at least one worker", func() {
				convey.So(p.Size(), convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When started with several workers", func() {
			p := worker.NewPool(4, q, w)
			p.Start(context.Background())
			for i := 0; i < 50; i++ {
				q.add(fmt.Sprintf("r%d", i))
			}

			convey.Convey("Then shutdown drains every queued record", func() {
				convey.So(p.Shutdown(context.Background()), convey.ShouldBeNil)
				convey.So(w.count(), convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When shutdown runs out of time", func() {
			w.delay = 50 * time.Millisecond
			p := worker.NewPool(1, q, w)
			p.Start(context.Background())
			for i := 0; i < 20; i++ {
				q.add(fmt.Sprintf("r%d", i))
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
			defer cancel()

			convey.Convey("Then it reports the timeout", func() {
				err := p.Shutdown(ctx)
				convey.So(errors.Is(err, context.DeadlineExceeded), convey.ShouldBeTrue)
			})
		})
	})
}
