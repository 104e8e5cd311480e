package motion

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Segment is one queued motion operation. Execution is modeled by its
// duration; the real trajectory lives outside this system.
type Segment struct {
	ID       uuid.UUID     `json:"id"`
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration"`
}

// Queue is the motion backlog the output dispatcher synchronizes against.
// Segments are consumed by a single worker in submission order. WaitIdle
// blocks, without timeout, until the backlog and the in-flight segment are
// gone. Output commands must never interleave with queued motion.
type Queue struct {
	logger *zap.Logger

	mu        sync.Mutex
	cond      *sync.Cond
	pending   []Segment
	executing bool
	running   bool

	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewQueue(logger *zap.Logger) *Queue {
	q := &Queue{
		logger:   logger,
		stopChan: make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Start launches the consumer worker.
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return
	}

	q.running = true
	q.wg.Add(1)
	go q.consumeLoop()

	q.logger.Info("motion queue started")
}

// Stop drains nothing: the worker finishes the in-flight segment and exits.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	q.cond.Broadcast()
	q.mu.Unlock()

	q.wg.Wait()
	q.logger.Info("motion queue stopped")
}

// Push appends a segment to the backlog.
func (q *Queue) Push(name string, duration time.Duration) (Segment, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.running {
		return Segment{}, fmt.Errorf("motion queue not running")
	}

	seg := Segment{
		ID:       uuid.New(),
		Name:     name,
		Duration: duration,
	}
	q.pending = append(q.pending, seg)
	q.cond.Broadcast()

	q.logger.Debug("motion segment queued",
		zap.String("id", seg.ID.String()),
		zap.String("name", seg.Name),
		zap.Duration("duration", seg.Duration))

	return seg, nil
}

// WaitIdle blocks until every previously queued segment has been consumed.
// No timeout: an upstream fault that stalls the queue stalls the caller.
func (q *Queue) WaitIdle() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.pending) > 0 || q.executing {
		q.cond.Wait()
	}
}

// Depth reports the number of segments waiting, excluding the in-flight one.
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Idle reports whether the backlog is empty and nothing is executing.
func (q *Queue) Idle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending) == 0 && !q.executing
}

func (q *Queue) consumeLoop() {
	defer q.wg.Done()

	for {
		q.mu.Lock()
		for len(q.pending) == 0 && q.running {
			q.cond.Wait()
		}
		if !q.running {
			q.mu.Unlock()
			return
		}

		seg := q.pending[0]
		q.pending = q.pending[1:]
		q.executing = true
		q.mu.Unlock()

		q.logger.Debug("motion segment executing",
			zap.String("id", seg.ID.String()),
			zap.String("name", seg.Name))

		time.Sleep(seg.Duration)

		q.mu.Lock()
		q.executing = false
		q.cond.Broadcast()
		q.mu.Unlock()
	}
}
