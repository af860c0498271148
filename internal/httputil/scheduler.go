package httputil

import (
	"container/heap"
	"context"
	"errors"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// DefaultRequestsPerSecond is the request ceiling MangAdventure sites expect.
const DefaultRequestsPerSecond = 6

// Priorities used by the providers. Higher values are admitted first when
// several requests are waiting for the same slot.
const (
	PriorityBackground = 0
	PriorityNormal     = 1
	PriorityUser       = 2
)

// ErrSchedulerClosed is returned for requests queued after or during Close.
var ErrSchedulerClosed = errors.New("scheduler closed")

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Scheduler paces outbound requests so that all callers together stay under
// a fixed requests-per-second ceiling. Waiting requests sit in a priority
// queue drained by a single dispatcher goroutine; the network call itself
// runs in the caller's goroutine, outside any lock.
type Scheduler struct {
	client  Doer
	limiter *rate.Limiter

	mu     sync.Mutex
	queue  ticketQueue
	seq    uint64
	closed bool

	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	start  sync.Once
}

// NewScheduler returns a scheduler admitting at most perSecond requests per
// second through client. A non-positive rate selects DefaultRequestsPerSecond.
func NewScheduler(client Doer, perSecond float64) *Scheduler {
	if perSecond <= 0 {
		perSecond = DefaultRequestsPerSecond
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		wake:    make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Schedule waits for an admission slot and then executes req. Transport
// errors from the client are returned unchanged; nothing is retried.
// Cancelling ctx while the request is queued removes it from the queue.
func (s *Scheduler) Schedule(ctx context.Context, req *http.Request, priority int) (*http.Response, error) {
	if err := s.admit(ctx, priority); err != nil {
		return nil, err
	}
	return s.client.Do(req)
}

// Close stops the dispatcher. Queued and future requests fail with
// ErrSchedulerClosed; requests already admitted are unaffected.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}

func (s *Scheduler) admit(ctx context.Context, priority int) error {
	t := &ticket{priority: priority, ready: make(chan struct{})}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSchedulerClosed
	}
	s.seq++
	t.seq = s.seq
	heap.Push(&s.queue, t)
	s.mu.Unlock()

	s.start.Do(func() { go s.dispatch() })
	select {
	case s.wake <- struct{}{}:
	default:
	}

	select {
	case <-t.ready:
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		if t.index >= 0 {
			heap.Remove(&s.queue, t.index)
		}
		s.mu.Unlock()
		return ctx.Err()
	case <-s.ctx.Done():
		return ErrSchedulerClosed
	}
}

// dispatch hands out one admission per limiter token, always to the
// highest-priority waiting ticket.
func (s *Scheduler) dispatch() {
	for {
		s.mu.Lock()
		empty := s.queue.Len() == 0
		s.mu.Unlock()

		if empty {
			select {
			case <-s.wake:
				continue
			case <-s.ctx.Done():
				return
			}
		}

		if err := s.limiter.Wait(s.ctx); err != nil {
			return
		}

		s.mu.Lock()
		if s.queue.Len() == 0 {
			// Every waiter was cancelled while we held the token.
			s.mu.Unlock()
			continue
		}
		t := heap.Pop(&s.queue).(*ticket)
		s.mu.Unlock()

		close(t.ready)
	}
}

type ticket struct {
	priority int
	seq      uint64
	index    int
	ready    chan struct{}
}

// ticketQueue orders tickets by priority, then arrival.
type ticketQueue []*ticket

func (q ticketQueue) Len() int { return len(q) }

func (q ticketQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority > q[j].priority
	}
	return q[i].seq < q[j].seq
}

func (q ticketQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *ticketQueue) Push(x any) {
	t := x.(*ticket)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *ticketQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
