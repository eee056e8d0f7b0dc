// Package scheduler runs delayed tasks. Real uses wall-clock timers; Virtual
// lets tests move time forward explicitly.
package scheduler

import (
	"sort"
	"sync"
	"time"
)

// Clock tells the time.
type Clock interface {
	Now() time.Time
}

// Scheduler runs task once after delay. Scheduled tasks cannot be cancelled.
type Scheduler interface {
	Clock
	Schedule(delay time.Duration, task func())
}

// Real schedules on time.AfterFunc.
type Real struct {
	wg sync.WaitGroup
}

// NewReal returns a wall-clock scheduler.
func NewReal() *Real { return &Real{} }

func (r *Real) Now() time.Time { return time.Now() }

func (r *Real) Schedule(delay time.Duration, task func()) {
	r.wg.Add(1)
	time.AfterFunc(delay, func() {
		defer r.wg.Done()
		task()
	})
}

// Wait blocks until every scheduled task has run.
func (r *Real) Wait() { r.wg.Wait() }

type pending struct {
	due  time.Time
	seq  int
	task func()
}

// Virtual is a manually advanced scheduler. Tasks run on the goroutine that
// calls Advance, in due order; ties run in scheduling order.
type Virtual struct {
	mu    sync.Mutex
	now   time.Time
	seq   int
	queue []pending
}

// NewVirtual returns a Virtual clock starting at start.
func NewVirtual(start time.Time) *Virtual {
	return &Virtual{now: start}
}

func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

func (v *Virtual) Schedule(delay time.Duration, task func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seq++
	v.queue = append(v.queue, pending{due: v.now.Add(delay), seq: v.seq, task: task})
}

// Advance moves the clock forward by d, running every task that falls due
// on the way. Tasks scheduled while advancing run too if they fall inside d.
func (v *Virtual) Advance(d time.Duration) {
	v.mu.Lock()
	target := v.now.Add(d)
	v.mu.Unlock()

	for {
		v.mu.Lock()
		sort.SliceStable(v.queue, func(i, j int) bool {
			if v.queue[i].due.Equal(v.queue[j].due) {
				return v.queue[i].seq < v.queue[j].seq
			}
			return v.queue[i].due.Before(v.queue[j].due)
		})
		if len(v.queue) == 0 || v.queue[0].due.After(target) {
			v.now = target
			v.mu.Unlock()
			return
		}
		next := v.queue[0]
		v.queue = v.queue[1:]
		if next.due.After(v.now) {
			v.now = next.due
		}
		v.mu.Unlock()

		next.task()
	}
}

// Set jumps the clock to t without running anything. Pending tasks keep the
// due times they were scheduled with.
func (v *Virtual) Set(t time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.now = t
}

// Pending returns the number of tasks not yet run.
func (v *Virtual) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.queue)
}
