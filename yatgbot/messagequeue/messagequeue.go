// Package messagequeue paces outbound RPC calls of a bot through a priority
// queue served by a fixed pool of workers.
package messagequeue

import (
	"container/heap"
	"context"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/YaCodeDev/GoYaTgBotAPI/yaerrors"
	"github.com/YaCodeDev/GoYaTgBotAPI/yalogger"
	"github.com/gotd/td/tg"
)

// DefaultInterval is the pause a worker keeps after each sent message.
const DefaultInterval = time.Second

// Dispatcher runs queued jobs on workerCount workers. Each worker pauses for
// interval times the job weight after a job, which keeps a bot below the
// per-chat flood limits without a global rate limiter.
//
// Example:
//
//	queue := messagequeue.NewDispatcher(ctx, 4, messagequeue.DefaultInterval, log)
//	updates, err := queue.Do(ctx, 0, 1, func(ctx context.Context) (tg.UpdatesClass, error) {
//		return api.MessagesSendMessage(ctx, req)
//	})
type Dispatcher struct {
	heap     jobHeap
	cond     *sync.Cond
	interval time.Duration
	stopped  bool
	log      yalogger.Logger
}

func NewDispatcher(
	ctx context.Context,
	workerCount uint,
	interval time.Duration,
	log yalogger.Logger,
) *Dispatcher {
	if log == nil {
		log = yalogger.NewBaseLogger(nil).NewLogger()
	}

	dispatcher := &Dispatcher{
		cond:     sync.NewCond(&sync.Mutex{}),
		interval: interval,
		log:      log,
	}

	for i := range workerCount {
		go dispatcher.worker(ctx, i)
	}

	go func() {
		<-ctx.Done()

		dispatcher.cond.L.Lock()
		dispatcher.stopped = true
		pending := dispatcher.heap
		dispatcher.heap = nil
		dispatcher.cond.Broadcast()
		dispatcher.cond.L.Unlock()

		for _, job := range pending {
			job.finish(JobResult{Err: ErrDispatcherStopped})
		}
	}()

	return dispatcher
}

// Enqueue adds run to the queue. The returned channel receives the result
// once and is then closed.
func (d *Dispatcher) Enqueue(priority uint16, weight uint, run Run) (uint64, <-chan JobResult) {
	job := &Job{
		ID:        rand.Uint64(),
		Priority:  priority,
		Weight:    max(weight, 1),
		Timestamp: time.Now(),
		run:       run,
		result:    make(chan JobResult, 1),
	}

	if run == nil {
		job.finish(JobResult{Err: ErrJobNil})

		return job.ID, job.result
	}

	d.cond.L.Lock()

	if d.stopped {
		d.cond.L.Unlock()
		job.finish(JobResult{Err: ErrDispatcherStopped})

		return job.ID, job.result
	}

	heap.Push(&d.heap, job)
	d.cond.Signal()
	d.cond.L.Unlock()

	return job.ID, job.result
}

// Do enqueues run and waits for its result or for ctx.
func (d *Dispatcher) Do(ctx context.Context, priority uint16, weight uint, run Run) (tg.UpdatesClass, error) {
	id, result := d.Enqueue(priority, weight, run)

	select {
	case res := <-result:
		return res.Updates, res.Err
	case <-ctx.Done():
		d.DeleteJob(id)

		return nil, yaerrors.FromError(http.StatusRequestTimeout, ctx.Err(), "message queue: wait for job")
	}
}

// DeleteJob cancels a job that has not started yet.
func (d *Dispatcher) DeleteJob(id uint64) bool {
	return len(d.DeleteJobFunc(func(job *Job) bool { return job.ID == id })) > 0
}

// DeleteJobFunc cancels every pending job matching fn and returns their IDs.
// Cancelled jobs receive ErrJobCanceled.
func (d *Dispatcher) DeleteJobFunc(fn func(*Job) bool) []uint64 {
	d.cond.L.Lock()
	removed := d.heap.removeFunc(fn)
	d.cond.L.Unlock()

	ids := make([]uint64, 0, len(removed))

	for _, job := range removed {
		job.finish(JobResult{Err: ErrJobCanceled})
		ids = append(ids, job.ID)
	}

	return ids
}

// Len returns the number of pending jobs.
func (d *Dispatcher) Len() int {
	d.cond.L.Lock()
	defer d.cond.L.Unlock()

	return d.heap.Len()
}

func (d *Dispatcher) next() (*Job, bool) {
	d.cond.L.Lock()
	defer d.cond.L.Unlock()

	for d.heap.Len() == 0 && !d.stopped {
		d.cond.Wait()
	}

	if d.stopped {
		return nil, false
	}

	job, _ := heap.Pop(&d.heap).(*Job)

	return job, true
}

func (d *Dispatcher) worker(ctx context.Context, id uint) {
	log := d.log.WithField("worker_id", id)

	for {
		job, ok := d.next()
		if !ok {
			return
		}

		start := time.Now()

		updates, err := job.run(ctx)
		if err != nil {
			log.Debugf("Job %d failed: %v", job.ID, err)
		}

		job.finish(JobResult{Updates: updates, Err: err})

		pause := d.interval*time.Duration(job.Weight) - time.Since(start)
		if pause <= 0 {
			continue
		}

		timer := time.NewTimer(pause)

		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()

			return
		}
	}
}
