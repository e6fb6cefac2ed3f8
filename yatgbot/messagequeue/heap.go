package messagequeue

import (
	"container/heap"
	"context"
	"time"

	"github.com/gotd/td/tg"
)

// Run performs one outbound RPC and returns the server's updates.
type Run func(ctx context.Context) (tg.UpdatesClass, error)

// JobResult is delivered exactly once per job.
type JobResult struct {
	Updates tg.UpdatesClass
	Err     error
}

// Job is one queued RPC. Lower Priority values run first; equal priorities
// run in submission order. Weight is the number of messages the RPC sends
// and scales the worker's pause after it.
type Job struct {
	ID        uint64
	Priority  uint16
	Weight    uint
	Timestamp time.Time
	run       Run
	result    chan JobResult
}

func (j *Job) finish(result JobResult) {
	j.result <- result
	close(j.result)
}

type jobHeap []*Job

func (h jobHeap) Len() int { return len(h) }

func (h jobHeap) Less(i, j int) bool {
	if h[i].Priority == h[j].Priority {
		return h[i].Timestamp.Before(h[j].Timestamp)
	}

	return h[i].Priority < h[j].Priority
}

func (h jobHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *jobHeap) Push(x any) {
	job, ok := x.(*Job)
	if !ok {
		return
	}

	*h = append(*h, job)
}

func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	job := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]

	return job
}

// removeFunc drops every job matching fn and returns them.
func (h *jobHeap) removeFunc(fn func(*Job) bool) []*Job {
	var removed []*Job

	kept := (*h)[:0]

	for _, job := range *h {
		if fn(job) {
			removed = append(removed, job)

			continue
		}

		kept = append(kept, job)
	}

	for i := len(kept); i < len(*h); i++ {
		(*h)[i] = nil
	}

	*h = kept

	if len(removed) > 0 {
		heap.Init(h)
	}

	return removed
}
