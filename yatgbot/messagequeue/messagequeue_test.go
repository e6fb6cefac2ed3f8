package messagequeue_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/YaCodeDev/GoYaTgBotAPI/yatgbot/messagequeue"
	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_DoReturnsUpdates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := messagequeue.NewDispatcher(ctx, 1, 0, nil)

	want := &tg.UpdateShortSentMessage{ID: 42}

	got, err := queue.Do(ctx, 0, 1, func(context.Context) (tg.UpdatesClass, error) {
		return want, nil
	})

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDispatcher_PriorityOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := messagequeue.NewDispatcher(ctx, 1, 0, nil)

	gate := make(chan struct{})
	_, blocker := queue.Enqueue(0, 1, func(context.Context) (tg.UpdatesClass, error) {
		<-gate

		return nil, nil
	})

	var (
		mu    sync.Mutex
		order []int
	)

	record := func(n int) messagequeue.Run {
		return func(context.Context) (tg.UpdatesClass, error) {
			mu.Lock()
			order = append(order, n)
			mu.Unlock()

			return nil, nil
		}
	}

	require.Eventually(t, func() bool { return queue.Len() == 0 }, time.Second, time.Millisecond)

	_, low := queue.Enqueue(9, 1, record(3))
	_, first := queue.Enqueue(1, 1, record(1))
	_, second := queue.Enqueue(1, 1, record(2))

	close(gate)

	for _, ch := range []<-chan messagequeue.JobResult{blocker, first, second, low} {
		<-ch
	}

	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestDispatcher_DeleteJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := messagequeue.NewDispatcher(ctx, 1, 0, nil)

	gate := make(chan struct{})
	defer close(gate)

	queue.Enqueue(0, 1, func(context.Context) (tg.UpdatesClass, error) {
		<-gate

		return nil, nil
	})

	require.Eventually(t, func() bool { return queue.Len() == 0 }, time.Second, time.Millisecond)

	id, result := queue.Enqueue(0, 1, func(context.Context) (tg.UpdatesClass, error) {
		t.Error("canceled job must not run")

		return nil, nil
	})

	assert.True(t, queue.DeleteJob(id))
	assert.ErrorIs(t, (<-result).Err, messagequeue.ErrJobCanceled)
	assert.False(t, queue.DeleteJob(id))
}

func TestDispatcher_StopFailsPending(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	queue := messagequeue.NewDispatcher(ctx, 0, 0, nil)

	_, result := queue.Enqueue(0, 1, func(context.Context) (tg.UpdatesClass, error) {
		return nil, nil
	})

	cancel()

	select {
	case res := <-result:
		assert.ErrorIs(t, res.Err, messagequeue.ErrDispatcherStopped)
	case <-time.After(time.Second):
		t.Fatal("pending job was not failed on stop")
	}
}

func TestDispatcher_NilJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := messagequeue.NewDispatcher(ctx, 1, 0, nil)

	_, result := queue.Enqueue(0, 1, nil)

	assert.ErrorIs(t, (<-result).Err, messagequeue.ErrJobNil)
}
