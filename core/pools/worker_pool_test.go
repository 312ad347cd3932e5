package pools

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolProcessesEveryItemExactlyOnce(t *testing.T) {
	const items = 100

	var mu sync.Mutex
	seen := make(map[int]int, items)

	pool, producer := Spawn(Config{Size: 4, PollInterval: 5 * time.Millisecond}, func(item int) {
		mu.Lock()
		seen[item]++
		mu.Unlock()
	})

	for i := 0; i < items; i++ {
		require.NoError(t, producer.Send(i))
	}

	pool.Join()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, items)
	for item, count := range seen {
		assert.Equalf(t, 1, count, "item %d processed %d times", item, count)
	}

	stats := pool.Stats()
	assert.Equal(t, uint64(items), stats.Submitted)
	assert.Equal(t, uint64(items), stats.Completed)
	assert.Equal(t, uint64(0), stats.Pending)
}

func TestJoinWaitsForInFlightItem(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	pool, producer := Spawn(Config{Size: 1, PollInterval: 5 * time.Millisecond}, func(int) {
		close(started)
		<-release
	})

	require.NoError(t, producer.Send(1))
	<-started

	joined := make(chan struct{})
	go func() {
		pool.Join()
		close(joined)
	}()

	select {
	case <-joined:
		t.Fatal("Join returned while an item was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)

	select {
	case <-joined:
	case <-time.After(time.Second):
		t.Fatal("Join did not return after the in-flight item finished")
	}
}

func TestSendFailsAfterJoin(t *testing.T) {
	pool, producer := Spawn(Config{Size: 2, PollInterval: 5 * time.Millisecond}, func(int) {})

	pool.Join()

	err := producer.Send(1)
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestSendFailsAfterProducerClose(t *testing.T) {
	pool, producer := Spawn(Config{Size: 2, PollInterval: 5 * time.Millisecond}, func(int) {})

	producer.Close()

	err := producer.Send(1)
	assert.ErrorIs(t, err, ErrPoolClosed)

	pool.Wait()
}

func TestProducerCloseDrainsQueuedItems(t *testing.T) {
	const items = 20

	var mu sync.Mutex
	processed := 0

	pool, producer := Spawn(Config{Size: 1, QueueSize: items, PollInterval: 5 * time.Millisecond}, func(int) {
		time.Sleep(time.Millisecond)
		mu.Lock()
		processed++
		mu.Unlock()
	})

	for i := 0; i < items; i++ {
		require.NoError(t, producer.Send(i))
	}

	producer.Close()
	pool.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, items, processed, "items queued before close must still be processed")
}

func TestJoinNeverStrandsAcceptedSends(t *testing.T) {
	// A Send racing Join must either fail or have its item handled; an
	// accepted item left in the queue after Join returns is a lost
	// connection.
	for trial := 0; trial < 50; trial++ {
		var handled atomic.Uint64

		pool, producer := Spawn(Config{Size: 1, PollInterval: time.Millisecond}, func(int) {
			handled.Add(1)
		})

		var accepted atomic.Uint64
		senderDone := make(chan struct{})
		go func() {
			defer close(senderDone)
			for i := 0; ; i++ {
				if producer.Send(i) != nil {
					return
				}
				accepted.Add(1)
			}
		}()

		time.Sleep(time.Millisecond)
		pool.Join()
		<-senderDone

		require.Equal(t, accepted.Load(), handled.Load(), "trial %d", trial)
	}
}

func TestShutdownObservedAtPollBoundary(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mClock := quartz.NewMock(t)
	trap := mClock.Trap().NewTimer()
	defer trap.Close()

	const poll = 50 * time.Millisecond
	pool, _ := Spawn(Config{Size: 1, PollInterval: poll, Clock: mClock}, func(int) {})

	// Let the worker arm its idle poll timer.
	trap.MustWait(ctx).Release()

	joined := make(chan struct{})
	go func() {
		pool.Join()
		close(joined)
	}()

	require.Eventually(t, pool.closed.Load, time.Second, time.Millisecond)

	// The flag is set, but the worker must not act on it until its timer
	// fires.
	select {
	case <-joined:
		t.Fatal("worker exited before its poll boundary")
	case <-time.After(25 * time.Millisecond):
	}

	mClock.Advance(poll).MustWait(ctx)

	select {
	case <-joined:
	case <-time.After(time.Second):
		t.Fatal("worker did not observe shutdown at the poll boundary")
	}
}

func TestStatsPendingNeverUnderflows(t *testing.T) {
	pool, producer := Spawn(Config{Size: 4, PollInterval: time.Millisecond}, func(int) {})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			if producer.Send(i) != nil {
				return
			}
		}
	}()

	for sampling := true; sampling; {
		st := pool.Stats()
		assert.LessOrEqual(t, st.Pending, st.Submitted)

		select {
		case <-done:
			sampling = false
		default:
		}
	}

	pool.Join()
	assert.Equal(t, uint64(0), pool.Stats().Pending)
}

func TestIdleShutdownLatencyIsBounded(t *testing.T) {
	pool, _ := Spawn(Config{Size: 4, PollInterval: 10 * time.Millisecond}, func(int) {})

	start := time.Now()
	pool.Join()

	// Workers only observe shutdown at a poll boundary, so the bound is the
	// poll interval plus scheduling slack.
	assert.Less(t, time.Since(start), time.Second)
}

func TestSpawnAppliesDefaults(t *testing.T) {
	pool, producer := Spawn(Config{}, func(int) {})

	assert.Equal(t, 1, pool.Size())
	require.NoError(t, producer.Send(1))

	pool.Join()
	assert.Equal(t, uint64(1), pool.Stats().Completed)
}
