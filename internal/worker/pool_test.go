package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_ExecutesTasks(t *testing.T) {
	p := NewPool(2, 8, zerolog.Nop())
	defer p.Shutdown(time.Second)

	var n atomic.Int64
	handles := make([]*Handle, 0, 10)
	for i := 0; i < 10; i++ {
		h, err := p.Submit(func(ctx context.Context) error {
			n.Add(1)
			return nil
		})
		require.NoError(t, err)
		handles = append(handles, h)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for _, h := range handles {
		require.NoError(t, h.Wait(ctx))
	}
	assert.Equal(t, int64(10), n.Load())
}

func TestPool_HandleReturnsTaskError(t *testing.T) {
	p := NewPool(1, 1, zerolog.Nop())
	defer p.Shutdown(time.Second)

	want := errors.New("boom")
	h, err := p.Submit(func(ctx context.Context) error { return want })
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.ErrorIs(t, h.Wait(ctx), want)
}

func TestPool_RecoversPanic(t *testing.T) {
	p := NewPool(1, 1, zerolog.Nop())
	defer p.Shutdown(time.Second)

	h, err := p.Submit(func(ctx context.Context) error { panic("bad task") })
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.Error(t, h.Wait(ctx))

	// Pool keeps working after the panic.
	h2, err := p.Submit(func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	assert.NoError(t, h2.Wait(ctx))
}

func TestPool_WaitHonorsContext(t *testing.T) {
	p := NewPool(1, 2, zerolog.Nop())
	defer p.Shutdown(time.Second)

	release := make(chan struct{})
	h, err := p.Submit(func(ctx context.Context) error {
		<-release
		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, h.Wait(ctx), context.DeadlineExceeded)

	close(release)
	assert.NoError(t, h.Wait(context.Background()))
}

func TestPool_TrySubmitFullQueue(t *testing.T) {
	p := NewPool(1, 1, zerolog.Nop())
	defer p.Shutdown(time.Second)

	release := make(chan struct{})
	// Occupy the single worker, then fill the single queue slot.
	_, err := p.Submit(func(ctx context.Context) error { <-release; return nil })
	require.NoError(t, err)

	// The worker may not have picked up the first task yet, so allow
	// one successful TrySubmit before the queue reports full.
	full := false
	for i := 0; i < 3; i++ {
		if _, ok := p.TrySubmit(func(ctx context.Context) error { <-release; return nil }); !ok {
			full = true
			break
		}
	}
	assert.True(t, full)
	close(release)
}

func TestPool_ShutdownDrainsQueue(t *testing.T) {
	p := NewPool(2, 16, zerolog.Nop())

	var n atomic.Int64
	for i := 0; i < 16; i++ {
		_, err := p.Submit(func(ctx context.Context) error {
			time.Sleep(time.Millisecond)
			n.Add(1)
			return nil
		})
		require.NoError(t, err)
	}

	require.NoError(t, p.Shutdown(5*time.Second))
	assert.Equal(t, int64(16), n.Load())

	_, err := p.Submit(func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestPool_ShutdownUnblocksWaitingSubmit(t *testing.T) {
	p := NewPool(1, 1, zerolog.Nop())

	release := make(chan struct{})
	started := make(chan struct{})
	_, err := p.Submit(func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})
	require.NoError(t, err)
	<-started

	// Fill the queue slot, then park a Submit on the full queue.
	_, err = p.Submit(func(ctx context.Context) error { return nil })
	require.NoError(t, err)

	blocked := make(chan error, 1)
	go func() {
		_, err := p.Submit(func(ctx context.Context) error { return nil })
		blocked <- err
	}()

	// The parked Submit must not freeze the pool: TrySubmit still
	// answers, and Shutdown releases the submitter instead of hanging.
	_, ok := p.TrySubmit(func(ctx context.Context) error { return nil })
	assert.False(t, ok)

	done := make(chan error, 1)
	go func() { done <- p.Shutdown(2 * time.Second) }()

	// With the worker still parked the only wakeup is the closing pool.
	select {
	case err := <-blocked:
		assert.ErrorIs(t, err, ErrPoolClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Submit stayed blocked through shutdown")
	}

	close(release)
	require.NoError(t, <-done)
}

func TestPool_ShutdownTimeout(t *testing.T) {
	p := NewPool(1, 1, zerolog.Nop())

	started := make(chan struct{})
	_, err := p.Submit(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	require.NoError(t, err)
	<-started

	err = p.Shutdown(50 * time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPool_ShutdownIdempotent(t *testing.T) {
	p := NewPool(1, 1, zerolog.Nop())
	require.NoError(t, p.Shutdown(time.Second))
	assert.NoError(t, p.Shutdown(time.Second))
}
