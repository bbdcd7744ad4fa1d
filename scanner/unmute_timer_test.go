package scanner

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"discord-warn-bot/moderation"

	"github.com/stretchr/testify/assert"
)

type blockingExpirer struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (b *blockingExpirer) ExpireMutes(context.Context) moderation.ExpireReport {
	b.calls.Add(1)
	if b.started != nil {
		b.started <- struct{}{}
	}
	if b.release != nil {
		<-b.release
	}
	return moderation.ExpireReport{Expired: []string{"1-2"}}
}

func TestTickSkipsWhileRunning(t *testing.T) {
	exp := &blockingExpirer{started: make(chan struct{}), release: make(chan struct{})}
	timer := NewUnmuteTimer(exp, time.Minute)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.True(t, timer.Tick(context.Background()))
	}()
	<-exp.started

	assert.False(t, timer.Tick(context.Background()))
	close(exp.release)
	wg.Wait()

	exp.started, exp.release = nil, nil
	assert.True(t, timer.Tick(context.Background()))
	assert.Equal(t, int32(2), exp.calls.Load())
}

func TestRunStopsOnDone(t *testing.T) {
	exp := &blockingExpirer{}
	timer := NewUnmuteTimer(exp, 5*time.Millisecond)
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		timer.Run(done)
		close(finished)
	}()

	assert.Eventually(t, func() bool { return exp.calls.Load() > 0 }, time.Second, 5*time.Millisecond)
	close(done)
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after done was closed")
	}
}

func TestNewUnmuteTimerDefaultsInterval(t *testing.T) {
	assert.Equal(t, time.Minute, NewUnmuteTimer(&blockingExpirer{}, 0).interval)
}

func TestRunWaitsForInflightTick(t *testing.T) {
	exp := &blockingExpirer{started: make(chan struct{}, 1), release: make(chan struct{})}
	timer := NewUnmuteTimer(exp, 5*time.Millisecond)
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		timer.Run(done)
		close(finished)
	}()

	select {
	case <-exp.started:
	case <-time.After(time.Second):
		t.Fatal("tick never started")
	}
	close(done)

	select {
	case <-finished:
		t.Fatal("Run returned while a tick was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(exp.release)
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after the tick finished")
	}
	assert.Equal(t, int32(1), exp.calls.Load())
}
