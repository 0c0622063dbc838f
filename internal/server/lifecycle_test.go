package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockService struct {
	name    string
	started atomic.Bool
	stop    chan struct{}
	once    sync.Once
	startFn func() error
	onStop  func(name string)
}

func newMock(name string) *mockService {
	return &mockService{name: name, stop: make(chan struct{})}
}

func (m *mockService) Start() error {
	m.started.Store(true)
	if m.startFn != nil {
		return m.startFn()
	}
	<-m.stop
	return nil
}

func (m *mockService) Stop() {
	m.once.Do(func() {
		if m.onStop != nil {
			m.onStop(m.name)
		}
		close(m.stop)
	})
}

func (m *mockService) stopped() bool {
	select {
	case <-m.stop:
		return true
	default:
		return false
	}
}

func TestLifecycleStartsAndStopsServicesInReverse(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t), time.Second)

	var mu sync.Mutex
	var order []string
	record := func(name string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, name)
	}
	svc1, svc2 := newMock("ticker"), newMock("autosave")
	svc1.onStop, svc2.onStop = record, record
	lc.Add("ticker", svc1)
	lc.Add("autosave", svc2)

	var hookRan atomic.Bool
	lc.OnShutdown(func(context.Context) error {
		hookRan.Store(svc1.stopped() && svc2.stopped())
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()

	require.Eventually(t, func() bool { return svc1.started.Load() && svc2.started.Load() }, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}
	assert.Equal(t, []string{"autosave", "ticker"}, order)
	assert.True(t, hookRan.Load(), "hooks run after every service stopped")
}

func TestLifecycleServiceFailureShutsDown(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t), time.Second)
	healthy := newMock("healthy")
	failing := newMock("failing")
	boom := errors.New("boom")
	failing.startFn = func() error { return boom }
	lc.Add("healthy", healthy)
	lc.Add("failing", failing)

	err := lc.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.True(t, healthy.stopped())
}

func TestLifecycleJoinsHookErrors(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t), time.Second)
	hookErr := errors.New("final save failed")
	lc.OnShutdown(func(context.Context) error { return hookErr })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, lc.Run(ctx), hookErr)
}

func TestFuncService(t *testing.T) {
	started := false
	stopped := false

	svc := &FuncService{
		StartFn: func() error {
			started = true
			return nil
		},
		StopFn: func() {
			stopped = true
		},
	}

	err := svc.Start()
	assert.NoError(t, err)
	assert.True(t, started)

	svc.Stop()
	assert.True(t, stopped)
}
