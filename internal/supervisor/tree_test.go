// yt-live-recorder - YouTube Live Stream Monitor and Recorder
// Copyright 2026 Jack D. (Jack-devnlp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Jack-devnlp/yt-live-recorder

package supervisor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jack-devnlp/yt-live-recorder/internal/logging"
)

// blockingService runs until its context ends and counts starts.
type blockingService struct {
	starts atomic.Int32
}

func (s *blockingService) Serve(ctx context.Context) error {
	s.starts.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func (s *blockingService) String() string { return "blocking-service" }

func TestNewTreeAppliesDefaults(t *testing.T) {
	tree, err := NewTree(logging.NewSlogLogger(), TreeConfig{})
	require.NoError(t, err)

	assert.Equal(t, 5.0, tree.config.FailureThreshold)
	assert.Equal(t, 30.0, tree.config.FailureDecay)
	assert.Equal(t, 15*time.Second, tree.config.FailureBackoff)
	assert.Equal(t, 10*time.Second, tree.config.ShutdownTimeout)
	assert.NotNil(t, tree.Root())
}

func TestTreeServesAndStopsServices(t *testing.T) {
	tree, err := NewTree(logging.NewSlogLogger(), DefaultTreeConfig())
	require.NoError(t, err)

	monitorSvc := &blockingService{}
	apiSvc := &blockingService{}
	tree.AddMonitorService(monitorSvc)
	tree.AddAPIService(apiSvc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	require.Eventually(t, func() bool {
		return monitorSvc.starts.Load() == 1 && apiSvc.starts.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-errCh:
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not stop after cancellation")
	}
}

func TestTreeRestartsCrashedService(t *testing.T) {
	tree, err := NewTree(logging.NewSlogLogger(), TreeConfig{
		FailureThreshold: 100,
		FailureDecay:     30,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})
	require.NoError(t, err)

	crasher := &crashingService{}
	tree.AddMonitorService(crasher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tree.ServeBackground(ctx)

	require.Eventually(t, func() bool {
		return crasher.starts.Load() >= 2
	}, 3*time.Second, 10*time.Millisecond, "crashed service must be restarted")
}

// crashingService returns an error on each start until told to block.
type crashingService struct {
	starts atomic.Int32
}

func (s *crashingService) Serve(ctx context.Context) error {
	if s.starts.Add(1) <= 2 {
		return assert.AnError
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *crashingService) String() string { return "crashing-service" }
