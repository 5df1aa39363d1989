package worker_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskboard/internal/logger"
	"taskboard/internal/worker"
)

func TestMain(m *testing.M) {
	logger.Logger = zap.NewNop()
	os.Exit(m.Run())
}

type recordingJanitor struct {
	mtx     sync.Mutex
	cutoffs []time.Time
	err     error
}

func (j *recordingJanitor) DeleteResolvedInvitationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	j.mtx.Lock()
	defer j.mtx.Unlock()
	j.cutoffs = append(j.cutoffs, cutoff)
	return 2, j.err
}

func (j *recordingJanitor) calls() int {
	j.mtx.Lock()
	defer j.mtx.Unlock()
	return len(j.cutoffs)
}

func TestSweep_UsesRetentionCutoff(t *testing.T) {
	janitor := &recordingJanitor{}
	w := worker.NewRetentionWorker(janitor, time.Hour, 24*time.Hour)

	before := time.Now().Add(-24 * time.Hour)
	w.Sweep(context.Background())
	after := time.Now().Add(-24 * time.Hour)

	require.Equal(t, 1, janitor.calls())
	cutoff := janitor.cutoffs[0]
	assert.False(t, cutoff.Before(before))
	assert.False(t, cutoff.After(after))
}

func TestSweep_SurvivesRepositoryError(t *testing.T) {
	janitor := &recordingJanitor{err: errors.New("connection lost")}
	w := worker.NewRetentionWorker(janitor, time.Hour, 24*time.Hour)

	w.Sweep(context.Background())
	w.Sweep(context.Background())
	assert.Equal(t, 2, janitor.calls())
}

func TestStart_TicksAndStops(t *testing.T) {
	janitor := &recordingJanitor{}
	w := worker.NewRetentionWorker(janitor, 10*time.Millisecond, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return janitor.calls() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}
