package worker

import (
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type countingJob struct {
	id      string
	counter *atomic.Int32
	done    *sync.WaitGroup
}

func (j countingJob) Execute() error {
	j.counter.Add(1)
	j.done.Done()
	return nil
}

func (j countingJob) ID() string { return j.id }

func TestDispatcher_RunsSubmittedJobs(t *testing.T) {
	d := NewDispatcher(2, 10, quietLogger())
	d.Run()
	defer d.Stop()

	var counter atomic.Int32
	var done sync.WaitGroup
	done.Add(5)
	for i := 0; i < 5; i++ {
		require.NoError(t, d.Submit(countingJob{id: "job", counter: &counter, done: &done}))
	}

	waitCh := make(chan struct{})
	go func() {
		done.Wait()
		close(waitCh)
	}()
	select {
	case <-waitCh:
	case <-time.After(2 * time.Second):
		t.Fatal("jobs did not complete in time")
	}
	assert.Equal(t, int32(5), counter.Load())
}

func TestDispatcher_SubmitFailsWhenQueueFull(t *testing.T) {
	// Dispatcher never started, so nothing drains the queue.
	d := NewDispatcher(1, 1, quietLogger())

	var counter atomic.Int32
	var done sync.WaitGroup
	done.Add(1)
	require.NoError(t, d.Submit(countingJob{id: "first", counter: &counter, done: &done}))
	assert.Error(t, d.Submit(countingJob{id: "second", counter: &counter, done: &done}))
}
