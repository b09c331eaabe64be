package queue

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewTaskRoundTripsPayload(t *testing.T) {
	docID := uuid.New()
	task, err := NewTask(TaskTypeWindow, DocumentPayload{DocumentID: docID, Tenant: "acme", SourcePath: "d/source.md"})
	require.NoError(t, err)
	assert.Equal(t, TaskTypeWindow, task.Type)
	assert.NotEqual(t, uuid.Nil, task.ID)

	var p DocumentPayload
	require.NoError(t, task.DecodePayload(&p))
	assert.Equal(t, docID, p.DocumentID)
	assert.Equal(t, "acme", p.Tenant)
}

func TestDecodePayloadIsPermanent(t *testing.T) {
	task := Task{Type: TaskTypeEmbed, Payload: []byte("{")}
	var p DocumentPayload
	err := task.DecodePayload(&p)
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
}

func TestPermanent(t *testing.T) {
	assert.Nil(t, Permanent(nil))

	base := errors.New("bad config")
	err := fmt.Errorf("run: %w", Permanent(base))
	assert.True(t, IsPermanent(err))
	assert.ErrorIs(t, err, base)
	assert.False(t, IsPermanent(base))
}

func TestEnqueueWithRetry(t *testing.T) {
	ctx := context.Background()
	task := Task{Type: TaskTypeEmbed}

	t.Run("succeeds after failures", func(t *testing.T) {
		q := new(MockQueue)
		q.On("Enqueue", ctx, task).Return(errors.New("nats down")).Twice()
		q.On("Enqueue", ctx, task).Return(nil).Once()

		err := EnqueueWithRetry(ctx, q, task, 3, time.Millisecond)
		assert.NoError(t, err)
		q.AssertNumberOfCalls(t, "Enqueue", 3)
	})

	t.Run("returns last error", func(t *testing.T) {
		q := new(MockQueue)
		q.On("Enqueue", ctx, task).Return(errors.New("nats down"))

		err := EnqueueWithRetry(ctx, q, task, 2, time.Millisecond)
		assert.EqualError(t, err, "nats down")
		q.AssertNumberOfCalls(t, "Enqueue", 2)
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		q := new(MockQueue)
		q.On("Enqueue", mock.Anything, task).Return(errors.New("nats down"))

		err := EnqueueWithRetry(cctx, q, task, 5, time.Second)
		assert.ErrorIs(t, err, context.Canceled)
		q.AssertNumberOfCalls(t, "Enqueue", 1)
	})
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "windows.tasks.window", subject(TaskTypeWindow))
}
