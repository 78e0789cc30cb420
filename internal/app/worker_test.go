package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Mugundhan-karan/moment-app-backend-1/internal/logger"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/messaging/payloads"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanConsumer доставляет заранее заданные сообщения синхронно
type chanConsumer struct {
	messages []payloads.ImageCleanupPayload
	results  []error
	startErr error
}

func (c *chanConsumer) StartConsumingImageCleanup(ctx context.Context, handler func(context.Context, payloads.ImageCleanupPayload) error) error {
	if c.startErr != nil {
		return c.startErr
	}
	for _, m := range c.messages {
		c.results = append(c.results, handler(ctx, m))
	}
	return nil
}

type failingFiles struct{ memFiles }

func (f *failingFiles) DeleteFile(ctx context.Context, key string) error {
	return errors.New("s3 unavailable")
}

func TestRunWorker_DeletesOrphans(t *testing.T) {
	files := &memFiles{objects: map[string][]byte{
		"moments-app/a.png": {1},
		"moments-app/b.png": {2},
	}}
	consumer := &chanConsumer{messages: []payloads.ImageCleanupPayload{
		{ObjectKey: "moments-app/a.png", Reason: payloads.CleanupReasonReplaced},
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, runWorker(ctx, consumer, files, logger.Nop()))
	assert.Equal(t, []error{nil}, consumer.results)
	assert.NotContains(t, files.objects, "moments-app/a.png")
	assert.Contains(t, files.objects, "moments-app/b.png")
}

func TestRunWorker_HandlerErrorIsReported(t *testing.T) {
	consumer := &chanConsumer{messages: []payloads.ImageCleanupPayload{{ObjectKey: "moments-app/a.png"}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, runWorker(ctx, consumer, &failingFiles{}, logger.Nop()))
	require.Len(t, consumer.results, 1)
	assert.ErrorContains(t, consumer.results[0], "moments-app/a.png")
}

func TestRunWorker_StartError(t *testing.T) {
	consumer := &chanConsumer{startErr: errors.New("channel closed")}
	err := runWorker(context.Background(), consumer, &memFiles{}, logger.Nop())
	assert.ErrorContains(t, err, "channel closed")
}

func TestAppRun_WorkerWithoutQueue(t *testing.T) {
	closed := false
	a := NewApp(nil, logger.Nop(), nil, nil, &memFiles{}, func() error {
		closed = true
		return nil
	})

	err := a.Run(context.Background(), ModeWorker)
	assert.Error(t, err)
	assert.True(t, closed, "resources are released even when the mode fails")

	assert.Error(t, NewApp(nil, logger.Nop(), nil, nil, nil).Run(context.Background(), "batch"))
}
