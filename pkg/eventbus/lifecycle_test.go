package eventbus_test

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dukex/resumeflow/pkg/eventbus"
	"github.com/dukex/resumeflow/pkg/events"
	"github.com/dukex/resumeflow/pkg/log"
	"github.com/dukex/resumeflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func TestLogLifecycle(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := newBus(t)
	out := &syncBuffer{}

	require.NoError(t, eventbus.LogLifecycle(ctx, bus, log.New(out, "info", "json")))

	require.NoError(t, bus.Publish(ctx, "run-7", events.RunStarted{
		BaseEvent: events.NewBaseEvent(events.RunStartedEvent, "run-7"),
		Steps:     []models.StepName{models.StepParseProfile},
	}))
	require.NoError(t, bus.Publish(ctx, "run-7", events.StepStatusChanged{
		BaseEvent: events.NewBaseEvent(events.StepStatusChangedEvent, "run-7"),
		Step:      models.StepParseProfile,
		Agent:     "profile-structuring",
		Status:    models.StepStatusCompleted,
	}))
	require.NoError(t, bus.Publish(ctx, "run-7", events.RunFinished{
		BaseEvent:      events.NewBaseEvent(events.RunFinishedEvent, "run-7"),
		Status:         models.WorkflowStatusCompleted,
		StepsCompleted: 1,
	}))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Run finished")
	}, 5*time.Second, 10*time.Millisecond)

	logs := out.String()
	assert.Contains(t, logs, `"msg":"Run started"`)
	assert.Contains(t, logs, `"msg":"Step status changed"`)
	assert.Contains(t, logs, `"agent":"profile-structuring"`)
	assert.Contains(t, logs, `"request_id":"run-7"`)
	assert.Contains(t, logs, `"component":"lifecycle"`)
}
