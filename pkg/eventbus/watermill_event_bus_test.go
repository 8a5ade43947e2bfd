package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/resumeflow/pkg/channels/gochannel"
	"github.com/dukex/resumeflow/pkg/eventbus"
	"github.com/dukex/resumeflow/pkg/events"
	"github.com/dukex/resumeflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBus(t *testing.T) *eventbus.WatermillEventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() { _ = bus.Close() })

	return bus
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := newBus(t)
	received := make(chan *events.StepStatusChanged, 1)

	require.NoError(t, bus.Handle(events.StepStatusChangedEvent, func(_ context.Context, event any) error {
		received <- event.(*events.StepStatusChanged)

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	sent := events.StepStatusChanged{
		BaseEvent:  events.NewBaseEvent(events.StepStatusChangedEvent, "run-1"),
		Step:       models.StepParseProfile,
		Agent:      "profile-structuring",
		Status:     models.StepStatusExecuting,
		RetryCount: 1,
	}
	require.NoError(t, bus.Publish(ctx, "run-1", sent))

	select {
	case got := <-received:
		assert.Equal(t, sent.ID, got.ID)
		assert.Equal(t, "run-1", got.RequestID)
		assert.Equal(t, models.StepStatusExecuting, got.Status)
		assert.Equal(t, 1, got.RetryCount)
	case <-time.After(5 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestWatermillEventBus_UnhandledTypesAreAcked(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := newBus(t)
	finished := make(chan *events.RunFinished, 1)

	require.NoError(t, bus.Handle(events.RunFinishedEvent, func(_ context.Context, event any) error {
		finished <- event.(*events.RunFinished)

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	require.NoError(t, bus.Publish(ctx, "run-2", events.RunStarted{BaseEvent: events.NewBaseEvent(events.RunStartedEvent, "run-2")}))
	require.NoError(t, bus.Publish(ctx, "run-2", events.RunFinished{
		BaseEvent: events.NewBaseEvent(events.RunFinishedEvent, "run-2"),
		Status:    models.WorkflowStatusCompleted,
	}))

	select {
	case got := <-finished:
		assert.Equal(t, models.WorkflowStatusCompleted, got.Status)
	case <-time.After(5 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	var publisher eventbus.EventPublisher = eventbus.Discard{}

	assert.NoError(t, publisher.Publish(context.Background(), "run-3", events.RunStarted{}))
}
