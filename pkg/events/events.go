// Package events defines event types and structures for run lifecycle notifications.
package events

import (
	"time"

	"github.com/dukex/resumeflow/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Topic carries every run lifecycle event.
const Topic = "resumeflow.runs"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	RunStartedEvent        EventType = "run.started"
	StepStatusChangedEvent EventType = "step.status_changed"
	RunFinishedEvent       EventType = "run.finished"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	RequestID string         `json:"request_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type RunStarted struct {
	BaseEvent

	Steps             []models.StepName `json:"steps"`
	HasJobDescription bool              `json:"has_job_description"`
}

func (r RunStarted) GetType() EventType {
	return RunStartedEvent
}

// StepStatusChanged is published on every step state machine transition.
type StepStatusChanged struct {
	BaseEvent

	Step       models.StepName   `json:"step"`
	Agent      string            `json:"agent"`
	Status     models.StepStatus `json:"status"`
	RetryCount int               `json:"retry_count"`
	Reason     string            `json:"reason,omitempty"`
}

func (s StepStatusChanged) GetType() EventType {
	return StepStatusChangedEvent
}

type RunFinished struct {
	BaseEvent

	Status         models.WorkflowStatus `json:"status"`
	FailedStep     models.StepName       `json:"failed_step,omitempty"`
	ErrorKind      models.ErrorKind      `json:"error_kind,omitempty"`
	FailureReason  string                `json:"failure_reason,omitempty"`
	StepsCompleted int                   `json:"steps_completed"`
	DurationMs     int64                 `json:"duration_ms"`
}

func (r RunFinished) GetType() EventType {
	return RunFinishedEvent
}

func NewBaseEvent(eventType EventType, requestID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
		Metadata:  make(map[string]any),
	}
}
