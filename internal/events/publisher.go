package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const (
	SourceService = "attendance-service"
	EventVersion  = "1.0"

	TopicAttendance = "attendance-events"

	TypeAttendanceRecorded   = "attendance.recorded"
	TypeJustificationSet     = "attendance.justification_set"
	TypeAssignmentChanged    = "registry.assignment_changed"
	TypeRosterEntityArchived = "roster.entity_archived"
)

// Event is the envelope written to the audit journal. Data carries the
// type-specific payload.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    SourceService,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event *Event) error
	Close() error
}

// ===== KAFKA PUBLISHER =====

type KafkaEventPublisher struct {
	publisher *kafka.Publisher
	logger    *slog.Logger
}

func NewKafkaEventPublisher(brokers []string, logger *slog.Logger) (*KafkaEventPublisher, error) {
	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return &KafkaEventPublisher{
		publisher: publisher,
		logger:    logger,
	}, nil
}

func (p *KafkaEventPublisher) PublishEvent(ctx context.Context, topic string, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.Type, err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", event.Type)
	msg.Metadata.Set("source", event.Source)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event %s to %s: %w", event.Type, topic, err)
	}

	p.logger.Debug("event published",
		"event_id", event.ID,
		"event_type", event.Type,
		"topic", topic)
	return nil
}

func (p *KafkaEventPublisher) Close() error {
	return p.publisher.Close()
}

// ===== MOCK PUBLISHER =====

// MockEventPublisher records events in memory for tests and for running
// without a broker.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []*Event
	logger *slog.Logger
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

func (p *MockEventPublisher) PublishEvent(ctx context.Context, topic string, event *Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	p.logger.Debug("mock event captured", "event_type", event.Type, "topic", topic)
	return nil
}

func (p *MockEventPublisher) GetPublishedEvents() []*Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Event, len(p.events))
	copy(out, p.events)
	return out
}

func (p *MockEventPublisher) ClearEvents() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

func (p *MockEventPublisher) Close() error { return nil }

// ===== PAYLOADS =====

// AttendanceRecordedEvent is emitted after every ledger upsert, including
// replacements of an existing (student, date) row.
type AttendanceRecordedEvent struct {
	RecordID   string `json:"record_id"`
	StudentID  string `json:"student_id"`
	Date       string `json:"date"`
	Status     string `json:"status"`
	RecordedBy string `json:"recorded_by"`
	Replaced   bool   `json:"replaced"`
}

// JustificationSetEvent is emitted when a pending justification is disposed.
type JustificationSetEvent struct {
	RecordID   string `json:"record_id"`
	StudentID  string `json:"student_id"`
	Date       string `json:"date"`
	Resolution string `json:"resolution"`
	ResolvedBy string `json:"resolved_by"`
}

// AssignmentChangedEvent is emitted when a teacher-section pair is granted
// or revoked.
type AssignmentChangedEvent struct {
	UserID    string `json:"user_id"`
	SectionID string `json:"section_id"`
	Action    string `json:"action"` // "assigned" or "removed"
	ChangedBy string `json:"changed_by"`
}

// RosterEntityArchivedEvent is emitted when a year, section or student is
// soft-deleted.
type RosterEntityArchivedEvent struct {
	EntityType string `json:"entity_type"` // "year", "section" or "student"
	EntityID   string `json:"entity_id"`
	ArchivedBy string `json:"archived_by"`
}
