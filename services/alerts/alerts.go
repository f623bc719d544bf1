package alerts

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/threat"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/timezone"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("wildlife-tracker/services/alerts")

var ErrNotFound = errors.New("alert not found")

const DefaultCapacity = 500

type Alert struct {
	ID             string       `json:"id"`
	Level          threat.Level `json:"level"`
	Score          int          `json:"score"`
	Title          string       `json:"title"`
	Message        string       `json:"message,omitempty"`
	Platform       string       `json:"platform,omitempty"`
	URL            string       `json:"url,omitempty"`
	ListingID      string       `json:"listing_id,omitempty"`
	EvidenceID     string       `json:"evidence_id,omitempty"`
	Species        []string     `json:"species,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	Emailed        bool         `json:"emailed"`
	Acknowledged   bool         `json:"acknowledged"`
	AcknowledgedAt time.Time    `json:"acknowledged_at,omitempty"`
}

// Sender delivers an alert to people.
type Sender interface {
	Send(ctx context.Context, alert Alert) error
}

type Options struct {
	// defaults to DefaultCapacity
	Capacity int
	// alerts below this level are kept but not sent
	SendLevel threat.Level
	// optional
	Sender Sender
}

// Manager keeps the most recent alerts in memory, newest first.
type Manager struct {
	capacity  int
	sendLevel threat.Level
	sender    Sender

	mu     sync.Mutex
	alerts []Alert
}

func NewManager(opts Options) *Manager {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	return &Manager{
		capacity:  opts.Capacity,
		sendLevel: opts.SendLevel,
		sender:    opts.Sender,
	}
}

// Notify records the alert and sends it when its level is high enough.
// A failed send is returned but the alert stays recorded.
func (m *Manager) Notify(ctx context.Context, alert Alert) (Alert, error) {
	ctx, span := tracer.Start(ctx, "Notify")
	defer span.End()

	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = timezone.Now()
	}
	span.SetAttributes(
		attribute.String("alert", alert.ID),
		attribute.String("level", alert.Level.String()),
	)

	var sendErr error
	if m.sender != nil && alert.Level >= m.sendLevel {
		sendErr = m.sender.Send(ctx, alert)
		if sendErr != nil {
			span.RecordError(sendErr)
			span.SetStatus(codes.Error, "failed to send alert")
			slog.WarnContext(ctx, "failed to send alert", "alert", alert.ID, "err", sendErr)
		} else {
			alert.Emailed = true
		}
	}

	m.mu.Lock()
	m.alerts = append(m.alerts, Alert{})
	copy(m.alerts[1:], m.alerts)
	m.alerts[0] = alert
	if len(m.alerts) > m.capacity {
		m.alerts = m.alerts[:m.capacity]
	}
	m.mu.Unlock()

	slog.InfoContext(ctx, "alert", "level", alert.Level, "score", alert.Score, "title", alert.Title, "url", alert.URL)
	return alert, sendErr
}

// List returns up to limit alerts, newest first. A limit <= 0 returns all.
func (m *Manager) List(limit int) []Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit <= 0 || limit > len(m.alerts) {
		limit = len(m.alerts)
	}
	out := make([]Alert, limit)
	copy(out, m.alerts[:limit])
	return out
}

func (m *Manager) Acknowledge(id string) (Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.alerts {
		if m.alerts[i].ID != id {
			continue
		}
		if !m.alerts[i].Acknowledged {
			m.alerts[i].Acknowledged = true
			m.alerts[i].AcknowledgedAt = timezone.Now()
		}
		return m.alerts[i], nil
	}
	return Alert{}, ErrNotFound
}

// Pending counts alerts nobody acknowledged yet.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, a := range m.alerts {
		if !a.Acknowledged {
			n++
		}
	}
	return n
}
