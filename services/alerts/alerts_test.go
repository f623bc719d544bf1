package alerts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/telemetry"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/threat"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type recordingSender struct {
	sent []Alert
	err  error
}

func (r *recordingSender) Send(ctx context.Context, alert Alert) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, alert)
	return nil
}

func TestManager(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:alerts")
	defer cleanup()
	ctx := context.Background()

	sender := &recordingSender{}
	manager := NewManager(Options{Capacity: 3, SendLevel: threat.LevelHigh, Sender: sender})

	levels := []threat.Level{threat.LevelMedium, threat.LevelCritical, threat.LevelHigh, threat.LevelMedium}
	var ids []string
	for i, level := range levels {
		alert, err := manager.Notify(ctx, Alert{Level: level, Title: fmt.Sprintf("listing %d", i)})
		require.NoError(t, err)
		require.NotEmpty(t, alert.ID)
		require.False(t, alert.CreatedAt.IsZero())
		require.Equal(t, level >= threat.LevelHigh, alert.Emailed)
		ids = append(ids, alert.ID)
	}

	require.Len(t, sender.sent, 2)

	all := manager.List(0)
	require.Len(t, all, 3)
	require.Equal(t, "listing 3", all[0].Title)
	require.Equal(t, "listing 1", all[2].Title)
	require.Len(t, manager.List(2), 2)

	require.Equal(t, 3, manager.Pending())
	acked, err := manager.Acknowledge(ids[2])
	require.NoError(t, err)
	require.True(t, acked.Acknowledged)
	require.False(t, acked.AcknowledgedAt.IsZero())
	require.Equal(t, 2, manager.Pending())

	// evicted from the ring
	_, err = manager.Acknowledge(ids[0])
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNotifySendFailure(t *testing.T) {
	manager := NewManager(Options{Sender: &recordingSender{err: errors.New("connection refused")}})

	alert, err := manager.Notify(context.Background(), Alert{Level: threat.LevelCritical, Title: "ivory"})
	require.Error(t, err)
	require.False(t, alert.Emailed)
	require.Len(t, manager.List(0), 1)
}

func TestFormatAlert(t *testing.T) {
	subject, body := formatAlert(Alert{
		Level:      threat.LevelCritical,
		Score:      92,
		Title:      "Carved rhino horn cup",
		Platform:   "ebay",
		URL:        "https://www.ebay.com/itm/1",
		Species:    []string{"Rhinoceros"},
		EvidenceID: "ev-1",
		CreatedAt:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	require.Equal(t, "[WildGuard CRITICAL] Carved rhino horn cup", subject)
	require.Contains(t, body, "score 92/100")
	require.Contains(t, body, "Link: https://www.ebay.com/itm/1")
	require.Contains(t, body, "Species: Rhinoceros")
	require.Contains(t, body, "Evidence package: ev-1")
	require.Contains(t, body, "2024-03-01 12:00:00 UTC")
}

func TestEmailSender(t *testing.T) {
	if testing.Short() {
		t.Skip("starts an smtp container")
	}
	cleanup := telemetry.SetupForTesting(t, "test:alerts")
	defer cleanup()
	ctx := context.Background()

	// suppress logging
	testcontainers.Logger = log.New(io.Discard, "", 0)

	container, err := testcontainers.GenericContainer(
		ctx,
		testcontainers.GenericContainerRequest{
			Started: true,
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "haravich/fake-smtp-server",
				ExposedPorts: []string{"1025/tcp"},
				WaitingFor:   wait.ForListeningPort("1025/tcp"),
			},
		},
	)
	if err != nil {
		t.Skipf("docker is unavailable: %v", err)
	}
	defer func() {
		err := container.Terminate(ctx)
		if err != nil {
			t.Fatal(err)
		}
	}()

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "1025/tcp")
	require.NoError(t, err)

	sender := NewEmailSender(SmtpConfig{
		Server:       host,
		Port:         port.Int(),
		EmailAddress: "alerts@wildguard.org",
		Password:     "default",
		Recipients:   []string{"ranger@wildguard.org"},
	})
	err = sender.Send(ctx, Alert{Level: threat.LevelCritical, Score: 90, Title: "Pangolin scales"})
	require.NoError(t, err)

	err = NewEmailSender(SmtpConfig{}).Send(ctx, Alert{})
	require.Error(t, err)
}
