package services

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puckshotz/prop-stop/internal/projection"
)

// captureSMS records sent messages for assertions
type captureSMS struct {
	mu       sync.Mutex
	messages map[string][]string
}

func newCaptureSMS() *captureSMS {
	return &captureSMS{messages: make(map[string][]string)}
}

func (c *captureSMS) SendMessage(phoneNumber, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages[phoneNumber] = append(c.messages[phoneNumber], message)
	return nil
}

func TestNotifyStrongSignals(t *testing.T) {
	sms := newCaptureSMS()
	service := NewAlertService(sms, []string{"+15551234567"}, 5, logrus.New())

	strong := []projection.Projection{
		{Player: "Auston Matthews", Team: "TOR", Projected: 4.55, ProbOverPct: 78.2, Signal: "Strong"},
		{Player: "Nathan MacKinnon", Team: "COL", Projected: 4.10, ProbOverPct: 72.5, Signal: "Strong"},
	}

	service.NotifyStrongSignals("2026-01-15", strong)

	require.Len(t, sms.messages["+15551234567"], 1)
	msg := sms.messages["+15551234567"][0]
	assert.Contains(t, msg, "2 strong SOG plays")
	assert.Contains(t, msg, "Auston Matthews (TOR) proj 4.55, 78.2% over")
	assert.Contains(t, msg, "Nathan MacKinnon")
}

func TestNotifyStrongSignalsEmpty(t *testing.T) {
	sms := newCaptureSMS()
	service := NewAlertService(sms, []string{"+15551234567"}, 5, logrus.New())

	service.NotifyStrongSignals("2026-01-15", nil)

	assert.Empty(t, sms.messages)
}

func TestAlertMessageTruncation(t *testing.T) {
	strong := make([]projection.Projection, 8)
	for i := range strong {
		strong[i] = projection.Projection{Player: "Player", Team: "BOS", Projected: 4, ProbOverPct: 75}
	}

	msg := buildAlertMessage("2026-01-15", strong)

	assert.Contains(t, msg, "8 strong SOG plays")
	assert.Contains(t, msg, "+3 more")
}

func TestAlertRateLimiter(t *testing.T) {
	rl := newAlertRateLimiter(2, time.Hour)

	assert.NoError(t, rl.Allow("+1555"))
	assert.NoError(t, rl.Allow("+1555"))
	assert.Error(t, rl.Allow("+1555"))

	// Different recipient has its own budget
	assert.NoError(t, rl.Allow("+1666"))
}

func TestAlertRateLimiterWindowExpiry(t *testing.T) {
	rl := newAlertRateLimiter(1, 10*time.Millisecond)

	require.NoError(t, rl.Allow("+1555"))
	require.Error(t, rl.Allow("+1555"))

	time.Sleep(20 * time.Millisecond)
	assert.NoError(t, rl.Allow("+1555"))
}
