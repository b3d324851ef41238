package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puckshotz/prop-stop/internal/hockey"
)

func newTestTicker() *TickerService {
	logger := logrus.New()
	hub := NewTickerHub(logger)
	go hub.Run()
	return NewTickerService(nil, hub, logger, time.Minute)
}

func TestIngestFirstSightingSuppressed(t *testing.T) {
	s := newTestTicker()

	s.ingest([]hockey.StatRecord{
		{Player: "Jack Hughes", Team: "NJD", GameID: "g1", Value: 3},
	})

	// First observation sets the baseline without reporting pre-existing shots
	assert.Empty(t, s.RecentEvents())
}

func TestIngestPositiveDelta(t *testing.T) {
	s := newTestTicker()

	s.ingest([]hockey.StatRecord{
		{Player: "Jack Hughes", Team: "NJD", GameID: "g1", Value: 3},
	})
	s.ingest([]hockey.StatRecord{
		{Player: "Jack Hughes", Team: "NJD", GameID: "g1", Value: 5},
	})

	events := s.RecentEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "Jack Hughes", events[0].Player)
	assert.Equal(t, 2, events[0].Delta)
	assert.Equal(t, 5, events[0].Total)
}

func TestIngestNoEventWithoutChange(t *testing.T) {
	s := newTestTicker()

	stats := []hockey.StatRecord{
		{Player: "Jack Hughes", Team: "NJD", GameID: "g1", Value: 3},
	}
	s.ingest(stats)
	s.ingest(stats)

	assert.Empty(t, s.RecentEvents())
}

func TestIngestDecreaseIgnored(t *testing.T) {
	s := newTestTicker()

	// Stat corrections can lower a total; they reset the baseline silently
	s.ingest([]hockey.StatRecord{{Player: "Jack Hughes", Team: "NJD", GameID: "g1", Value: 4}})
	s.ingest([]hockey.StatRecord{{Player: "Jack Hughes", Team: "NJD", GameID: "g1", Value: 2}})
	s.ingest([]hockey.StatRecord{{Player: "Jack Hughes", Team: "NJD", GameID: "g1", Value: 3}})

	events := s.RecentEvents()
	require.Len(t, events, 1)
	assert.Equal(t, 1, events[0].Delta)
	assert.Equal(t, 3, events[0].Total)
}

func TestRecentEventsNewestFirstAndBounded(t *testing.T) {
	s := newTestTicker()

	s.ingest([]hockey.StatRecord{{Player: "p", Team: "BOS", GameID: "g1", Value: 0}})
	for i := 1; i <= recentEventLimit+10; i++ {
		s.ingest([]hockey.StatRecord{{Player: "p", Team: "BOS", GameID: "g1", Value: i}})
	}

	events := s.RecentEvents()
	require.Len(t, events, recentEventLimit)
	assert.Equal(t, recentEventLimit+10, events[0].Total)
}

func TestIngestSeparateGamesTrackedIndependently(t *testing.T) {
	s := newTestTicker()

	for _, g := range []string{"g1", "g2"} {
		s.ingest([]hockey.StatRecord{{Player: "p", Team: "BOS", GameID: g, Value: 1}})
	}
	s.ingest([]hockey.StatRecord{{Player: "p", Team: "BOS", GameID: "g2", Value: 4}})

	events := s.RecentEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "g2", events[0].GameID)
	assert.Equal(t, 3, events[0].Delta)
}

func TestHubBroadcastBufferOverflow(t *testing.T) {
	logger := logrus.New()
	hub := NewTickerHub(logger)
	// Hub not running: fill the buffer and confirm Broadcast never blocks
	for i := 0; i < 300; i++ {
		hub.Broadcast(TickerEvent{Player: fmt.Sprintf("p%d", i)})
	}
}
