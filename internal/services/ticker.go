package services

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/puckshotz/prop-stop/internal/hockey"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS middleware gates the HTTP side; ws stays open
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// TickerEvent is one live stat change pushed to clients
type TickerEvent struct {
	Time   time.Time `json:"time"`
	Player string    `json:"player"`
	Team   string    `json:"team"`
	GameID string    `json:"game_id"`
	Delta  int       `json:"delta"`
	Total  int       `json:"total"`
}

// TickerClient is one connected websocket consumer
type TickerClient struct {
	conn *websocket.Conn
	send chan []byte
	hub  *TickerHub
}

// TickerHub maintains active websocket connections and fans events out
type TickerHub struct {
	clients    map[*TickerClient]bool
	broadcast  chan TickerEvent
	register   chan *TickerClient
	unregister chan *TickerClient
	logger     *logrus.Logger
}

// NewTickerHub creates a new ticker hub
func NewTickerHub(logger *logrus.Logger) *TickerHub {
	return &TickerHub{
		clients:    make(map[*TickerClient]bool),
		broadcast:  make(chan TickerEvent, 256),
		register:   make(chan *TickerClient),
		unregister: make(chan *TickerClient),
		logger:     logger,
	}
}

// Run handles registration and fan-out; call in a goroutine
func (h *TickerHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debugf("Ticker client connected (%d total)", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				h.logger.Errorf("Failed to marshal ticker event: %v", err)
				continue
			}
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// Slow consumer; drop it
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// Broadcast queues an event for all connected clients
func (h *TickerHub) Broadcast(event TickerEvent) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("Ticker broadcast buffer full, dropping event")
	}
}

// ServeWS upgrades an HTTP request to a websocket ticker subscription
func (h *TickerHub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("Websocket upgrade failed: %v", err)
		return
	}

	client := &TickerClient{
		conn: conn,
		send: make(chan []byte, 64),
		hub:  h,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *TickerClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *TickerClient) writePump() {
	ping := time.NewTicker(30 * time.Second)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ping.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TickerService polls live boxscores and turns per-player SOG increases
// into ticker events
type TickerService struct {
	schedule hockey.ScheduleProvider
	hub      *TickerHub
	logger   *logrus.Logger
	interval time.Duration

	mu     sync.Mutex
	totals map[string]int // player|game -> last seen total
	recent []TickerEvent
	stop   chan struct{}
}

const recentEventLimit = 50

// NewTickerService creates a ticker poller
func NewTickerService(schedule hockey.ScheduleProvider, hub *TickerHub, logger *logrus.Logger, interval time.Duration) *TickerService {
	return &TickerService{
		schedule: schedule,
		hub:      hub,
		logger:   logger,
		interval: interval,
		totals:   make(map[string]int),
		stop:     make(chan struct{}),
	}
}

// Start launches the polling loop
func (s *TickerService) Start() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.poll()
			case <-s.stop:
				return
			}
		}
	}()
	s.logger.Infof("Live ticker started (poll every %s)", s.interval)
}

// Stop halts the polling loop
func (s *TickerService) Stop() {
	close(s.stop)
}

// RecentEvents returns the latest events, newest first
func (s *TickerService) RecentEvents() []TickerEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TickerEvent, len(s.recent))
	copy(out, s.recent)
	return out
}

func (s *TickerService) poll() {
	matchups, err := s.schedule.GetMatchups(time.Now().UTC())
	if err != nil {
		s.logger.Warnf("Ticker poll failed to fetch matchups: %v", err)
		return
	}

	for _, m := range matchups {
		if m.State != "in" {
			continue
		}
		stats, err := s.schedule.GetBoxscoreStats(m.GameID)
		if err != nil {
			s.logger.Warnf("Ticker poll failed for game %s: %v", m.GameID, err)
			continue
		}
		s.ingest(stats)
	}
}

// ingest compares live totals against the previous snapshot and emits an
// event for each positive delta
func (s *TickerService) ingest(stats []hockey.StatRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, stat := range stats {
		key := stat.Player + "|" + stat.GameID
		prev, seen := s.totals[key]
		s.totals[key] = stat.Value

		delta := stat.Value - prev
		if !seen || delta <= 0 {
			continue
		}

		event := TickerEvent{
			Time:   time.Now().UTC(),
			Player: stat.Player,
			Team:   stat.Team,
			GameID: stat.GameID,
			Delta:  delta,
			Total:  stat.Value,
		}
		s.recent = append([]TickerEvent{event}, s.recent...)
		if len(s.recent) > recentEventLimit {
			s.recent = s.recent[:recentEventLimit]
		}
		s.hub.Broadcast(event)
	}
}
