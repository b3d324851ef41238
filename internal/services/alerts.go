package services

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/puckshotz/prop-stop/internal/projection"
)

// SMSService sends alert messages
type SMSService interface {
	SendMessage(phoneNumber, message string) error
}

// MockSMSService for development - logs instead of sending real SMS
type MockSMSService struct {
	logger *logrus.Logger
}

func NewMockSMSService(logger *logrus.Logger) *MockSMSService {
	return &MockSMSService{logger: logger}
}

func (s *MockSMSService) SendMessage(phoneNumber, message string) error {
	s.logger.Infof("MOCK SMS to %s: %s", phoneNumber, message)
	return nil
}

// TwilioSMSService sends alerts through the Twilio API
type TwilioSMSService struct {
	client     *twilio.RestClient
	fromNumber string
}

func NewTwilioSMSService(accountSID, authToken, fromNumber string) *TwilioSMSService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSMSService{
		client:     client,
		fromNumber: fromNumber,
	}
}

func (s *TwilioSMSService) SendMessage(phoneNumber, message string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(phoneNumber)
	params.SetFrom(s.fromNumber)
	params.SetBody(message)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send failed: %w", err)
	}
	return nil
}

// alertRateLimiter caps sends per recipient per window
type alertRateLimiter struct {
	mu          sync.Mutex
	sent        map[string][]time.Time
	maxRequests int
	window      time.Duration
}

func newAlertRateLimiter(maxRequests int, window time.Duration) *alertRateLimiter {
	return &alertRateLimiter{
		sent:        make(map[string][]time.Time),
		maxRequests: maxRequests,
		window:      window,
	}
}

func (rl *alertRateLimiter) Allow(phoneNumber string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)

	valid := rl.sent[phoneNumber][:0]
	for _, t := range rl.sent[phoneNumber] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	rl.sent[phoneNumber] = valid

	if len(valid) >= rl.maxRequests {
		return fmt.Errorf("rate limit exceeded: maximum %d alerts per %v", rl.maxRequests, rl.window)
	}

	rl.sent[phoneNumber] = append(rl.sent[phoneNumber], now)
	return nil
}

// AlertService notifies recipients when a run surfaces Strong signals
type AlertService struct {
	sms        SMSService
	recipients []string
	limiter    *alertRateLimiter
	logger     *logrus.Logger
}

// NewAlertService creates an alert service with a per-recipient hourly cap
func NewAlertService(sms SMSService, recipients []string, maxPerHour int, logger *logrus.Logger) *AlertService {
	return &AlertService{
		sms:        sms,
		recipients: recipients,
		limiter:    newAlertRateLimiter(maxPerHour, time.Hour),
		logger:     logger,
	}
}

// NotifyStrongSignals sends a summary of the run's Strong plays. Send
// failures are logged, never propagated; alerts must not fail a run.
func (s *AlertService) NotifyStrongSignals(gameDate string, strong []projection.Projection) {
	if len(strong) == 0 || len(s.recipients) == 0 {
		return
	}

	message := buildAlertMessage(gameDate, strong)
	for _, recipient := range s.recipients {
		if err := s.limiter.Allow(recipient); err != nil {
			s.logger.Warnf("Skipping alert to %s: %v", recipient, err)
			continue
		}
		if err := s.sms.SendMessage(recipient, message); err != nil {
			s.logger.Errorf("Failed to send alert to %s: %v", recipient, err)
		}
	}
}

// buildAlertMessage formats the top strong plays into a short SMS body
func buildAlertMessage(gameDate string, strong []projection.Projection) string {
	const maxListed = 5

	var b strings.Builder
	fmt.Fprintf(&b, "Prop Stop %s: %d strong SOG plays", gameDate, len(strong))
	for i, p := range strong {
		if i >= maxListed {
			fmt.Fprintf(&b, "\n+%d more", len(strong)-maxListed)
			break
		}
		fmt.Fprintf(&b, "\n%s (%s) proj %.2f, %.1f%% over", p.Player, p.Team, p.Projected, p.ProbOverPct)
	}
	return b.String()
}
