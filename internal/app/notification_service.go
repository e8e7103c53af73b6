// internal/app/notification_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"ride_notifier/internal/domain/checkpoint"
	"ride_notifier/internal/domain/mail"
	"ride_notifier/internal/domain/ride"

	"github.com/sirupsen/logrus"
)

const (
	heartbeatSubject = "Ride notifier heartbeat"
	heartbeatBody    = "No ride notification has been sent for %s. The ride notifier is still running.\n\nLast notification sent at %s."
	noLastSent       = -1
)

// DispatchResult summarizes the delivery of one ride's notifications.
type DispatchResult struct {
	Sent      int
	Attempted int
	Failures  []*mail.DeliveryError
}

// NotificationConfig holds the settings of a NotificationService.
type NotificationConfig struct {
	ReplyTo           string
	OperatorEmail     string
	LastSentPath      string        // Slot recording the last successful notification
	HeartbeatInterval time.Duration // Silence after which the operator gets a keepalive mail
}

// NotificationService sends ride notifications and the operator heartbeat.
type NotificationService struct {
	transport mail.Transport
	state     checkpoint.Store
	cfg       NotificationConfig
	logger    logrus.FieldLogger
}

func NewNotificationService(
	transport mail.Transport,
	state checkpoint.Store,
	cfg NotificationConfig,
	logger logrus.FieldLogger,
) *NotificationService {
	return &NotificationService{
		transport: transport,
		state:     state,
		cfg:       cfg,
		logger:    logger,
	}
}

// Dispatch emails every participant of r over a single mail session.
// Failures for single recipients are logged and reported in the result;
// an error is returned only when nothing could be attempted.
func (s *NotificationService) Dispatch(ctx context.Context, r ride.Ride, participants []ride.Participant, now time.Time) (DispatchResult, error) {
	recipients := make([]string, 0, len(participants))
	names := make([]string, 0, len(participants))
	for _, p := range participants {
		addr, err := p.Email()
		if err != nil {
			return DispatchResult{}, fmt.Errorf("ride %q: %w", r.ID, err)
		}
		recipients = append(recipients, addr)
		names = append(names, p.FullName)
	}
	body := ComposeMessage(r.DateLabel(), r.MeetingPoint, names)

	session, err := s.transport.Open(ctx)
	if err != nil {
		return DispatchResult{}, fmt.Errorf("failed to open mail session for ride %q: %w", r.ID, err)
	}
	defer func() {
		if errClose := session.Close(); errClose != nil {
			s.logger.WithField("ride", r.ID).Warnf("Failed to close mail session for %s: %v", r.ID, errClose)
		}
	}()

	classifier, _ := s.transport.(mail.Classifier)
	result := DispatchResult{}
	for _, addr := range recipients {
		result.Attempted++
		msg := &mail.Message{
			To:      []string{addr},
			ReplyTo: s.cfg.ReplyTo,
			Subject: r.ID,
			Body:    body,
		}
		if err := session.Send(msg); err != nil {
			failure := &mail.DeliveryError{Recipient: addr, Ride: r.ID, Kind: mail.FailureTransient, Err: err}
			if classifier != nil {
				failure.Kind = classifier.Classify(err)
			}
			result.Failures = append(result.Failures, failure)
			s.logger.WithFields(logrus.Fields{
				"ride":      r.ID,
				"recipient": addr,
				"kind":      failure.Kind,
			}).Errorf("Failed to send ride notification to %s for %s (%s): %v", addr, r.ID, failure.Kind, err)
			continue
		}
		result.Sent++
	}
	s.logger.WithField("ride", r.ID).Infof("%d/%d mails sent for %s", result.Sent, result.Attempted, r.ID)

	if result.Sent > 0 {
		if err := s.state.Save(s.cfg.LastSentPath, checkpoint.FromTime(now)); err != nil {
			return result, fmt.Errorf("failed to record last notification time: %w", err)
		}
	}
	return result, nil
}

// CheckHeartbeat mails the operator when no notification went out for longer than
// the heartbeat interval, and reports whether it did. On the very first call it only
// starts the clock.
func (s *NotificationService) CheckHeartbeat(ctx context.Context, now time.Time) (bool, error) {
	stored, err := s.state.Load(s.cfg.LastSentPath, noLastSent)
	if err != nil {
		return false, fmt.Errorf("failed to load last notification time: %w", err)
	}
	if stored == noLastSent {
		s.logger.Debug("No notification recorded yet, starting heartbeat clock.")
		return false, s.recordLastSent(now)
	}

	lastSent := checkpoint.ToTime(stored)
	silence := now.Sub(lastSent)
	if silence <= s.cfg.HeartbeatInterval {
		return false, nil
	}

	session, err := s.transport.Open(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to open mail session for heartbeat: %w", err)
	}
	defer func() {
		if errClose := session.Close(); errClose != nil {
			s.logger.Warnf("Failed to close heartbeat mail session: %v", errClose)
		}
	}()

	msg := &mail.Message{
		To:      []string{s.cfg.OperatorEmail},
		ReplyTo: s.cfg.ReplyTo,
		Subject: heartbeatSubject,
		Body:    fmt.Sprintf(heartbeatBody, silence.Truncate(time.Hour), lastSent.Format(time.RFC3339)),
	}
	if err := session.Send(msg); err != nil {
		return false, fmt.Errorf("failed to send heartbeat to %s: %w", s.cfg.OperatorEmail, err)
	}
	s.logger.Infof("Heartbeat sent to %s after %s without notifications", s.cfg.OperatorEmail, silence.Truncate(time.Hour))
	return true, s.recordLastSent(now)
}

func (s *NotificationService) recordLastSent(now time.Time) error {
	if err := s.state.Save(s.cfg.LastSentPath, checkpoint.FromTime(now)); err != nil {
		return fmt.Errorf("failed to record last notification time: %w", err)
	}
	return nil
}
