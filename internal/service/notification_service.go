package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Ahad-dev/fypify-api/internal/dto"
	"github.com/Ahad-dev/fypify-api/internal/models"
	"github.com/Ahad-dev/fypify-api/internal/repository"
)

// Notifier is the outbound side of the notification collaborator. Delivery is
// best-effort: Publish never returns an error to the caller, so a broker or
// store outage cannot fail the core transition it reports on.
type Notifier interface {
	Publish(ctx context.Context, event models.Event)
}

// NotificationService is the full collaborator surface: publication plus the
// per-recipient inbox.
type NotificationService interface {
	Notifier
	List(ctx context.Context, recipientID uint, limit, offset int) ([]dto.NotificationResponse, error)
	MarkRead(ctx context.Context, id, recipientID uint) (dto.NotificationResponse, error)
}

type notificationService struct {
	repo        repository.NotificationRepository
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	nodeID      string
	now         func() time.Time
}

type notificationEnvelope struct {
	ID      string                 `json:"id"`
	Source  string                 `json:"source"`
	Kind    models.EventKind       `json:"kind"`
	Payload map[string]interface{} `json:"payload"`
	SentAt  time.Time              `json:"sent_at"`
}

// NewNotificationService constructs the notification collaborator. Redis and
// NATS are optional; persistence still happens when either is absent.
func NewNotificationService(repo repository.NotificationRepository, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) NotificationService {
	stream := ""
	subject := ""
	if channelBase != "" {
		stream = channelBase + ":events"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".events"
	}

	return &notificationService{
		repo:        repo,
		redis:       redisClient,
		redisStream: stream,
		nats:        natsConn,
		natsSubject: subject,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "notification_service").Logger(),
		nodeID:      uuid.NewString(),
		now:         time.Now,
	}
}

func (s *notificationService) Publish(ctx context.Context, event models.Event) {
	payload, err := event.PayloadMap()
	if err != nil {
		s.logger.Error().Err(err).Str("kind", string(event.Kind)).Msg("dropping malformed event")
		return
	}

	message := s.sanitizer.Sanitize(eventMessage(event))

	for _, recipient := range event.Recipients {
		row := models.Notification{
			RecipientID: recipient,
			Kind:        string(event.Kind),
			Message:     message,
			Payload:     payload,
		}
		if err := s.repo.Create(ctx, &row); err != nil {
			s.logger.Warn().Err(err).Uint("recipient_id", recipient).Msg("failed to persist notification")
		}
	}

	envelope := notificationEnvelope{
		ID:      uuid.NewString(),
		Source:  s.nodeID,
		Kind:    event.Kind,
		Payload: payload,
		SentAt:  s.now(),
	}

	encoded, err := json.Marshal(envelope)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode notification envelope")
		return
	}

	if s.redis != nil && s.redisStream != "" {
		args := &redis.XAddArgs{
			Stream: s.redisStream,
			Values: map[string]interface{}{"event": string(encoded)},
		}
		if err := s.redis.XAdd(ctx, args).Err(); err != nil {
			s.logger.Warn().Err(err).Str("stream", s.redisStream).Msg("failed to publish event to redis")
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, encoded); err != nil {
			s.logger.Warn().Err(err).Str("subject", s.natsSubject).Msg("failed to publish event to nats")
		}
	}
}

func (s *notificationService) List(ctx context.Context, recipientID uint, limit, offset int) ([]dto.NotificationResponse, error) {
	notifications, err := s.repo.ListByRecipient(ctx, recipientID, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		responses = append(responses, dto.NewNotificationResponse(notification))
	}

	return responses, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, recipientID uint) (dto.NotificationResponse, error) {
	notification, err := s.repo.MarkRead(ctx, id, recipientID)
	if err != nil {
		return dto.NotificationResponse{}, err
	}

	return dto.NewNotificationResponse(notification), nil
}

func eventMessage(event models.Event) string {
	switch event.Kind {
	case models.EventSubmissionReviewed:
		p := event.SubmissionReviewed
		if p == nil {
			return ""
		}
		verdict := "approved"
		if !p.Approved {
			verdict = "sent back for revision"
		}
		return fmt.Sprintf("Your %s submission for %q was %s.", p.DocumentType, p.ProjectTitle, verdict)
	case models.EventSubmissionLocked:
		p := event.SubmissionLocked
		if p == nil {
			return ""
		}
		return fmt.Sprintf("The %s submission for %q has been locked for evaluation.", p.DocumentType, p.ProjectTitle)
	case models.EventResultReleased:
		p := event.ResultReleased
		if p == nil {
			return ""
		}
		return fmt.Sprintf("The final result for %q has been released.", p.ProjectTitle)
	case models.EventDeadlineApproaching:
		p := event.DeadlineApproaching
		if p == nil {
			return ""
		}
		return fmt.Sprintf("The %s deadline is approaching: %s.", p.DocumentType, p.DeadlineDate.Format(time.RFC1123))
	default:
		return ""
	}
}
