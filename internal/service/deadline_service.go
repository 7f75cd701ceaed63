package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Ahad-dev/fypify-api/internal/dto"
	"github.com/Ahad-dev/fypify-api/internal/models"
	"github.com/Ahad-dev/fypify-api/internal/repository"
)

// DeadlineService assigns and validates per-document-type deadlines. It keeps
// no state machine of its own; it validates, stores, and answers time
// predicates.
type DeadlineService interface {
	SetDeadlines(ctx context.Context, batchID uint, payload dto.SetDeadlinesRequest, actor Actor) ([]dto.DeadlineResponse, error)
	ListByBatch(ctx context.Context, batchID uint) ([]dto.DeadlineResponse, error)
	ScanApproaching(ctx context.Context, actor Actor) (dto.DeadlineScanResponse, error)
}

type deadlineService struct {
	deadlines repository.DeadlineRepository
	docTypes  repository.DocumentTypeRepository
	validator *validator.Validate
	activity  ActivityRecorder
	notifier  Notifier
	minGap    time.Duration
	window    time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewDeadlineService constructs the deadline scheduler. minGap is the minimum
// spacing between consecutive deadlines (default 15 days via config); window
// is the approaching-deadline horizon.
func NewDeadlineService(deadlines repository.DeadlineRepository, docTypes repository.DocumentTypeRepository, validate *validator.Validate, activity ActivityRecorder, notifier Notifier, minGap, window time.Duration, logger zerolog.Logger) DeadlineService {
	return &deadlineService{
		deadlines: deadlines,
		docTypes:  docTypes,
		validator: validate,
		activity:  activity,
		notifier:  notifier,
		minGap:    minGap,
		window:    window,
		logger:    logger.With().Str("component", "deadline_service").Logger(),
		now:       time.Now,
	}
}

func (s *deadlineService) SetDeadlines(ctx context.Context, batchID uint, payload dto.SetDeadlinesRequest, actor Actor) ([]dto.DeadlineResponse, error) {
	if !actor.Can(models.CapManageDeadlines) {
		return nil, &UnauthorizedError{Role: actor.Role, Capability: models.CapManageDeadlines}
	}

	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}

	if _, err := s.deadlines.GetBatch(ctx, batchID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBatchNotFound
		}
		return nil, err
	}

	types, err := s.docTypes.List(ctx, true)
	if err != nil {
		return nil, err
	}
	orderByType := make(map[uint]int, len(types))
	for _, docType := range types {
		orderByType[docType.ID] = docType.DisplayOrder
	}

	entries := make([]models.ProjectDeadline, 0, len(payload.Entries))
	for _, entry := range payload.Entries {
		order, ok := orderByType[entry.DocumentTypeID]
		if !ok {
			return nil, &ValidationError{Field: "document_type_id", Reason: "unknown or inactive document type"}
		}
		entries = append(entries, models.ProjectDeadline{
			BatchID:        batchID,
			DocumentTypeID: entry.DocumentTypeID,
			DeadlineDate:   entry.Date,
			SortOrder:      order,
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].SortOrder < entries[j].SortOrder })

	for i := 1; i < len(entries); i++ {
		previous, current := entries[i-1], entries[i]
		if !current.DeadlineDate.After(previous.DeadlineDate) {
			return nil, &SchedulingConflictError{
				FirstTypeID:  previous.DocumentTypeID,
				SecondTypeID: current.DocumentTypeID,
				Reason:       "deadlines must strictly increase in display order",
			}
		}
		if gap := current.DeadlineDate.Sub(previous.DeadlineDate); gap < s.minGap {
			return nil, &SchedulingConflictError{
				FirstTypeID:  previous.DocumentTypeID,
				SecondTypeID: current.DocumentTypeID,
				Gap:          gap,
				MinimumGap:   s.minGap,
			}
		}
	}

	if err := s.deadlines.ReplaceForBatch(ctx, batchID, entries); err != nil {
		return nil, err
	}

	if s.activity != nil {
		s.activity.Record(ctx, ActivityEntry{
			Actor:      actor,
			Action:     "deadlines.set",
			EntityType: "deadline_batch",
			EntityID:   entityID(batchID),
			Metadata:   map[string]interface{}{"entries": len(entries)},
		})
	}

	stored, err := s.deadlines.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	return dto.NewDeadlineResponseSlice(stored), nil
}

func (s *deadlineService) ListByBatch(ctx context.Context, batchID uint) ([]dto.DeadlineResponse, error) {
	if _, err := s.deadlines.GetBatch(ctx, batchID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBatchNotFound
		}
		return nil, err
	}

	deadlines, err := s.deadlines.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	return dto.NewDeadlineResponseSlice(deadlines), nil
}

// ScanApproaching emits a DeadlineApproaching event for every deadline inside
// the configured window. Callable on a schedule; emission is best-effort.
func (s *deadlineService) ScanApproaching(ctx context.Context, actor Actor) (dto.DeadlineScanResponse, error) {
	if !actor.Can(models.CapTriggerDeadlineScan) {
		return dto.DeadlineScanResponse{}, &UnauthorizedError{Role: actor.Role, Capability: models.CapTriggerDeadlineScan}
	}

	deadlines, err := s.deadlines.ListAll(ctx)
	if err != nil {
		return dto.DeadlineScanResponse{}, err
	}

	reference := s.now()
	approaching := 0
	for _, deadline := range deadlines {
		if !deadline.IsApproaching(reference, s.window) {
			continue
		}
		approaching++
		if s.notifier != nil {
			s.notifier.Publish(ctx, models.Event{
				Kind: models.EventDeadlineApproaching,
				DeadlineApproaching: &models.DeadlineApproachingPayload{
					DocumentType: deadline.DocumentType.Title,
					DeadlineDate: deadline.DeadlineDate,
				},
			})
		}
	}

	return dto.DeadlineScanResponse{
		Scanned:     len(deadlines),
		Approaching: approaching,
		WindowHours: int(s.window / time.Hour),
	}, nil
}
