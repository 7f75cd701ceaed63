package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Ahad-dev/fypify-api/internal/dto"
	"github.com/Ahad-dev/fypify-api/internal/models"
	"github.com/Ahad-dev/fypify-api/internal/observability"
	"github.com/Ahad-dev/fypify-api/internal/repository"
)

// ResultService combines per-document marks into one weighted final score and
// controls its release to students.
type ResultService interface {
	ComputeIfReady(ctx context.Context, projectID uint, actor Actor) (dto.ComputeOutcome, error)
	Release(ctx context.Context, projectID uint, actor Actor) (dto.FinalResultResponse, error)
	GetReleased(ctx context.Context, projectID uint, actor Actor) (dto.FinalResultResponse, error)
}

type resultService struct {
	results     repository.ResultRepository
	projects    repository.ProjectRepository
	submissions repository.SubmissionRepository
	deadlines   repository.DeadlineRepository
	docTypes    repository.DocumentTypeRepository
	evaluations EvaluationReader
	activity    ActivityRecorder
	notifier    Notifier
	cache       *redis.Client
	cacheTTL    time.Duration
	tracer      trace.Tracer
	logger      zerolog.Logger
	now         func() time.Time
}

// NewResultService constructs the aggregator. The redis cache is optional and
// only ever holds released results.
func NewResultService(results repository.ResultRepository, projects repository.ProjectRepository, submissions repository.SubmissionRepository, deadlines repository.DeadlineRepository, docTypes repository.DocumentTypeRepository, evaluations EvaluationReader, activity ActivityRecorder, notifier Notifier, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) ResultService {
	return &resultService{
		results:     results,
		projects:    projects,
		submissions: submissions,
		deadlines:   deadlines,
		docTypes:    docTypes,
		evaluations: evaluations,
		activity:    activity,
		notifier:    notifier,
		cache:       cache,
		cacheTTL:    cacheTTL,
		tracer:      otel.Tracer("github.com/Ahad-dev/fypify-api/internal/service/result"),
		logger:      logger.With().Str("component", "result_service").Logger(),
		now:         time.Now,
	}
}

// ComputeIfReady recomputes the project's final result when every required
// document type has a complete evaluation. An incomplete project yields a
// NotReady outcome listing the blockers, which is a status rather than an
// error. Recomputing never flips an existing release.
func (s *resultService) ComputeIfReady(ctx context.Context, projectID uint, actor Actor) (dto.ComputeOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "result.compute")
	span.SetAttributes(attribute.Int64("result.project_id", int64(projectID)))
	defer span.End()

	if !actor.Can(models.CapComputeResult) {
		return dto.ComputeOutcome{}, &UnauthorizedError{Role: actor.Role, Capability: models.CapComputeResult}
	}

	started := s.now()

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ComputeOutcome{}, ErrProjectNotFound
		}
		return dto.ComputeOutcome{}, err
	}

	required, err := s.requiredTypes(ctx, project.BatchID)
	if err != nil {
		return dto.ComputeOutcome{}, err
	}
	if len(required) == 0 {
		return dto.ComputeOutcome{}, &ValidationError{Field: "project_id", Reason: "no required document types configured for the project's batch"}
	}

	breakdown := make([]models.DocumentScore, 0, len(required))
	var missing []string
	var total float64

	for _, docType := range required {
		submission, err := s.submissions.GetCurrent(ctx, project.ID, docType.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				missing = append(missing, fmt.Sprintf("%s: no submission", docType.Code))
				continue
			}
			return dto.ComputeOutcome{}, err
		}

		if !submission.IsLocked() {
			missing = append(missing, fmt.Sprintf("%s: submission not locked", docType.Code))
			continue
		}

		summary, err := s.evaluations.Summary(ctx, submission.ID)
		if err != nil {
			return dto.ComputeOutcome{}, err
		}
		if !summary.Complete {
			missing = append(missing, fmt.Sprintf("%s: %d of %d evaluators finalized, supervisor marks %v",
				docType.Code, summary.FinalizedEvaluators, summary.RequiredEvaluators, summary.HasSupervisorMarks))
			continue
		}

		supervisorScore := *summary.SupervisorScore
		weighted := weightedDocumentScore(supervisorScore, docType.SupervisorWeight, summary.CommitteeAverage, docType.CommitteeWeight)
		total += weighted

		breakdown = append(breakdown, models.DocumentScore{
			DocumentTypeID:    docType.ID,
			DocumentTypeCode:  docType.Code,
			SupervisorScore:   supervisorScore,
			SupervisorWeight:  docType.SupervisorWeight,
			CommitteeAvgScore: summary.CommitteeAverage,
			CommitteeWeight:   docType.CommitteeWeight,
			EvaluatorCount:    summary.FinalizedEvaluators,
			WeightedScore:     weighted,
		})
	}

	if len(missing) > 0 {
		span.SetAttributes(attribute.Int("result.missing", len(missing)))
		return dto.ComputeOutcome{Ready: false, Missing: missing}, nil
	}

	encoded, err := json.Marshal(breakdown)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "breakdown_encode_failed")
		return dto.ComputeOutcome{}, err
	}

	computedBy := actor.ID
	result := models.FinalResult{
		ProjectID:  project.ID,
		TotalScore: roundHalfEven2(total),
		Breakdown:  datatypes.JSON(encoded),
		ComputedBy: &computedBy,
	}

	if err := s.results.Upsert(ctx, &result); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "result_upsert_failed")
		return dto.ComputeOutcome{}, err
	}

	s.invalidateCache(ctx, project.ID)

	observability.ComputeLatency().Observe(s.now().Sub(started).Seconds())

	s.audit(ctx, actor, "result.computed", project.ID, map[string]interface{}{
		"total_score": result.TotalScore,
		"documents":   len(breakdown),
	})

	span.SetAttributes(attribute.Float64("result.total_score", result.TotalScore))

	response := dto.NewFinalResultResponse(result)
	return dto.ComputeOutcome{Ready: true, Result: &response}, nil
}

// Release makes the computed result visible to the project's students.
// Releasing twice is a no-op success carrying the original release timestamp.
func (s *resultService) Release(ctx context.Context, projectID uint, actor Actor) (dto.FinalResultResponse, error) {
	if !actor.Can(models.CapReleaseResult) {
		return dto.FinalResultResponse{}, &UnauthorizedError{Role: actor.Role, Capability: models.CapReleaseResult}
	}

	existing, err := s.results.GetByProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FinalResultResponse{}, ErrResultNotFound
		}
		return dto.FinalResultResponse{}, err
	}

	if existing.Released {
		return dto.NewFinalResultResponse(existing), nil
	}

	released, err := s.results.Release(ctx, projectID, actor.ID, s.now())
	if err != nil {
		return dto.FinalResultResponse{}, err
	}

	s.invalidateCache(ctx, projectID)
	observability.ResultsReleased().Inc()

	s.audit(ctx, actor, "result.released", projectID, map[string]interface{}{
		"total_score": released.TotalScore,
	})

	if s.notifier != nil {
		if project, err := s.projects.GetByID(ctx, projectID); err == nil {
			s.notifier.Publish(ctx, models.Event{
				Kind:       models.EventResultReleased,
				Recipients: memberIDs(project),
				ResultReleased: &models.ResultReleasedPayload{
					ProjectID:    project.ID,
					ProjectTitle: project.Title,
					TotalScore:   released.TotalScore,
				},
			})
		}
	}

	return dto.NewFinalResultResponse(released), nil
}

// GetReleased returns the released result. An unreleased or missing result is
// indistinguishable to the caller: both are not found, so an unreleased score
// can never leak.
func (s *resultService) GetReleased(ctx context.Context, projectID uint, actor Actor) (dto.FinalResultResponse, error) {
	if !actor.Can(models.CapViewReleasedResult) {
		return dto.FinalResultResponse{}, &UnauthorizedError{Role: actor.Role, Capability: models.CapViewReleasedResult}
	}

	if actor.Role == models.RoleStudent {
		project, err := s.projects.GetByID(ctx, projectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.FinalResultResponse{}, ErrResultNotFound
			}
			return dto.FinalResultResponse{}, err
		}
		if !project.HasMember(actor.ID) {
			return dto.FinalResultResponse{}, &UnauthorizedError{
				Role:   actor.Role,
				Reason: "only members of the project may view its result",
			}
		}
	}

	cacheKey := s.cacheKey(projectID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.FinalResultResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read result cache")
		}
	}

	result, err := s.results.GetByProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FinalResultResponse{}, ErrResultNotFound
		}
		return dto.FinalResultResponse{}, err
	}

	if !result.Released {
		return dto.FinalResultResponse{}, ErrResultNotFound
	}

	response := dto.NewFinalResultResponse(result)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store result cache")
			}
		}
	}

	return response, nil
}

// requiredTypes resolves the document types the project must complete: the
// batch's scheduled types when deadlines exist, the whole active catalog
// otherwise.
func (s *resultService) requiredTypes(ctx context.Context, batchID uint) ([]models.DocumentType, error) {
	deadlines, err := s.deadlines.ListByBatch(ctx, batchID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if len(deadlines) > 0 {
		types := make([]models.DocumentType, 0, len(deadlines))
		for _, deadline := range deadlines {
			types = append(types, deadline.DocumentType)
		}
		return types, nil
	}

	return s.docTypes.List(ctx, true)
}

func (s *resultService) cacheKey(projectID uint) string {
	return fmt.Sprintf("result:released:%d", projectID)
}

func (s *resultService) invalidateCache(ctx context.Context, projectID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.cacheKey(projectID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("project_id", projectID).Msg("failed to invalidate result cache")
	}
}

func (s *resultService) audit(ctx context.Context, actor Actor, action string, projectID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     action,
		EntityType: "project",
		EntityID:   entityID(projectID),
		Metadata:   metadata,
	})
}
