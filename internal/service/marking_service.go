package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/Ahad-dev/fypify-api/internal/dto"
	"github.com/Ahad-dev/fypify-api/internal/models"
	"github.com/Ahad-dev/fypify-api/internal/observability"
	"github.com/Ahad-dev/fypify-api/internal/repository"
)

// ErrMarksFinalized indicates an evaluator attempted to edit a score they
// already committed.
var ErrMarksFinalized = errors.New("evaluation marks already finalized")

// ErrEvaluationComplete indicates the submission's evaluation has closed and
// no further marks are accepted.
var ErrEvaluationComplete = errors.New("evaluation already complete for this submission")

// EvaluationReader exposes the derived evaluation-complete predicate. The
// result aggregator reads completion through this interface so the two
// components can never disagree on what "evaluated" means.
type EvaluationReader interface {
	Summary(ctx context.Context, submissionID uint) (dto.EvaluationSummary, error)
}

// MarkingService records supervisor and committee marks against locked
// submissions.
type MarkingService interface {
	EvaluationReader
	SubmitSupervisorMarks(ctx context.Context, submissionID uint, payload dto.SupervisorMarksRequest, actor Actor) (dto.SupervisorMarksResponse, error)
	SubmitEvaluationMarks(ctx context.Context, submissionID uint, payload dto.EvaluationMarksRequest, actor Actor) (dto.EvaluationMarksResponse, error)
	GetEvaluationSummary(ctx context.Context, submissionID uint, actor Actor) (dto.EvaluationSummary, error)
}

type markingService struct {
	marks       repository.MarksRepository
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	required    int
	tracer      trace.Tracer
	logger      zerolog.Logger
	now         func() time.Time
}

// NewMarkingService constructs the marking engine. required is the evaluator
// quorum every submission needs before its evaluation counts as complete.
func NewMarkingService(marks repository.MarksRepository, submissions repository.SubmissionRepository, validate *validator.Validate, activity ActivityRecorder, required int, logger zerolog.Logger) MarkingService {
	if required <= 0 {
		required = 1
	}
	return &markingService{
		marks:       marks,
		submissions: submissions,
		validator:   validate,
		activity:    activity,
		required:    required,
		tracer:      otel.Tracer("github.com/Ahad-dev/fypify-api/internal/service/marking"),
		logger:      logger.With().Str("component", "marking_service").Logger(),
		now:         time.Now,
	}
}

func (s *markingService) SubmitSupervisorMarks(ctx context.Context, submissionID uint, payload dto.SupervisorMarksRequest, actor Actor) (dto.SupervisorMarksResponse, error) {
	ctx, span := s.tracer.Start(ctx, "marking.supervisor")
	span.SetAttributes(
		attribute.Int64("marking.submission_id", int64(submissionID)),
		attribute.Int64("marking.actor_id", int64(actor.ID)),
	)
	defer span.End()

	if !actor.Can(models.CapSubmitSupervisorMarks) {
		return dto.SupervisorMarksResponse{}, &UnauthorizedError{Role: actor.Role, Capability: models.CapSubmitSupervisorMarks}
	}

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SupervisorMarksResponse{}, err
	}

	if !validScore(payload.Score) {
		return dto.SupervisorMarksResponse{}, &ValidationError{Field: "score", Reason: "score must be 0-100 with at most two decimals"}
	}

	submission, err := s.lockedSubmission(ctx, submissionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_unavailable")
		return dto.SupervisorMarksResponse{}, err
	}

	if submission.Project.SupervisorID != actor.ID {
		return dto.SupervisorMarksResponse{}, &UnauthorizedError{
			Role:   actor.Role,
			Reason: "only the project's assigned supervisor may mark its submissions",
		}
	}

	// Once the evaluation closed the supervisor mark that fed it is frozen.
	summary, err := s.Summary(ctx, submissionID)
	if err != nil {
		return dto.SupervisorMarksResponse{}, err
	}
	if summary.Complete {
		return dto.SupervisorMarksResponse{}, ErrEvaluationComplete
	}

	marks := models.SupervisorMarks{
		SubmissionID: submission.ID,
		SupervisorID: actor.ID,
		Score:        payload.Score,
	}
	if err := s.marks.UpsertSupervisor(ctx, &marks); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "supervisor_marks_upsert_failed")
		return dto.SupervisorMarksResponse{}, err
	}

	observability.MarksRecorded().WithLabelValues("supervisor").Inc()

	s.audit(ctx, actor, "marks.supervisor_submitted", submission.ID, map[string]interface{}{
		"score":      payload.Score,
		"project_id": submission.ProjectID,
	})

	span.SetAttributes(attribute.Float64("marking.score", payload.Score))

	return dto.NewSupervisorMarksResponse(marks), nil
}

func (s *markingService) SubmitEvaluationMarks(ctx context.Context, submissionID uint, payload dto.EvaluationMarksRequest, actor Actor) (dto.EvaluationMarksResponse, error) {
	ctx, span := s.tracer.Start(ctx, "marking.evaluation")
	span.SetAttributes(
		attribute.Int64("marking.submission_id", int64(submissionID)),
		attribute.Int64("marking.actor_id", int64(actor.ID)),
		attribute.Bool("marking.finalize", payload.Finalize),
	)
	defer span.End()

	if !actor.Can(models.CapSubmitEvaluationMarks) {
		return dto.EvaluationMarksResponse{}, &UnauthorizedError{Role: actor.Role, Capability: models.CapSubmitEvaluationMarks}
	}

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.EvaluationMarksResponse{}, err
	}

	if !validScore(payload.Score) {
		return dto.EvaluationMarksResponse{}, &ValidationError{Field: "score", Reason: "score must be 0-100 with at most two decimals"}
	}

	submission, err := s.lockedSubmission(ctx, submissionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_unavailable")
		return dto.EvaluationMarksResponse{}, err
	}

	// Each evaluator's finalization is independent; their own committed row
	// is immutable, other evaluators' rows are untouched.
	existing, err := s.marks.GetEvaluation(ctx, submission.ID, actor.ID)
	if err == nil && existing.IsFinal {
		return dto.EvaluationMarksResponse{}, ErrMarksFinalized
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.EvaluationMarksResponse{}, err
	}

	marks := models.EvaluationMarks{
		SubmissionID: submission.ID,
		EvaluatorID:  actor.ID,
		Score:        payload.Score,
		IsFinal:      payload.Finalize,
	}
	if payload.Finalize {
		finalizedAt := s.now()
		marks.FinalizedAt = &finalizedAt
	}

	if err := s.marks.UpsertEvaluation(ctx, &marks); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluation_marks_upsert_failed")
		return dto.EvaluationMarksResponse{}, err
	}

	label := "evaluation_draft"
	if payload.Finalize {
		label = "evaluation_final"
	}
	observability.MarksRecorded().WithLabelValues(label).Inc()

	s.audit(ctx, actor, "marks.evaluation_submitted", submission.ID, map[string]interface{}{
		"score":      payload.Score,
		"finalized":  payload.Finalize,
		"project_id": submission.ProjectID,
	})

	return dto.NewEvaluationMarksResponse(marks), nil
}

func (s *markingService) GetEvaluationSummary(ctx context.Context, submissionID uint, actor Actor) (dto.EvaluationSummary, error) {
	if !actor.Can(models.CapViewEvaluationSummary) {
		return dto.EvaluationSummary{}, &UnauthorizedError{Role: actor.Role, Capability: models.CapViewEvaluationSummary}
	}

	return s.Summary(ctx, submissionID)
}

// Summary computes the derived evaluation state of one submission: counts of
// required vs actual vs finalized evaluators, the mean of finalized scores
// only (banker's rounding, two decimals), and whether the evaluation is
// complete. Drafts never influence the average.
func (s *markingService) Summary(ctx context.Context, submissionID uint) (dto.EvaluationSummary, error) {
	if _, err := s.getSubmission(ctx, submissionID); err != nil {
		return dto.EvaluationSummary{}, err
	}

	evaluations, err := s.marks.ListEvaluations(ctx, submissionID)
	if err != nil {
		return dto.EvaluationSummary{}, err
	}

	finalized := 0
	var total float64
	for _, entry := range evaluations {
		if !entry.IsFinal {
			continue
		}
		finalized++
		total += entry.Score
	}

	var average float64
	if finalized > 0 {
		average = roundHalfEven2(total / float64(finalized))
	}

	hasSupervisor := true
	supervisor, err := s.marks.GetSupervisor(ctx, submissionID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EvaluationSummary{}, err
		}
		hasSupervisor = false
	}

	summary := dto.EvaluationSummary{
		SubmissionID:        submissionID,
		RequiredEvaluators:  s.required,
		ActualEvaluators:    len(evaluations),
		FinalizedEvaluators: finalized,
		CommitteeAverage:    average,
		HasSupervisorMarks:  hasSupervisor,
		Complete:            hasSupervisor && finalized >= s.required,
	}
	if hasSupervisor {
		score := supervisor.Score
		summary.SupervisorScore = &score
	}

	return summary, nil
}

func (s *markingService) lockedSubmission(ctx context.Context, id uint) (models.DocumentSubmission, error) {
	submission, err := s.getSubmission(ctx, id)
	if err != nil {
		return models.DocumentSubmission{}, err
	}

	if !submission.IsLocked() {
		return models.DocumentSubmission{}, &InvalidStateError{
			SubmissionID:  submission.ID,
			CurrentStatus: submission.Status,
			RequiredState: models.SubmissionStatusLocked,
		}
	}

	return submission, nil
}

func (s *markingService) getSubmission(ctx context.Context, id uint) (models.DocumentSubmission, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.DocumentSubmission{}, ErrSubmissionNotFound
		}
		return models.DocumentSubmission{}, err
	}
	return submission, nil
}

func (s *markingService) audit(ctx context.Context, actor Actor, action string, id uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     action,
		EntityType: "submission",
		EntityID:   entityID(id),
		Metadata:   metadata,
	})
}
