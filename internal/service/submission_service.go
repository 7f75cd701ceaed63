package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Ahad-dev/fypify-api/internal/dto"
	"github.com/Ahad-dev/fypify-api/internal/models"
	"github.com/Ahad-dev/fypify-api/internal/observability"
	"github.com/Ahad-dev/fypify-api/internal/repository"
)

// defaultGroupSizeMax mirrors the config default for deployments that never
// tune the group-size bounds.
const defaultGroupSizeMax = 4

// FileReference is the opaque handle returned by the file store collaborator.
// The core never touches raw bytes beyond handing them to the store.
type FileReference struct {
	ID  string
	URL string
}

// FileStore uploads a document and returns its opaque reference.
type FileStore interface {
	Upload(ctx context.Context, name string, reader io.Reader) (FileReference, error)
}

// SubmissionService owns the document submission state machine:
//
//	draft -> pending_review -> (approved | revision_requested) -> locked
//
// A rejected submission loops back through a brand-new row; locking is the
// hard boundary past which the marking engine operates.
type SubmissionService interface {
	Create(ctx context.Context, payload dto.SubmissionCreateRequest, file *multipart.FileHeader, actor Actor) (dto.SubmissionResponse, error)
	Review(ctx context.Context, submissionID uint, payload dto.SubmissionReviewRequest, actor Actor) (dto.SubmissionResponse, error)
	MarkFinal(ctx context.Context, submissionID uint, actor Actor) (dto.SubmissionResponse, error)
	Lock(ctx context.Context, submissionID uint, actor Actor) (dto.SubmissionResponse, error)
	ListByProject(ctx context.Context, projectID uint, actor Actor) ([]dto.SubmissionResponse, error)
	Lineage(ctx context.Context, submissionID uint, actor Actor) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	docTypes    repository.DocumentTypeRepository
	projects    repository.ProjectRepository
	deadlines   repository.DeadlineRepository
	validator   *validator.Validate
	store       FileStore
	activity    ActivityRecorder
	notifier    Notifier
	sequential  bool
	groupMin    int
	groupMax    int
	logger      zerolog.Logger
	now         func() time.Time
}

// SubmissionConfig carries the lifecycle's tunables.
type SubmissionConfig struct {
	// SequentialGating requires every earlier document type (by display
	// order) to hold an approved submission before the next may be created.
	SequentialGating bool
	// GroupSizeMin and GroupSizeMax bound the member roster a project must
	// hold before it may submit documents.
	GroupSizeMin int
	GroupSizeMax int
}

// NewSubmissionService constructs the lifecycle service.
func NewSubmissionService(submissions repository.SubmissionRepository, docTypes repository.DocumentTypeRepository, projects repository.ProjectRepository, deadlines repository.DeadlineRepository, validate *validator.Validate, store FileStore, activity ActivityRecorder, notifier Notifier, cfg SubmissionConfig, logger zerolog.Logger) SubmissionService {
	if cfg.GroupSizeMin <= 0 {
		cfg.GroupSizeMin = 1
	}
	if cfg.GroupSizeMax <= 0 {
		cfg.GroupSizeMax = defaultGroupSizeMax
	}
	if cfg.GroupSizeMax < cfg.GroupSizeMin {
		cfg.GroupSizeMax = cfg.GroupSizeMin
	}
	return &submissionService{
		submissions: submissions,
		docTypes:    docTypes,
		projects:    projects,
		deadlines:   deadlines,
		validator:   validate,
		store:       store,
		activity:    activity,
		notifier:    notifier,
		sequential:  cfg.SequentialGating,
		groupMin:    cfg.GroupSizeMin,
		groupMax:    cfg.GroupSizeMax,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) Create(ctx context.Context, payload dto.SubmissionCreateRequest, file *multipart.FileHeader, actor Actor) (dto.SubmissionResponse, error) {
	if !actor.Can(models.CapSubmitDocument) {
		return dto.SubmissionResponse{}, &UnauthorizedError{Role: actor.Role, Capability: models.CapSubmitDocument}
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if file == nil {
		return dto.SubmissionResponse{}, &ValidationError{Field: "file", Reason: "submission file is required"}
	}

	project, err := s.projects.GetByID(ctx, payload.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrProjectNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if !project.HasMember(actor.ID) {
		return dto.SubmissionResponse{}, &UnauthorizedError{
			Role:   actor.Role,
			Reason: "only members of the project may submit its documents",
		}
	}

	if size := len(project.Members); size < s.groupMin || size > s.groupMax {
		return dto.SubmissionResponse{}, &ValidationError{
			Field:  "project_id",
			Reason: fmt.Sprintf("project has %d members, allowed group size is %d to %d", size, s.groupMin, s.groupMax),
		}
	}

	docType, err := s.docTypes.GetByID(ctx, payload.DocumentTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrDocumentTypeNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if !docType.Active {
		return dto.SubmissionResponse{}, &ValidationError{Field: "document_type_id", Reason: "document type is inactive"}
	}

	if err := s.checkDeadline(ctx, project.BatchID, docType.ID); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if s.sequential {
		if err := s.checkSequentialGate(ctx, project.ID, docType); err != nil {
			return dto.SubmissionResponse{}, err
		}
	}

	active, err := s.submissions.CountActive(ctx, project.ID, docType.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if active > 0 {
		return dto.SubmissionResponse{}, &ValidationError{
			Field:  "document_type_id",
			Reason: "an active submission already exists for this document type",
		}
	}

	// A rejected predecessor turns this upload into a resubmission row that
	// supersedes it; the reviewed row itself is never mutated.
	var supersedes *uint
	if previous, err := s.submissions.GetCurrent(ctx, project.ID, docType.ID); err == nil {
		if previous.Status == models.SubmissionStatusRevisionRequested {
			id := previous.ID
			supersedes = &id
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SubmissionResponse{}, err
	}

	if err := validateFileType(file); err != nil {
		return dto.SubmissionResponse{}, err
	}

	reader, err := file.Open()
	if err != nil {
		return dto.SubmissionResponse{}, &ValidationError{Field: "file", Reason: "failed to open file"}
	}
	defer reader.Close()

	reference, err := s.store.Upload(ctx, file.Filename, reader)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission := models.DocumentSubmission{
		ProjectID:      project.ID,
		DocumentTypeID: docType.ID,
		Status:         models.SubmissionStatusPendingReview,
		UploadedBy:     actor.ID,
		FileReference:  reference.ID,
		FileURL:        reference.URL,
		SupersedesID:   supersedes,
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	created, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	observability.SubmissionTransitions().WithLabelValues(created.Status).Inc()

	s.audit(ctx, actor, "submission.created", created.ID, map[string]interface{}{
		"project_id":       created.ProjectID,
		"document_type_id": created.DocumentTypeID,
		"supersedes_id":    created.SupersedesID,
	})

	s.logger.Info().Uint("submission_id", created.ID).Uint("project_id", created.ProjectID).
		Msg("submission created")

	return dto.NewSubmissionResponse(created), nil
}

func (s *submissionService) Review(ctx context.Context, submissionID uint, payload dto.SubmissionReviewRequest, actor Actor) (dto.SubmissionResponse, error) {
	if !actor.Can(models.CapReviewSubmission) {
		return dto.SubmissionResponse{}, &UnauthorizedError{Role: actor.Role, Capability: models.CapReviewSubmission}
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.getSubmission(ctx, submissionID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if submission.Project.SupervisorID != actor.ID {
		return dto.SubmissionResponse{}, &UnauthorizedError{
			Role:   actor.Role,
			Reason: "only the project's assigned supervisor may review its submissions",
		}
	}

	if !submission.CanReview() {
		return dto.SubmissionResponse{}, &InvalidStateError{
			SubmissionID:  submission.ID,
			CurrentStatus: submission.Status,
			RequiredState: models.SubmissionStatusPendingReview,
		}
	}

	feedback := strings.TrimSpace(payload.Feedback)
	if !payload.Approve && feedback == "" {
		return dto.SubmissionResponse{}, &ValidationError{
			Field:  "feedback",
			Reason: "rejecting a submission requires feedback",
		}
	}

	if payload.Approve {
		submission.Status = models.SubmissionStatusApproved
	} else {
		submission.Status = models.SubmissionStatusRevisionRequested
	}
	submission.Comments = feedback
	reviewedAt := s.now()
	submission.ReviewedAt = &reviewedAt
	reviewedBy := actor.ID
	submission.ReviewedBy = &reviewedBy

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	observability.SubmissionTransitions().WithLabelValues(submission.Status).Inc()

	s.audit(ctx, actor, "submission.reviewed", submission.ID, map[string]interface{}{
		"approved":   payload.Approve,
		"project_id": submission.ProjectID,
	})

	s.notify(ctx, models.Event{
		Kind:       models.EventSubmissionReviewed,
		Recipients: memberIDs(submission.Project),
		SubmissionReviewed: &models.SubmissionReviewedPayload{
			ProjectID:    submission.ProjectID,
			ProjectTitle: submission.Project.Title,
			DocumentType: submission.DocumentType.Title,
			SubmissionID: submission.ID,
			Approved:     payload.Approve,
			Feedback:     feedback,
		},
	})

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) MarkFinal(ctx context.Context, submissionID uint, actor Actor) (dto.SubmissionResponse, error) {
	if !actor.Can(models.CapMarkSubmissionFinal) {
		return dto.SubmissionResponse{}, &UnauthorizedError{Role: actor.Role, Capability: models.CapMarkSubmissionFinal}
	}

	submission, err := s.getSubmission(ctx, submissionID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if !submission.Project.HasMember(actor.ID) {
		return dto.SubmissionResponse{}, &UnauthorizedError{
			Role:   actor.Role,
			Reason: "only members of the project may declare its submission final",
		}
	}

	if submission.Status != models.SubmissionStatusApproved {
		return dto.SubmissionResponse{}, &InvalidStateError{
			SubmissionID:  submission.ID,
			CurrentStatus: submission.Status,
			RequiredState: models.SubmissionStatusApproved,
		}
	}

	if !submission.IsFinal {
		submission.IsFinal = true
		if err := s.submissions.Update(ctx, &submission); err != nil {
			return dto.SubmissionResponse{}, err
		}
		s.audit(ctx, actor, "submission.marked_final", submission.ID, map[string]interface{}{
			"project_id": submission.ProjectID,
		})
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) Lock(ctx context.Context, submissionID uint, actor Actor) (dto.SubmissionResponse, error) {
	if !actor.Can(models.CapLockSubmission) {
		return dto.SubmissionResponse{}, &UnauthorizedError{Role: actor.Role, Capability: models.CapLockSubmission}
	}

	submission, err := s.getSubmission(ctx, submissionID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if !submission.CanLock() {
		return dto.SubmissionResponse{}, s.lockStateError(submission)
	}

	// Compare-and-swap on (approved, final): of two concurrent lockers
	// exactly one wins, the loser observes the already-locked row.
	won, err := s.submissions.LockCAS(ctx, submission.ID, actor.ID, s.now())
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if !won {
		current, err := s.getSubmission(ctx, submissionID)
		if err != nil {
			return dto.SubmissionResponse{}, err
		}
		return dto.SubmissionResponse{}, s.lockStateError(current)
	}

	locked, err := s.getSubmission(ctx, submissionID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	observability.SubmissionTransitions().WithLabelValues(locked.Status).Inc()

	s.audit(ctx, actor, "submission.locked", locked.ID, map[string]interface{}{
		"project_id": locked.ProjectID,
	})

	s.notify(ctx, models.Event{
		Kind:       models.EventSubmissionLocked,
		Recipients: memberIDs(locked.Project),
		SubmissionLocked: &models.SubmissionLockedPayload{
			ProjectID:    locked.ProjectID,
			ProjectTitle: locked.Project.Title,
			DocumentType: locked.DocumentType.Title,
			SubmissionID: locked.ID,
		},
	})

	return dto.NewSubmissionResponse(locked), nil
}

// ListByProject returns the project's submissions. Students see only projects
// they belong to; staff roles pass.
func (s *submissionService) ListByProject(ctx context.Context, projectID uint, actor Actor) ([]dto.SubmissionResponse, error) {
	if err := s.checkProjectAccess(ctx, projectID, actor); err != nil {
		return nil, err
	}

	submissions, err := s.submissions.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) Lineage(ctx context.Context, submissionID uint, actor Actor) ([]dto.SubmissionResponse, error) {
	if !actor.Can(models.CapViewSubmissionLineage) {
		return nil, &UnauthorizedError{Role: actor.Role, Capability: models.CapViewSubmissionLineage}
	}

	chain, err := s.submissions.Lineage(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}

	if len(chain) > 0 {
		if err := s.checkProjectAccess(ctx, chain[0].ProjectID, actor); err != nil {
			return nil, err
		}
	}

	return dto.NewSubmissionResponseSlice(chain), nil
}

// checkProjectAccess scopes read endpoints the same way Create and the result
// aggregator scope writes: a student must belong to the project, other known
// roles pass, unknown roles hold nothing.
func (s *submissionService) checkProjectAccess(ctx context.Context, projectID uint, actor Actor) error {
	switch actor.Role {
	case models.RoleSupervisor, models.RoleEvaluationCommittee, models.RoleAdminCommittee:
		return nil
	case models.RoleStudent:
	default:
		return &UnauthorizedError{Role: actor.Role, Reason: "unknown role may not view project submissions"}
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return err
	}

	if !project.HasMember(actor.ID) {
		return &UnauthorizedError{
			Role:   actor.Role,
			Reason: "only members of the project may view its submissions",
		}
	}

	return nil
}

func (s *submissionService) getSubmission(ctx context.Context, id uint) (models.DocumentSubmission, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.DocumentSubmission{}, ErrSubmissionNotFound
		}
		return models.DocumentSubmission{}, err
	}
	return submission, nil
}

func (s *submissionService) checkDeadline(ctx context.Context, batchID, documentTypeID uint) error {
	deadlines, err := s.deadlines.ListByBatch(ctx, batchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	reference := s.now()
	for _, deadline := range deadlines {
		if deadline.DocumentTypeID != documentTypeID {
			continue
		}
		if deadline.IsPast(reference) {
			return &ValidationError{Field: "document_type_id", Reason: "the deadline for this document type has passed"}
		}
	}

	return nil
}

func (s *submissionService) checkSequentialGate(ctx context.Context, projectID uint, docType models.DocumentType) error {
	types, err := s.docTypes.List(ctx, true)
	if err != nil {
		return err
	}

	for _, earlier := range types {
		if earlier.DisplayOrder >= docType.DisplayOrder {
			continue
		}
		approved, err := s.submissions.HasApproved(ctx, projectID, earlier.ID)
		if err != nil {
			return err
		}
		if !approved {
			return &ValidationError{
				Field:  "document_type_id",
				Reason: "earlier required document " + earlier.Code + " has no approved submission",
			}
		}
	}

	return nil
}

func (s *submissionService) lockStateError(submission models.DocumentSubmission) error {
	required := models.SubmissionStatusApproved + " with the final flag set"
	return &InvalidStateError{
		SubmissionID:  submission.ID,
		CurrentStatus: submission.Status,
		RequiredState: required,
	}
}

func (s *submissionService) audit(ctx context.Context, actor Actor, action string, id uint, metadata map[string]interface{}) {
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

func (s *submissionService) notify(ctx context.Context, event models.Event) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(ctx, event)
}

func validateFileType(file *multipart.FileHeader) error {
	reader, err := file.Open()
	if err != nil {
		return &ValidationError{Field: "file", Reason: "failed to open file"}
	}
	defer reader.Close()

	mime, err := mimetype.DetectReader(reader)
	if err != nil {
		return &ValidationError{Field: "file", Reason: "failed to detect file type"}
	}

	allowed := []string{"application/pdf", "application/zip", "application/x-zip-compressed", "text/plain"}
	for _, a := range allowed {
		if mime.Is(a) {
			return nil
		}
	}

	return &ValidationError{Field: "file", Reason: "unsupported file type: " + mime.String()}
}

func memberIDs(project models.Project) []uint {
	ids := make([]uint, 0, len(project.Members))
	for _, member := range project.Members {
		ids = append(ids, member.StudentID)
	}
	return ids
}
