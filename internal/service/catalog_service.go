package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Ahad-dev/fypify-api/internal/dto"
	"github.com/Ahad-dev/fypify-api/internal/models"
	"github.com/Ahad-dev/fypify-api/internal/repository"
)

// CatalogService manages the ordered catalog of required document types.
type CatalogService interface {
	List(ctx context.Context, activeOnly bool) ([]dto.DocumentTypeResponse, error)
	Get(ctx context.Context, id uint) (dto.DocumentTypeResponse, error)
	Create(ctx context.Context, payload dto.DocumentTypeCreateRequest, actor Actor) (dto.DocumentTypeResponse, error)
	Update(ctx context.Context, id uint, payload dto.DocumentTypeUpdateRequest, actor Actor) (dto.DocumentTypeResponse, error)
	Deactivate(ctx context.Context, id uint, actor Actor) (dto.DocumentTypeResponse, error)
}

type catalogService struct {
	repo      repository.DocumentTypeRepository
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewCatalogService constructs the document catalog service.
func NewCatalogService(repo repository.DocumentTypeRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) CatalogService {
	return &catalogService{
		repo:      repo,
		validator: validate,
		activity:  activity,
		logger:    logger.With().Str("component", "catalog_service").Logger(),
	}
}

func (s *catalogService) List(ctx context.Context, activeOnly bool) ([]dto.DocumentTypeResponse, error) {
	types, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}

	s.warnIfUnnormalized(types)

	return dto.NewDocumentTypeResponseSlice(types), nil
}

func (s *catalogService) Get(ctx context.Context, id uint) (dto.DocumentTypeResponse, error) {
	docType, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DocumentTypeResponse{}, ErrDocumentTypeNotFound
		}
		return dto.DocumentTypeResponse{}, err
	}

	return dto.NewDocumentTypeResponse(docType), nil
}

func (s *catalogService) Create(ctx context.Context, payload dto.DocumentTypeCreateRequest, actor Actor) (dto.DocumentTypeResponse, error) {
	if !actor.Can(models.CapManageDocumentCatalog) {
		return dto.DocumentTypeResponse{}, &UnauthorizedError{Role: actor.Role, Capability: models.CapManageDocumentCatalog}
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.DocumentTypeResponse{}, err
	}

	docType := models.DocumentType{
		Code:             strings.ToUpper(strings.TrimSpace(payload.Code)),
		Title:            strings.TrimSpace(payload.Title),
		SupervisorWeight: payload.SupervisorWeight,
		CommitteeWeight:  payload.CommitteeWeight,
		DisplayOrder:     payload.DisplayOrder,
		Active:           true,
	}

	if err := s.repo.Create(ctx, &docType); err != nil {
		return dto.DocumentTypeResponse{}, err
	}

	s.audit(ctx, actor, "document_type.created", docType.ID, map[string]interface{}{
		"code":              docType.Code,
		"supervisor_weight": docType.SupervisorWeight,
		"committee_weight":  docType.CommitteeWeight,
	})

	return dto.NewDocumentTypeResponse(docType), nil
}

func (s *catalogService) Update(ctx context.Context, id uint, payload dto.DocumentTypeUpdateRequest, actor Actor) (dto.DocumentTypeResponse, error) {
	if !actor.Can(models.CapManageDocumentCatalog) {
		return dto.DocumentTypeResponse{}, &UnauthorizedError{Role: actor.Role, Capability: models.CapManageDocumentCatalog}
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.DocumentTypeResponse{}, err
	}

	docType, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DocumentTypeResponse{}, ErrDocumentTypeNotFound
		}
		return dto.DocumentTypeResponse{}, err
	}

	weightsChange := (payload.SupervisorWeight != nil && *payload.SupervisorWeight != docType.SupervisorWeight) ||
		(payload.CommitteeWeight != nil && *payload.CommitteeWeight != docType.CommitteeWeight)
	if weightsChange {
		referenced, err := s.repo.HasMarks(ctx, id)
		if err != nil {
			return dto.DocumentTypeResponse{}, err
		}
		if referenced {
			return dto.DocumentTypeResponse{}, &ValidationError{
				Field:  "weights",
				Reason: "marks already reference this document type; weights are frozen",
			}
		}
	}

	if payload.Title != nil {
		docType.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.SupervisorWeight != nil {
		docType.SupervisorWeight = *payload.SupervisorWeight
	}
	if payload.CommitteeWeight != nil {
		docType.CommitteeWeight = *payload.CommitteeWeight
	}
	if payload.DisplayOrder != nil {
		docType.DisplayOrder = *payload.DisplayOrder
	}

	if err := s.repo.Update(ctx, &docType); err != nil {
		return dto.DocumentTypeResponse{}, err
	}

	s.audit(ctx, actor, "document_type.updated", docType.ID, map[string]interface{}{"code": docType.Code})

	return dto.NewDocumentTypeResponse(docType), nil
}

func (s *catalogService) Deactivate(ctx context.Context, id uint, actor Actor) (dto.DocumentTypeResponse, error) {
	if !actor.Can(models.CapManageDocumentCatalog) {
		return dto.DocumentTypeResponse{}, &UnauthorizedError{Role: actor.Role, Capability: models.CapManageDocumentCatalog}
	}

	docType, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DocumentTypeResponse{}, ErrDocumentTypeNotFound
		}
		return dto.DocumentTypeResponse{}, err
	}

	if docType.Active {
		docType.Active = false
		if err := s.repo.Update(ctx, &docType); err != nil {
			return dto.DocumentTypeResponse{}, err
		}
		s.audit(ctx, actor, "document_type.deactivated", docType.ID, map[string]interface{}{"code": docType.Code})
	}

	return dto.NewDocumentTypeResponse(docType), nil
}

// warnIfUnnormalized flags catalogs whose active weights do not resemble a
// pre-normalized distribution. Informational only: the aggregator trusts the
// catalog as defined.
func (s *catalogService) warnIfUnnormalized(types []models.DocumentType) {
	var total float64
	active := 0
	for _, docType := range types {
		if !docType.Active {
			continue
		}
		active++
		total += docType.SupervisorWeight + docType.CommitteeWeight
	}
	if active == 0 {
		return
	}
	if total < float64(active)*99 || total > float64(active)*101 {
		s.logger.Warn().Float64("weight_total", total).Int("active_types", active).
			Msg("active document type weights look unnormalized")
	}
}

func (s *catalogService) audit(ctx context.Context, actor Actor, action string, id uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     action,
		EntityType: "document_type",
		EntityID:   entityID(id),
		Metadata:   metadata,
	})
}
