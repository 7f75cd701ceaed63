package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Ahad-dev/fypify-api/internal/models"
)

// ProjectRepository exposes the read model the core needs from the project
// management subsystem.
type ProjectRepository interface {
	GetByID(ctx context.Context, id uint) (models.Project, error)
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository instantiates the repository.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) GetByID(ctx context.Context, id uint) (models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).Preload("Members").First(&project, id).Error; err != nil {
		return models.Project{}, err
	}

	return project, nil
}
