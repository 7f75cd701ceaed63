package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Ahad-dev/fypify-api/internal/models"
)

func TestDocumentTypeRepositoryListOrdersAndFilters(t *testing.T) {
	db := setupTestDB(t, &models.DocumentType{})
	repo := NewDocumentTypeRepository(db)

	thesis := models.DocumentType{Code: "THESIS-A", Title: "Final Thesis", DisplayOrder: 20, Active: true}
	proposal := models.DocumentType{Code: "PROPOSAL-A", Title: "Project Proposal", DisplayOrder: 10, Active: true}
	retired := models.DocumentType{Code: "RETIRED-A", Title: "Old Report", DisplayOrder: 15, Active: false}
	require.NoError(t, repo.Create(context.Background(), &thesis))
	require.NoError(t, repo.Create(context.Background(), &proposal))
	require.NoError(t, repo.Create(context.Background(), &retired))

	active, err := repo.List(context.Background(), true)
	require.NoError(t, err)

	codes := make([]string, 0, len(active))
	for _, docType := range active {
		codes = append(codes, docType.Code)
	}
	require.NotContains(t, codes, "RETIRED-A")

	// Active listing keeps the catalog's display order.
	var proposalIdx, thesisIdx int
	for i, code := range codes {
		switch code {
		case "PROPOSAL-A":
			proposalIdx = i
		case "THESIS-A":
			thesisIdx = i
		}
	}
	require.Less(t, proposalIdx, thesisIdx)
}

func TestDocumentTypeRepositoryHasMarks(t *testing.T) {
	db := setupTestDB(t, &models.DocumentType{}, &models.DocumentSubmission{}, &models.SupervisorMarks{}, &models.EvaluationMarks{})
	repo := NewDocumentTypeRepository(db)

	docType := models.DocumentType{Code: "MARKED-A", Title: "Marked Type", DisplayOrder: 1, Active: true}
	require.NoError(t, repo.Create(context.Background(), &docType))

	referenced, err := repo.HasMarks(context.Background(), docType.ID)
	require.NoError(t, err)
	require.False(t, referenced)

	submission := models.DocumentSubmission{
		ProjectID: 301, DocumentTypeID: docType.ID,
		Status: models.SubmissionStatusLocked, IsFinal: true,
		UploadedBy: 10, FileReference: "ref",
	}
	require.NoError(t, db.Create(&submission).Error)
	require.NoError(t, db.Create(&models.SupervisorMarks{SubmissionID: submission.ID, SupervisorID: 50, Score: 80}).Error)

	referenced, err = repo.HasMarks(context.Background(), docType.ID)
	require.NoError(t, err)
	require.True(t, referenced)
}

func TestDeadlineRepositoryReplaceForBatch(t *testing.T) {
	db := setupTestDB(t, &models.DeadlineBatch{}, &models.ProjectDeadline{}, &models.DocumentType{})
	repo := NewDeadlineRepository(db)

	batch := models.DeadlineBatch{Name: "Fall 2026"}
	require.NoError(t, db.Create(&batch).Error)

	base := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.ReplaceForBatch(context.Background(), batch.ID, []models.ProjectDeadline{
		{BatchID: batch.ID, DocumentTypeID: 1, DeadlineDate: base, SortOrder: 1},
		{BatchID: batch.ID, DocumentTypeID: 2, DeadlineDate: base.Add(30 * 24 * time.Hour), SortOrder: 2},
	}))

	deadlines, err := repo.ListByBatch(context.Background(), batch.ID)
	require.NoError(t, err)
	require.Len(t, deadlines, 2)
	require.Equal(t, uint(1), deadlines[0].DocumentTypeID)

	// Replacing installs the new schedule atomically.
	require.NoError(t, repo.ReplaceForBatch(context.Background(), batch.ID, []models.ProjectDeadline{
		{BatchID: batch.ID, DocumentTypeID: 1, DeadlineDate: base.Add(7 * 24 * time.Hour), SortOrder: 1},
	}))

	deadlines, err = repo.ListByBatch(context.Background(), batch.ID)
	require.NoError(t, err)
	require.Len(t, deadlines, 1)
	require.True(t, deadlines[0].DeadlineDate.Equal(base.Add(7*24*time.Hour)))

	stored, err := repo.GetBatch(context.Background(), batch.ID)
	require.NoError(t, err)
	require.Equal(t, "Fall 2026", stored.Name)
}
