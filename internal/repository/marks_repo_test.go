package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Ahad-dev/fypify-api/internal/models"
)

func TestMarksRepositoryUpsertSupervisorOverwrites(t *testing.T) {
	db := setupTestDB(t, &models.SupervisorMarks{}, &models.EvaluationMarks{})
	repo := NewMarksRepository(db)

	marks := models.SupervisorMarks{SubmissionID: 201, SupervisorID: 50, Score: 70}
	require.NoError(t, repo.UpsertSupervisor(context.Background(), &marks))

	// Second submission for the same locked row replaces the score.
	revised := models.SupervisorMarks{SubmissionID: 201, SupervisorID: 50, Score: 82.5}
	require.NoError(t, repo.UpsertSupervisor(context.Background(), &revised))

	stored, err := repo.GetSupervisor(context.Background(), 201)
	require.NoError(t, err)
	require.InDelta(t, 82.5, stored.Score, 1e-9)

	var count int64
	require.NoError(t, db.Model(&models.SupervisorMarks{}).Where("submission_id = ?", 201).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestMarksRepositoryEvaluationRowPerEvaluator(t *testing.T) {
	db := setupTestDB(t, &models.SupervisorMarks{}, &models.EvaluationMarks{})
	repo := NewMarksRepository(db)

	finalizedAt := time.Now()
	require.NoError(t, repo.UpsertEvaluation(context.Background(), &models.EvaluationMarks{
		SubmissionID: 202, EvaluatorID: 90, Score: 85, IsFinal: true, FinalizedAt: &finalizedAt,
	}))
	require.NoError(t, repo.UpsertEvaluation(context.Background(), &models.EvaluationMarks{
		SubmissionID: 202, EvaluatorID: 91, Score: 95,
	}))

	// The draft owner revises their row; the finalized row is untouched.
	require.NoError(t, repo.UpsertEvaluation(context.Background(), &models.EvaluationMarks{
		SubmissionID: 202, EvaluatorID: 91, Score: 90,
	}))

	evaluations, err := repo.ListEvaluations(context.Background(), 202)
	require.NoError(t, err)
	require.Len(t, evaluations, 2)

	byEvaluator := make(map[uint]models.EvaluationMarks, len(evaluations))
	for _, entry := range evaluations {
		byEvaluator[entry.EvaluatorID] = entry
	}
	require.InDelta(t, 85, byEvaluator[90].Score, 1e-9)
	require.True(t, byEvaluator[90].IsFinal)
	require.InDelta(t, 90, byEvaluator[91].Score, 1e-9)
	require.False(t, byEvaluator[91].IsFinal)
}

func TestMarksRepositoryGetEvaluationMissing(t *testing.T) {
	db := setupTestDB(t, &models.SupervisorMarks{}, &models.EvaluationMarks{})
	repo := NewMarksRepository(db)

	_, err := repo.GetEvaluation(context.Background(), 203, 90)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
