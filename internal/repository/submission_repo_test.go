package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/Ahad-dev/fypify-api/internal/models"
)

func setupTestDB(t *testing.T, entities ...interface{}) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(entities...))
	return db
}

func seedSubmission(t *testing.T, db *gorm.DB, submission models.DocumentSubmission) models.DocumentSubmission {
	t.Helper()
	require.NoError(t, db.Create(&submission).Error)
	return submission
}

func TestSubmissionRepositoryLockCAS(t *testing.T) {
	db := setupTestDB(t, &models.DocumentSubmission{}, &models.DocumentType{}, &models.Project{}, &models.ProjectMember{})
	repo := NewSubmissionRepository(db)

	lockable := seedSubmission(t, db, models.DocumentSubmission{
		ProjectID: 101, DocumentTypeID: 1,
		Status: models.SubmissionStatusApproved, IsFinal: true,
		UploadedBy: 10, FileReference: "ref-a",
	})
	notFinal := seedSubmission(t, db, models.DocumentSubmission{
		ProjectID: 101, DocumentTypeID: 2,
		Status: models.SubmissionStatusApproved, IsFinal: false,
		UploadedBy: 10, FileReference: "ref-b",
	})

	now := time.Now()

	won, err := repo.LockCAS(context.Background(), lockable.ID, 90, now)
	require.NoError(t, err)
	require.True(t, won)

	// The loser's swap finds the guard already gone.
	won, err = repo.LockCAS(context.Background(), lockable.ID, 91, now)
	require.NoError(t, err)
	require.False(t, won)

	locked, err := repo.GetByID(context.Background(), lockable.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusLocked, locked.Status)
	require.NotNil(t, locked.LockedBy)
	require.Equal(t, uint(90), *locked.LockedBy)

	// Approved but not final never locks.
	won, err = repo.LockCAS(context.Background(), notFinal.ID, 90, now)
	require.NoError(t, err)
	require.False(t, won)
}

func TestSubmissionRepositoryGetCurrentReturnsNewest(t *testing.T) {
	db := setupTestDB(t, &models.DocumentSubmission{}, &models.DocumentType{}, &models.Project{}, &models.ProjectMember{})
	repo := NewSubmissionRepository(db)

	older := models.DocumentSubmission{
		ProjectID: 102, DocumentTypeID: 1,
		Status: models.SubmissionStatusRevisionRequested,
		UploadedBy: 10, FileReference: "ref-old",
	}
	require.NoError(t, db.Create(&older).Error)
	// Force distinct timestamps; sqlite stores them with limited precision.
	require.NoError(t, db.Model(&older).Update("created_at", time.Now().Add(-time.Hour)).Error)

	newer := seedSubmission(t, db, models.DocumentSubmission{
		ProjectID: 102, DocumentTypeID: 1,
		Status: models.SubmissionStatusPendingReview,
		UploadedBy: 10, FileReference: "ref-new", SupersedesID: &older.ID,
	})

	current, err := repo.GetCurrent(context.Background(), 102, 1)
	require.NoError(t, err)
	require.Equal(t, newer.ID, current.ID)
}

func TestSubmissionRepositoryCountActiveExcludesTerminalStates(t *testing.T) {
	db := setupTestDB(t, &models.DocumentSubmission{}, &models.DocumentType{}, &models.Project{}, &models.ProjectMember{})
	repo := NewSubmissionRepository(db)

	seedSubmission(t, db, models.DocumentSubmission{
		ProjectID: 103, DocumentTypeID: 1,
		Status: models.SubmissionStatusRevisionRequested, UploadedBy: 10, FileReference: "r1",
	})
	count, err := repo.CountActive(context.Background(), 103, 1)
	require.NoError(t, err)
	require.Zero(t, count)

	seedSubmission(t, db, models.DocumentSubmission{
		ProjectID: 103, DocumentTypeID: 1,
		Status: models.SubmissionStatusPendingReview, UploadedBy: 10, FileReference: "r2",
	})
	count, err = repo.CountActive(context.Background(), 103, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestSubmissionRepositoryHasApprovedCountsLockedRows(t *testing.T) {
	db := setupTestDB(t, &models.DocumentSubmission{}, &models.DocumentType{}, &models.Project{}, &models.ProjectMember{})
	repo := NewSubmissionRepository(db)

	approved, err := repo.HasApproved(context.Background(), 104, 1)
	require.NoError(t, err)
	require.False(t, approved)

	seedSubmission(t, db, models.DocumentSubmission{
		ProjectID: 104, DocumentTypeID: 1,
		Status: models.SubmissionStatusLocked, IsFinal: true, UploadedBy: 10, FileReference: "r1",
	})

	approved, err = repo.HasApproved(context.Background(), 104, 1)
	require.NoError(t, err)
	require.True(t, approved)
}

func TestSubmissionRepositoryLineageWalksSupersedesChain(t *testing.T) {
	db := setupTestDB(t, &models.DocumentSubmission{}, &models.DocumentType{}, &models.Project{}, &models.ProjectMember{})
	repo := NewSubmissionRepository(db)

	first := seedSubmission(t, db, models.DocumentSubmission{
		ProjectID: 105, DocumentTypeID: 1,
		Status: models.SubmissionStatusRevisionRequested, UploadedBy: 10, FileReference: "v1",
	})
	second := seedSubmission(t, db, models.DocumentSubmission{
		ProjectID: 105, DocumentTypeID: 1,
		Status: models.SubmissionStatusRevisionRequested, UploadedBy: 10, FileReference: "v2", SupersedesID: &first.ID,
	})
	third := seedSubmission(t, db, models.DocumentSubmission{
		ProjectID: 105, DocumentTypeID: 1,
		Status: models.SubmissionStatusPendingReview, UploadedBy: 10, FileReference: "v3", SupersedesID: &second.ID,
	})

	chain, err := repo.Lineage(context.Background(), third.ID)
	require.NoError(t, err)
	require.Len(t, chain, 3)
	require.Equal(t, third.ID, chain[0].ID)
	require.Equal(t, second.ID, chain[1].ID)
	require.Equal(t, first.ID, chain[2].ID)

	_, err = repo.Lineage(context.Background(), 99999)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
