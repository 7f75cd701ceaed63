package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Ahad-dev/fypify-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// fileHeader builds a real multipart file header so the mime sniffing in the
// submission path runs against actual bytes.
func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	request := httptest.NewRequest("POST", "/", body)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, request.ParseMultipartForm(int64(body.Len())+1024))

	files := request.MultipartForm.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

type memorySubmissionRepo struct {
	submissions map[uint]models.DocumentSubmission
	nextID      uint

	// association sources emulating the repository's preloads
	projects *stubProjectRepo
	docTypes *memoryDocTypeRepo
}

func newMemorySubmissionRepo() *memorySubmissionRepo {
	return &memorySubmissionRepo{submissions: make(map[uint]models.DocumentSubmission), nextID: 1}
}

func (m *memorySubmissionRepo) hydrate(submission models.DocumentSubmission) models.DocumentSubmission {
	if m.projects != nil {
		if project, ok := m.projects.projects[submission.ProjectID]; ok {
			submission.Project = project
		}
	}
	if m.docTypes != nil {
		if docType, ok := m.docTypes.types[submission.DocumentTypeID]; ok {
			submission.DocumentType = docType
		}
	}
	return submission
}

func (m *memorySubmissionRepo) GetByID(_ context.Context, id uint) (models.DocumentSubmission, error) {
	submission, ok := m.submissions[id]
	if !ok {
		return models.DocumentSubmission{}, gorm.ErrRecordNotFound
	}
	return m.hydrate(submission), nil
}

func (m *memorySubmissionRepo) GetCurrent(_ context.Context, projectID, documentTypeID uint) (models.DocumentSubmission, error) {
	var current models.DocumentSubmission
	found := false
	for _, submission := range m.submissions {
		if submission.ProjectID != projectID || submission.DocumentTypeID != documentTypeID {
			continue
		}
		if !found || submission.ID > current.ID {
			current = submission
			found = true
		}
	}
	if !found {
		return models.DocumentSubmission{}, gorm.ErrRecordNotFound
	}
	return m.hydrate(current), nil
}

func (m *memorySubmissionRepo) CountActive(_ context.Context, projectID, documentTypeID uint) (int64, error) {
	var count int64
	for _, submission := range m.submissions {
		if submission.ProjectID != projectID || submission.DocumentTypeID != documentTypeID {
			continue
		}
		for _, status := range models.ActiveSubmissionStatuses {
			if submission.Status == status {
				count++
				break
			}
		}
	}
	return count, nil
}

func (m *memorySubmissionRepo) HasApproved(_ context.Context, projectID, documentTypeID uint) (bool, error) {
	for _, submission := range m.submissions {
		if submission.ProjectID != projectID || submission.DocumentTypeID != documentTypeID {
			continue
		}
		if submission.Status == models.SubmissionStatusApproved || submission.Status == models.SubmissionStatusLocked {
			return true, nil
		}
	}
	return false, nil
}

func (m *memorySubmissionRepo) Create(_ context.Context, submission *models.DocumentSubmission) error {
	submission.ID = m.nextID
	submission.CreatedAt = time.Now()
	submission.UpdatedAt = time.Now()
	m.submissions[m.nextID] = *submission
	m.nextID++
	return nil
}

func (m *memorySubmissionRepo) Update(_ context.Context, submission *models.DocumentSubmission) error {
	if _, ok := m.submissions[submission.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	submission.UpdatedAt = time.Now()
	m.submissions[submission.ID] = *submission
	return nil
}

func (m *memorySubmissionRepo) LockCAS(_ context.Context, id, lockedBy uint, lockedAt time.Time) (bool, error) {
	submission, ok := m.submissions[id]
	if !ok {
		return false, nil
	}
	if submission.Status != models.SubmissionStatusApproved || !submission.IsFinal {
		return false, nil
	}
	submission.Status = models.SubmissionStatusLocked
	submission.LockedBy = &lockedBy
	submission.LockedAt = &lockedAt
	m.submissions[id] = submission
	return true, nil
}

func (m *memorySubmissionRepo) ListByProject(_ context.Context, projectID uint) ([]models.DocumentSubmission, error) {
	results := make([]models.DocumentSubmission, 0)
	for _, submission := range m.submissions {
		if submission.ProjectID == projectID {
			results = append(results, m.hydrate(submission))
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID > results[j].ID })
	return results, nil
}

func (m *memorySubmissionRepo) Lineage(_ context.Context, id uint) ([]models.DocumentSubmission, error) {
	var chain []models.DocumentSubmission
	next := &id
	for next != nil {
		submission, ok := m.submissions[*next]
		if !ok {
			return nil, gorm.ErrRecordNotFound
		}
		chain = append(chain, m.hydrate(submission))
		next = submission.SupersedesID
	}
	return chain, nil
}

type memoryDocTypeRepo struct {
	types      map[uint]models.DocumentType
	nextID     uint
	referenced map[uint]bool
}

func newMemoryDocTypeRepo() *memoryDocTypeRepo {
	return &memoryDocTypeRepo{
		types:      make(map[uint]models.DocumentType),
		nextID:     1,
		referenced: make(map[uint]bool),
	}
}

func (m *memoryDocTypeRepo) List(_ context.Context, activeOnly bool) ([]models.DocumentType, error) {
	results := make([]models.DocumentType, 0, len(m.types))
	for _, docType := range m.types {
		if activeOnly && !docType.Active {
			continue
		}
		results = append(results, docType)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].DisplayOrder < results[j].DisplayOrder })
	return results, nil
}

func (m *memoryDocTypeRepo) GetByID(_ context.Context, id uint) (models.DocumentType, error) {
	docType, ok := m.types[id]
	if !ok {
		return models.DocumentType{}, gorm.ErrRecordNotFound
	}
	return docType, nil
}

func (m *memoryDocTypeRepo) Create(_ context.Context, docType *models.DocumentType) error {
	docType.ID = m.nextID
	docType.CreatedAt = time.Now()
	docType.UpdatedAt = time.Now()
	m.types[m.nextID] = *docType
	m.nextID++
	return nil
}

func (m *memoryDocTypeRepo) Update(_ context.Context, docType *models.DocumentType) error {
	if _, ok := m.types[docType.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	docType.UpdatedAt = time.Now()
	m.types[docType.ID] = *docType
	return nil
}

func (m *memoryDocTypeRepo) HasMarks(_ context.Context, id uint) (bool, error) {
	return m.referenced[id], nil
}

type stubProjectRepo struct {
	projects map[uint]models.Project
}

func newStubProjectRepo(projects ...models.Project) *stubProjectRepo {
	repo := &stubProjectRepo{projects: make(map[uint]models.Project)}
	for _, project := range projects {
		repo.projects[project.ID] = project
	}
	return repo
}

func (m *stubProjectRepo) GetByID(_ context.Context, id uint) (models.Project, error) {
	project, ok := m.projects[id]
	if !ok {
		return models.Project{}, gorm.ErrRecordNotFound
	}
	return project, nil
}

type memoryDeadlineRepo struct {
	batches   map[uint]models.DeadlineBatch
	deadlines []models.ProjectDeadline
	nextID    uint
}

func newMemoryDeadlineRepo(batchIDs ...uint) *memoryDeadlineRepo {
	repo := &memoryDeadlineRepo{batches: make(map[uint]models.DeadlineBatch), nextID: 1}
	for _, id := range batchIDs {
		repo.batches[id] = models.DeadlineBatch{ID: id, Name: "batch"}
	}
	return repo
}

func (m *memoryDeadlineRepo) GetBatch(_ context.Context, batchID uint) (models.DeadlineBatch, error) {
	batch, ok := m.batches[batchID]
	if !ok {
		return models.DeadlineBatch{}, gorm.ErrRecordNotFound
	}
	return batch, nil
}

func (m *memoryDeadlineRepo) ListByBatch(_ context.Context, batchID uint) ([]models.ProjectDeadline, error) {
	results := make([]models.ProjectDeadline, 0)
	for _, deadline := range m.deadlines {
		if deadline.BatchID == batchID {
			results = append(results, deadline)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].SortOrder < results[j].SortOrder })
	return results, nil
}

func (m *memoryDeadlineRepo) ReplaceForBatch(_ context.Context, batchID uint, entries []models.ProjectDeadline) error {
	kept := m.deadlines[:0]
	for _, deadline := range m.deadlines {
		if deadline.BatchID != batchID {
			kept = append(kept, deadline)
		}
	}
	m.deadlines = kept
	for _, entry := range entries {
		entry.ID = m.nextID
		m.nextID++
		m.deadlines = append(m.deadlines, entry)
	}
	return nil
}

func (m *memoryDeadlineRepo) ListAll(_ context.Context) ([]models.ProjectDeadline, error) {
	results := make([]models.ProjectDeadline, len(m.deadlines))
	copy(results, m.deadlines)
	return results, nil
}

type memoryMarksRepo struct {
	supervisor  map[uint]models.SupervisorMarks
	evaluations map[uint]map[uint]models.EvaluationMarks
}

func newMemoryMarksRepo() *memoryMarksRepo {
	return &memoryMarksRepo{
		supervisor:  make(map[uint]models.SupervisorMarks),
		evaluations: make(map[uint]map[uint]models.EvaluationMarks),
	}
}

func (m *memoryMarksRepo) UpsertSupervisor(_ context.Context, marks *models.SupervisorMarks) error {
	marks.UpdatedAt = time.Now()
	m.supervisor[marks.SubmissionID] = *marks
	return nil
}

func (m *memoryMarksRepo) GetSupervisor(_ context.Context, submissionID uint) (models.SupervisorMarks, error) {
	marks, ok := m.supervisor[submissionID]
	if !ok {
		return models.SupervisorMarks{}, gorm.ErrRecordNotFound
	}
	return marks, nil
}

func (m *memoryMarksRepo) UpsertEvaluation(_ context.Context, marks *models.EvaluationMarks) error {
	if m.evaluations[marks.SubmissionID] == nil {
		m.evaluations[marks.SubmissionID] = make(map[uint]models.EvaluationMarks)
	}
	marks.UpdatedAt = time.Now()
	m.evaluations[marks.SubmissionID][marks.EvaluatorID] = *marks
	return nil
}

func (m *memoryMarksRepo) GetEvaluation(_ context.Context, submissionID, evaluatorID uint) (models.EvaluationMarks, error) {
	marks, ok := m.evaluations[submissionID][evaluatorID]
	if !ok {
		return models.EvaluationMarks{}, gorm.ErrRecordNotFound
	}
	return marks, nil
}

func (m *memoryMarksRepo) ListEvaluations(_ context.Context, submissionID uint) ([]models.EvaluationMarks, error) {
	results := make([]models.EvaluationMarks, 0, len(m.evaluations[submissionID]))
	for _, marks := range m.evaluations[submissionID] {
		results = append(results, marks)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].EvaluatorID < results[j].EvaluatorID })
	return results, nil
}

type memoryResultRepo struct {
	results map[uint]models.FinalResult
	nextID  uint
}

func newMemoryResultRepo() *memoryResultRepo {
	return &memoryResultRepo{results: make(map[uint]models.FinalResult), nextID: 1}
}

func (m *memoryResultRepo) GetByProject(_ context.Context, projectID uint) (models.FinalResult, error) {
	result, ok := m.results[projectID]
	if !ok {
		return models.FinalResult{}, gorm.ErrRecordNotFound
	}
	return result, nil
}

func (m *memoryResultRepo) Upsert(_ context.Context, result *models.FinalResult) error {
	if existing, ok := m.results[result.ProjectID]; ok {
		result.ID = existing.ID
		result.Released = existing.Released
		result.ReleasedAt = existing.ReleasedAt
	} else {
		result.ID = m.nextID
		m.nextID++
	}
	result.UpdatedAt = time.Now()
	m.results[result.ProjectID] = *result
	return nil
}

func (m *memoryResultRepo) Release(_ context.Context, projectID, actorID uint, releasedAt time.Time) (models.FinalResult, error) {
	result, ok := m.results[projectID]
	if !ok {
		return models.FinalResult{}, gorm.ErrRecordNotFound
	}
	if !result.Released {
		result.Released = true
		result.ReleasedAt = &releasedAt
		m.results[projectID] = result
	}
	return result, nil
}

type recordingActivity struct {
	entries []ActivityEntry
}

func (r *recordingActivity) Record(_ context.Context, entry ActivityEntry) {
	r.entries = append(r.entries, entry)
}

type captureNotifier struct {
	events []models.Event
}

func (n *captureNotifier) Publish(_ context.Context, event models.Event) {
	n.events = append(n.events, event)
}

type stubFileStore struct {
	uploads int
	fail    error
}

func (s *stubFileStore) Upload(_ context.Context, name string, _ io.Reader) (FileReference, error) {
	if s.fail != nil {
		return FileReference{}, s.fail
	}
	s.uploads++
	return FileReference{ID: "ref-" + name, URL: "https://files.example.com/" + name}, nil
}
