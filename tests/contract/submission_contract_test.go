package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/Ahad-dev/fypify-api/internal/dto"
	"github.com/Ahad-dev/fypify-api/internal/handler"
	"github.com/Ahad-dev/fypify-api/internal/service"
)

type stubSubmissionService struct {
	submission dto.SubmissionResponse
}

func (s stubSubmissionService) Create(context.Context, dto.SubmissionCreateRequest, *multipart.FileHeader, service.Actor) (dto.SubmissionResponse, error) {
	return s.submission, nil
}

func (s stubSubmissionService) Review(context.Context, uint, dto.SubmissionReviewRequest, service.Actor) (dto.SubmissionResponse, error) {
	return s.submission, nil
}

func (s stubSubmissionService) MarkFinal(context.Context, uint, service.Actor) (dto.SubmissionResponse, error) {
	return s.submission, nil
}

func (s stubSubmissionService) Lock(context.Context, uint, service.Actor) (dto.SubmissionResponse, error) {
	return s.submission, nil
}

func (s stubSubmissionService) ListByProject(context.Context, uint, service.Actor) ([]dto.SubmissionResponse, error) {
	return []dto.SubmissionResponse{s.submission}, nil
}

func (s stubSubmissionService) Lineage(context.Context, uint, service.Actor) ([]dto.SubmissionResponse, error) {
	return []dto.SubmissionResponse{s.submission}, nil
}

func TestSubmissionContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "submission.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	now := time.Now().UTC()
	supersedes := uint(2)
	submission := dto.SubmissionResponse{
		ID:             3,
		ProjectID:      1,
		DocumentTypeID: 1,
		Status:         "approved",
		UploadedBy:     10,
		FileReference:  "fypify/documents/proposal-v2",
		FileURL:        "https://cdn.example.com/proposal-v2.pdf",
		Comments:       "Looks good",
		IsFinal:        true,
		SupersedesID:   &supersedes,
		CreatedAt:      now,
		UpdatedAt:      now,
		DocumentType: dto.DocumentTypeLite{
			ID:    1,
			Code:  "PROPOSAL",
			Title: "Project Proposal",
		},
	}

	submissionHandler := handler.NewSubmissionHandler(stubSubmissionService{submission: submission}, zerolog.Nop())

	app := fiber.New()
	group := app.Group("/api/v1/submissions", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(10))
		c.Locals("user_role", "student")
		return c.Next()
	})
	submissionHandler.Register(group)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/submissions/3/final", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}
