package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ndavault/internal/audit"
	"ndavault/internal/http/middleware"
	"ndavault/internal/model"
	"ndavault/internal/service"
	serviceMocks "ndavault/internal/service/mocks"
)

var testUser = &model.User{ID: "u1", Name: "Jane Doe", Email: "jane@example.com", PlanTier: "Premium", CreditBalance: 5}

func asUser(c *fiber.Ctx) error {
	middleware.SetUser(c, testUser)
	return c.Next()
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (f *fakeRecorder) Record(_ context.Context, ev audit.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGenerateText(t *testing.T) {
	app := fiber.New()
	app.Post("/nda/generate", asUser, GenerateText())

	t.Run("json", func(t *testing.T) {
		body := `{"employer_name":"Acme","employee_name":"Jane Doe","designation":"Engineer",
			"effective_date":"2026-03-01","jurisdiction":"Austin","state_law":"Texas"}`
		req := httptest.NewRequest(http.MethodPost, "/nda/generate", strings.NewReader(body))
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)

		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var res generateTextResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.Contains(t, res.Text, "Acme")
		assert.Contains(t, res.Text, "Jane Doe")
	})

	t.Run("form", func(t *testing.T) {
		form := url.Values{
			"employer_name":  {"Acme"},
			"employee_name":  {"Jane Doe"},
			"designation":    {"Engineer"},
			"effective_date": {"2026-03-01"},
			"jurisdiction":   {"Austin"},
			"state_law":      {"Texas"},
		}
		req := httptest.NewRequest(http.MethodPost, "/nda/generate", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", fiber.MIMEApplicationForm)

		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("form with bracketed confidential list", func(t *testing.T) {
		form := url.Values{
			"employer_name":  {"Acme"},
			"employee_name":  {"Jane Doe"},
			"designation":    {"Engineer"},
			"effective_date": {"2026-03-01"},
			"jurisdiction":   {"Austin"},
			"state_law":      {"Texas"},
			"confidential[]": {"source code", "launch roadmap"},
		}
		req := httptest.NewRequest(http.MethodPost, "/nda/generate", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", fiber.MIMEApplicationForm)

		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var res generateTextResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.Contains(t, res.Text, "source code, launch roadmap")
		assert.NotContains(t, res.Text, "customer lists")
	})

	t.Run("missing fields", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/nda/generate", strings.NewReader(`{"employer_name":"Acme"}`))
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)

		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "INVALID_FORM", body.Error.Code)
		assert.Contains(t, body.Error.Message, "employee_name")
	})
}

func TestGeneratePDF(t *testing.T) {
	docID := uuid.NewString()

	tests := []struct {
		name       string
		body       string
		setupMock  func(m *serviceMocks.MockDocumentService)
		wantStatus int
		wantCode   string
	}{
		{
			name: "success",
			body: `{"text":"AGREEMENT"}`,
			setupMock: func(m *serviceMocks.MockDocumentService) {
				m.On("GeneratePDF", mock.Anything, *testUser, "AGREEMENT").Return(&service.GeneratedDocument{
					Document: &model.Document{ID: docID, Filename: "EMP_NDA_Jane_Doe_2026-03-01_10-30.pdf"},
					PDF:      []byte("%PDF-1.7"),
				}, nil).Once()
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "empty content",
			body: `{"text":""}`,
			setupMock: func(m *serviceMocks.MockDocumentService) {
				m.On("GeneratePDF", mock.Anything, *testUser, "").Return(nil, service.ErrContentRequired).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "CONTENT_REQUIRED",
		},
		{
			name: "credits exhausted",
			body: `{"text":"AGREEMENT"}`,
			setupMock: func(m *serviceMocks.MockDocumentService) {
				m.On("GeneratePDF", mock.Anything, *testUser, "AGREEMENT").Return(nil, service.ErrCreditsExhausted).Once()
			},
			wantStatus: http.StatusPaymentRequired,
			wantCode:   "CREDITS_EXHAUSTED",
		},
		{
			name: "renderer down",
			body: `{"text":"AGREEMENT"}`,
			setupMock: func(m *serviceMocks.MockDocumentService) {
				m.On("GeneratePDF", mock.Anything, *testUser, "AGREEMENT").
					Return(nil, fmt.Errorf("%w: renderer timed out", service.ErrRenderFailed)).Once()
			},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "RENDER_UNAVAILABLE",
		},
		{
			name: "storage failure",
			body: `{"text":"AGREEMENT"}`,
			setupMock: func(m *serviceMocks.MockDocumentService) {
				m.On("GeneratePDF", mock.Anything, *testUser, "AGREEMENT").
					Return(nil, fmt.Errorf("%w: upload: boom", service.ErrStorage)).Once()
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "STORAGE_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(serviceMocks.MockDocumentService)
			tt.setupMock(mockSvc)
			rec := &fakeRecorder{}

			app := fiber.New()
			app.Post("/nda/generate-pdf", asUser, middleware.Audit(rec, audit.ActionDocumentGenerated), GeneratePDF(mockSvc))

			req := httptest.NewRequest(http.MethodPost, "/nda/generate-pdf", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, resp).Error.Code)
				assert.Empty(t, rec.events)
			} else {
				assert.Equal(t, docID, resp.Header.Get(middleware.DocumentIDHeader))
				assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
				assert.Contains(t, resp.Header.Get("Content-Disposition"), "EMP_NDA_Jane_Doe_2026-03-01_10-30.pdf")
				pdf, _ := io.ReadAll(resp.Body)
				assert.Equal(t, "%PDF-1.7", string(pdf))
				require.Len(t, rec.events, 1)
				assert.Equal(t, docID, rec.events[0].DocumentID)
			}
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestListDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents", asUser, ListDocuments(mockSvc))

	t.Run("success", func(t *testing.T) {
		expectedRes := &service.DocumentListResult{
			Items: []model.Document{{ID: uuid.NewString(), Filename: "EMP_NDA_Jane.pdf", StorageKey: "EMP_NDA/u1/x.pdf"}},
			Total: 1,
		}
		mockSvc.On("List", mock.Anything, "u1", 10, 0).Return(expectedRes, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents?limit=10&offset=0", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		raw, _ := io.ReadAll(resp.Body)
		assert.NotContains(t, string(raw), "EMP_NDA/u1/x.pdf")

		var result service.DocumentListResult
		require.NoError(t, json.Unmarshal(raw, &result))
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents?limit=abc", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_LIMIT", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid offset", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents?offset=x", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_OFFSET", decodeError(t, resp).Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, "u1", 10, 0).Return(nil, errors.New("service error")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents", nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestOpenDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents/:id", asUser, OpenDocument(mockSvc))

	t.Run("view", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Open", mock.Anything, "u1", id, false).Return("https://objects.test/view", nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+id, nil))

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "https://objects.test/view", resp.Header.Get("Location"))
		mockSvc.AssertExpectations(t)
	})

	t.Run("download", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Open", mock.Anything, "u1", id, true).Return("https://objects.test/dl", nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+id+"?action=download", nil))

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "https://objects.test/dl", resp.Header.Get("Location"))
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid action", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+uuid.NewString()+"?action=print", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ACTION", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/invalid-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Open", mock.Anything, "u1", id, false).Return("", service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+id, nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestDeleteDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Delete("/documents/:id", asUser, DeleteDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Delete", mock.Anything, "u1", id).Return(nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil))

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Delete", mock.Anything, "u1", id).Return(service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("storage error", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Delete", mock.Anything, "u1", id).Return(fmt.Errorf("%w: delete: s3 down", service.ErrStorage)).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "STORAGE_ERROR", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestSweepExpired(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Post("/internal/cleanup", SweepExpired(mockSvc))

	mockSvc.On("SweepExpired", mock.Anything).Return(&service.SweepResult{Scanned: 3, Removed: 3, StorageFailures: 1}, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/internal/cleanup", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var res service.SweepResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, 3, res.Removed)
	assert.Equal(t, 1, res.StorageFailures)
	mockSvc.AssertExpectations(t)
}

func TestMe(t *testing.T) {
	app := fiber.New()
	app.Get("/me", asUser, Me())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var u model.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&u))
	assert.Equal(t, *testUser, u)
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	mockSvc := new(serviceMocks.MockDocumentService)
	RegisterRoutes(app, nil, mockSvc, Guards{
		Auth:     func(c *fiber.Ctx) error { return fiber.ErrUnauthorized },
		Internal: middleware.InternalToken("tok"),
		Recorder: &fakeRecorder{},
	})

	t.Run("not found route", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/non-existent", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/health", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})

	t.Run("documents require authentication", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents", nil))

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, resp).Error.Code)
	})

	t.Run("cleanup requires internal token", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/internal/cleanup", nil))

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		mockSvc.AssertNotCalled(t, "SweepExpired", mock.Anything)
	})
}
