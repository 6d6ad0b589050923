package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyreport/internal/engine"
	"github.com/abhisek/studyreport/internal/learning"
	"github.com/abhisek/studyreport/internal/report"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeService struct {
	generateErr error
	gotRequest  engine.GenerateRequest
	deleted     []string
	failOthers  error
}

func (f *fakeService) GenerateReport(_ context.Context, req engine.GenerateRequest) (*report.Report, error) {
	f.gotRequest = req
	var pe *engine.PersistenceError
	if f.generateErr != nil && !errors.As(f.generateErr, &pe) {
		return nil, f.generateErr
	}
	rep := &report.Report{Meta: report.Meta{UserID: req.UserID, Category: req.Category, Sequence: 1}}
	return rep, f.generateErr
}

func (f *fakeService) CategoryReport(_ context.Context, userID, category string) (*engine.CategoryView, error) {
	if f.failOthers != nil {
		return nil, f.failOthers
	}
	return &engine.CategoryView{Category: category, RecentHistory: []learning.QuizAttempt{}}, nil
}

func (f *fakeService) Progress(_ context.Context, userID string) (*learning.ProgressSummary, error) {
	if f.failOthers != nil {
		return nil, f.failOthers
	}
	return &learning.ProgressSummary{UserID: userID, OverallPercent: 42}, nil
}

func (f *fakeService) DeleteCategory(_ context.Context, userID, category string) error {
	if f.failOthers != nil {
		return f.failOthers
	}
	f.deleted = append(f.deleted, userID+"/"+category)
	return nil
}

func serve(t *testing.T, svc Service, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := NewRouter(RouterConfig{Reports: NewReportHandler(nil, svc)})
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) APIError {
	t.Helper()
	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Error
}

func TestGenerateReport(t *testing.T) {
	svc := &fakeService{}
	w := serve(t, svc, http.MethodPost, "/v1/users/u1/reports",
		`{"category":"math","score":7,"total":10,"wrongIndices":[1,4,8],"testCount":2}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Persisted)
	assert.Equal(t, "u1", resp.Report.Meta.UserID)
	assert.Equal(t, engine.GenerateRequest{
		UserID: "u1", Category: "math", Score: 7, Total: 10, WrongIndices: []int{1, 4, 8}, Sequence: 2,
	}, svc.gotRequest)
}

func TestGenerateReportErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		body       string
		wantStatus int
		wantCode   string
	}{
		{"malformed body", nil, `{"score":`, http.StatusBadRequest, codeInvalid},
		{"validation", &engine.ValidationError{Field: "Score", Reason: "must not exceed Total"}, `{"score":9,"total":3}`, http.StatusBadRequest, codeInvalid},
		{"duplicate", engine.ErrDuplicateRequest, `{"score":1,"total":3}`, http.StatusConflict, codeDuplicate},
		{"internal", errors.New("db exploded"), `{"score":1,"total":3}`, http.StatusInternalServerError, codeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, &fakeService{generateErr: tt.err}, http.MethodPost, "/v1/users/u1/reports", tt.body)
			require.Equal(t, tt.wantStatus, w.Code)
			apiErr := decodeError(t, w)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.NotContains(t, apiErr.Message, "db exploded")
		})
	}
}

func TestGenerateReportNotPersisted(t *testing.T) {
	svc := &fakeService{generateErr: &engine.PersistenceError{Op: "save_attempt_and_report", Err: errors.New("locked")}}
	w := serve(t, svc, http.MethodPost, "/v1/users/u1/reports", `{"score":1,"total":3}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Persisted)
	assert.NotNil(t, resp.Report)
	assert.Contains(t, resp.Warning, "save_attempt_and_report")
}

func TestReadEndpoints(t *testing.T) {
	svc := &fakeService{}

	w := serve(t, svc, http.MethodGet, "/v1/users/u1/progress", "")
	require.Equal(t, http.StatusOK, w.Code)
	var summary learning.ProgressSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 42.0, summary.OverallPercent)

	w = serve(t, svc, http.MethodGet, "/v1/users/u1/categories/math/report", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"category":"math"`)
	assert.Contains(t, w.Body.String(), `"latestReport":null`)

	w = serve(t, svc, http.MethodDelete, "/v1/users/u1/categories/math", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"u1/math"}, svc.deleted)
}

func TestReadEndpointErrors(t *testing.T) {
	svc := &fakeService{failOthers: &engine.ValidationError{Field: "Category", Reason: "the default category cannot be deleted"}}
	w := serve(t, svc, http.MethodDelete, "/v1/users/u1/categories/general", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Category", decodeError(t, w).Field)

	svc = &fakeService{failOthers: errors.New("boom")}
	w = serve(t, svc, http.MethodGet, "/v1/users/u1/progress", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHealthz(t *testing.T) {
	w := serve(t, &fakeService{}, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	router := NewRouter(RouterConfig{
		Reports: NewReportHandler(nil, &fakeService{}),
		Ping:    func(context.Context) error { return errors.New("db down") },
	})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
