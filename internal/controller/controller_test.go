package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"interview_prep_backend/internal/config"
	"interview_prep_backend/internal/middleware"
	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/repository"
	"interview_prep_backend/internal/service"
	"interview_prep_backend/internal/util"
	"interview_prep_backend/pkg/database"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jwtCfg = config.JWTConfig{Secret: "controller-test-secret", Issuer: "interview-prep"}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupRouter(t *testing.T, evaluator service.Evaluator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	sessions := repository.NewSessionRepository(db)
	feedback := repository.NewFeedbackRepository(db)
	interviewSvc := service.NewInterviewService(db, sessions, feedback, evaluator, nil, nil, nil)
	analyticsSvc := service.NewAnalyticsService(sessions, feedback, nil, nil)

	ic := NewInterviewController(interviewSvc)
	ac := NewAnalyticsController(analyticsSvc, interviewSvc)
	hc := NewHealthController(db, nil)

	r := gin.New()
	api := r.Group("/api")
	api.GET("/health", hc.HealthCheck)
	interviews := api.Group("/interviews", middleware.TryAuthMiddleware(jwtCfg))
	interviews.POST("", ic.CreateSession)
	interviews.POST("/:id/answers", ic.SubmitAnswer)
	interviews.POST("/:id/complete", ic.CompleteSession)
	interviews.GET("/:id/analytics", ac.GetSessionAnalytics)
	user := api.Group("/analytics", middleware.AuthMiddleware(jwtCfg))
	user.GET("/progress", ac.GetProgress)
	user.GET("/comparative", ac.GetComparative)
	return r
}

func token(t *testing.T, owner string) string {
	t.Helper()
	tok, err := util.GenerateJWT(owner, jwtCfg.Secret, jwtCfg.Issuer, time.Hour)
	require.NoError(t, err)
	return tok
}

func do(t *testing.T, r *gin.Engine, method, path, bearer string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func createSession(t *testing.T, r *gin.Engine, bearer string, n int) model.InterviewSession {
	t.Helper()
	qs := make([]gin.H, n)
	for i := range qs {
		qs[i] = gin.H{"category": "technical", "difficulty": "medium"}
	}
	w, env := do(t, r, http.MethodPost, "/api/interviews", bearer, gin.H{
		"jobTitle":  "Backend Engineer",
		"questions": qs,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var s model.InterviewSession
	require.NoError(t, json.Unmarshal(env.Data, &s))
	return s
}

func answer(id string) (string, gin.H) {
	return "/api/interviews/" + id + "/answers", gin.H{
		"question":   "Explain eventual consistency.",
		"answer":     "Replicas converge once writes stop.",
		"category":   "technical",
		"difficulty": "medium",
	}
}

func TestInterviewFlow(t *testing.T) {
	r := setupRouter(t, service.StaticEvaluator{Score: 76})
	s := createSession(t, r, "", 2)
	assert.Equal(t, 2, s.TotalQuestions)
	assert.Nil(t, s.OwnerID)

	path, body := answer(s.ID)
	w, env := do(t, r, http.MethodPost, path, "", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		AnsweredQuestions  int                      `json:"answeredQuestions"`
		PerformanceMetrics model.PerformanceMetrics `json:"performanceMetrics"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 1, res.AnsweredQuestions)
	assert.Equal(t, 76, res.PerformanceMetrics.OverallScore)

	w, env = do(t, r, http.MethodGet, "/api/interviews/"+s.ID+"/analytics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report model.SessionAnalytics
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Len(t, report.ScoreTimeline, 1)

	w, _ = do(t, r, http.MethodPost, "/api/interviews/"+s.ID+"/complete", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = do(t, r, http.MethodPost, path, "", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, http.StatusConflict, env.Code)
}

func TestInterviewErrors(t *testing.T) {
	r := setupRouter(t, service.StaticEvaluator{Score: 50})

	w, _ := do(t, r, http.MethodPost, "/api/interviews", "", gin.H{"jobTitle": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/interviews", "", gin.H{
		"jobTitle":  "x",
		"questions": []gin.H{{"category": "trivia", "difficulty": "easy"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	path, body := answer("does-not-exist")
	w, _ = do(t, r, http.MethodPost, path, "", body)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/interviews/does-not-exist/analytics", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOwnedSessionIsPrivate(t *testing.T) {
	r := setupRouter(t, service.StaticEvaluator{Score: 50})
	s := createSession(t, r, token(t, "alice"), 1)
	require.NotNil(t, s.OwnerID)
	assert.Equal(t, "alice", *s.OwnerID)

	path, body := answer(s.ID)
	w, _ := do(t, r, http.MethodPost, path, token(t, "bob"), body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = do(t, r, http.MethodGet, "/api/interviews/"+s.ID+"/analytics", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = do(t, r, http.MethodPost, path, token(t, "alice"), body)
	assert.Equal(t, http.StatusOK, w.Code)
}

type failingEvaluator struct{}

func (failingEvaluator) Evaluate(_ context.Context, _ service.EvaluationRequest) (*model.Evaluation, error) {
	return nil, util.ErrEvaluatorUnavailable
}

func TestEvaluatorUnavailableIsBadGateway(t *testing.T) {
	r := setupRouter(t, failingEvaluator{})
	s := createSession(t, r, "", 1)

	path, body := answer(s.ID)
	w, env := do(t, r, http.MethodPost, path, "", body)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, util.ErrEvaluatorUnavailable.Error(), env.Message)
}

func TestUserAnalytics(t *testing.T) {
	r := setupRouter(t, service.StaticEvaluator{Score: 88})
	alice := token(t, "alice")
	s := createSession(t, r, alice, 1)
	path, body := answer(s.ID)
	w, _ := do(t, r, http.MethodPost, path, alice, body)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/analytics/progress", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := do(t, r, http.MethodGet, "/api/analytics/progress?period=7d", alice, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var progress model.UserProgress
	require.NoError(t, json.Unmarshal(env.Data, &progress))
	assert.Equal(t, 1, progress.TotalSessions)
	assert.Equal(t, 88, progress.AverageScore)

	w, env = do(t, r, http.MethodGet, "/api/analytics/comparative?period=30%20days", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cmp model.ComparativeAnalysis
	require.NoError(t, json.Unmarshal(env.Data, &cmp))
	assert.Equal(t, 1, cmp.CurrentPeriod.Sessions)
	assert.Equal(t, model.TrendNoPreviousData, cmp.Improvements.Trend)

	w, _ = do(t, r, http.MethodGet, "/api/analytics/comparative?period=fortnight", alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthCheck(t *testing.T) {
	r := setupRouter(t, service.StaticEvaluator{})
	w, env := do(t, r, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"database":"up"`)
}
