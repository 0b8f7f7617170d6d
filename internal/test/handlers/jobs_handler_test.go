package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"photo-enhance-backend/internal/handlers"
	"photo-enhance-backend/internal/middleware"
	"photo-enhance-backend/internal/models"
	"photo-enhance-backend/internal/topaz"
)

func jobsRouter(t *testing.T, upstreamURL string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	client := topaz.NewClient(topaz.Options{
		APIKey:  "test-key",
		BaseURL: upstreamURL,
		Download: topaz.DownloadPolicy{
			MaxAttempts: 2,
			Delay:       time.Millisecond,
		},
		Sleep: func(time.Duration) {},
	})
	handler := handlers.NewJobsHandler(client, nil)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, uuid.New().String())
	})
	router.GET("/jobs/:process_id/status", handler.GetJobStatus)
	router.GET("/jobs/:process_id/result", handler.GetJobResult)
	router.GET("/jobs", handler.ListJobs)
	return router
}

func TestJobsHandler_GetJobStatus(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/status/proc-9", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "Processing", "progress": 42}`))
	}))
	defer upstream.Close()

	router := jobsRouter(t, upstream.URL)
	req, _ := http.NewRequest("GET", "/jobs/proc-9/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.JobStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "proc-9", resp.ProcessID)
	assert.Equal(t, "Processing", resp.Status)
	assert.Equal(t, 42.0, resp.Progress)
}

func TestJobsHandler_GetJobStatusUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	router := jobsRouter(t, upstream.URL)
	req, _ := http.NewRequest("GET", "/jobs/proc-9/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestJobsHandler_GetJobResult(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/download/proc-9", r.URL.Path)
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(enhancedArtifact)
	}))
	defer upstream.Close()

	router := jobsRouter(t, upstream.URL)
	req, _ := http.NewRequest("GET", "/jobs/proc-9/result", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, "proc-9", w.Header().Get("X-Process-ID"))
	assert.Equal(t, enhancedArtifact, w.Body.Bytes())
}

func TestJobsHandler_GetJobResultInvalidPayload(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>nope</html>"))
	}))
	defer upstream.Close()

	router := jobsRouter(t, upstream.URL)
	req, _ := http.NewRequest("GET", "/jobs/proc-9/result", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestJobsHandler_ListJobsWithoutDatabase(t *testing.T) {
	router := jobsRouter(t, "http://127.0.0.1:0")
	req, _ := http.NewRequest("GET", "/jobs", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
