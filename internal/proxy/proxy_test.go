package proxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func router(p *Proxy) *gin.Engine {
	r := gin.New()
	r.POST("/use-cases", p.Handle("/use-cases"))
	r.POST("/agent", p.Handle("/agent"))
	return r
}

func TestForwardsBodyAndPassesResponseThrough(t *testing.T) {
	var gotBody, gotPath, gotType string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		gotBody, gotPath, gotType = string(data), r.URL.Path, r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"framework_recommendations": []}`))
	}))
	defer upstream.Close()

	body := `{"agent_type":"Chatbot",  "force_frameworks":true}`
	req := httptest.NewRequest(http.MethodPost, "/agent", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cookie", "session=secret")
	rec := httptest.NewRecorder()

	router(New(upstream.URL+"/", time.Second, nil)).ServeHTTP(rec, req)

	assert.Equal(t, body, gotBody)
	assert.Equal(t, "/agent", gotPath)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `{"framework_recommendations": []}`, rec.Body.String())
}

func TestErrorStatusIsNotTransformed(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":"use_case missing"}`))
	}))
	defer upstream.Close()

	rec := httptest.NewRecorder()
	router(New(upstream.URL, time.Second, nil)).ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/use-cases", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"detail":"use_case missing"}`, rec.Body.String())
}

func TestUnreachableBackendIsBadGateway(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	url := upstream.URL
	upstream.Close()

	rec := httptest.NewRecorder()
	router(New(url, time.Second, nil)).ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/use-cases", strings.NewReader(`{}`)))

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestOversizedBodyRejected(t *testing.T) {
	called := false
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	defer upstream.Close()

	rec := httptest.NewRecorder()
	router(New(upstream.URL, time.Second, nil)).ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/agent", strings.NewReader(strings.Repeat("x", maxBodyBytes+1))))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.False(t, called)
}
