package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareRecordsRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/movies/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", Handler())

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/movies/:id", "200"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/movies/1", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/movies/2", nil))
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/movies/:id", "200"))
	assert.Equal(t, before+2, after)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), "filmmate_http_requests_total")
}

func TestRecordHelpers(t *testing.T) {
	before := testutil.ToFloat64(LLMRequestsTotal.WithLabelValues("intent", "rejected"))
	RecordLLMCall("intent", "rejected", time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(LLMRequestsTotal.WithLabelValues("intent", "rejected")))

	hits := testutil.ToFloat64(CatalogCacheHits)
	misses := testutil.ToFloat64(CatalogCacheMisses)
	RecordCatalogCache(true)
	RecordCatalogCache(false)
	assert.Equal(t, hits+1, testutil.ToFloat64(CatalogCacheHits))
	assert.Equal(t, misses+1, testutil.ToFloat64(CatalogCacheMisses))

	fallbacks := testutil.ToFloat64(ChatFallbacks.WithLabelValues("extract"))
	RecordChatFallback("extract")
	assert.Equal(t, fallbacks+1, testutil.ToFloat64(ChatFallbacks.WithLabelValues("extract")))
}
