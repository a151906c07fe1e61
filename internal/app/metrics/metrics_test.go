package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(postsCreated.WithLabelValues("true"))
	RecordPostCreated(true)
	assert.Equal(t, before+1, testutil.ToFloat64(postsCreated.WithLabelValues("true")))

	beforeComments := testutil.ToFloat64(commentsCreated)
	RecordCommentCreated()
	assert.Equal(t, beforeComments+1, testutil.ToFloat64(commentsCreated))

	beforeHits := testutil.ToFloat64(pageCache.WithLabelValues("hit"))
	RecordCacheLookup(true)
	assert.Equal(t, beforeHits+1, testutil.ToFloat64(pageCache.WithLabelValues("hit")))

	beforePurged := testutil.ToFloat64(sessionsPurged)
	RecordSessionsPurged(0)
	RecordSessionsPurged(3)
	assert.Equal(t, beforePurged+3, testutil.ToFloat64(sessionsPurged))

	done := TrackInFlight()
	assert.Equal(t, float64(1), testutil.ToFloat64(httpInFlight))
	done()
	assert.Equal(t, float64(0), testutil.ToFloat64(httpInFlight))
}

func TestHandlerExposesHTTPMetrics(t *testing.T) {
	RecordHTTPRequest("get", "/{username}/", http.StatusOK, 12*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `yatube_http_requests_total{method="GET",path="/{username}/",status="200"}`)
}
