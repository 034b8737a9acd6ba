package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/pair", "200"))

	RecordHTTPRequest("GET", "/pair", http.StatusOK, 15*time.Millisecond)

	after := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/pair", "200"))
	assert.Equal(t, before+1, after)
}

func TestRecordRating(t *testing.T) {
	before := testutil.ToFloat64(RatingsRecorded.WithLabelValues("-1"))
	RecordRating(-1)
	assert.Equal(t, before+1, testutil.ToFloat64(RatingsRecorded.WithLabelValues("-1")))
}
