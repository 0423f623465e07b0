package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	Init()
	Init()

	before := testutil.ToFloat64(advicesTotal.WithLabelValues(ResultEmpty))
	ObserveAdvice(ResultEmpty, 10*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(advicesTotal.WithLabelValues(ResultEmpty)))

	before = testutil.ToFloat64(entriesTotal.WithLabelValues("GST_HOLD"))
	AddEntries("GST_HOLD", 3)
	AddEntries("GST_HOLD", 0)
	assert.Equal(t, before+3, testutil.ToFloat64(entriesTotal.WithLabelValues("GST_HOLD")))

	matched := testutil.ToFloat64(enrichmentRows.WithLabelValues("true"))
	unmatched := testutil.ToFloat64(enrichmentRows.WithLabelValues("false"))
	AddEnrichment(2, 5)
	assert.Equal(t, matched+2, testutil.ToFloat64(enrichmentRows.WithLabelValues("true")))
	assert.Equal(t, unmatched+3, testutil.ToFloat64(enrichmentRows.WithLabelValues("false")))
}

func TestHandler(t *testing.T) {
	ObserveAdvice(ResultOK, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "payadvice_advices_total"))
}
