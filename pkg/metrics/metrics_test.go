package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func scrape(m *Metrics) string {
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	return rec.Body.String()
}

func TestMetrics_Recorders(t *testing.T) {
	m := New()
	m.AnalysisRequest("sent")
	m.AnalysisRequest("sent")
	m.Reply("slide", 2*time.Second)
	m.AccumulatorError("response.text.delta")
	m.SessionSize(3, 120)
	m.Export("docx")

	body := scrape(m)
	assert.Contains(t, body, `liveslides_synthesis_analysis_requests_total{result="sent"} 2`)
	assert.Contains(t, body, `liveslides_synthesis_replies_total{outcome="slide"} 1`)
	assert.Contains(t, body, `liveslides_realtime_accumulator_errors_total{event="response.text.delta"} 1`)
	assert.Contains(t, body, `liveslides_session_slides 3`)
	assert.Contains(t, body, `liveslides_session_transcript_bytes 120`)
	assert.Contains(t, body, `liveslides_export_documents_total{format="docx"} 1`)
	assert.Contains(t, body, "liveslides_synthesis_reply_latency_seconds_count 1")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.AnalysisRequest("sent")
		m.Reply("slide", time.Second)
		m.Event("error")
		m.Transition("connected")
		m.Viewers(1)
		m.Export("html")
	})
}
