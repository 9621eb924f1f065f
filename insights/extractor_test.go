package insights

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NethermindEth/magi/ai"
	"github.com/NethermindEth/magi/ai/aitest"
	"github.com/NethermindEth/magi/core"
	"github.com/NethermindEth/magi/storage"
)

const reportText = "MISSION OBJECTIVE: evacuate.\nTACTICAL ANALYSIS: MELCHIOR concurs.\nFINAL DIRECTIVE: proceed.\n- Dr. R. Akagi"

func fastPolicy() ai.RetryPolicy {
	return ai.RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond, RetryIf: ai.Always}
}

func decided(t *testing.T, store storage.Store) *core.Session {
	t.Helper()
	s := core.NewSession("should we evacuate tokyo-3", core.ValidVerdict(core.Votes{
		Melchior:  core.Vote{Vote: true, Reason: "논리적"},
		Balthasar: core.Vote{Vote: true, Reason: "안전"},
		Casper:    core.Vote{Vote: false, Reason: "싫음"},
	}), core.SourceGemini)
	if store != nil {
		require.NoError(t, store.SaveSession(s))
	}
	return s
}

func TestGenerateReport(t *testing.T) {
	store := storage.NewMemoryStore()
	llm := aitest.NewMockLLM(aitest.Text(reportText))
	r := NewReporter(llm, store, fastPolicy(), nil)
	require.True(t, r.Available())

	s := decided(t, store)
	report, err := r.GenerateReport(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, reportText, report.Report)
	assert.Equal(t, "MAJORITY VOTE (2/3) (CONDITIONAL)", report.Decision)
	assert.Equal(t, s.ID, report.SessionID)

	prompts := llm.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], `Proposal: "should we evacuate tokyo-3"`)
	assert.Contains(t, prompts[0], `Decision: "MAJORITY VOTE (2/3) (CONDITIONAL)"`)

	stored, err := store.GetSession(s.ID)
	require.NoError(t, err)
	assert.Equal(t, reportText, stored.Report)
}

func TestGenerateReportRequiresLLM(t *testing.T) {
	r := NewReporter(nil, nil, fastPolicy(), nil)
	assert.False(t, r.Available())

	_, err := r.GenerateReport(context.Background(), decided(t, nil))
	assert.ErrorIs(t, err, ErrAPIKeyRequired)
}

func TestGenerateReportRequiresDecision(t *testing.T) {
	r := NewReporter(aitest.NewMockLLM(aitest.Text(reportText)), nil, fastPolicy(), nil)

	invalid := core.NewSession("hi", core.InvalidVerdict("단순 인사"), core.SourceGemini)
	_, err := r.GenerateReport(context.Background(), invalid)
	assert.ErrorIs(t, err, ErrNoDecision)

	_, err = r.GenerateReport(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoDecision)
}

func TestGenerateReportRetriesAnyError(t *testing.T) {
	llm := aitest.NewMockLLM(
		aitest.Fail(errors.New("connection reset")),
		aitest.Text("   "),
		aitest.Text(reportText),
	)
	r := NewReporter(llm, nil, fastPolicy(), nil)

	report, err := r.GenerateReport(context.Background(), decided(t, nil))
	require.NoError(t, err)
	assert.Equal(t, reportText, report.Report)
	assert.Equal(t, 3, llm.Calls())
}

func TestGenerateReportGivesUp(t *testing.T) {
	llm := aitest.NewMockLLM(aitest.Fail(ai.ErrOverloaded))
	r := NewReporter(llm, nil, fastPolicy(), nil)

	_, err := r.GenerateReport(context.Background(), decided(t, nil))
	assert.ErrorIs(t, err, ai.ErrOverloaded)
	assert.Contains(t, err.Error(), "ERROR GENERATING REPORT")
	assert.Equal(t, 3, llm.Calls())
}

func TestReportByID(t *testing.T) {
	store := storage.NewMemoryStore()
	r := NewReporter(aitest.NewMockLLM(aitest.Text(reportText)), store, fastPolicy(), nil)

	_, err := r.ReportByID(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	s := decided(t, store)
	report, err := r.ReportByID(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, reportText, report.Report)
}

func TestHandlerGenerateReport(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := storage.NewMemoryStore()
	s := decided(t, store)
	invalid := core.NewSession("hi", core.InvalidVerdict("단순 인사"), core.SourceGemini)
	require.NoError(t, store.SaveSession(invalid))

	tests := []struct {
		name   string
		llm    ai.LLM
		id     string
		status int
	}{
		{"ok", aitest.NewMockLLM(aitest.Text(reportText)), s.ID, http.StatusOK},
		{"missing session", aitest.NewMockLLM(aitest.Text(reportText)), "nope", http.StatusNotFound},
		{"no api key", nil, s.ID, http.StatusBadRequest},
		{"invalid verdict", aitest.NewMockLLM(aitest.Text(reportText)), invalid.ID, http.StatusBadRequest},
		{"model failure", aitest.NewMockLLM(aitest.Fail(errors.New("boom"))), s.ID, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(NewReporter(tt.llm, store, fastPolicy(), nil), nil)
			router := gin.New()
			router.POST("/api/sessions/:id/report", h.GenerateReport)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+tt.id+"/report", nil)
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)

			if tt.status == http.StatusOK {
				var report TacticalReport
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
				assert.Equal(t, reportText, report.Report)
			}
		})
	}
}
