// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitedesk-workers/internal/analysis/collab"
	"sitedesk-workers/internal/analysis/pipeline"
	"sitedesk-workers/internal/common/camunda"
	"sitedesk-workers/internal/common/config"
	"sitedesk-workers/internal/common/database"
	"sitedesk-workers/internal/common/observability"
	"sitedesk-workers/internal/models"

	analyzemessage "sitedesk-workers/internal/workers/assistant/analyze-message"
)

// ==========================
// Loggers
// ==========================

type collabLog struct{ t *testing.T }

func (l *collabLog) Info(msg string, fields map[string]interface{})  { l.t.Logf("INFO: %s %v", msg, fields) }
func (l *collabLog) Warn(msg string, fields map[string]interface{})  { l.t.Logf("WARN: %s %v", msg, fields) }
func (l *collabLog) Error(msg string, fields map[string]interface{}) { l.t.Logf("ERROR: %s %v", msg, fields) }
func (l *collabLog) With(fields map[string]interface{}) collab.Logger { return l }

type pipeLog struct{ t *testing.T }

func (l *pipeLog) Debug(msg string, fields map[string]interface{}) { l.t.Logf("DEBUG: %s %v", msg, fields) }
func (l *pipeLog) Info(msg string, fields map[string]interface{})  { l.t.Logf("INFO: %s %v", msg, fields) }
func (l *pipeLog) Warn(msg string, fields map[string]interface{})  { l.t.Logf("WARN: %s %v", msg, fields) }
func (l *pipeLog) Error(msg string, fields map[string]interface{}) { l.t.Logf("ERROR: %s %v", msg, fields) }
func (l *pipeLog) With(fields map[string]interface{}) pipeline.Logger { return l }

type workerLog struct{ t *testing.T }

func (l *workerLog) Info(msg string, fields map[string]interface{})  { l.t.Logf("INFO: %s %v", msg, fields) }
func (l *workerLog) Warn(msg string, fields map[string]interface{})  { l.t.Logf("WARN: %s %v", msg, fields) }
func (l *workerLog) Error(msg string, fields map[string]interface{}) { l.t.Logf("ERROR: %s %v", msg, fields) }
func (l *workerLog) With(fields map[string]interface{}) analyzemessage.Logger { return l }

// ==========================
// GenAI Stand-In
// ==========================

// newGenAIServer serves both collaborator endpoints and counts upstream
// calls so the cache tests can assert a hit never reaches the service.
func newGenAIServer(t *testing.T, flags []string, subjects []collab.Subject, calls *int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(calls, 1)
		switch r.URL.Path {
		case "/api/ai/flag-intents":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"flags": flags})
		case "/api/ai/extract-subjects":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"subjects": subjects})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newWorkerStack(t *testing.T, baseURL string, redis *database.RedisClient) *analyzemessage.Handler {
	t.Helper()

	genai := collab.NewGenAIClient(&collab.GenAIConfig{
		BaseURL:    baseURL,
		Timeout:    2 * time.Second,
		MaxRetries: 2,
	}, &collabLog{t})

	var flagger collab.FlagClassifier = genai
	var subjects collab.SubjectExtractor = genai
	if redis != nil {
		flagger = collab.NewCachedClassifier(genai, redis, 5*time.Minute, &collabLog{t})
		subjects = collab.NewCachedExtractor(genai, redis, 5*time.Minute, &collabLog{t})
	}

	analyzer := pipeline.New(pipeline.Config{}, flagger, subjects, &pipeLog{t})
	return analyzemessage.NewHandler(&analyzemessage.Config{
		Timeout:        10 * time.Second,
		ValidateOutput: true,
	}, analyzer, nil, &workerLog{t})
}

// ==========================
// Hermetic Round Trips
// ==========================

func TestAnalysisRoundTrip(t *testing.T) {
	var calls int64
	srv := newGenAIServer(t, []string{models.FlagChangeRequest},
		[]collab.Subject{{Label: "Phone Number", Weight: 0.8}}, &calls)
	defer srv.Close()

	handler := newWorkerStack(t, srv.URL, nil)

	input := &analyzemessage.Input{
		Message:  "Our site shows 509-555-0101 as our phone but it should be 509-555-0199. Please fix it soon.",
		ThreadID: "thread-e2e-1",
	}

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	ma := output.MessageAnalysis
	assert.Equal(t, models.FlagChangeRequest, ma.PrimaryIntent)
	require.NotEmpty(t, ma.Changes)
	assert.Equal(t, models.FieldPhoneNumber, ma.Changes[0].Field)
	assert.Equal(t, "509-555-0199", ma.Changes[0].Desired)

	require.NotEmpty(t, ma.ActionProposals)
	assert.Equal(t, models.ActionQueueChangeRequest, ma.ActionProposals[0].Name)

	// One flag call plus one subject call.
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))

	raw, err := json.Marshal(output)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "null")
}

func TestAnalysisRoundTrip_CachedCollaborators(t *testing.T) {
	var calls int64
	srv := newGenAIServer(t, []string{models.FlagChangeRequest}, nil, &calls)
	defer srv.Close()

	mr := miniredis.RunT(t)
	redis, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)

	handler := newWorkerStack(t, srv.URL, redis)

	input := &analyzemessage.Input{Message: "Please change our business hours to 9-5 on weekdays."}

	first, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, int64(2), atomic.LoadInt64(&calls))

	second, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls), "repeat message must be served from cache")

	a, err := json.Marshal(first.MessageAnalysis)
	require.NoError(t, err)
	b, err := json.Marshal(second.MessageAnalysis)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestAnalysisRoundTrip_GenAIDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	handler := newWorkerStack(t, srv.URL, nil)

	// Analysis degrades to heuristics only; the job still completes with a
	// contract-valid result.
	output, err := handler.Execute(context.Background(), &analyzemessage.Input{
		Message: "The contact form stopped sending me emails. We are losing leads.",
	})
	require.NoError(t, err)
	assert.Equal(t, models.FlagBugReport, output.MessageAnalysis.PrimaryIntent)
	require.NotEmpty(t, output.MessageAnalysis.ActionProposals)
	assert.Equal(t, models.ActionCreateIssue, output.MessageAnalysis.ActionProposals[0].Name)
}

// ==========================
// Live Broker (opt-in)
// ==========================

func TestFullE2E(t *testing.T) {
	if os.Getenv("RUN_E2E") == "" {
		t.Skip("Skipping live E2E test; set RUN_E2E=1 with Zeebe and Redis running")
	}

	cfg, err := config.Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	t.Log("🚀 Starting full E2E test with real services...")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// --- Zeebe ---
	camundaClient, err := camunda.NewClientWithConfig(&camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
	})
	require.NoError(t, err, "❌ Zeebe connection failed")
	defer camundaClient.Close()
	require.NoError(t, camundaClient.HealthCheck(ctx), "❌ Zeebe topology request failed")
	t.Log("✅ Zeebe connected")

	// --- Redis ---
	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "❌ Redis client creation failed")
	require.NoError(t, rdb.Ping(ctx), "❌ Redis ping failed")
	t.Log("✅ Redis connected")

	// --- Worker round trip against the configured GenAI service ---
	genai := collab.NewGenAIClient(&collab.GenAIConfig{
		BaseURL:    cfg.APIs.GenAI.BaseURL,
		Timeout:    config.GetDuration(cfg.APIs.GenAI.Timeout),
		MaxRetries: cfg.APIs.GenAI.MaxRetries,
	}, &collabLog{t})

	analyzer := pipeline.New(pipeline.Config{
		AllowedFlags:   cfg.Analysis.AllowedFlags,
		AllowedActions: cfg.Analysis.AllowedActions,
		CollabTimeout:  config.GetDuration(cfg.Analysis.CollabTimeout),
		MaxSubjects:    cfg.Analysis.MaxSubjects,
	}, genai, genai, &pipeLog{t})

	obs := observability.New("e2e")
	defer obs.Shutdown()

	handler := analyzemessage.NewHandler(&analyzemessage.Config{
		Timeout:        30 * time.Second,
		ValidateOutput: true,
	}, analyzer, obs, &workerLog{t})

	output, err := handler.Execute(ctx, &analyzemessage.Input{
		Message: "The header should say we are available 24/7.",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, output.MessageAnalysis.Route)
	t.Log("✅ Analysis round trip successful")
}
