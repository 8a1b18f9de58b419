// internal/workers/assistant/analyze-message/handler_test.go
package analyzemessage

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitedesk-workers/internal/analysis/collab"
	"sitedesk-workers/internal/analysis/pipeline"
	"sitedesk-workers/internal/models"
)

// ==========================
// Test Doubles
// ==========================

type TestLogger struct {
	t      *testing.T
	fields map[string]interface{}
}

func (l *TestLogger) Info(msg string, fields map[string]interface{})  { l.t.Logf("INFO: %s %v", msg, fields) }
func (l *TestLogger) Warn(msg string, fields map[string]interface{})  { l.t.Logf("WARN: %s %v", msg, fields) }
func (l *TestLogger) Error(msg string, fields map[string]interface{}) { l.t.Logf("ERROR: %s %v", msg, fields) }
func (l *TestLogger) With(fields map[string]interface{}) Logger {
	merged := map[string]interface{}{}
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &TestLogger{t: l.t, fields: merged}
}

type pipelineLogger struct {
	t *testing.T
}

func (l *pipelineLogger) Debug(msg string, fields map[string]interface{}) { l.t.Logf("DEBUG: %s %v", msg, fields) }
func (l *pipelineLogger) Info(msg string, fields map[string]interface{})  { l.t.Logf("INFO: %s %v", msg, fields) }
func (l *pipelineLogger) Warn(msg string, fields map[string]interface{})  { l.t.Logf("WARN: %s %v", msg, fields) }
func (l *pipelineLogger) Error(msg string, fields map[string]interface{}) { l.t.Logf("ERROR: %s %v", msg, fields) }
func (l *pipelineLogger) With(fields map[string]interface{}) pipeline.Logger {
	return l
}

// recordingClassifier captures what the pipeline forwards to the
// collaborator.
type recordingClassifier struct {
	flags []string

	gotText  string
	gotHints []string
}

func (c *recordingClassifier) FlagIntents(ctx context.Context, text string, allowedFlags []string, contextHints []string) ([]string, error) {
	c.gotText = text
	c.gotHints = contextHints
	return c.flags, nil
}

type stubExtractor struct {
	subjects []collab.Subject
}

func (s *stubExtractor) ExtractSubjects(ctx context.Context, text string, max int) ([]collab.Subject, error) {
	return s.subjects, nil
}

// stubRecorder captures what the handler reports per analysis.
type stubRecorder struct {
	calls    int
	intent   string
	route    string
	duration time.Duration
}

func (r *stubRecorder) RecordAnalysis(ctx context.Context, intent string, route string, duration time.Duration) {
	r.calls++
	r.intent = intent
	r.route = route
	r.duration = duration
}

func newTestHandler(t *testing.T, flagger *recordingClassifier) *Handler {
	t.Helper()
	analyzer := pipeline.New(pipeline.Config{}, flagger, &stubExtractor{}, &pipelineLogger{t})
	cfg := &Config{
		Timeout:        5 * time.Second,
		ValidateOutput: true,
	}
	return NewHandler(cfg, analyzer, nil, &TestLogger{t: t})
}

// ==========================
// Constructor Tests
// ==========================

func TestNewHandler_BindsTaskType(t *testing.T) {
	h := newTestHandler(t, &recordingClassifier{})

	log, ok := h.logger.(*TestLogger)
	require.True(t, ok)
	assert.Equal(t, TaskType, log.fields["taskType"])
}

// ==========================
// Execute Tests
// ==========================

func TestExecute_PhoneCorrection(t *testing.T) {
	flagger := &recordingClassifier{flags: []string{models.FlagChangeRequest}}
	h := newTestHandler(t, flagger)

	input := &Input{
		Message:  "The site shows 509-555-0101 for our phone but it should be 509-555-0199.",
		ThreadID: "thread-42",
	}

	output, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	require.NotNil(t, output)

	ma := output.MessageAnalysis
	assert.Equal(t, models.FlagChangeRequest, ma.PrimaryIntent)
	assert.Equal(t, models.RouteRetrieveLight, ma.Route)
	require.Len(t, ma.Changes, 1)
	assert.Equal(t, models.FieldPhoneNumber, ma.Changes[0].Field)
	assert.Equal(t, "509-555-0199", ma.Changes[0].Desired)

	assert.Equal(t, input.Message, flagger.gotText)
	assert.GreaterOrEqual(t, output.Telemetry.TotalMs, int64(0))
}

func TestExecute_ForwardsContextHints(t *testing.T) {
	flagger := &recordingClassifier{}
	h := newTestHandler(t, flagger)

	input := &Input{
		Message:      "Can you update the gallery?",
		ContextHints: []string{"prior thread discussed photos"},
	}

	_, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, input.ContextHints, flagger.gotHints)
}

func TestExecute_EmptyMessagePassesContract(t *testing.T) {
	h := newTestHandler(t, &recordingClassifier{})

	output, err := h.Execute(context.Background(), &Input{Message: ""})
	require.NoError(t, err)

	assert.Equal(t, models.FlagAssistance, output.MessageAnalysis.Intent)
	assert.Equal(t, models.RouteRespondOnly, output.MessageAnalysis.Route)

	// Downstream stages read arrays, never null.
	raw, err := json.Marshal(output)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "null")
}

func TestExecute_SkipsValidationWhenDisabled(t *testing.T) {
	flagger := &recordingClassifier{}
	analyzer := pipeline.New(pipeline.Config{}, flagger, &stubExtractor{}, &pipelineLogger{t})
	h := NewHandler(&Config{Timeout: 5 * time.Second, ValidateOutput: false}, analyzer, nil, &TestLogger{t: t})

	output, err := h.Execute(context.Background(), &Input{Message: "hello"})
	require.NoError(t, err)
	require.NotNil(t, output)
}

func TestExecute_RecordsAnalysis(t *testing.T) {
	flagger := &recordingClassifier{flags: []string{models.FlagChangeRequest}}
	analyzer := pipeline.New(pipeline.Config{}, flagger, &stubExtractor{}, &pipelineLogger{t})
	recorder := &stubRecorder{}
	h := NewHandler(&Config{Timeout: 5 * time.Second, ValidateOutput: true}, analyzer, recorder, &TestLogger{t: t})

	output, err := h.Execute(context.Background(), &Input{Message: "Please update the hours on the site."})
	require.NoError(t, err)

	assert.Equal(t, 1, recorder.calls)
	assert.Equal(t, output.MessageAnalysis.Intent, recorder.intent)
	assert.Equal(t, string(output.MessageAnalysis.Route), recorder.route)
	assert.GreaterOrEqual(t, recorder.duration, time.Duration(0))
}

// ==========================
// Contract Validation Tests
// ==========================

func validResult(t *testing.T) *models.AnalysisResult {
	t.Helper()
	analyzer := pipeline.New(pipeline.Config{}, &recordingClassifier{}, &stubExtractor{}, &pipelineLogger{t})
	return analyzer.Analyze(context.Background(), "Please update our business hours.", nil)
}

func TestValidateOutput_AcceptsPipelineResult(t *testing.T) {
	assert.NoError(t, validateOutput(validResult(t)))
}

func TestValidateOutput_RejectsUnknownRoute(t *testing.T) {
	result := validResult(t)
	result.MessageAnalysis.Route = "teleport"

	err := validateOutput(result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contract violation")
}

func TestValidateOutput_RejectsOversizedEntityList(t *testing.T) {
	result := validResult(t)
	result.MessageAnalysis.Entities = nil
	for i := 0; i < 9; i++ {
		result.MessageAnalysis.Entities = append(result.MessageAnalysis.Entities, models.Entity{
			Type:   models.KindConcept,
			Value:  "extra",
			Weight: 0.5,
		})
	}

	err := validateOutput(result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contract violation")
}

func TestValidateOutput_RejectsConfidenceOutOfRange(t *testing.T) {
	result := validResult(t)
	result.MessageAnalysis.IntentConfidence = 1.5

	require.Error(t, validateOutput(result))
}
