// internal/workers/assistant/analyze-message/handler.go
package analyzemessage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"sitedesk-workers/internal/analysis/pipeline"
	commonerrors "sitedesk-workers/internal/common/errors"
	"sitedesk-workers/internal/common/metrics"
)

const (
	TaskType = "analyze-message"
)

var (
	ErrInputInvalid  = errors.New("ANALYSIS_INPUT_INVALID")
	ErrOutputInvalid = errors.New("ANALYSIS_OUTPUT_INVALID")
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Recorder is the OTel side of analysis accounting; nil disables it.
type Recorder interface {
	RecordAnalysis(ctx context.Context, intent string, route string, duration time.Duration)
}

type Handler struct {
	config    *Config
	analyzer  *pipeline.Analyzer
	recorder  Recorder
	logger    Logger
	errorsOut *commonerrors.ErrorHandler
}

func NewHandler(config *Config, analyzer *pipeline.Analyzer, recorder Recorder, log Logger) *Handler {
	workerLog := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:    config,
		analyzer:  analyzer,
		recorder:  recorder,
		logger:    workerLog,
		errorsOut: commonerrors.NewErrorHandler(workerLog),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	correlationID := uuid.NewString()
	log := h.logger.With(map[string]interface{}{
		"jobKey":        job.Key,
		"workflowKey":   job.ProcessInstanceKey,
		"correlationId": correlationID,
	})
	log.Info("processing job", nil)

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "ANALYSIS_INPUT_INVALID").Inc()
		h.failJob(client, job, fmt.Errorf("%w: %v", ErrInputInvalid, err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "ANALYSIS_OUTPUT_INVALID").Inc()
		h.failJob(client, job, err)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	metrics.AnalysisMessages.WithLabelValues(
		output.MessageAnalysis.Intent,
		string(output.MessageAnalysis.Route),
	).Inc()

	log.Info("message analyzed", map[string]interface{}{
		"intent":     output.MessageAnalysis.Intent,
		"route":      string(output.MessageAnalysis.Route),
		"confidence": output.MessageAnalysis.IntentConfidence,
		"totalMs":    output.Telemetry.TotalMs,
	})

	h.completeJob(client, job, output)
}

// execute runs the pipeline and, when configured, checks the result against
// the output contract. Analysis itself never fails; only a contract
// violation is an error, and that indicates a pipeline defect.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	result := h.analyzer.Analyze(ctx, input.Message, input.ContextHints)

	if h.config.ValidateOutput {
		if err := validateOutput(result); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOutputInvalid, err)
		}
	}

	if h.recorder != nil {
		h.recorder.RecordAnalysis(ctx, result.MessageAnalysis.Intent,
			string(result.MessageAnalysis.Route),
			time.Duration(result.Telemetry.TotalMs)*time.Millisecond)
	}
	return result, nil
}

func validateOutput(result *Output) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal: %v", err)
	}

	schemaLoader := gojsonschema.NewStringLoader(outputSchema)
	documentLoader := gojsonschema.NewBytesLoader(raw)

	res, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %v", err)
	}
	if !res.Valid() {
		errs := make([]string, len(res.Errors()))
		for i, desc := range res.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("contract violation: %v", errs)
	}
	return nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)

	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

// failJob maps pipeline sentinels onto the structured error vocabulary and
// hands reporting off to the shared handler. Both analysis codes are
// permanent, so they surface as BPMN errors rather than retries.
func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	var stdErr *commonerrors.StandardError
	switch {
	case errors.Is(err, ErrInputInvalid):
		stdErr = commonerrors.NewAnalysisInputInvalidError(err.Error())
	case errors.Is(err, ErrOutputInvalid):
		stdErr = commonerrors.NewAnalysisOutputInvalidError(err.Error())
	default:
		h.errorsOut.HandleJobError(context.Background(), client, job, err)
		return
	}

	h.errorsOut.HandleJobError(context.Background(), client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
