// internal/analysis/collab/genai.go
package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrClassificationFailed = errors.New("FLAG_CLASSIFICATION_FAILED")
	ErrExtractionFailed     = errors.New("SUBJECT_EXTRACTION_FAILED")
	ErrGenAITimeout         = errors.New("GENAI_API_TIMEOUT")
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// GenAIConfig holds the connection settings for the upstream model service.
type GenAIConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// GenAIClient implements both collaborator interfaces against the GenAI
// service. Calls retry with exponential backoff and respect the caller's
// context deadline.
type GenAIClient struct {
	config *GenAIConfig
	client *http.Client
	logger Logger
}

func NewGenAIClient(config *GenAIConfig, log Logger) *GenAIClient {
	return &GenAIClient{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		logger: log.With(map[string]interface{}{
			"component": "genai-client",
		}),
	}
}

func (c *GenAIClient) FlagIntents(ctx context.Context, text string, allowedFlags []string, contextHints []string) ([]string, error) {
	requestBody := map[string]interface{}{
		"text":         text,
		"allowedFlags": allowedFlags,
	}
	if len(contextHints) > 0 {
		requestBody["contextHints"] = contextHints
	}

	var apiResponse struct {
		Flags []string `json:"flags"`
	}
	if err := c.post(ctx, "/api/ai/flag-intents", requestBody, &apiResponse, ErrClassificationFailed); err != nil {
		return nil, err
	}

	c.logger.Info("flags classified", map[string]interface{}{
		"flagCount": len(apiResponse.Flags),
	})
	return apiResponse.Flags, nil
}

func (c *GenAIClient) ExtractSubjects(ctx context.Context, text string, max int) ([]Subject, error) {
	requestBody := map[string]interface{}{
		"text": text,
		"max":  max,
	}

	var apiResponse struct {
		Subjects []Subject `json:"subjects"`
	}
	if err := c.post(ctx, "/api/ai/extract-subjects", requestBody, &apiResponse, ErrExtractionFailed); err != nil {
		return nil, err
	}

	subjects := FilterSubjects(apiResponse.Subjects)
	if max > 0 && len(subjects) > max {
		subjects = subjects[:max]
	}

	c.logger.Info("subjects extracted", map[string]interface{}{
		"subjectCount": len(subjects),
	})
	return subjects, nil
}

func (c *GenAIClient) post(ctx context.Context, path string, requestBody interface{}, out interface{}, failErr error) error {
	body, _ := json.Marshal(requestBody)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ErrGenAITimeout
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+path, bytes.NewBuffer(body))
		if err != nil {
			return fmt.Errorf("%w: %v", failErr, err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, lastErr = c.client.Do(req)

		// If the context expired during the request, report timeout
		// immediately instead of burning through the remaining retries.
		if ctx.Err() != nil ||
			errors.Is(lastErr, context.DeadlineExceeded) ||
			errors.Is(lastErr, context.Canceled) {
			return ErrGenAITimeout
		}

		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ErrGenAITimeout
		}
		return fmt.Errorf("%w: %v", failErr, lastErr)
	}
	if resp == nil {
		return fmt.Errorf("%w: no successful response after retries", failErr)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode error: %v", failErr, err)
	}
	return nil
}
