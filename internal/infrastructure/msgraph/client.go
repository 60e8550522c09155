package msgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"teams-meeting-bridge/internal/config"
	"teams-meeting-bridge/internal/domain/entity"
)

const (
	maxBodyLogLength   = 500   // Maximum characters to log for body
	maxBodyStoreLength = 10000 // Maximum characters persisted per API log body

	eventsPath = "/me/events"
)

// APILogSaver interface for saving API logs
type APILogSaver interface {
	Save(ctx context.Context, log *entity.APILog) error
}

// Client talks to Microsoft Graph on behalf of a user
type Client interface {
	// CreateEvent posts a calendar event and returns the Graph response verbatim
	CreateEvent(ctx context.Context, userID, accessToken string, event *entity.GraphEvent) (json.RawMessage, error)
}

type graphClient struct {
	client      *http.Client
	baseURL     string
	limiter     *RateLimiter
	apiLogSaver APILogSaver
	logger      *zap.Logger
}

func NewClient(cfg *config.Config, apiLogSaver APILogSaver, logger *zap.Logger) Client {
	var saver APILogSaver
	if cfg.Graph.LogCalls {
		saver = apiLogSaver
	}

	return &graphClient{
		client: &http.Client{
			Timeout: cfg.Graph.Timeout,
		},
		baseURL:     strings.TrimRight(cfg.Graph.BaseURL, "/"),
		limiter:     NewRateLimiter(cfg.Graph.RequestsPerSecond, cfg.Graph.Burst),
		apiLogSaver: saver,
		logger:      logger,
	}
}

func (c *graphClient) CreateEvent(ctx context.Context, userID, accessToken string, event *entity.GraphEvent) (json.RawMessage, error) {
	return c.doRequest(ctx, userID, accessToken, http.MethodPost, eventsPath, event)
}

// truncateString truncates a string if it exceeds maxLength
func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength] + fmt.Sprintf("... [truncated, total %d chars]", len(s))
}

// formatHeadersForLog formats HTTP headers for logging in "Header Key=Value" format
func formatHeadersForLog(headers http.Header) string {
	var sb strings.Builder
	for key, values := range headers {
		for _, value := range values {
			if strings.EqualFold(key, "Authorization") {
				value = "Bearer [redacted]"
			} else if len(value) > 100 {
				value = value[:100] + "..."
			}
			sb.WriteString(fmt.Sprintf("Header %s=%s\n", key, value))
		}
	}
	return sb.String()
}

// logRequest logs the HTTP request details
func (c *graphClient) logRequest(method, url string, headers http.Header, body []byte) {
	var logBuilder strings.Builder

	logBuilder.WriteString("\n>>> [GRAPH-REQ]\n")
	logBuilder.WriteString(fmt.Sprintf("Method: %s\n", method))
	logBuilder.WriteString(fmt.Sprintf("URL: %s\n", url))
	logBuilder.WriteString(formatHeadersForLog(headers))

	if len(body) > 0 {
		logBuilder.WriteString(fmt.Sprintf("REQUEST BODY: %s\n", truncateString(string(body), maxBodyLogLength)))
	}

	c.logger.Debug(logBuilder.String())
}

// logResponse logs the HTTP response details
func (c *graphClient) logResponse(statusCode int, statusText string, duration time.Duration, headers http.Header, body []byte) {
	var logBuilder strings.Builder

	logBuilder.WriteString("\n>>> [GRAPH-RESPONSE]\n")
	logBuilder.WriteString(fmt.Sprintf("Status: %d %s\n", statusCode, statusText))
	logBuilder.WriteString(fmt.Sprintf("Duration: %s\n", duration))
	logBuilder.WriteString(formatHeadersForLog(headers))
	logBuilder.WriteString(fmt.Sprintf("Body: %s\n", truncateString(string(body), maxBodyLogLength)))

	c.logger.Debug(logBuilder.String())
}

// saveAPILog persists the call asynchronously so the request is not blocked
func (c *graphClient) saveAPILog(requestID, method, endpoint string, requestBody, responseBody []byte, statusCode int, duration time.Duration, userID string) {
	if c.apiLogSaver == nil {
		return
	}

	apiLog := &entity.APILog{
		RequestID:    requestID,
		Endpoint:     endpoint,
		Method:       method,
		RequestBody:  truncateString(string(requestBody), maxBodyStoreLength),
		ResponseBody: truncateString(string(responseBody), maxBodyStoreLength),
		StatusCode:   statusCode,
		Duration:     duration.Milliseconds(),
		UserID:       userID,
		CreatedAt:    time.Now(),
	}

	go func() {
		if err := c.apiLogSaver.Save(context.Background(), apiLog); err != nil {
			c.logger.Warn("Failed to save API log to database",
				zap.String("endpoint", endpoint),
				zap.Error(err),
			)
		}
	}()
}

// parseRetryAfter reads a Retry-After header given in seconds.
func parseRetryAfter(value string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func (c *graphClient) doRequest(ctx context.Context, userID, accessToken, method, path string, body interface{}) (json.RawMessage, error) {
	fullURL := c.baseURL + path

	var bodyReader io.Reader
	var jsonBody []byte
	if body != nil {
		var err error
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("client-request-id", requestID)

	if err := c.limiter.Wait(ctx, userID); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	c.logRequest(method, fullURL, req.Header, jsonBody)

	startTime := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(startTime)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logResponse(resp.StatusCode, resp.Status, duration, resp.Header, respBody)
	c.saveAPILog(requestID, method, fullURL, jsonBody, respBody, resp.StatusCode, duration, userID)

	if resp.StatusCode == http.StatusTooManyRequests {
		c.limiter.RecordRateLimitError(userID, parseRetryAfter(resp.Header.Get("Retry-After")))
	}

	if statusErr := WrapError(resp.StatusCode); statusErr != nil {
		c.logger.Warn("Graph request failed",
			zap.String("user_id", userID),
			zap.String("request_id", requestID),
			zap.Int("status", resp.StatusCode),
		)
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       truncateString(string(respBody), maxBodyLogLength),
			Err:        statusErr,
		}
	}

	if len(bytes.TrimSpace(respBody)) == 0 {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid(respBody) {
		return nil, fmt.Errorf("failed to parse response: invalid JSON")
	}

	return json.RawMessage(respBody), nil
}
