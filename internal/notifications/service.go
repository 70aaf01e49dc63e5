package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

const userAgent = "Scribe/0.1.0"

// Service is the notification surface exposed to the pipeline.
type Service interface {
	NotifyRunStarted(ctx context.Context, source string, chunks int) error
	NotifyRunCompleted(ctx context.Context, source string, failedChunks int, duration time.Duration) error
	NotifyRunFailed(ctx context.Context, source string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when a topic
// is configured, a noop implementation otherwise.
func NewService(topic string, timeoutSeconds int) Service {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(timeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRunStarted(ctx context.Context, source string, chunks int) error {
	data := payload{
		title:   "Scribe - Transcription Started",
		message: fmt.Sprintf("Started transcribing %s (%d chunks)", displayName(source), chunks),
		tags:    []string{"scribe", "run", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, source string, failedChunks int, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	var title, message string
	if failedChunks == 0 {
		title = "Scribe - Transcription Complete"
		message = fmt.Sprintf("Transcribed %s in %s", displayName(source), duration)
	} else {
		title = "Scribe - Transcription Complete (with errors)"
		message = fmt.Sprintf("Transcribed %s in %s, %d chunks failed", displayName(source), duration, failedChunks)
	}

	data := payload{
		title:    title,
		message:  message,
		tags:     []string{"scribe", "run", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, source string, err error) error {
	reason := "unknown"
	if err != nil {
		reason = strings.TrimSpace(err.Error())
	}
	data := payload{
		title:    "Scribe - Transcription Failed",
		message:  fmt.Sprintf("Failed to transcribe %s: %s", displayName(source), reason),
		tags:     []string{"scribe", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Scribe - Test",
		message:  "Notification system test",
		tags:     []string{"scribe", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func displayName(source string) string {
	if trimmed := strings.TrimSpace(source); trimmed != "" {
		return filepath.Base(trimmed)
	}
	return "unknown source"
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunStarted(context.Context, string, int) error                  { return nil }
func (noopService) NotifyRunCompleted(context.Context, string, int, time.Duration) error { return nil }
func (noopService) NotifyRunFailed(context.Context, string, error) error                 { return nil }
func (noopService) TestNotification(context.Context) error                               { return nil }
