package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rotulo/internal/config"
)

const userAgent = "Rotulo-Go/0.1.0"

// Service defines the notification surface exposed to capture and sync.
type Service interface {
	NotifyQueueSaved(ctx context.Context, businessCode string, pending int) error
	NotifySyncStarted(ctx context.Context, pending int) error
	NotifySyncCompleted(ctx context.Context, synced, failed int, duration time.Duration) error
	NotifyStorageFault(ctx context.Context, err error) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:    topic,
		client:      &http.Client{Timeout: timeout},
		queueEvents: cfg.Notifications.Queue,
		syncEvents:  cfg.Notifications.Sync,
		errorEvents: cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	queueEvents bool
	syncEvents  bool
	errorEvents bool
}

func (n *ntfyService) NotifyQueueSaved(ctx context.Context, businessCode string, pending int) error {
	if !n.queueEvents {
		return nil
	}
	businessCode = strings.TrimSpace(businessCode)
	data := payload{
		title:   "Rotulo - Saved Offline",
		message: fmt.Sprintf("Record %s saved to the local queue (%d pending)", businessCode, pending),
		tags:    []string{"rotulo", "queue", "saved"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySyncStarted(ctx context.Context, pending int) error {
	if !n.syncEvents {
		return nil
	}
	data := payload{
		title:   "Rotulo - Sync Started",
		message: fmt.Sprintf("Started syncing %d queued records", pending),
		tags:    []string{"rotulo", "sync", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySyncCompleted(ctx context.Context, synced, failed int, duration time.Duration) error {
	if !n.syncEvents {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	var title, message string
	if failed == 0 {
		title = "Rotulo - Sync Complete"
		message = fmt.Sprintf("Sync complete: %d records uploaded in %s", synced, durationText)
	} else {
		title = "Rotulo - Sync Complete (with errors)"
		message = fmt.Sprintf("Sync complete: %d uploaded, %d still queued after %s", synced, failed, durationText)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"rotulo", "sync", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyStorageFault(ctx context.Context, err error) error {
	if !n.errorEvents {
		return nil
	}
	message := "Local queue storage fault"
	if err != nil {
		message = fmt.Sprintf("%s: %s", message, strings.TrimSpace(err.Error()))
	}
	data := payload{
		title:    "Rotulo - Storage Fault",
		message:  message,
		tags:     []string{"rotulo", "storage", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errorEvents {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Rotulo - Error",
		message:  builder.String(),
		tags:     []string{"rotulo", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Rotulo - Test",
		message:  "Notification system test",
		tags:     []string{"rotulo", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
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

func (noopService) NotifyQueueSaved(context.Context, string, int) error                { return nil }
func (noopService) NotifySyncStarted(context.Context, int) error                       { return nil }
func (noopService) NotifySyncCompleted(context.Context, int, int, time.Duration) error { return nil }
func (noopService) NotifyStorageFault(context.Context, error) error                    { return nil }
func (noopService) NotifyError(context.Context, error, string) error                   { return nil }
func (noopService) TestNotification(context.Context) error                             { return nil }
