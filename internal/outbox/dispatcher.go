package outbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/routeworks/memoflow-backend/internal/domain"
)

type notificationStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Memo, error)
	Create(ctx context.Context, m domain.Memo) (*domain.Memo, error)
}

// Notifier turns NOTIFICATION tasks into notification records inside the
// recipient's inbox. Notifications ride the memo table with their own kind
// and a RelatedMemoID pointing at the memo the event is about.
type Notifier struct {
	memos notificationStore
	log   *slog.Logger
}

func NewNotifier(log *slog.Logger, memos notificationStore) *Notifier {
	return &Notifier{memos: memos, log: log.With("dispatcher", "notifier")}
}

func (n *Notifier) Dispatch(ctx context.Context, task domain.OutboxTask) error {
	recipientRaw, ok := task.Payload["recipientId"].(string)
	if !ok {
		return fmt.Errorf("task %s: payload has no recipientId", task.ID)
	}
	recipientID, err := uuid.Parse(recipientRaw)
	if err != nil {
		return fmt.Errorf("task %s: bad recipientId: %w", task.ID, err)
	}

	memo, err := n.memos.GetByID(ctx, task.MemoID)
	if err != nil {
		return fmt.Errorf("task %s: load memo: %w", task.ID, err)
	}

	subject := "Memo delivered: " + memo.Subject
	body := "You received a new memo."
	if event, _ := task.Payload["event"].(string); event == "rejected" {
		subject = "Memo rejected: " + memo.Subject
		body = "Your memo was rejected."
		if reason, _ := task.Payload["reason"].(string); reason != "" {
			body = "Reason: " + reason
		}
	}

	relatedID := task.MemoID
	now := time.Now().UTC()
	_, err = n.memos.Create(ctx, domain.Memo{
		Kind:          domain.MemoKindNotification,
		AuthorID:      memo.AuthorID,
		RecipientID:   recipientID,
		Subject:       subject,
		Body:          body,
		Status:        domain.MemoStatusSent,
		RelatedMemoID: &relatedID,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return fmt.Errorf("task %s: create notification: %w", task.ID, err)
	}

	n.log.DebugContext(ctx, "notification delivered",
		slog.String("memo_id", task.MemoID.String()),
		slog.String("recipient_id", recipientID.String()),
	)
	return nil
}

// Webhook posts task payloads to an external collaborator. An empty URL
// disables the integration: tasks complete without a call, so environments
// without a calendar or backup endpoint still drain their outbox.
type Webhook struct {
	name   string
	url    string
	client *http.Client
	log    *slog.Logger
}

func NewWebhook(log *slog.Logger, name, url string, timeout time.Duration) *Webhook {
	return &Webhook{
		name:   name,
		url:    url,
		client: &http.Client{Timeout: timeout},
		log:    log.With("dispatcher", name),
	}
}

func (w *Webhook) Dispatch(ctx context.Context, task domain.OutboxTask) error {
	if w.url == "" {
		w.log.DebugContext(ctx, "webhook not configured, task skipped",
			slog.String("task_id", task.ID.String()),
		)
		return nil
	}

	body, err := json.Marshal(map[string]any{
		"taskId":  task.ID,
		"memoId":  task.MemoID,
		"type":    task.Type,
		"payload": task.Payload,
	})
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", w.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", w.name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post to %s: %w", w.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s returned status %d", w.name, resp.StatusCode)
	}
	return nil
}
