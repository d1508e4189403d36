package queue

import (
	"context"
	"fmt"
	"sync/atomic"
)

// NotificationMessage is a human readable line destined to the webhook
type NotificationMessage struct {
	Content string
}

// Notifier hands notifications to the queue so that callers never wait on the webhook
type Notifier struct {
	q     *Service
	count atomic.Uint64
}

func NewNotifier(q *Service) *Notifier {
	return &Notifier{q: q}
}

func (n *Notifier) Notify(ctx context.Context, message string) error {
	id := fmt.Sprintf("notification-%d", n.count.Add(1))

	return n.q.Enqueue(*NewMessage(id, NotificationMessage{Content: message}))
}

// WebhookProcessor delivers notification messages through a WebhookMessager
type WebhookProcessor struct {
	ctx context.Context
	wm  WebhookMessager
}

func NewWebhookProcessor(ctx context.Context, wm WebhookMessager) *WebhookProcessor {
	return &WebhookProcessor{ctx: ctx, wm: wm}
}

func (p *WebhookProcessor) Process(messages []Message) ([]Message, []error) {
	invalidMessages := []Message{}
	messageErrors := []error{}

	for _, m := range messages {
		n, ok := m.Message.(NotificationMessage)
		if !ok {
			// retrying would not help
			p.wm.NotifyError(p.ctx, fmt.Errorf("invalid notification message %s", m.ID))
			continue
		}

		err := p.wm.Notify(p.ctx, n.Content)
		if err != nil {
			invalidMessages = append(invalidMessages, m)
			messageErrors = append(messageErrors, err)
		}
	}

	return invalidMessages, messageErrors
}
