package queue

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrQueueFull = errors.New("queue is full")

type Message struct {
	ID         string
	CreatedAt  time.Time
	RetryCount int
	Message    any
}

func NewMessage(id string, message any) *Message {
	return &Message{
		ID:         id,
		CreatedAt:  time.Now(),
		RetryCount: 0,
		Message:    message,
	}
}

type WebhookMessager interface {
	Notify(ctx context.Context, message string) error
	NotifyWarning(ctx context.Context, errorMessage error) error
	NotifyError(ctx context.Context, errorMessage error) error
}

// Service is a buffered worker queue, failed messages are retried up to maxRetries times
type Service struct {
	name       string
	queue      chan Message
	quit       chan bool
	maxRetries int

	ctx context.Context
	wm  WebhookMessager
}

// Processor handles a batch and returns the messages that failed with their errors
type Processor interface {
	Process([]Message) ([]Message, []error)
}

func NewService(name string, maxRetries, buffer int, ctx context.Context, wm WebhookMessager) *Service {
	return &Service{
		name:       name,
		queue:      make(chan Message, buffer),
		quit:       make(chan bool),
		maxRetries: maxRetries,
		ctx:        ctx,
		wm:         wm,
	}
}

// Enqueue adds a message without blocking, ErrQueueFull is returned when the buffer is full
func (s *Service) Enqueue(message Message) error {
	select {
	case s.queue <- message:
	default:
		err := fmt.Errorf("%s: %w", s.name, ErrQueueFull)
		s.wm.NotifyError(s.ctx, err)
		return err
	}

	if cap(s.queue) > 0 && len(s.queue) >= cap(s.queue)*9/10 {
		s.wm.NotifyWarning(s.ctx, fmt.Errorf("%s: queue is almost full (%d/%d)", s.name, len(s.queue), cap(s.queue)))
	}

	return nil
}

func (s *Service) Close() {
	s.quit <- true
}

func (s *Service) Start(p Processor) error {
	for {
		select {
		case message := <-s.queue:
			// collect whatever else is already waiting
			batch := []Message{message}
		collect:
			for len(batch) < cap(s.queue) {
				select {
				case m := <-s.queue:
					batch = append(batch, m)
				default:
					break collect
				}
			}

			// it is up to the processor to handle the data type
			invalid, errs := p.Process(batch)

			retried := 0
			for i, m := range invalid {
				var err error
				if i < len(errs) {
					err = errs[i]
				}

				if m.RetryCount < s.maxRetries {
					m.RetryCount++
					select {
					case s.queue <- m:
						retried++
						continue
					default:
						err = fmt.Errorf("%s: %w, dropping %s", s.name, ErrQueueFull, m.ID)
					}
				}

				if err != nil {
					s.wm.NotifyError(s.ctx, err)
				}
			}

			if retried > 0 && len(s.queue) == retried {
				// only retries are waiting, back off to avoid a busy loop
				time.Sleep(time.Duration(retried) * 100 * time.Millisecond)
			}
		case <-s.quit:
			// quit the service
			return nil
		}
	}
}
