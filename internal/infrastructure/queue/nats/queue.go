package nats

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/jlozanoz/normateca/internal/infrastructure/resilience"
)

// Queue carries the fragment lifecycle events: admissions fan out to one
// worker per message, indexed notifications fan out to every subscriber
// (inventory cache invalidation).
type Queue struct {
	conn            *nats.Conn
	admittedSubject string
	indexedSubject  string
	executor        *resilience.Executor
}

func New(url, admittedSubject, indexedSubject string) (*Queue, error) {
	return NewWithOptions(url, admittedSubject, indexedSubject, Options{})
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func NewWithOptions(url, admittedSubject, indexedSubject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}

	conn, err := nats.Connect(
		url,
		nats.Name("normateca"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("nats reconnected: %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:            conn,
		admittedSubject: admittedSubject,
		indexedSubject:  indexedSubject,
		executor:        options.ResilienceExecutor,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishFragmentsAdmitted(ctx context.Context, taskID string) error {
	return q.publish(ctx, q.admittedSubject, taskID)
}

func (q *Queue) PublishSourceIndexed(ctx context.Context, source string) error {
	return q.publish(ctx, q.indexedSubject, source)
}

func (q *Queue) publish(ctx context.Context, subject, payload string) error {
	call := func(_ context.Context) error {
		if err := q.conn.Publish(subject, []byte(payload)); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	var err error
	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

// SubscribeFragmentsAdmitted joins the indexer work queue: each admission
// is delivered to exactly one worker. Blocks until ctx is done.
func (q *Queue) SubscribeFragmentsAdmitted(ctx context.Context, handler func(context.Context, string) error) error {
	sub, err := q.conn.QueueSubscribe(q.admittedSubject, "indexers", func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, string(msg.Data)); err != nil {
			log.Printf("indexer handler error for task=%s: %v", string(msg.Data), err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	return q.drainOnDone(ctx, sub)
}

// SubscribeSourceIndexed fans out to every subscriber, so each api instance
// can invalidate its inventory cache. Blocks until ctx is done.
func (q *Queue) SubscribeSourceIndexed(ctx context.Context, handler func(context.Context, string) error) error {
	sub, err := q.conn.Subscribe(q.indexedSubject, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, string(msg.Data)); err != nil {
			log.Printf("indexed handler error for source=%s: %v", string(msg.Data), err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	return q.drainOnDone(ctx, sub)
}

func (q *Queue) drainOnDone(ctx context.Context, sub *nats.Subscription) error {
	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}
