package notifier

import (
	"context"
	"fmt"
	"time"

	"bank-loan-service/internal/infrastructure/metrics"

	"go.uber.org/zap"
)

const (
	LoanTopic = "loan-notifications"

	defaultTimeout = 3 * time.Second
)

// Transport is the external message channel. A nil Transport means the
// channel is unavailable and every message is logged instead.
type Transport interface {
	Publish(ctx context.Context, topic, message string) error
}

// Notifier announces status changes on a best-effort basis. It never returns
// an error: failures and timeouts are downgraded to a log line.
type Notifier struct {
	transport Transport
	log       *zap.Logger
	timeout   time.Duration
	topic     string
}

func New(t Transport, log *zap.Logger, timeout time.Duration, topic string) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if topic == "" {
		topic = LoanTopic
	}
	return &Notifier{transport: t, log: log, timeout: timeout, topic: topic}
}

func (n *Notifier) Notify(ctx context.Context, topic, message string) {
	if n.transport == nil {
		metrics.Notifications.WithLabelValues("logged").Inc()
		n.log.Info("transport unavailable, logging notification",
			zap.String("topic", topic), zap.String("message", message))
		return
	}

	// detach from the caller's cancellation; the workflow has already committed
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()

	if err := n.transport.Publish(pctx, topic, message); err != nil {
		metrics.Notifications.WithLabelValues("failed").Inc()
		n.log.Warn("notification publish failed, logging notification",
			zap.String("topic", topic), zap.String("message", message), zap.Error(err))
		return
	}
	metrics.Notifications.WithLabelValues("published").Inc()
}

func (n *Notifier) NotifyLoanStatus(ctx context.Context, userID uint64, status string) {
	n.Notify(ctx, n.topic, LoanStatusMessage(userID, status))
}

func LoanStatusMessage(userID uint64, status string) string {
	return fmt.Sprintf("Loan application for user %d has been %s", userID, status)
}
