package service

import (
	"context"

	"go.uber.org/zap"
)

// Notifier is told which dates of a group changed after a reschedule was
// committed. It is never called for previews or failed commits.
type Notifier interface {
	DatesChanged(ctx context.Context, groupID string, dates []string)
}

type NoopNotifier struct{}

func (NoopNotifier) DatesChanged(context.Context, string, []string) {}

type zapNotifier struct {
	logger *zap.Logger
}

func NewZapNotifier(logger *zap.Logger) Notifier {
	return &zapNotifier{logger: logger.Named("notify")}
}

func (n *zapNotifier) DatesChanged(_ context.Context, groupID string, dates []string) {
	n.logger.Info("plan dates changed",
		zap.String("group_id", groupID),
		zap.Strings("dates", dates),
		zap.Int("count", len(dates)))
}
