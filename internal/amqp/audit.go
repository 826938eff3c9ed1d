package amqp

import (
	"context"
	"maps"
	"strings"
	"sync"

	applog "jizhang/internal/log"
)

// Auditor logs every append event it receives and keeps a per-table count.
type Auditor struct {
	logger *applog.Logger

	mu     sync.Mutex
	counts map[string]int
}

func NewAuditor(logger *applog.Logger) *Auditor {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Auditor{
		logger: logger.WithComponent(applog.ComponentAudit),
		counts: make(map[string]int),
	}
}

// Handle is a Consume handler.
func (a *Auditor) Handle(ctx context.Context, msg *EntryAppendedMessage) error {
	a.mu.Lock()
	a.counts[msg.Table]++
	a.mu.Unlock()

	a.logger.InfoContext(ctx, "row appended",
		applog.FieldTable, msg.Table,
		"values", strings.Join(msg.Values, " | "),
		"appended_at", msg.AppendedAt)
	return nil
}

// Counts returns how many events were seen per table.
func (a *Auditor) Counts() map[string]int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return maps.Clone(a.counts)
}
