package session

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StartSweeper runs Sweep on a standard 5-field cron schedule until ctx is
// cancelled.
func (m *Manager) StartSweeper(ctx context.Context, schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { m.Sweep() }); err != nil {
		return fmt.Errorf("session: sweep schedule %q: %w", schedule, err)
	}
	c.Start()
	m.logger.Debug("session sweeper started", zap.String("schedule", schedule))

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return nil
}
