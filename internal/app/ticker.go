package app

import (
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/go-co-op/gocron/v2"
)

// sender is the part of tea.Program the ticker needs.
type sender interface {
	Send(msg tea.Msg)
}

// startTicker sends a clockTickMsg to p every interval until the returned
// scheduler is shut down.
func startTicker(p sender, every time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() { p.Send(clockTickMsg{}) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("schedule refresh: %w", err)
	}
	sched.Start()
	return sched, nil
}
