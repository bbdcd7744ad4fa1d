package scanner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"discord-warn-bot/moderation"

	"github.com/rs/zerolog/log"
)

// MuteExpirer lifts mutes whose deadline has passed.
type MuteExpirer interface {
	ExpireMutes(ctx context.Context) moderation.ExpireReport
}

// UnmuteTimer polls the mute registry on a fixed interval. A tick that is
// still running when the next one is due causes that one to be skipped.
type UnmuteTimer struct {
	expirer  MuteExpirer
	interval time.Duration
	running  atomic.Bool
	inflight sync.WaitGroup
}

func NewUnmuteTimer(expirer MuteExpirer, interval time.Duration) *UnmuteTimer {
	if interval <= 0 {
		interval = time.Minute
	}
	return &UnmuteTimer{expirer: expirer, interval: interval}
}

// Tick runs one pass. It reports false if a previous pass is still running.
func (t *UnmuteTimer) Tick(ctx context.Context) bool {
	if !t.running.CompareAndSwap(false, true) {
		log.Warn().Msg("Previous unmute check still running, skipping tick")
		return false
	}
	defer t.running.Store(false)

	report := t.expirer.ExpireMutes(ctx)
	if len(report.Expired) > 0 || len(report.Normalized) > 0 || len(report.Skipped) > 0 {
		log.Info().
			Int("expired", len(report.Expired)).
			Int("normalized", len(report.Normalized)).
			Int("skipped", len(report.Skipped)).
			Int("role_failures", report.RoleFailures).
			Bool("persist_degraded", report.PersistenceDegraded).
			Msg("Unmute check finished")
	}
	return true
}

// Run ticks until done is closed. Each tick runs on its own goroutine so a
// slow platform call never delays the ticker. Run returns only after every
// tick it started has finished.
func (t *UnmuteTimer) Run(done <-chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-done
		cancel()
	}()

	log.Info().Dur("interval", t.interval).Msg("Unmute timer started")
	for {
		select {
		case <-ticker.C:
			t.inflight.Add(1)
			go func() {
				defer t.inflight.Done()
				t.Tick(ctx)
			}()
		case <-done:
			t.inflight.Wait()
			log.Info().Msg("Unmute timer stopped")
			return
		}
	}
}
