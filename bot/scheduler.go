package bot

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"discord-warn-bot/scanner"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Scheduler manages the background tasks.
type Scheduler struct {
	bot  *Bot
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func NewScheduler(bot *Bot) *Scheduler {
	return &Scheduler{
		bot:  bot,
		done: make(chan struct{}),
	}
}

// Start begins all scheduled tasks.
func (s *Scheduler) Start() {
	cfg := s.bot.GetConfig()

	timer := scanner.NewUnmuteTimer(s.bot.Moderation, cfg.UnmuteInterval)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		timer.Run(s.done)
	}()

	if cfg.MetricsListen != "" {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveMetrics(cfg.MetricsListen)
		}()
	}
}

// Stop terminates all scheduled tasks gracefully.
func (s *Scheduler) Stop() {
	s.once.Do(func() {
		log.Info().Msg("Stopping scheduler...")
		close(s.done)
		s.wg.Wait()
		log.Info().Msg("Scheduler stopped.")
	})
}

func (s *Scheduler) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-s.done
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	log.Info().Str("addr", addr).Msg("Serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Str("addr", addr).Msg("Metrics server failed")
	}
}
