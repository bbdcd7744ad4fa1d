package moderation

import (
	"context"
	"errors"
	"fmt"

	"discord-warn-bot/model"

	"github.com/rs/zerolog/log"
)

// ExpireReport summarizes one pass of the unmute scheduler.
type ExpireReport struct {
	Normalized []string
	Skipped    []string
	Expired    []string
	// RoleFailures counts expired mutes whose role could not be removed on the
	// platform. Their records are removed anyway.
	RoleFailures        int
	PersistenceDegraded bool
}

// ExpireMutes lifts every mute whose deadline has passed. Legacy epoch
// deadlines are rewritten and saved before anything is compared; deadlines
// that cannot be parsed are left in place.
func (s *Service) ExpireMutes(ctx context.Context) ExpireReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report ExpireReport
	report.Normalized = s.normalizeLegacyMutes()
	if len(report.Normalized) > 0 {
		if !s.persist() {
			report.PersistenceDegraded = true
		}
	}

	now := s.clock.Now()
	var due []*model.MuteRecord
	for _, key := range s.ledger.muteKeys() {
		rec := s.ledger.data.ActiveMutes[key]
		if rec == nil {
			continue
		}
		if !rec.UnmuteAt.Valid() {
			log.Warn().Str("key", key).Str("unmute_at", rec.UnmuteAt.Raw()).Msg("Unparseable unmute time, skipping mute record")
			report.Skipped = append(report.Skipped, key)
			continue
		}
		if !rec.UnmuteAt.Time.After(now) {
			due = append(due, rec)
		}
	}

	for _, rec := range due {
		if err := s.liftExpired(ctx, rec); err != nil {
			report.RoleFailures++
		}
		s.ledger.deleteMute(rec.GuildID.String(), rec.UserID.String())
		report.Expired = append(report.Expired, model.MuteKey(rec.GuildID.String(), rec.UserID.String()))
		mutesExpired.Inc()
	}

	if len(due) > 0 && !s.persist() {
		report.PersistenceDegraded = true
	}
	return report
}

// liftExpired removes the mute on the platform side. The returned error is
// informational; the caller drops the record regardless.
func (s *Service) liftExpired(ctx context.Context, rec *model.MuteRecord) error {
	guildID, userID := rec.GuildID.String(), rec.UserID.String()
	logger := log.With().Str("guild", guildID).Str("user", userID).Logger()

	err := s.platform.RemoveMuteRole(ctx, guildID, userID, "Mute expired")
	switch {
	case err == nil:
		if rec.ShouldRestoreVerifiedRole() {
			if rerr := s.platform.RestoreVerifiedRole(ctx, guildID, userID, "Mute expired"); rerr != nil {
				logger.Warn().Err(rerr).Msg("Failed to restore verified role on mute expiry")
			}
		}
	case errors.Is(err, ErrRoleNotHeld):
		logger.Info().Msg("Expired mute role already gone")
		err = nil
	case errors.Is(err, ErrMemberNotFound):
		logger.Info().Msg("Muted member left the guild before expiry")
	default:
		logger.Error().Err(err).Msg("Failed to remove mute role on expiry")
	}

	s.publishLine(ctx, guildID, fmt.Sprintf("<@%s> 的禁言已到期并自动解除。", userID))
	logger.Info().Msg("Mute expired")
	return err
}

func (s *Service) normalizeLegacyMutes() []string {
	var keys []string
	for _, key := range s.ledger.muteKeys() {
		rec := s.ledger.data.ActiveMutes[key]
		if rec == nil || !rec.UnmuteAt.Legacy() {
			continue
		}
		rec.UnmuteAt.Normalize()
		keys = append(keys, key)
		log.Info().Str("key", key).Time("unmute_at", rec.UnmuteAt.Time).Msg("Normalized legacy unmute time")
	}
	return keys
}

// NormalizeLegacyMutes rewrites numeric unmute deadlines to RFC 3339 and saves
// the document if anything changed.
func (s *Service) NormalizeLegacyMutes() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := s.normalizeLegacyMutes()
	if len(keys) == 0 || s.store == nil {
		return len(keys), nil
	}
	if err := s.store.Save(s.ledger.Data()); err != nil {
		persistFailures.Inc()
		return len(keys), fmt.Errorf("save normalized mutes: %w", err)
	}
	return len(keys), nil
}
