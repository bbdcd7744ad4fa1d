package moderation

import (
	"context"
	"strings"
	"unicode/utf8"

	"discord-warn-bot/model"

	"github.com/rs/zerolog/log"
)

type NoteRequest struct {
	GuildID   string
	Moderator Actor
	Target    Actor
	Text      string
}

type NoteResult struct {
	CaseID              string
	PersistenceDegraded bool
}

// AddNote records a moderator note. Notes are private: they are not published,
// do not notify the member and never count toward punishment.
func (s *Service) AddNote(_ context.Context, req NoteRequest) (*NoteResult, error) {
	switch {
	case req.GuildID == "":
		return nil, ErrMissingGuildID
	case req.Target.ID == req.Moderator.ID:
		return nil, ErrSelfTarget
	case strings.TrimSpace(req.Text) == "":
		return nil, ErrEmptyNote
	case utf8.RuneCountInString(req.Text) > MaxReasonLength:
		return nil, ErrReasonTooLong
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	caseID := s.uniqueCaseID(req.GuildID)
	rec, _, _ := s.ledger.ensureUser(req.GuildID, req.Target.ID)
	rec.Entries = append(rec.Entries, &model.Entry{
		EntryType:    model.EntryNote,
		Status:       model.StatusActive,
		CaseID:       caseID,
		Timestamp:    s.now(),
		OperatorID:   model.Snowflake(req.Moderator.ID),
		OperatorName: req.Moderator.Name,
		Text:         req.Text,
	})

	log.Info().Str("guild", req.GuildID).Str("user", req.Target.ID).Str("case", caseID).Msg("Note added")
	return &NoteResult{CaseID: caseID, PersistenceDegraded: !s.persist()}, nil
}

// RecordMemberActivity appends a join or leave event to the member log.
func (s *Service) RecordMemberActivity(guildID, userID string, kind model.ActivityKind) {
	if guildID == "" || userID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byUser, ok := s.ledger.data.MemberActivity[guildID]
	if !ok {
		byUser = make(map[string][]model.MemberActivity)
		s.ledger.data.MemberActivity[guildID] = byUser
	}
	byUser[userID] = append(byUser[userID], model.MemberActivity{
		Type:      kind,
		Timestamp: s.now(),
		UserID:    model.Snowflake(userID),
		GuildID:   model.Snowflake(guildID),
	})
	log.Debug().Str("guild", guildID).Str("user", userID).Str("kind", string(kind)).Msg("Member activity recorded")
	s.persist()
}
