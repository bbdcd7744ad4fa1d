package moderation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"discord-warn-bot/model"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// fakePlatform records every call and fails the ops named in errs.
type fakePlatform struct {
	mu       sync.Mutex
	calls    []string
	audits   []AuditMessage
	notices  []AuditMessage
	errs     map[string]error
	verified map[string]bool
	muted    map[string]bool
	nextMsg  int
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		errs:     map[string]error{},
		verified: map[string]bool{},
		muted:    map[string]bool{},
	}
}

func (p *fakePlatform) record(op, guildID, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, fmt.Sprintf("%s %s/%s", op, guildID, userID))
	return p.errs[op]
}

func (p *fakePlatform) called(op string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		if len(c) > len(op) && c[:len(op)+1] == op+" " {
			n++
		}
	}
	return n
}

func (p *fakePlatform) PublishAudit(_ context.Context, guildID string, msg AuditMessage) (string, error) {
	if err := p.record("publish", guildID, ""); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.audits = append(p.audits, msg)
	p.nextMsg++
	return fmt.Sprintf("9000%d", p.nextMsg), nil
}

func (p *fakePlatform) AnnotateAudit(_ context.Context, guildID, messageID, _ string) error {
	return p.record("annotate", guildID, messageID)
}

func (p *fakePlatform) NotifyUser(_ context.Context, guildID, userID string, msg AuditMessage) error {
	if err := p.record("notify", guildID, userID); err != nil {
		return err
	}
	p.mu.Lock()
	p.notices = append(p.notices, msg)
	p.mu.Unlock()
	return nil
}

func (p *fakePlatform) ApplyMuteRole(_ context.Context, guildID, userID, _ string) error {
	if err := p.record("mute", guildID, userID); err != nil {
		return err
	}
	p.mu.Lock()
	p.muted[userID] = true
	p.mu.Unlock()
	return nil
}

func (p *fakePlatform) RemoveMuteRole(_ context.Context, guildID, userID, _ string) error {
	if err := p.record("unmute", guildID, userID); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.muted[userID] {
		return NewPlatformError("remove mute role", KindRoleNotHeld, nil)
	}
	delete(p.muted, userID)
	return nil
}

func (p *fakePlatform) HasVerifiedRole(_ context.Context, guildID, userID string) (bool, error) {
	if err := p.record("has_verified", guildID, userID); err != nil {
		return false, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.verified[userID], nil
}

func (p *fakePlatform) RemoveVerifiedRole(_ context.Context, guildID, userID, _ string) error {
	if err := p.record("remove_verified", guildID, userID); err != nil {
		return err
	}
	p.mu.Lock()
	delete(p.verified, userID)
	p.mu.Unlock()
	return nil
}

func (p *fakePlatform) RestoreVerifiedRole(_ context.Context, guildID, userID, _ string) error {
	if err := p.record("restore_verified", guildID, userID); err != nil {
		return err
	}
	p.mu.Lock()
	p.verified[userID] = true
	p.mu.Unlock()
	return nil
}

func (p *fakePlatform) Kick(_ context.Context, guildID, userID, _ string) error {
	return p.record("kick", guildID, userID)
}

func (p *fakePlatform) Ban(_ context.Context, guildID, userID, _ string) error {
	return p.record("ban", guildID, userID)
}

// memStore keeps the last saved document as JSON.
type memStore struct {
	saves int
	last  []byte
	err   error
}

func (m *memStore) Load() (*model.WarningData, error) {
	if m.last == nil {
		return model.NewWarningData(), nil
	}
	var data model.WarningData
	if err := json.Unmarshal(m.last, &data); err != nil {
		return nil, err
	}
	data.EnsureKeys()
	return &data, nil
}

func (m *memStore) Save(data *model.WarningData) error {
	if m.err != nil {
		return m.err
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	m.saves++
	m.last = b
	return nil
}

var errDenied = NewPlatformError("test", KindPermission, errors.New("403 Forbidden"))

const (
	testGuild = "100"
	modID     = "1"
	userID    = "42"
)

var (
	moderator = Actor{ID: modID, Name: "mod"}
	target    = Actor{ID: userID, Name: "target"}
)

func testCatalog() *RuleCatalog {
	return ParseRuleCatalog([]byte(`{
		"rules": [
			{"id": "1", "text": "禁止刷屏", "action_type": "general_violation"},
			{"id": "2", "text": "禁止广告", "action_type": "specific_action",
			 "actions": [{"type": "permanent_remove_from_group", "reason_template": "广告 (规则 {rule_id})"}]},
			{"id": "3", "text": "观察", "action_type": "specific_action",
			 "actions": [{"type": "monitor_only", "details": "仅记录"}]},
			{"id": "4", "text": "未知", "action_type": "specific_action",
			 "actions": [{"type": "teleport"}]},
			{"id": "5", "text": "冒充管理", "action_type": "specific_action",
			 "actions": [{"type": "revoke_role", "details": "管理员身份组"}]}
		],
		"general_punishment_ladder": [
			{"threshold": 2, "action": "mute", "duration_minutes": 60},
			{"threshold": 4, "action": "remove_temporary", "description_template": "累计 {count} 次警告", "can_rejoin": true},
			{"threshold": 5, "action": "ban_permanent"}
		]
	}`))
}

type sequentialIDs struct {
	ids []string
	n   int
}

func (s *sequentialIDs) next() string {
	if s.n < len(s.ids) {
		id := s.ids[s.n]
		s.n++
		return id
	}
	s.n++
	return fmt.Sprintf("Z%04d", s.n)
}

type harness struct {
	svc      *Service
	platform *fakePlatform
	store    *memStore
	clock    *fakeClock
}

func newHarness(data *model.WarningData, ids ...string) *harness {
	h := &harness{
		platform: newFakePlatform(),
		store:    &memStore{},
		clock:    &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	gen := &sequentialIDs{ids: ids}
	h.svc = NewService(data, h.store, h.platform, testCatalog(), WithClock(h.clock), WithCaseIDGenerator(gen.next))
	return h
}

func (h *harness) warn(reason string) (*WarningResult, error) {
	return h.svc.RecordWarning(context.Background(), WarningRequest{
		GuildID:   testGuild,
		GuildName: "Test Guild",
		Moderator: moderator,
		Target:    target,
		RawReason: reason,
	})
}
