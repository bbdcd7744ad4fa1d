package moderation

import (
	"sync"

	"discord-warn-bot/model"

	"github.com/rs/zerolog/log"
)

// Service owns the ledger and runs every workflow that mutates it. A single
// mutex is held for the whole of each workflow, including the platform calls
// it makes, so two ledger-mutating operations never interleave.
type Service struct {
	mu        sync.Mutex
	ledger    *Ledger
	store     Store
	platform  Platform
	catalog   *RuleCatalog
	clock     Clock
	newCaseID func() string
}

type Option func(*Service)

// WithClock overrides the wall clock.
func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithCaseIDGenerator overrides the random case ID source.
func WithCaseIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newCaseID = gen }
}

// NewService wires the ledger document to its collaborators.
func NewService(data *model.WarningData, store Store, platform Platform, catalog *RuleCatalog, opts ...Option) *Service {
	if catalog == nil {
		catalog = NewRuleCatalog(nil, nil)
	}
	s := &Service{
		ledger:    NewLedger(data),
		store:     store,
		platform:  platform,
		catalog:   catalog,
		clock:     SystemClock,
		newCaseID: GenerateCaseID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetCatalog swaps the rule catalog, e.g. after the rules file is reloaded.
func (s *Service) SetCatalog(c *RuleCatalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = c
}

// View runs fn with the ledger locked. fn must not keep references.
func (s *Service) View(fn func(l *Ledger)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.ledger)
}

// persist saves the document and reports whether it succeeded. Failures are
// logged; the in-memory state stands either way.
func (s *Service) persist() bool {
	if s.store == nil {
		return true
	}
	if err := s.store.Save(s.ledger.Data()); err != nil {
		persistFailures.Inc()
		log.Error().Err(err).Msg("Failed to persist warning data")
		return false
	}
	return true
}

// uniqueCaseID draws case IDs until one is unused in the guild.
func (s *Service) uniqueCaseID(guildID string) string {
	id := s.newCaseID()
	for i := 1; i < caseIDAttempts && s.ledger.caseIDInUse(guildID, id); i++ {
		id = s.newCaseID()
	}
	return id
}

func (s *Service) now() int64 {
	return s.clock.Now().Unix()
}
