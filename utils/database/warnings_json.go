package database

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"discord-warn-bot/model"

	"github.com/rs/zerolog/log"
)

// JSONStore keeps the warnings document in a single JSON file, rewritten in
// full on every save.
type JSONStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path, now: time.Now}
}

func (s *JSONStore) Path() string {
	return s.path
}

// Load reads the document. A missing or empty file yields an empty document.
// A file that is not a JSON object is renamed to <path>.corrupt-<unix> so the
// next save cannot overwrite it, and an empty document is returned. Records
// that fail to decode are skipped and the original file is copied to
// <path>.partial-<unix>.
func (s *JSONStore) Load() (*model.WarningData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Info().Str("path", s.path).Msg("Warnings file not found, starting with empty data")
			return model.NewWarningData(), nil
		}
		return nil, fmt.Errorf("error reading warnings file %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return model.NewWarningData(), nil
	}

	data, dropped, err := decodeDocument(raw)
	if err != nil {
		aside := fmt.Sprintf("%s.corrupt-%d", s.path, s.now().Unix())
		if rerr := os.Rename(s.path, aside); rerr != nil {
			return nil, fmt.Errorf("warnings file %s is corrupt (%v) and could not be moved aside: %w", s.path, err, rerr)
		}
		log.Error().Err(err).Str("path", s.path).Str("moved_to", aside).Msg("Warnings file is corrupt, starting with empty data")
		return model.NewWarningData(), nil
	}
	if dropped > 0 {
		// The next save rewrites the file without the dropped records.
		backup := fmt.Sprintf("%s.partial-%d", s.path, s.now().Unix())
		if werr := os.WriteFile(backup, raw, 0644); werr != nil {
			log.Error().Err(werr).Str("path", backup).Msg("Failed to back up warnings file with dropped records")
		} else {
			log.Warn().Int("dropped", dropped).Str("backup", backup).Msg("Loaded warnings file with undecodable records")
		}
	}
	return data, nil
}

// Save writes to a temp file in the same directory and renames it over the
// target.
func (s *JSONStore) Save(data *model.WarningData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := encodeDocument(data)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("error creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing warnings to %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("error syncing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("error replacing warnings file %s: %w", s.path, err)
	}
	return nil
}

// decodeDocument decodes the ledger one record at a time. A record that does
// not decode is logged and left out; only a document whose top level is not a
// JSON object is an error. dropped counts the records left out.
func decodeDocument(raw []byte) (data *model.WarningData, dropped int, err error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, 0, fmt.Errorf("error unmarshalling warnings data: %w", err)
	}
	data = model.NewWarningData()

	for guildID, guildRaw := range objectMembers(top["warnings"], "warnings", &dropped) {
		for userID, recRaw := range objectMembers(guildRaw, "warnings."+guildID, &dropped) {
			var rec model.UserRecord
			if err := json.Unmarshal(recRaw, &rec); err != nil {
				log.Warn().Err(err).Str("guild", guildID).Str("user", userID).Msg("Dropping undecodable warning record")
				dropped++
				continue
			}
			if data.Warnings[guildID] == nil {
				data.Warnings[guildID] = make(map[string]*model.UserRecord)
			}
			data.Warnings[guildID][userID] = &rec
		}
	}

	for key, muteRaw := range objectMembers(top["active_mutes"], "active_mutes", &dropped) {
		var mute model.MuteRecord
		if err := json.Unmarshal(muteRaw, &mute); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Dropping undecodable mute record")
			dropped++
			continue
		}
		data.ActiveMutes[key] = &mute
	}

	for guildID, guildRaw := range objectMembers(top["member_activity"], "member_activity", &dropped) {
		for userID, eventsRaw := range objectMembers(guildRaw, "member_activity."+guildID, &dropped) {
			var events []model.MemberActivity
			if err := json.Unmarshal(eventsRaw, &events); err != nil {
				log.Warn().Err(err).Str("guild", guildID).Str("user", userID).Msg("Dropping undecodable member activity")
				dropped++
				continue
			}
			if data.MemberActivity[guildID] == nil {
				data.MemberActivity[guildID] = make(map[string][]model.MemberActivity)
			}
			data.MemberActivity[guildID][userID] = events
		}
	}

	data.EnsureKeys()
	return data, dropped, nil
}

// objectMembers splits a JSON object into its members. A missing or null
// value is empty; anything else that is not an object counts as dropped.
func objectMembers(raw json.RawMessage, path string, dropped *int) map[string]json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Dropping section that is not a JSON object")
		*dropped++
		return nil
	}
	return members
}

func encodeDocument(data *model.WarningData) ([]byte, error) {
	if data == nil {
		data = model.NewWarningData()
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(data); err != nil {
		return nil, fmt.Errorf("error marshalling warnings data: %w", err)
	}
	return buf.Bytes(), nil
}
