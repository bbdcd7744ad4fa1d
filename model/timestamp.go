package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"time"
)

// naive layouts written by older versions without a zone; read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
}

// FlexTime is a mute record timestamp. The canonical on-disk form
// is an RFC 3339 string; legacy epoch numbers are accepted on read and flagged
// so the caller can persist the normalized form. A value that cannot be
// parsed is kept verbatim so a bad record survives a load/save round trip.
type FlexTime struct {
	Time time.Time

	legacy bool
	raw    json.RawMessage
}

// NewFlexTime wraps t in its canonical form.
func NewFlexTime(t time.Time) FlexTime {
	return FlexTime{Time: t.UTC()}
}

// Legacy reports whether the value was read from a numeric epoch.
func (f FlexTime) Legacy() bool {
	return f.legacy
}

// Valid reports whether the stored value could be parsed.
func (f FlexTime) Valid() bool {
	return f.raw == nil && !f.Time.IsZero()
}

// Raw returns the original bytes of an unparseable value.
func (f FlexTime) Raw() string {
	return string(f.raw)
}

// Normalize drops the legacy marker so the next write emits RFC 3339.
func (f *FlexTime) Normalize() {
	f.legacy = false
	f.Time = f.Time.UTC()
}

func (f *FlexTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*f = FlexTime{}

	// null is not a deadline; keep it verbatim so the record is skipped, not expired.
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		f.raw = json.RawMessage("null")
		return nil
	}

	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err == nil {
			if t, ok := parseISO(str); ok {
				f.Time = t
				return nil
			}
		}
		f.raw = append(json.RawMessage(nil), data...)
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil && !math.IsNaN(num) && !math.IsInf(num, 0) {
		sec, frac := math.Modf(num)
		if sec > -1e12 && sec < 1e12 {
			f.Time = time.Unix(int64(sec), int64(frac*1e9)).UTC()
			f.legacy = true
			return nil
		}
	}

	f.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (f FlexTime) MarshalJSON() ([]byte, error) {
	if f.raw != nil {
		return f.raw, nil
	}
	return json.Marshal(f.Time.UTC().Format(time.RFC3339Nano))
}

func parseISO(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), true
	}
	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
