package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Snowflake is a Discord ID. Older data files stored IDs as JSON numbers, so
// both forms are accepted on read; it is always written back as a string.
type Snowflake string

func (s *Snowflake) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Snowflake(str)
		return nil
	}
	// Keep the literal digits; decoding through float64 would lose precision.
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("snowflake must be a string or number, got %s", string(data))
	}
	if _, err := strconv.ParseUint(num.String(), 10, 64); err != nil {
		return fmt.Errorf("invalid snowflake %s: %w", num.String(), err)
	}
	*s = Snowflake(num.String())
	return nil
}

func (s Snowflake) String() string {
	return string(s)
}
