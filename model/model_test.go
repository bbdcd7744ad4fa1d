package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflakeAcceptsNumbers(t *testing.T) {
	var v struct {
		A Snowflake `json:"a"`
		B Snowflake `json:"b"`
		C Snowflake `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 1188466315034644480, "b": "123", "c": null}`), &v))
	assert.Equal(t, Snowflake("1188466315034644480"), v.A)
	assert.Equal(t, Snowflake("123"), v.B)
	assert.Equal(t, Snowflake(""), v.C)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": "1188466315034644480", "b": "123", "c": ""}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"a": -5}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"a": 1.5}`), &v))
}

func TestFlexTimeForms(t *testing.T) {
	cases := []struct {
		in     string
		want   time.Time
		legacy bool
		valid  bool
	}{
		{`"2024-03-01T13:00:00Z"`, time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC), false, true},
		{`"2024-03-01T21:00:00+08:00"`, time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC), false, true},
		{`"2024-03-01T13:00:00.123456"`, time.Date(2024, 3, 1, 13, 0, 0, 123456000, time.UTC), false, true},
		{`1709298000`, time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC), true, true},
		{`1709298000.5`, time.Date(2024, 3, 1, 13, 0, 0, 500000000, time.UTC), true, true},
		{`"soon"`, time.Time{}, false, false},
		{`null`, time.Time{}, false, false},
		{`{"x": 1}`, time.Time{}, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			var f FlexTime
			require.NoError(t, json.Unmarshal([]byte(tc.in), &f))
			assert.Equal(t, tc.valid, f.Valid())
			assert.Equal(t, tc.legacy, f.Legacy())
			if tc.valid {
				assert.True(t, tc.want.Equal(f.Time), "got %s", f.Time)
			}
		})
	}
}

func TestFlexTimeRoundTrip(t *testing.T) {
	var f FlexTime
	require.NoError(t, json.Unmarshal([]byte(`1709298000`), &f))
	f.Normalize()
	out, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01T13:00:00Z"`, string(out))

	var bad FlexTime
	require.NoError(t, json.Unmarshal([]byte(`"not a time"`), &bad))
	out, err = json.Marshal(bad)
	require.NoError(t, err)
	assert.Equal(t, `"not a time"`, string(out))
	assert.Equal(t, `"not a time"`, bad.Raw())

	var v struct {
		At FlexTime `json:"at"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"at": null}`), &v))
	assert.False(t, v.At.Valid())
	out, err = json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"at": null}`, string(out))
}

func TestWarningDataEnsureKeys(t *testing.T) {
	var d WarningData
	require.NoError(t, json.Unmarshal([]byte(`{"warnings": {"1": {"2": {"entries": null, "total_warnings": 0}}}}`), &d))
	d.EnsureKeys()
	assert.NotNil(t, d.ActiveMutes)
	assert.NotNil(t, d.MemberActivity)
	assert.NotNil(t, d.Warnings["1"]["2"].PerRuleViolations)
	assert.NotNil(t, d.Warnings["1"]["2"].Entries)
}

func TestEntryLegacyDefaults(t *testing.T) {
	var e Entry
	require.NoError(t, json.Unmarshal([]byte(`{"entry_type": "warning", "case_id": "X", "reason": "old"}`), &e))
	assert.True(t, e.IsActiveWarning())
	assert.Equal(t, "old", e.DisplayReason())
	assert.Empty(t, e.RuleID())

	m := MuteRecord{}
	assert.True(t, m.ShouldRestoreVerifiedRole())
	no := false
	m.VerifiedRoleRemoved = &no
	assert.False(t, m.ShouldRestoreVerifiedRole())
	assert.Equal(t, "1-2", MuteKey("1", "2"))
}

func TestPunishmentTierTotalMinutes(t *testing.T) {
	assert.Equal(t, 150, PunishmentTier{DurationMinutes: 30, DurationHours: 2}.TotalMinutes())
}
