package bot

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"discord-warn-bot/moderation"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restError(status, code int) error {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: status},
		Message:  &discordgo.APIErrorMessage{Code: code},
	}
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify("kick", nil))

	cases := []struct {
		err  error
		want error
	}{
		{restError(http.StatusForbidden, discordgo.ErrCodeMissingPermissions), moderation.ErrPermissionDenied},
		{restError(http.StatusBadRequest, discordgo.ErrCodeMissingAccess), moderation.ErrPermissionDenied},
		{restError(http.StatusForbidden, 0), moderation.ErrPermissionDenied},
		{restError(http.StatusNotFound, discordgo.ErrCodeUnknownMember), moderation.ErrMemberNotFound},
		{restError(http.StatusNotFound, 0), moderation.ErrMemberNotFound},
		{restError(http.StatusBadGateway, 0), moderation.ErrTransport},
		{errors.New("connection reset"), moderation.ErrTransport},
	}
	for _, tc := range cases {
		err := classify("ban", tc.err)
		assert.ErrorIs(t, err, tc.want, "%v", tc.err)
		var pe *moderation.PlatformError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "ban", pe.Op)
	}
}

func TestMutedOverwrite(t *testing.T) {
	text := mutedOverwrite(discordgo.ChannelTypeGuildText)
	assert.NotZero(t, text&discordgo.PermissionSendMessages)
	assert.Zero(t, text&discordgo.PermissionVoiceSpeak)
	assert.Equal(t, int64(discordgo.PermissionVoiceSpeak), mutedOverwrite(discordgo.ChannelTypeGuildVoice))
	assert.Zero(t, mutedOverwrite(discordgo.ChannelTypeGuildCategory))
}

func TestToEmbed(t *testing.T) {
	assert.Nil(t, ToEmbed(moderation.AuditMessage{Content: "plain"}))

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	long := make([]rune, 1500)
	for i := range long {
		long[i] = 'x'
	}
	e := ToEmbed(moderation.AuditMessage{
		Title:     "t",
		Color:     moderation.ColorWarning,
		Fields:    []moderation.AuditField{{Name: "理由", Value: string(long)}},
		Footer:    "Case ID: ABCDE",
		Timestamp: at,
	})
	require.NotNil(t, e)
	assert.Equal(t, moderation.ColorWarning, e.Color)
	require.Len(t, e.Fields, 1)
	assert.Len(t, []rune(e.Fields[0].Value), 1024)
	assert.Equal(t, "Case ID: ABCDE", e.Footer.Text)
	assert.Equal(t, "2024-03-01T12:00:00Z", e.Timestamp)
}
