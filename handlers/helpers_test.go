package handlers

import (
	"fmt"
	"strings"
	"testing"

	"discord-warn-bot/moderation"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWarnModalID(t *testing.T) {
	id, ok := parseWarnModalID(warnModalID("42"))
	require.True(t, ok)
	assert.Equal(t, "42", id)

	_, ok = parseWarnModalID("warn_modal:")
	assert.False(t, ok)
	_, ok = parseWarnModalID("other:42")
	assert.False(t, ok)
}

func TestCommandTarget(t *testing.T) {
	resolved := &discordgo.ApplicationCommandInteractionDataResolved{
		Users: map[string]*discordgo.User{"42": {ID: "42", Username: "target", Bot: true}},
	}

	ctxMenu := discordgo.ApplicationCommandInteractionData{TargetID: "42", Resolved: resolved}
	u := commandTarget(ctxMenu)
	require.NotNil(t, u)
	assert.Equal(t, "target", u.Username)
	assert.True(t, u.Bot)

	slash := discordgo.ApplicationCommandInteractionData{
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "user", Type: discordgo.ApplicationCommandOptionUser, Value: "7"},
		},
	}
	u = commandTarget(slash)
	require.NotNil(t, u)
	assert.Equal(t, "7", u.ID)

	assert.Nil(t, commandTarget(discordgo.ApplicationCommandInteractionData{}))
}

func TestModalValue(t *testing.T) {
	data := discordgo.ModalSubmitInteractionData{
		CustomID: warnModalID("42"),
		Components: []discordgo.MessageComponent{
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: reasonInputID, Value: "3"},
			}},
		},
	}
	assert.Equal(t, "3", modalValue(data, reasonInputID))
	assert.Empty(t, modalValue(data, "missing"))
}

func TestErrorText(t *testing.T) {
	assert.Contains(t, errorText(moderation.ErrReasonTooLong), "512")
	assert.Contains(t, errorText(fmt.Errorf("%w: boom", moderation.ErrPublishFailure)), "已撤销")
	assert.Contains(t, errorText(moderation.ErrCaseNotFound), "Case ID")
	assert.True(t, strings.HasPrefix(errorText(fmt.Errorf("disk full")), "操作失败"))
}

func TestJoinMessagesCaps(t *testing.T) {
	assert.Equal(t, "a\nb", joinMessages([]string{"a", "b"}))
	long := joinMessages([]string{strings.Repeat("警", 2500)})
	assert.Len(t, []rune(long), 2000)
}

func TestActorFromUser(t *testing.T) {
	assert.Equal(t, moderation.Actor{ID: "1", Name: "mod"}, actorFromUser(&discordgo.User{ID: "1", Username: "mod"}))
	assert.Zero(t, actorFromUser(nil))
}
