package handlers

import (
	"fmt"
	"runtime"
	"time"

	"discord-warn-bot/bot"
	"discord-warn-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// HandleModStatusCommand reports ledger totals next to host statistics.
func HandleModStatusCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !requireModerator(s, i, b) {
		return
	}
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Error().Err(err).Msg("Failed to defer interaction")
		return
	}

	totals := b.Moderation.Totals()
	cfg := b.GetConfig()

	fields := []*discordgo.MessageEmbedField{
		{Name: "⚠️ 有效警告", Value: fmt.Sprintf("%d", totals.ActiveWarnings), Inline: true},
		{Name: "📝 有效备注", Value: fmt.Sprintf("%d", totals.ActiveNotes), Inline: true},
		{Name: "🧹 已清除记录", Value: fmt.Sprintf("%d", totals.ClearedEntries), Inline: true},
		{Name: "🔇 当前禁言", Value: fmt.Sprintf("%d", totals.ActiveMutes), Inline: true},
		{Name: "👥 记录用户数", Value: fmt.Sprintf("%d", totals.Users), Inline: true},
		{Name: "🌍 记录服务器数", Value: fmt.Sprintf("%d", totals.Guilds), Inline: true},
		{Name: "🗃️ 存储后端", Value: cfg.Storage.Backend, Inline: true},
		{Name: "⏲️ 解禁检查间隔", Value: cfg.UnmuteInterval.String(), Inline: true},
	}
	fields = append(fields, hostFields(s)...)

	embed := &discordgo.MessageEmbed{
		Title:  "管理状态",
		Color:  0x5865F2,
		Fields: fields,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("系统监控・今天%s", time.Now().Format("15:04")),
		},
	}
	utils.SendFollowUpEmbed(s, i.Interaction, embed)
}

// hostFields collects host statistics. Probes that fail are left out.
func hostFields(s *discordgo.Session) []*discordgo.MessageEmbedField {
	var fields []*discordgo.MessageEmbedField
	if hostInfo, err := host.Info(); err == nil {
		fields = append(fields,
			&discordgo.MessageEmbedField{Name: "💻 OS 版本", Value: fmt.Sprintf("%s %s", hostInfo.Platform, hostInfo.PlatformVersion), Inline: true},
			&discordgo.MessageEmbedField{Name: "⏱️ 运行时间", Value: (time.Duration(hostInfo.Uptime) * time.Second).String(), Inline: true},
		)
	}
	if cpuPercent, err := cpu.Percent(0, false); err == nil && len(cpuPercent) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "🔥 CPU 使用率", Value: fmt.Sprintf("%.1f%%", cpuPercent[0]), Inline: true})
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "🧠 系统内存", Value: fmt.Sprintf("%.1f%% (%d MB / %d MB)", vm.UsedPercent, vm.Used/1024/1024, vm.Total/1024/1024), Inline: true})
	}
	fields = append(fields,
		&discordgo.MessageEmbedField{Name: "🐹 Go 版本", Value: runtime.Version(), Inline: true},
		&discordgo.MessageEmbedField{Name: "🚀 Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
		&discordgo.MessageEmbedField{Name: "📡 WebSocket 延迟", Value: s.HeartbeatLatency().String(), Inline: true},
	)
	return fields
}
