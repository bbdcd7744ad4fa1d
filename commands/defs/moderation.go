package defs

import "github.com/bwmarrin/discordgo"

var adminOnly = int64(discordgo.PermissionModerateMembers)

var Warn = &discordgo.ApplicationCommand{
	Name:                     "warn",
	Description:              "Warn a member",
	DefaultMemberPermissions: &adminOnly,
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "警告",
		discordgo.ChineseTW: "警告",
	},
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "警告一位成员（将弹出理由输入框）",
		discordgo.ChineseTW: "警告一位成員（將彈出理由輸入框）",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "要警告的用户",
			Required:    true,
		},
	},
}

var WarnUserContext = &discordgo.ApplicationCommand{
	Name:                     "警告用户",
	Type:                     discordgo.UserApplicationCommand,
	DefaultMemberPermissions: &adminOnly,
}

var Note = &discordgo.ApplicationCommand{
	Name:                     "note",
	Description:              "Add a private moderator note to a member",
	DefaultMemberPermissions: &adminOnly,
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "备注",
		discordgo.ChineseTW: "備註",
	},
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "为成员添加一条仅管理员可见的备注",
		discordgo.ChineseTW: "為成員添加一條僅管理員可見的備註",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "要添加备注的用户",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "text",
			Description: "备注内容",
			Required:    true,
			MaxLength:   512,
		},
	},
}

var Clear = &discordgo.ApplicationCommand{
	Name:                     "clear",
	Description:              "Clear a warning or note by case ID",
	DefaultMemberPermissions: &adminOnly,
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "清除记录",
		discordgo.ChineseTW: "清除記錄",
	},
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "按 Case ID 清除一条警告或备注",
		discordgo.ChineseTW: "按 Case ID 清除一條警告或備註",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "case_id",
			Description: "要清除的 Case ID",
			Required:    true,
			MaxLength:   16,
		},
	},
}

var UserHistory = &discordgo.ApplicationCommand{
	Name:                     "userhistory",
	Description:              "Show a member's active warnings and notes",
	DefaultMemberPermissions: &adminOnly,
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "用户记录",
		discordgo.ChineseTW: "用戶記錄",
	},
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "查看成员当前有效的警告和备注",
		discordgo.ChineseTW: "查看成員當前有效的警告和備註",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "要查看的用户",
			Required:    true,
		},
	},
}

var ModStatus = &discordgo.ApplicationCommand{
	Name:                     "modstatus",
	Description:              "Show moderation ledger and host status",
	DefaultMemberPermissions: &adminOnly,
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "管理状态",
		discordgo.ChineseTW: "管理狀態",
	},
}
