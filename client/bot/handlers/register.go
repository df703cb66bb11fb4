package handlers

import (
	"time"

	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/dispatcher/handlers"
	"github.com/celestix/gotgproto/dispatcher/handlers/filters"
	"github.com/celestix/gotgproto/ext"
	"github.com/krau/SaveLink-Bot/common/cache"
	"github.com/krau/SaveLink-Bot/common/i18n/i18nk"
	"github.com/krau/SaveLink-Bot/core"
	"github.com/krau/SaveLink-Bot/core/delivery"
	"github.com/krau/SaveLink-Bot/core/quota"
)

// Deps are the services the handlers talk to.
type Deps struct {
	Engine    *core.Engine
	Directory quota.Directory
	Deliverer *delivery.Deliverer
	// custom thumbnails are saved here
	ThumbDir string
	Started  time.Time
	// remembers recent force subscribe checks, may be nil
	Cache *cache.Cache
}

var deps Deps

type DescCommandHandler struct {
	Cmd     string
	Desc    i18nk.Key
	handler func(ctx *ext.Context, u *ext.Update) error
}

var CommandHandlers = []DescCommandHandler{
	{"start", i18nk.BotMsgCmdStart, handleStartCmd},
	{"help", i18nk.BotMsgCmdHelp, handleHelpCmd},
	{"plan", i18nk.BotMsgCmdPlan, handlePlanCmd},
	{"cancel", i18nk.BotMsgCmdCancel, handleCancelCmd},
	{"setting", i18nk.BotMsgCmdSetting, handleSettingCmd},
	{"checkpremium", i18nk.BotMsgCmdCheckPremium, handleCheckPremiumCmd},
	{"premium", i18nk.BotMsgCmdPremium, ownerOnly(handlePremiumCmd)},
	{"removepremium", i18nk.BotMsgCmdRemovePremium, ownerOnly(handleRemovePremiumCmd)},
	{"ban", i18nk.BotMsgCmdBan, ownerOnly(handleBanCmd)},
	{"unban", i18nk.BotMsgCmdUnban, ownerOnly(handleUnbanCmd)},
	{"broadcast", i18nk.BotMsgCmdBroadcast, ownerOnly(handleBroadcastCmd)},
	{"stats", i18nk.BotMsgCmdStats, ownerOnly(handleStatsCmd)},
}

func Register(disp dispatcher.Dispatcher, d Deps) {
	deps = d
	if deps.Started.IsZero() {
		deps.Started = time.Now()
	}
	// groups only take .txt link files addressed to the bot
	disp.AddHandler(handlers.NewMessage(groupDocument, handleGroupDocument))
	disp.AddHandler(handlers.NewMessage(filters.Message.ChatType(filters.ChatTypeChannel), func(ctx *ext.Context, u *ext.Update) error {
		return dispatcher.EndGroups
	}))
	disp.AddHandler(handlers.NewMessage(filters.Message.ChatType(filters.ChatTypeChat), func(ctx *ext.Context, u *ext.Update) error {
		return dispatcher.EndGroups
	}))
	disp.AddHandler(handlers.NewCallbackQuery(filters.CallbackQuery.Prefix(checkSubCallback), handleCheckSubCallback))
	disp.AddHandler(handlers.NewMessage(filters.Message.All, checkUser))
	for _, info := range CommandHandlers {
		disp.AddHandler(handlers.NewCommand(info.Cmd, info.handler))
	}
	disp.AddHandler(handlers.NewCallbackQuery(filters.CallbackQuery.Prefix(settingCallbackPrefix), handleSettingCallback))
	// prompted answers go before link submission
	disp.AddHandler(handlers.NewMessage(filters.Message.All, handleAwaitingInput))
	disp.AddHandler(handlers.NewMessage(filters.Message.Media, handleMediaMessage))
	disp.AddHandler(handlers.NewMessage(filters.Message.Text, handleTextMessage))
}
