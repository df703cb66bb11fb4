package handlers

import (
	"strings"

	"github.com/celestix/gotgproto/ext"
	"github.com/krau/SaveLink-Bot/common/i18n"
	"github.com/krau/SaveLink-Bot/common/i18n/i18nk"
)

func handleStartCmd(ctx *ext.Context, update *ext.Update) error {
	user := update.EffectiveUser()
	st, err := deps.Engine.Policy().Status(ctx, user.GetID())
	if err != nil {
		return replyInternal(ctx, update, err)
	}
	return replyText(ctx, update, i18n.T(i18nk.BotMsgStartInfoWelcome, map[string]any{
		"Name":      strings.TrimSpace(user.FirstName + " " + user.LastName),
		"Tier":      tierText(st.Tier),
		"Remaining": remainingText(st),
	}))
}

func handleHelpCmd(ctx *ext.Context, update *ext.Update) error {
	return replyText(ctx, update, i18n.T(i18nk.BotMsgHelpInfoText))
}

func handlePlanCmd(ctx *ext.Context, update *ext.Update) error {
	st, err := deps.Engine.Policy().Status(ctx, update.GetUserChat().GetID())
	if err != nil {
		return replyInternal(ctx, update, err)
	}
	return replyText(ctx, update, i18n.T(i18nk.BotMsgPlanInfoStatus, map[string]any{
		"Tier":      tierText(st.Tier),
		"Used":      st.Used,
		"Remaining": remainingText(st),
		"MaxSize":   maxSizeText(st),
		"Until":     untilText(st),
	}))
}

func handleCancelCmd(ctx *ext.Context, update *ext.Update) error {
	dropped, ok := deps.Engine.Cancel(update.GetUserChat().GetID())
	if !ok {
		return replyText(ctx, update, i18n.T(i18nk.BotMsgCancelInfoNothing))
	}
	return replyText(ctx, update, i18n.T(i18nk.BotMsgCancelInfoCancelled, map[string]any{
		"Count": dropped,
	}))
}
