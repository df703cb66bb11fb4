package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/celestix/gotgproto/ext"
	"github.com/krau/SaveLink-Bot/common/i18n"
	"github.com/krau/SaveLink-Bot/common/i18n/i18nk"
	"github.com/krau/SaveLink-Bot/core/quota"
)

func handlePremiumCmd(ctx *ext.Context, update *ext.Update) error {
	args := commandArgs(update.EffectiveMessage.Text)
	if len(args) < 2 {
		return replyText(ctx, update, i18n.T(i18nk.BotMsgPremiumUsageGrant))
	}
	target, ok := parseUserID(args[0])
	if !ok {
		return replyText(ctx, update, i18n.T(i18nk.BotMsgCommonErrorInvalidUser, map[string]any{"Input": args[0]}))
	}
	days, err := strconv.Atoi(args[1])
	if err != nil || days <= 0 {
		return replyText(ctx, update, i18n.T(i18nk.BotMsgPremiumErrorInvalidDays, map[string]any{"Input": args[1]}))
	}
	until, err := deps.Engine.Policy().Grant(ctx, target, days)
	if err != nil {
		if errors.Is(err, quota.ErrInvalidDays) {
			return replyText(ctx, update, i18n.T(i18nk.BotMsgPremiumErrorInvalidDays, map[string]any{"Input": args[1]}))
		}
		return replyInternal(ctx, update, err)
	}
	untilStr := until.UTC().Format(time.DateTime) + " UTC"
	notify(ctx, target, i18n.T(i18nk.BotMsgPremiumInfoGrantedNotify, map[string]any{
		"Days":  days,
		"Until": untilStr,
	}))
	postLog(ctx, i18n.T(i18nk.BotMsgPremiumLogGranted, map[string]any{
		"UserID": target,
		"Days":   days,
		"Until":  untilStr,
		"By":     update.GetUserChat().GetID(),
	}))
	return replyText(ctx, update, i18n.T(i18nk.BotMsgPremiumInfoGranted, map[string]any{
		"UserID": target,
		"Days":   days,
		"Until":  untilStr,
	}))
}

func handleRemovePremiumCmd(ctx *ext.Context, update *ext.Update) error {
	args := commandArgs(update.EffectiveMessage.Text)
	if len(args) < 1 {
		return replyText(ctx, update, i18n.T(i18nk.BotMsgPremiumUsageRevoke))
	}
	target, ok := parseUserID(args[0])
	if !ok {
		return replyText(ctx, update, i18n.T(i18nk.BotMsgCommonErrorInvalidUser, map[string]any{"Input": args[0]}))
	}
	if err := deps.Engine.Policy().Revoke(ctx, target); err != nil {
		return replyInternal(ctx, update, err)
	}
	notify(ctx, target, i18n.T(i18nk.BotMsgPremiumInfoRevokedNotify))
	postLog(ctx, i18n.T(i18nk.BotMsgPremiumLogRevoked, map[string]any{
		"UserID": target,
		"By":     update.GetUserChat().GetID(),
	}))
	return replyText(ctx, update, i18n.T(i18nk.BotMsgPremiumInfoRevoked, map[string]any{"UserID": target}))
}

// handleCheckPremiumCmd reports the caller's tier; owners may pass any user id.
func handleCheckPremiumCmd(ctx *ext.Context, update *ext.Update) error {
	caller := update.GetUserChat().GetID()
	target := caller
	if args := commandArgs(update.EffectiveMessage.Text); len(args) > 0 && isOwner(caller) {
		id, ok := parseUserID(args[0])
		if !ok {
			return replyText(ctx, update, i18n.T(i18nk.BotMsgCommonErrorInvalidUser, map[string]any{"Input": args[0]}))
		}
		target = id
	}
	st, err := deps.Engine.Policy().Status(ctx, target)
	if err != nil {
		return replyInternal(ctx, update, err)
	}
	if !st.Premium() {
		return replyText(ctx, update, i18n.T(i18nk.BotMsgPremiumInfoInactive, map[string]any{"UserID": target}))
	}
	return replyText(ctx, update, i18n.T(i18nk.BotMsgPremiumInfoActive, map[string]any{
		"UserID": target,
		"Until":  untilText(st),
	}))
}
