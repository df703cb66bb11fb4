package handlers

import (
	"strings"

	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/charmbracelet/log"
	"github.com/krau/SaveLink-Bot/common/i18n"
	"github.com/krau/SaveLink-Bot/common/i18n/i18nk"
)

// checkUser records the sender, stops banned users and asks non-members of the
// force subscribe channel to join first.
func checkUser(ctx *ext.Context, update *ext.Update) error {
	user := update.EffectiveUser()
	if user == nil {
		return dispatcher.EndGroups
	}
	logger := log.FromContext(ctx)
	userID := user.GetID()
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if err := deps.Directory.TouchUser(ctx, userID, name); err != nil {
		logger.Warn("Failed to record user", "user", userID, "err", err)
	}
	if isOwner(userID) {
		return dispatcher.ContinueGroups
	}
	banned, err := deps.Directory.IsBanned(ctx, userID)
	if err != nil {
		logger.Error("Failed to check ban", "user", userID, "err", err)
		return dispatcher.ContinueGroups
	}
	if banned {
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCommonErrorBanned)), nil)
		return dispatcher.EndGroups
	}
	if !subscribed(ctx, userID) {
		return replyForceSub(ctx, update)
	}
	return dispatcher.ContinueGroups
}

func ownerOnly(next func(*ext.Context, *ext.Update) error) func(*ext.Context, *ext.Update) error {
	return func(ctx *ext.Context, update *ext.Update) error {
		if !isOwner(update.GetUserChat().GetID()) {
			ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCommonErrorNoPermission)), nil)
			return dispatcher.EndGroups
		}
		return next(ctx, update)
	}
}

func isOwner(userID int64) bool {
	return deps.Engine.Policy().IsOwner(userID)
}
