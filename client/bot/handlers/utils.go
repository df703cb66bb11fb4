package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/charmbracelet/log"
	"github.com/gotd/td/tg"
	"github.com/krau/SaveLink-Bot/common/i18n"
	"github.com/krau/SaveLink-Bot/common/i18n/i18nk"
	"github.com/krau/SaveLink-Bot/common/utils/tgutil"
	"github.com/krau/SaveLink-Bot/core/quota"
	"github.com/krau/SaveLink-Bot/pkg/progress"
)

func replyText(ctx *ext.Context, update *ext.Update, text string) error {
	ctx.Reply(update, ext.ReplyTextString(text), nil)
	return dispatcher.EndGroups
}

func replyInternal(ctx *ext.Context, update *ext.Update, err error) error {
	log.FromContext(ctx).Error("Handler failed", "err", err)
	return replyText(ctx, update, i18n.T(i18nk.BotMsgCommonErrorInternal, map[string]any{
		"Error": err.Error(),
	}))
}

// commandArgs returns the words after the command itself.
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) <= 1 {
		return nil
	}
	return fields[1:]
}

func parseUserID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func tierText(t quota.Tier) string {
	switch t {
	case quota.TierOwner:
		return i18n.T(i18nk.BotMsgCommonTierOwner)
	case quota.TierPremium:
		return i18n.T(i18nk.BotMsgCommonTierPremium)
	}
	return i18n.T(i18nk.BotMsgCommonTierFree)
}

func remainingText(st quota.Status) string {
	if st.Remaining == quota.Unlimited {
		return i18n.T(i18nk.BotMsgCommonUnlimited)
	}
	return strconv.Itoa(st.Remaining)
}

func untilText(st quota.Status) string {
	switch {
	case st.Tier == quota.TierOwner:
		return i18n.T(i18nk.BotMsgCommonUnlimited)
	case st.PremiumUntil != nil:
		return st.PremiumUntil.UTC().Format(time.DateTime) + " UTC"
	}
	return i18n.T(i18nk.BotMsgCommonNotSet)
}

func maxSizeText(st quota.Status) string {
	if st.MaxSize <= 0 {
		return i18n.T(i18nk.BotMsgCommonUnlimited)
	}
	return progress.FormatSize(st.MaxSize)
}

// notify sends text to a user who may never have talked to the bot; failures are only logged.
func notify(ctx *ext.Context, userID int64, text string) {
	if _, err := ctx.SendMessage(userID, &tg.MessagesSendMessageRequest{Message: text}); err != nil {
		log.FromContext(ctx).Debug("Failed to notify user", "user", userID, "err", err)
	}
}

func postLog(ctx context.Context, text string) {
	if deps.Deliverer != nil {
		deps.Deliverer.Log(ctx, text)
	}
}

func peerOf(ctx *ext.Context, chatID int64) tg.InputPeerClass {
	peer := ctx.PeerStorage.GetInputPeerById(tgutil.StripChannelPrefix(chatID))
	if peer == nil {
		return nil
	}
	if _, empty := peer.(*tg.InputPeerEmpty); empty {
		return nil
	}
	return peer
}
