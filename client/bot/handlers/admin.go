package handlers

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/charmbracelet/log"
	"github.com/gotd/td/tg"
	"github.com/krau/SaveLink-Bot/common/i18n"
	"github.com/krau/SaveLink-Bot/common/i18n/i18nk"
)

var errNoPeer = errors.New("peer not found in storage")

const (
	broadcastProgressEvery = 50
	broadcastInterval      = 50 * time.Millisecond
)

func handleBanCmd(ctx *ext.Context, update *ext.Update) error {
	return setBanned(ctx, update, true)
}

func handleUnbanCmd(ctx *ext.Context, update *ext.Update) error {
	return setBanned(ctx, update, false)
}

func setBanned(ctx *ext.Context, update *ext.Update, banned bool) error {
	usage, info, logKey := i18nk.BotMsgAdminUsageBan, i18nk.BotMsgAdminInfoBanned, i18nk.BotMsgAdminLogBanned
	if !banned {
		usage, info, logKey = i18nk.BotMsgAdminUsageUnban, i18nk.BotMsgAdminInfoUnbanned, i18nk.BotMsgAdminLogUnbanned
	}
	args := commandArgs(update.EffectiveMessage.Text)
	if len(args) < 1 {
		return replyText(ctx, update, i18n.T(usage))
	}
	target, ok := parseUserID(args[0])
	if !ok {
		return replyText(ctx, update, i18n.T(i18nk.BotMsgCommonErrorInvalidUser, map[string]any{"Input": args[0]}))
	}
	if err := deps.Directory.SetBanned(ctx, target, banned); err != nil {
		return replyInternal(ctx, update, err)
	}
	if banned {
		if dropped, ok := deps.Engine.Cancel(target); ok {
			log.FromContext(ctx).Info("Cancelled queue of banned user", "user", target, "dropped", dropped)
		}
	}
	postLog(ctx, i18n.T(logKey, map[string]any{
		"UserID": target,
		"By":     update.GetUserChat().GetID(),
	}))
	return replyText(ctx, update, i18n.T(info, map[string]any{"UserID": target}))
}

// handleBroadcastCmd forwards the replied message to every known user without the author header.
func handleBroadcastCmd(ctx *ext.Context, update *ext.Update) error {
	msg := update.EffectiveMessage
	header, ok := msg.ReplyTo.(*tg.MessageReplyHeader)
	if !ok || header.ReplyToMsgID == 0 {
		return replyText(ctx, update, i18n.T(i18nk.BotMsgAdminUsageBroadcast))
	}
	users, err := deps.Directory.ListUserIDs(ctx)
	if err != nil {
		return replyInternal(ctx, update, err)
	}
	if len(users) == 0 {
		return replyText(ctx, update, i18n.T(i18nk.BotMsgAdminErrorNoUsers))
	}
	chatID := update.EffectiveChat().GetID()
	fromPeer := peerOf(ctx, chatID)
	if fromPeer == nil {
		return replyInternal(ctx, update, errNoPeer)
	}
	logger := log.FromContext(ctx)
	status, err := ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgAdminInfoBroadcastStarted, map[string]any{
		"Total": len(users),
	})), nil)
	if err != nil {
		logger.Warn("Failed to send broadcast status", "err", err)
	}
	editStatus := func(text string) {
		if status == nil {
			return
		}
		if _, err := ctx.EditMessage(chatID, &tg.MessagesEditMessageRequest{ID: status.ID, Message: text}); err != nil {
			logger.Debug("Failed to edit broadcast status", "err", err)
		}
	}

	started := time.Now()
	success, failed := 0, 0
	for i, uid := range users {
		if ctx.Err() != nil {
			break
		}
		if err := forwardTo(ctx, fromPeer, header.ReplyToMsgID, uid); err != nil {
			logger.Debug("Broadcast failed", "user", uid, "err", err)
			failed++
		} else {
			success++
		}
		if done := i + 1; done%broadcastProgressEvery == 0 && done < len(users) {
			editStatus(i18n.T(i18nk.BotMsgAdminInfoBroadcastProgress, map[string]any{
				"Done":    done,
				"Total":   len(users),
				"Success": success,
				"Failed":  failed,
			}))
		}
		time.Sleep(broadcastInterval)
	}
	editStatus(i18n.T(i18nk.BotMsgAdminInfoBroadcastDone, map[string]any{
		"Total":   len(users),
		"Success": success,
		"Failed":  failed,
		"Elapsed": time.Since(started).Round(time.Second).String(),
	}))
	postLog(ctx, i18n.T(i18nk.BotMsgAdminLogBroadcast, map[string]any{
		"By":      update.GetUserChat().GetID(),
		"Total":   len(users),
		"Success": success,
		"Failed":  failed,
	}))
	return dispatcher.EndGroups
}

func forwardTo(ctx *ext.Context, from tg.InputPeerClass, msgID int, userID int64) error {
	to := peerOf(ctx, userID)
	if to == nil {
		return errNoPeer
	}
	_, err := ctx.Raw.MessagesForwardMessages(ctx, &tg.MessagesForwardMessagesRequest{
		FromPeer:   from,
		ID:         []int{msgID},
		RandomID:   []int64{rand.Int64()},
		ToPeer:     to,
		DropAuthor: true,
	})
	return err
}

func handleStatsCmd(ctx *ext.Context, update *ext.Update) error {
	users, err := deps.Directory.CountUsers(ctx)
	if err != nil {
		return replyInternal(ctx, update, err)
	}
	return replyText(ctx, update, i18n.T(i18nk.BotMsgAdminInfoStats, map[string]any{
		"Users":    users,
		"Sessions": deps.Engine.Sessions().Len(),
		"Uptime":   time.Since(deps.Started).Round(time.Second).String(),
	}))
}
