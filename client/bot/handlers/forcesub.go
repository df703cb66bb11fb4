package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/charmbracelet/log"
	"github.com/duke-git/lancet/v2/validator"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/krau/SaveLink-Bot/common/cache"
	"github.com/krau/SaveLink-Bot/common/i18n"
	"github.com/krau/SaveLink-Bot/common/i18n/i18nk"
	"github.com/krau/SaveLink-Bot/common/utils/tgutil"
	"github.com/krau/SaveLink-Bot/config"
)

const checkSubCallback = "check_sub"

func subCacheKey(userID int64) string {
	return "forcesub:" + strconv.FormatInt(userID, 10)
}

// participantActive reports whether a participant record means the user is a member.
func participantActive(p tg.ChannelParticipantClass) bool {
	switch v := p.(type) {
	case nil, *tg.ChannelParticipantLeft:
		return false
	case *tg.ChannelParticipantBanned:
		return !v.Left && !v.BannedRights.ViewMessages
	}
	return true
}

// forceSubLink is the join url shown next to the prompt, empty when none is known.
func forceSubLink(channel, link string) string {
	if link != "" {
		return link
	}
	name := strings.TrimPrefix(strings.TrimSpace(channel), "@")
	if name == "" || validator.IsIntStr(name) {
		return ""
	}
	return "https://t.me/" + name
}

func forceSubChannel(ctx *ext.Context, ref string) (*tg.InputChannel, error) {
	chatID, err := tgutil.ParseChatID(ctx, ref)
	if err != nil {
		return nil, err
	}
	peer, ok := ctx.PeerStorage.GetInputPeerById(tgutil.StripChannelPrefix(chatID)).(*tg.InputPeerChannel)
	if !ok {
		return nil, fmt.Errorf("%s is not a known channel", ref)
	}
	return &tg.InputChannel{ChannelID: peer.ChannelID, AccessHash: peer.AccessHash}, nil
}

// subscribed reports whether userID is a member of the force-subscribe channel.
// Lookup failures count as subscribed so a misconfigured channel never locks users out.
func subscribed(ctx *ext.Context, userID int64) bool {
	fs := config.C().ForceSub
	if fs.Channel == "" {
		return true
	}
	if ok, hit := cache.Get[bool](deps.Cache, subCacheKey(userID)); hit && ok {
		return true
	}
	logger := log.FromContext(ctx)
	channel, err := forceSubChannel(ctx, fs.Channel)
	if err != nil {
		logger.Warn("Failed to resolve force subscribe channel", "channel", fs.Channel, "err", err)
		return true
	}
	user := ctx.PeerStorage.GetInputPeerById(userID)
	if _, empty := user.(*tg.InputPeerEmpty); user == nil || empty {
		return true
	}
	res, err := ctx.Raw.ChannelsGetParticipant(ctx, &tg.ChannelsGetParticipantRequest{
		Channel:     channel,
		Participant: user,
	})
	if err != nil {
		if tgerr.Is(err, "USER_NOT_PARTICIPANT") {
			return false
		}
		logger.Warn("Failed to check subscription", "user", userID, "err", err)
		return true
	}
	if !participantActive(res.Participant) {
		return false
	}
	if deps.Cache != nil {
		if err := deps.Cache.Set(subCacheKey(userID), true); err != nil {
			logger.Debug("Failed to cache subscription", "err", err)
		}
	}
	return true
}

func forceSubMarkup() *tg.ReplyInlineMarkup {
	var rows []tg.KeyboardButtonRow
	fs := config.C().ForceSub
	if link := forceSubLink(fs.Channel, fs.Link); link != "" {
		rows = append(rows, tg.KeyboardButtonRow{Buttons: []tg.KeyboardButtonClass{
			&tg.KeyboardButtonURL{Text: i18n.T(i18nk.BotMsgForceSubBtnJoin), URL: link},
		}})
	}
	rows = append(rows, tg.KeyboardButtonRow{Buttons: []tg.KeyboardButtonClass{
		&tg.KeyboardButtonCallback{Text: i18n.T(i18nk.BotMsgForceSubBtnCheck), Data: []byte(checkSubCallback)},
	}})
	return &tg.ReplyInlineMarkup{Rows: rows}
}

func replyForceSub(ctx *ext.Context, update *ext.Update) error {
	ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgForceSubInfoPrompt)), &ext.ReplyOpts{
		Markup: forceSubMarkup(),
	})
	return dispatcher.EndGroups
}

// handleCheckSubCallback re-verifies membership after the user pressed the button.
func handleCheckSubCallback(ctx *ext.Context, update *ext.Update) error {
	userID := update.CallbackQuery.GetUserID()
	if deps.Cache != nil {
		deps.Cache.Delete(subCacheKey(userID))
	}
	if !subscribed(ctx, userID) {
		return answerAlert(ctx, update, i18n.T(i18nk.BotMsgForceSubErrorNotYet))
	}
	editCallbackMessage(ctx, update, i18n.T(i18nk.BotMsgForceSubInfoJoined), nil)
	ctx.AnswerCallback(&tg.MessagesSetBotCallbackAnswerRequest{
		QueryID: update.CallbackQuery.GetQueryID(),
	})
	return dispatcher.EndGroups
}
