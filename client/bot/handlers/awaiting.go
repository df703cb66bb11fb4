package handlers

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/tg"
	"github.com/krau/SaveLink-Bot/common/i18n"
	"github.com/krau/SaveLink-Bot/common/i18n/i18nk"
	"github.com/krau/SaveLink-Bot/common/utils/tgutil"
	"github.com/krau/SaveLink-Bot/core/session"
)

// handleAwaitingInput consumes the answer to a settings prompt; other messages pass through.
func handleAwaitingInput(ctx *ext.Context, update *ext.Update) error {
	userID := update.GetUserChat().GetID()
	sess, ok := deps.Engine.Sessions().Get(userID)
	if !ok {
		return dispatcher.ContinueGroups
	}
	awaiting := sess.Awaiting()
	if awaiting == session.AwaitNone {
		return dispatcher.ContinueGroups
	}
	msg := update.EffectiveMessage
	if strings.HasPrefix(msg.Text, "/") {
		// a command abandons the prompt
		clearAwaiting(userID)
		return dispatcher.ContinueGroups
	}

	store := deps.Engine.Policy().Store()
	switch awaiting {
	case session.AwaitChat:
		input := strings.TrimSpace(msg.Text)
		chatID, err := tgutil.ParseChatID(ctx, input)
		if err != nil || chatID == 0 {
			return replyText(ctx, update, i18n.T(i18nk.BotMsgSettingErrorInvalidChat, map[string]any{"Input": input}))
		}
		if err := store.SetDestination(ctx, userID, chatID); err != nil {
			return replyInternal(ctx, update, err)
		}
		clearAwaiting(userID)
		return replyText(ctx, update, i18n.T(i18nk.BotMsgSettingInfoChatSaved, map[string]any{"ChatID": chatID}))
	case session.AwaitCaption:
		tmpl := strings.TrimSpace(msg.Text)
		if tmpl == "" {
			return replyText(ctx, update, i18n.T(i18nk.BotMsgSettingPromptCaption))
		}
		if err := store.SetCaption(ctx, userID, tmpl); err != nil {
			return replyInternal(ctx, update, err)
		}
		clearAwaiting(userID)
		return replyText(ctx, update, i18n.T(i18nk.BotMsgSettingInfoCaptionSaved))
	case session.AwaitThumb:
		if _, ok := msg.Media.(*tg.MessageMediaPhoto); !ok {
			return replyText(ctx, update, i18n.T(i18nk.BotMsgSettingErrorNeedPhoto))
		}
		path, err := saveThumbnail(ctx, userID, msg.Media)
		if err != nil {
			return replyInternal(ctx, update, err)
		}
		if err := store.SetThumbnail(ctx, userID, path); err != nil {
			return replyInternal(ctx, update, err)
		}
		clearAwaiting(userID)
		return replyText(ctx, update, i18n.T(i18nk.BotMsgSettingInfoThumbSaved))
	}
	return dispatcher.ContinueGroups
}

func saveThumbnail(ctx *ext.Context, userID int64, media tg.MessageMediaClass) (string, error) {
	loc, _, err := tgutil.GetMediaLocation(media)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(deps.ThumbDir, os.ModePerm); err != nil {
		return "", err
	}
	path := filepath.Join(deps.ThumbDir, strconv.FormatInt(userID, 10)+".jpg")
	if _, err := downloader.NewDownloader().Download(ctx.Raw, loc).ToPath(ctx, path); err != nil {
		return "", err
	}
	return path, nil
}
