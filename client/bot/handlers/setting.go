package handlers

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/charmbracelet/log"
	"github.com/gotd/td/tg"
	"github.com/krau/SaveLink-Bot/common/i18n"
	"github.com/krau/SaveLink-Bot/common/i18n/i18nk"
	"github.com/krau/SaveLink-Bot/core/quota"
	"github.com/krau/SaveLink-Bot/core/session"
)

const settingCallbackPrefix = "setting"

const (
	settingActChat         = "chat"
	settingActCaption      = "caption"
	settingActThumb        = "thumb"
	settingActReset        = "reset"
	settingActConfirmReset = "confirm_reset"
	settingActCancel       = "cancel"
	settingActClose        = "close"
)

func settingButton(key i18nk.Key, action string) tg.KeyboardButtonClass {
	return &tg.KeyboardButtonCallback{
		Text: i18n.T(key),
		Data: fmt.Appendf(nil, "%s %s", settingCallbackPrefix, action),
	}
}

func settingMenuMarkup() *tg.ReplyInlineMarkup {
	return &tg.ReplyInlineMarkup{
		Rows: []tg.KeyboardButtonRow{
			{Buttons: []tg.KeyboardButtonClass{
				settingButton(i18nk.BotMsgSettingBtnChat, settingActChat),
				settingButton(i18nk.BotMsgSettingBtnCaption, settingActCaption),
			}},
			{Buttons: []tg.KeyboardButtonClass{
				settingButton(i18nk.BotMsgSettingBtnThumb, settingActThumb),
				settingButton(i18nk.BotMsgSettingBtnReset, settingActReset),
			}},
			{Buttons: []tg.KeyboardButtonClass{
				settingButton(i18nk.BotMsgSettingBtnClose, settingActClose),
			}},
		},
	}
}

func settingConfirmMarkup() *tg.ReplyInlineMarkup {
	return &tg.ReplyInlineMarkup{
		Rows: []tg.KeyboardButtonRow{
			{Buttons: []tg.KeyboardButtonClass{
				settingButton(i18nk.BotMsgSettingBtnConfirm, settingActConfirmReset),
				settingButton(i18nk.BotMsgSettingBtnCancel, settingActCancel),
			}},
		},
	}
}

func settingMenuText(s quota.Settings) string {
	notSet := i18n.T(i18nk.BotMsgCommonNotSet)
	chat, caption, thumb := notSet, notSet, notSet
	if s.DestChatID != 0 {
		chat = strconv.FormatInt(s.DestChatID, 10)
	}
	if s.CaptionTemplate != "" {
		caption = s.CaptionTemplate
	}
	if s.ThumbnailPath != "" {
		thumb = "✓"
	}
	return i18n.T(i18nk.BotMsgSettingInfoMenu, map[string]any{
		"Chat":    chat,
		"Caption": caption,
		"Thumb":   thumb,
	})
}

func loadSettings(ctx *ext.Context, userID int64) (quota.Settings, error) {
	s, err := deps.Engine.Policy().Store().GetSettings(ctx, userID)
	if err != nil && !errors.Is(err, quota.ErrNotFound) {
		return quota.Settings{}, err
	}
	return s, nil
}

func isPremium(ctx *ext.Context, userID int64) (bool, error) {
	st, err := deps.Engine.Policy().Status(ctx, userID)
	if err != nil {
		return false, err
	}
	return st.Premium(), nil
}

func handleSettingCmd(ctx *ext.Context, update *ext.Update) error {
	userID := update.GetUserChat().GetID()
	premium, err := isPremium(ctx, userID)
	if err != nil {
		return replyInternal(ctx, update, err)
	}
	if !premium {
		return replyText(ctx, update, i18n.T(i18nk.BotMsgCommonErrorPremiumOnly))
	}
	s, err := loadSettings(ctx, userID)
	if err != nil {
		return replyInternal(ctx, update, err)
	}
	ctx.Reply(update, ext.ReplyTextString(settingMenuText(s)), &ext.ReplyOpts{
		Markup: settingMenuMarkup(),
	})
	return dispatcher.EndGroups
}

func answerAlert(ctx *ext.Context, update *ext.Update, text string) error {
	ctx.AnswerCallback(&tg.MessagesSetBotCallbackAnswerRequest{
		QueryID:   update.CallbackQuery.GetQueryID(),
		Alert:     true,
		Message:   text,
		CacheTime: 5,
	})
	return dispatcher.EndGroups
}

func editCallbackMessage(ctx *ext.Context, update *ext.Update, text string, markup tg.ReplyMarkupClass) {
	req := &tg.MessagesEditMessageRequest{
		ID:      update.CallbackQuery.GetMsgID(),
		Message: text,
	}
	if markup != nil {
		req.ReplyMarkup = markup
	}
	if _, err := ctx.EditMessage(update.CallbackQuery.GetUserID(), req); err != nil {
		log.FromContext(ctx).Debug("Failed to edit setting message", "err", err)
	}
}

// parseSettingAction returns the action of a "setting <action>" callback payload.
func parseSettingAction(data []byte) (string, bool) {
	args := strings.Fields(string(data))
	if len(args) != 2 || args[0] != settingCallbackPrefix {
		return "", false
	}
	return args[1], true
}

func handleSettingCallback(ctx *ext.Context, update *ext.Update) error {
	userID := update.CallbackQuery.GetUserID()
	action, ok := parseSettingAction(update.CallbackQuery.Data)
	if !ok {
		return answerAlert(ctx, update, i18n.T(i18nk.BotMsgCommonErrorInternal, map[string]any{
			"Error": "invalid callback data",
		}))
	}
	premium, err := isPremium(ctx, userID)
	if err != nil {
		return answerAlert(ctx, update, i18n.T(i18nk.BotMsgCommonErrorInternal, map[string]any{"Error": err.Error()}))
	}
	if !premium {
		return answerAlert(ctx, update, i18n.T(i18nk.BotMsgCommonErrorPremiumOnly))
	}
	sessions := deps.Engine.Sessions()

	switch action {
	case settingActChat, settingActCaption, settingActThumb:
		prompts := map[string]struct {
			await session.Awaiting
			key   i18nk.Key
		}{
			settingActChat:    {session.AwaitChat, i18nk.BotMsgSettingPromptChat},
			settingActCaption: {session.AwaitCaption, i18nk.BotMsgSettingPromptCaption},
			settingActThumb:   {session.AwaitThumb, i18nk.BotMsgSettingPromptThumb},
		}
		p := prompts[action]
		sessions.Acquire(userID).SetAwaiting(p.await)
		// the prompt keeps the session alive
		sessions.Release(userID)
		editCallbackMessage(ctx, update, i18n.T(p.key), &tg.ReplyInlineMarkup{
			Rows: []tg.KeyboardButtonRow{{Buttons: []tg.KeyboardButtonClass{
				settingButton(i18nk.BotMsgSettingBtnCancel, settingActCancel),
			}}},
		})
	case settingActReset:
		editCallbackMessage(ctx, update, i18n.T(i18nk.BotMsgSettingPromptReset), settingConfirmMarkup())
	case settingActConfirmReset:
		s, err := loadSettings(ctx, userID)
		if err != nil {
			return answerAlert(ctx, update, err.Error())
		}
		if err := deps.Engine.Policy().Store().ResetSettings(ctx, userID); err != nil {
			return answerAlert(ctx, update, err.Error())
		}
		if s.ThumbnailPath != "" {
			if err := os.Remove(s.ThumbnailPath); err != nil && !os.IsNotExist(err) {
				log.FromContext(ctx).Warn("Failed to remove thumbnail", "path", s.ThumbnailPath, "err", err)
			}
		}
		editCallbackMessage(ctx, update, i18n.T(i18nk.BotMsgSettingInfoResetDone), nil)
	case settingActCancel:
		clearAwaiting(userID)
		editCallbackMessage(ctx, update, i18n.T(i18nk.BotMsgSettingInfoCancelled), nil)
	case settingActClose:
		clearAwaiting(userID)
		s, err := loadSettings(ctx, userID)
		if err != nil {
			return answerAlert(ctx, update, err.Error())
		}
		editCallbackMessage(ctx, update, settingMenuText(s), nil)
	default:
		return answerAlert(ctx, update, i18n.T(i18nk.BotMsgCommonErrorInternal, map[string]any{
			"Error": "unknown action " + action,
		}))
	}
	ctx.AnswerCallback(&tg.MessagesSetBotCallbackAnswerRequest{
		QueryID: update.CallbackQuery.GetQueryID(),
	})
	return dispatcher.EndGroups
}

func clearAwaiting(userID int64) {
	sessions := deps.Engine.Sessions()
	if _, ok := sessions.Get(userID); !ok {
		return
	}
	sessions.Acquire(userID).SetAwaiting(session.AwaitNone)
	sessions.Release(userID)
}
