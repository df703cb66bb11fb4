package handlers

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"

	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/tg"
	"github.com/krau/SaveLink-Bot/common/i18n"
	"github.com/krau/SaveLink-Bot/common/i18n/i18nk"
	"github.com/krau/SaveLink-Bot/common/utils/tgutil"
	"github.com/krau/SaveLink-Bot/core"
	"github.com/krau/SaveLink-Bot/pkg/consts/tglimit"
	"github.com/krau/SaveLink-Bot/pkg/linkkind"
)

func handleTextMessage(ctx *ext.Context, update *ext.Update) error {
	msg := update.EffectiveMessage
	if strings.HasPrefix(msg.Text, "/") {
		return dispatcher.EndGroups
	}
	links := mergeLinks(linkkind.ExtractLinks(msg.Text), tgutil.EntityURLs(msg.Message))
	return submitLinks(ctx, update, links)
}

// handleMediaMessage accepts a .txt document with one link per line.
func handleMediaMessage(ctx *ext.Context, update *ext.Update) error {
	msg := update.EffectiveMessage
	media, ok := msg.Media.(*tg.MessageMediaDocument)
	if !ok {
		return dispatcher.EndGroups
	}
	name, err := tgutil.GetMediaFileName(media)
	if err != nil || !strings.EqualFold(filepath.Ext(name), ".txt") {
		return replyText(ctx, update, i18n.T(i18nk.BotMsgSubmitErrorNotTxt))
	}
	loc, size, err := tgutil.GetMediaLocation(media)
	if err != nil {
		return replyText(ctx, update, i18n.T(i18nk.BotMsgSubmitErrorReadFileFailed, map[string]any{"Error": err.Error()}))
	}
	if size > tglimit.MaxLinkFileSize {
		return replyText(ctx, update, i18n.T(i18nk.BotMsgSubmitErrorFileTooLarge))
	}
	var buf bytes.Buffer
	if _, err := downloader.NewDownloader().Download(ctx.Raw, loc).Stream(ctx, &buf); err != nil {
		return replyText(ctx, update, i18n.T(i18nk.BotMsgSubmitErrorReadFileFailed, map[string]any{"Error": err.Error()}))
	}
	links := linkkind.ExtractLinks(buf.String())
	if msg.Message.Message != "" {
		links = mergeLinks(links, linkkind.ExtractLinks(msg.Message.Message))
	}
	return submitLinks(ctx, update, links)
}

// mergeLinks appends extra links that are not already present, keeping order.
func mergeLinks(links []string, extra []string) []string {
	seen := make(map[string]struct{}, len(links)+len(extra))
	out := make([]string, 0, len(links)+len(extra))
	for _, l := range append(links, extra...) {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

func submitLinks(ctx *ext.Context, update *ext.Update, links []string) error {
	msg := update.EffectiveMessage
	origin := core.Origin{
		UserID:  update.GetUserChat().GetID(),
		ChatID:  update.EffectiveChat().GetID(),
		TopicID: tgutil.TopicID(msg.Message),
		MsgID:   msg.ID,
	}
	res, err := deps.Engine.Submit(ctx, origin, links)
	switch {
	case errors.Is(err, core.ErrNoLinks):
		return replyText(ctx, update, i18n.T(i18nk.BotMsgSubmitErrorNoLinks))
	case errors.Is(err, core.ErrNoSupported):
		return replyText(ctx, update, i18n.T(i18nk.BotMsgSubmitErrorNoSupported, map[string]any{"Total": res.Total}))
	case errors.Is(err, core.ErrQuotaExceeded):
		return replyText(ctx, update, i18n.T(i18nk.BotMsgSubmitErrorQuotaExceeded, map[string]any{
			"Count":     res.Supported,
			"Remaining": res.Remaining(),
		}))
	case err != nil && res.Added == 0:
		return replyInternal(ctx, update, err)
	}
	return replyText(ctx, update, i18n.T(i18nk.BotMsgSubmitInfoTasksAdded, map[string]any{
		"Total":       res.Total,
		"Supported":   res.Supported,
		"Unsupported": res.Unsupported,
		"Added":       res.Added,
		"Pending":     res.Pending,
	}))
}
