// Package tgtransport sends delivered files through the bot's MTProto session.
package tgtransport

import (
	"context"
	"fmt"
	"time"

	"github.com/celestix/gotgproto/ext"
	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/telegram/message/styling"
	"github.com/gotd/td/telegram/uploader"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/krau/SaveLink-Bot/common/utils/tgutil"
	"github.com/krau/SaveLink-Bot/core/delivery"
	"github.com/krau/SaveLink-Bot/pkg/consts/tglimit"
	"golang.org/x/time/rate"
)

type Transport struct {
	tctx    *ext.Context
	threads int
	limiter *rate.Limiter
}

var _ delivery.Transport = (*Transport)(nil)

func New(tctx *ext.Context, threads int) *Transport {
	if threads <= 0 {
		threads = 4
	}
	return &Transport{
		tctx:    tctx,
		threads: threads,
		limiter: rate.NewLimiter(rate.Every(time.Second), 3),
	}
}

func (t *Transport) peer(chatID int64) (tg.InputPeerClass, error) {
	peer := t.tctx.PeerStorage.GetInputPeerById(tgutil.StripChannelPrefix(chatID))
	if peer == nil {
		return nil, fmt.Errorf("failed to get input peer for chat ID %d", chatID)
	}
	if _, empty := peer.(*tg.InputPeerEmpty); empty {
		return nil, fmt.Errorf("unknown chat %d, the bot has not seen it yet", chatID)
	}
	return peer, nil
}

type progressFunc func(done, total int64)

func (p progressFunc) Chunk(_ context.Context, state uploader.ProgressState) error {
	p(state.Uploaded, state.Total)
	return nil
}

func (t *Transport) SendMedia(ctx context.Context, m delivery.Media) (delivery.Handle, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return delivery.Handle{}, fmt.Errorf("rate limit failed: %w", err)
	}
	peer, err := t.peer(m.ChatID)
	if err != nil {
		return delivery.Handle{}, err
	}
	upler := uploader.NewUploader(t.tctx.Raw).
		WithPartSize(tglimit.MaxUploadPartSize).
		WithThreads(t.threads)
	if m.Progress != nil {
		upler = upler.WithProgress(progressFunc(m.Progress))
	}
	file, ok := m.Upload.Load().(tg.InputFileClass)
	if !ok {
		file, err = upler.FromPath(ctx, m.Path)
		if err != nil {
			return delivery.Handle{}, fmt.Errorf("failed to upload file to telegram: %w", err)
		}
		m.Upload.Store(file)
	}

	caption := styling.Plain(m.Caption)
	var media message.MediaOption
	if m.Shape == delivery.ShapePhoto {
		media = message.UploadedPhoto(file, caption)
	} else {
		docb := message.UploadedDocument(file, caption).
			Filename(m.Name).
			ForceFile(m.Shape == delivery.ShapeDocument)
		if m.MIME != "" {
			docb = docb.MIME(m.MIME)
		}
		if m.Thumb != "" {
			// thumbnail upload failures are not worth failing the file for
			if thumb, err := uploader.NewUploader(t.tctx.Raw).FromPath(ctx, m.Thumb); err == nil {
				docb = docb.Thumb(thumb)
			}
		}
		switch m.Shape {
		case delivery.ShapeVideo:
			vb := docb.Video().SupportsStreaming()
			if m.Duration > 0 {
				vb = vb.Duration(time.Duration(m.Duration) * time.Second)
			}
			if m.Width > 0 && m.Height > 0 {
				vb = vb.Resolution(m.Width, m.Height)
			}
			media = vb
		case delivery.ShapeAudio:
			media = docb.Audio().Title(m.Name)
		default:
			media = docb
		}
	}

	builder := t.tctx.Sender.WithUploader(upler).To(peer)
	var upd tg.UpdatesClass
	if reply := replyTarget(m.ReplyTo, m.TopicID); reply != 0 {
		upd, err = builder.Reply(reply).Media(ctx, media)
	} else {
		upd, err = builder.Media(ctx, media)
	}
	if err != nil {
		return delivery.Handle{}, err
	}
	return delivery.Handle{ChatID: m.ChatID, MsgID: MessageID(upd)}, nil
}

func (t *Transport) SendText(ctx context.Context, chatID int64, replyTo int, text string) (delivery.Handle, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return delivery.Handle{}, fmt.Errorf("rate limit failed: %w", err)
	}
	req := &tg.MessagesSendMessageRequest{Message: text}
	if replyTo != 0 {
		req.ReplyTo = &tg.InputReplyToMessage{ReplyToMsgID: replyTo}
	}
	msg, err := t.tctx.SendMessage(tgutil.StripChannelPrefix(chatID), req)
	if err != nil {
		return delivery.Handle{}, err
	}
	return delivery.Handle{ChatID: chatID, MsgID: msg.ID}, nil
}

func (t *Transport) EditStatus(ctx context.Context, h delivery.Handle, text string) error {
	_, err := t.tctx.EditMessage(tgutil.StripChannelPrefix(h.ChatID), &tg.MessagesEditMessageRequest{
		ID:      h.MsgID,
		Message: text,
	})
	if err != nil && IsNotModified(err) {
		return nil
	}
	return err
}

func (t *Transport) Pin(ctx context.Context, h delivery.Handle) error {
	return t.updatePinned(ctx, h, false)
}

func (t *Transport) Unpin(ctx context.Context, h delivery.Handle) error {
	return t.updatePinned(ctx, h, true)
}

func (t *Transport) updatePinned(ctx context.Context, h delivery.Handle, unpin bool) error {
	peer, err := t.peer(h.ChatID)
	if err != nil {
		return err
	}
	_, err = t.tctx.Raw.MessagesUpdatePinnedMessage(ctx, &tg.MessagesUpdatePinnedMessageRequest{
		Silent: true,
		Unpin:  unpin,
		Peer:   peer,
		ID:     h.MsgID,
	})
	return err
}

func replyTarget(replyTo, topicID int) int {
	if replyTo != 0 {
		return replyTo
	}
	return topicID
}

// MessageID digs the id of the sent message out of an updates response, 0 when absent.
func MessageID(upd tg.UpdatesClass) int {
	switch u := upd.(type) {
	case *tg.UpdateShortSentMessage:
		return u.ID
	case *tg.Updates:
		return messageIDFrom(u.Updates)
	case *tg.UpdatesCombined:
		return messageIDFrom(u.Updates)
	}
	return 0
}

func messageIDFrom(updates []tg.UpdateClass) int {
	for _, update := range updates {
		switch v := update.(type) {
		case *tg.UpdateNewMessage:
			return v.Message.GetID()
		case *tg.UpdateNewChannelMessage:
			return v.Message.GetID()
		case *tg.UpdateMessageID:
			return v.ID
		}
	}
	return 0
}

// IsNotModified reports edits rejected because the text did not change.
func IsNotModified(err error) bool {
	return tgerr.Is(err, "MESSAGE_NOT_MODIFIED")
}
