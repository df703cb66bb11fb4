package delivery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/krau/SaveLink-Bot/common/i18n"
	"github.com/krau/SaveLink-Bot/common/i18n/i18nk"
	"github.com/krau/SaveLink-Bot/common/utils/strutil"
	"github.com/krau/SaveLink-Bot/core/quota"
	"github.com/krau/SaveLink-Bot/core/retriever"
	"github.com/krau/SaveLink-Bot/pkg/consts/tglimit"
	"github.com/krau/SaveLink-Bot/pkg/enums/filekind"
	"github.com/krau/SaveLink-Bot/pkg/progress"
)

const (
	maxCaptionLen = 1024
	maxLogURLLen  = 100
)

type Item struct {
	UserID   int64
	URL      string
	File     retriever.SingleFile
	ChatID   int64
	TopicID  int
	ReplyTo  int
	Settings quota.Settings
	Progress func(done, total int64)
}

type Result struct {
	Handle
	Kind  filekind.FileKind
	Shape Shape
	// object key in the mirror bucket, if mirrored
	MirrorKey string
}

type Deliverer struct {
	transport   Transport
	thumbnailer Thumbnailer
	mirror      Mirror
	logChannel  int64
}

type Option func(*Deliverer)

func WithThumbnailer(t Thumbnailer) Option {
	return func(d *Deliverer) { d.thumbnailer = t }
}

func WithMirror(m Mirror) Option {
	return func(d *Deliverer) { d.mirror = m }
}

func WithLogChannel(chatID int64) Option {
	return func(d *Deliverer) { d.logChannel = chatID }
}

func NewDeliverer(transport Transport, opts ...Option) *Deliverer {
	d := &Deliverer{transport: transport}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Deliverer) Transport() Transport {
	return d.transport
}

// PickShape maps a file kind and size to the message shape it is sent as.
func PickShape(kind filekind.FileKind, size int64) Shape {
	switch kind {
	case filekind.Video:
		return ShapeVideo
	case filekind.Audio:
		return ShapeAudio
	case filekind.Image:
		if size < tglimit.MaxPhotoSize {
			return ShapePhoto
		}
	}
	return ShapeDocument
}

// RenderCaption fills {filename}, {ext} and {size} in the user's template.
func RenderCaption(template, name string, size int64) string {
	sizeText := progress.FormatSize(size)
	var caption string
	if strings.TrimSpace(template) == "" {
		caption = i18n.T(i18nk.BotMsgDeliveryCaptionDefault, map[string]any{
			"Name": name,
			"Size": sizeText,
		})
	} else {
		ext := strings.TrimPrefix(filepath.Ext(name), ".")
		caption = strings.NewReplacer(
			"{filename}", name,
			"{ext}", ext,
			"{size}", sizeText,
		).Replace(template)
	}
	return strutil.Truncate(caption, maxCaptionLen)
}

// Deliver sends the file and always removes it afterwards.
func (d *Deliverer) Deliver(ctx context.Context, item Item) (Result, error) {
	logger := log.FromContext(ctx)
	file := item.File
	var generatedThumb string
	defer func() {
		if err := os.Remove(file.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Failed to remove delivered file", "path", file.Path, "err", err)
		}
		if generatedThumb != "" {
			os.Remove(generatedThumb)
		}
	}()

	kind := filekind.Detect(file.Path)
	shape := PickShape(kind, file.Size)
	media := Media{
		ChatID:   item.ChatID,
		TopicID:  item.TopicID,
		ReplyTo:  item.ReplyTo,
		Shape:    shape,
		Path:     file.Path,
		Name:     file.Name,
		MIME:     file.MIME,
		Caption:  RenderCaption(item.Settings.CaptionTemplate, file.Name, file.Size),
		Progress: item.Progress,
		Upload:   &UploadCache{},
	}

	if kind == filekind.Video && strings.EqualFold(filepath.Ext(file.Path), ".mp4") {
		if info, err := readMP4Info(file.Path); err == nil {
			media.Duration, media.Width, media.Height = info.Duration, info.Width, info.Height
		} else {
			logger.Debug("No mp4 metadata", "file", file.Name, "err", err)
		}
	}

	if thumb := item.Settings.ThumbnailPath; thumb != "" && fileExists(thumb) {
		media.Thumb = thumb
	} else if d.thumbnailer != nil && shape != ShapePhoto && (kind == filekind.Video || kind == filekind.Image) {
		dst := file.Path + ".thumb.jpg"
		if err := d.thumbnailer.Thumbnail(ctx, file.Path, dst); err != nil {
			logger.Debug("Thumbnail generation failed", "file", file.Name, "err", err)
			os.Remove(dst)
		} else {
			generatedThumb = dst
			media.Thumb = dst
		}
	}

	handle, err := d.transport.SendMedia(ctx, media)
	if err != nil && media.Shape != ShapeDocument && ctx.Err() == nil {
		logger.Warn("Send failed, retrying as document", "file", file.Name, "shape", media.Shape, "err", err)
		media.Shape = ShapeDocument
		handle, err = d.transport.SendMedia(ctx, media)
	}
	if err != nil {
		return Result{Kind: kind, Shape: media.Shape}, fmt.Errorf("failed to send media: %w", err)
	}

	res := Result{Handle: handle, Kind: kind, Shape: media.Shape}
	if d.mirror != nil {
		key, err := d.mirror.Put(ctx, item.UserID, file.Path, file.Name)
		if err != nil {
			logger.Error("Mirror upload failed", "file", file.Name, "err", err)
		} else {
			res.MirrorKey = key
		}
	}
	d.postLog(ctx, i18n.T(i18nk.BotMsgDeliveryLogDone, map[string]any{
		"UserID": item.UserID,
		"Name":   file.Name,
		"Size":   progress.FormatSize(file.Size),
		"URL":    strutil.Truncate(item.URL, maxLogURLLen),
	}))
	return res, nil
}

// LogFailure posts a failed item to the log channel.
func (d *Deliverer) LogFailure(ctx context.Context, userID int64, url, reason string) {
	d.postLog(ctx, i18n.T(i18nk.BotMsgDeliveryLogFailed, map[string]any{
		"UserID": userID,
		"Reason": reason,
		"URL":    strutil.Truncate(url, maxLogURLLen),
	}))
}

// Log posts any text to the log channel.
func (d *Deliverer) Log(ctx context.Context, text string) {
	d.postLog(ctx, text)
}

func (d *Deliverer) postLog(ctx context.Context, text string) {
	if d.logChannel == 0 {
		return
	}
	if _, err := d.transport.SendText(ctx, d.logChannel, 0, text); err != nil {
		log.FromContext(ctx).Warn("Failed to post to log channel", "err", err)
	}
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}
