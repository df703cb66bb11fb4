package delivery

import "context"

// Shape is how a file is presented in the chat.
type Shape int

const (
	ShapeDocument Shape = iota
	ShapeVideo
	ShapeAudio
	ShapePhoto
)

func (s Shape) String() string {
	switch s {
	case ShapeVideo:
		return "video"
	case ShapeAudio:
		return "audio"
	case ShapePhoto:
		return "photo"
	}
	return "document"
}

type Media struct {
	ChatID  int64
	TopicID int
	ReplyTo int
	Shape   Shape
	Path    string
	Name    string
	MIME    string
	Caption string
	// optional jpeg thumbnail path
	Thumb    string
	Duration int
	Width    int
	Height   int
	Progress func(done, total int64)
	// Upload carries bytes already sent by an earlier attempt of the same file
	Upload   *UploadCache
}

// UploadCache holds a transport specific reference to an uploaded file so a
// retry with another shape does not send the bytes again.
type UploadCache struct {
	ref any
}

func (c *UploadCache) Load() any {
	if c == nil {
		return nil
	}
	return c.ref
}

func (c *UploadCache) Store(ref any) {
	if c != nil {
		c.ref = ref
	}
}

// Handle addresses a sent message.
type Handle struct {
	ChatID int64
	MsgID  int
}

type Transport interface {
	SendMedia(ctx context.Context, m Media) (Handle, error)
	SendText(ctx context.Context, chatID int64, replyTo int, text string) (Handle, error)
	EditStatus(ctx context.Context, h Handle, text string) error
	Pin(ctx context.Context, h Handle) error
	Unpin(ctx context.Context, h Handle) error
}

type Thumbnailer interface {
	// Thumbnail writes a jpeg preview of src to dst.
	Thumbnail(ctx context.Context, src, dst string) error
}

type Mirror interface {
	Put(ctx context.Context, userID int64, localPath, name string) (string, error)
}
