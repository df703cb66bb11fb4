package delivery

import (
	"bytes"
	"context"
	"fmt"

	ffmpeg "github.com/krau/ffmpeg-go"
	"github.com/krau/SaveLink-Bot/pkg/enums/filekind"
)

// FFmpegThumbnailer grabs a frame with the ffmpeg binary on PATH.
type FFmpegThumbnailer struct {
	// seconds into a video the frame is taken from
	Offset int
	Width  int
}

func NewFFmpegThumbnailer() *FFmpegThumbnailer {
	return &FFmpegThumbnailer{Offset: 1, Width: 320}
}

func (t *FFmpegThumbnailer) Thumbnail(ctx context.Context, src, dst string) error {
	var stderr bytes.Buffer
	in := ffmpeg.KwArgs{}
	if kind, ok := filekind.FromName(src); ok && kind == filekind.Video {
		in["ss"] = t.Offset
	}
	cmd := ffmpeg.Input(src, in).
		Filter("scale", ffmpeg.Args{fmt.Sprintf("%d:-1", t.Width)}).
		Output(dst, ffmpeg.KwArgs{"vframes": 1, "format": "image2", "vcodec": "mjpeg"}).
		OverWriteOutput().
		WithErrorOutput(&stderr).
		Compile()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case <-ctx.Done():
		cmd.Process.Kill()
		<-done
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("ffmpeg failed: %w: %s", err, stderr.String())
		}
		return nil
	}
}
