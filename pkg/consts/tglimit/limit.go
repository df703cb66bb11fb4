package tglimit

import (
	"github.com/gotd/td/telegram/uploader"
)

const (
	MaxPartSize       = 1024 * 1024
	MaxUploadPartSize = uploader.MaximumPartSize
	// larger images are sent as documents
	MaxPhotoSize = 10 * 1024 * 1024
	// .txt batches of links
	MaxLinkFileSize = 1024 * 1024
)
