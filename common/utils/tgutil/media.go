package tgutil

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gotd/td/tg"
)

func GetMediaFileName(media tg.MessageMediaClass) (string, error) {
	switch v := media.(type) {
	case *tg.MessageMediaPhoto:
		f, ok := v.Photo.AsNotEmpty()
		if !ok {
			return "", fmt.Errorf("unknown type media: %T", media)
		}
		return fmt.Sprintf("%d.jpg", f.ID), nil
	case *tg.MessageMediaDocument:
		f, ok := v.Document.AsNotEmpty()
		if !ok {
			return "", fmt.Errorf("unknown type media: %T", media)
		}
		fileName := ""
		for _, attribute := range f.Attributes {
			if name, ok := attribute.(*tg.DocumentAttributeFilename); ok {
				fileName = name.GetFileName()
				break
			}
		}
		if fileName == "" {
			mmt := mimetype.Lookup(f.GetMimeType())
			if mmt != nil {
				fileName = fmt.Sprintf("%d%s", f.GetID(), mmt.Extension())
			}
		}
		return fileName, nil
	default:
		return "", fmt.Errorf("unsupported type media: %T", media)
	}
}

// GetMediaLocation returns the download location and size of a document or the largest photo size.
func GetMediaLocation(media tg.MessageMediaClass) (tg.InputFileLocationClass, int64, error) {
	switch v := media.(type) {
	case *tg.MessageMediaDocument:
		doc, ok := v.Document.AsNotEmpty()
		if !ok {
			return nil, 0, fmt.Errorf("empty document")
		}
		return doc.AsInputDocumentFileLocation(), doc.Size, nil
	case *tg.MessageMediaPhoto:
		photo, ok := v.Photo.AsNotEmpty()
		if !ok {
			return nil, 0, fmt.Errorf("empty photo")
		}
		var (
			thumbType string
			size      int64
		)
		for _, s := range photo.Sizes {
			switch ps := s.(type) {
			case *tg.PhotoSize:
				if int64(ps.Size) > size {
					size = int64(ps.Size)
					thumbType = ps.Type
				}
			case *tg.PhotoSizeProgressive:
				if n := len(ps.Sizes); n > 0 && int64(ps.Sizes[n-1]) > size {
					size = int64(ps.Sizes[n-1])
					thumbType = ps.Type
				}
			}
		}
		if thumbType == "" {
			return nil, 0, fmt.Errorf("photo has no downloadable size")
		}
		return &tg.InputPhotoFileLocation{
			ID:            photo.ID,
			AccessHash:    photo.AccessHash,
			FileReference: photo.FileReference,
			ThumbSize:     thumbType,
		}, size, nil
	default:
		return nil, 0, fmt.Errorf("unsupported type media: %T", media)
	}
}
