package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// 删除文件夹内的所有文件和子目录, 但不删除文件夹本身
func RemoveAllInDir(dirPath string) error {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		entryPath := filepath.Join(dirPath, entry.Name())
		if err := os.RemoveAll(entryPath); err != nil {
			return err
		}
	}
	return nil
}

var ErrUnsafePath = errors.New("refusing to remove unsafe path")

// SafeRemoveAll removes dir and its contents unless dir resolves to a root-like path.
func SafeRemoveAll(dir string) error {
	if dir == "" || slices.Contains([]string{"/", ".", "\\", ".."}, filepath.Clean(dir)) {
		return fmt.Errorf("%w: %q", ErrUnsafePath, dir)
	}
	return os.RemoveAll(dir)
}

func DetectFileExt(fp string) string {
	mt, err := mimetype.DetectFile(fp)
	if err != nil {
		return ""
	}
	return mt.Extension()
}

type File struct {
	*os.File
}

func (f *File) Remove() error {
	return os.Remove(f.Name())
}

func (f *File) CloseAndRemove() error {
	cerr := f.Close()
	if err := f.Remove(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if cerr != nil && !errors.Is(cerr, os.ErrClosed) {
		return cerr
	}
	return nil
}

func CreateFile(fp string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(fp), os.ModePerm); err != nil {
		return nil, err
	}
	file, err := os.Create(fp)
	if err != nil {
		return nil, err
	}
	return &File{File: file}, nil
}

var unsafeNameRe = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

const maxNameLen = 200

// SanitizeFilename replaces characters that are invalid in file names and caps the length,
// keeping the extension when the name has to be cut.
func SanitizeFilename(name string) string {
	name = unsafeNameRe.ReplaceAllString(strings.TrimSpace(name), "_")
	name = strings.TrimRight(name, ". ")
	if name == "" {
		return ""
	}
	runes := []rune(name)
	if len(runes) <= maxNameLen {
		return name
	}
	ext := []rune(filepath.Ext(name))
	if len(ext) >= maxNameLen {
		ext = nil
	}
	return string(runes[:maxNameLen-len(ext)]) + string(ext)
}

// ShortExt returns the extension of name if it has 1 to 5 characters after the dot.
func ShortExt(name string) string {
	ext := filepath.Ext(name)
	if n := len(ext); n >= 2 && n <= 6 {
		return ext
	}
	return ""
}

// UniquePath joins dir and name, appending _1, _2 ... before the extension until
// the path does not exist yet.
func UniquePath(dir, name string) string {
	p := filepath.Join(dir, name)
	if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
		return p
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		p = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, i, ext))
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			return p
		}
	}
}
