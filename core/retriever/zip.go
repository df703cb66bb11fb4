package retriever

import (
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
	"github.com/krau/SaveLink-Bot/common/utils/fsutil"
)

// ZipFiles packs files into dir/name.zip. File names inside the archive are their base names.
func ZipFiles(dir, name string, files []SingleFile) (SingleFile, error) {
	name = fsutil.SanitizeFilename(name)
	if name == "" {
		name = "folder"
	}
	fp := fsutil.UniquePath(dir, name+".zip")
	out, err := fsutil.CreateFile(fp)
	if err != nil {
		return SingleFile{}, err
	}
	zw := zip.NewWriter(out)
	fail := func(err error) (SingleFile, error) {
		zw.Close()
		out.CloseAndRemove()
		return SingleFile{}, err
	}
	for _, f := range files {
		if err := addZipEntry(zw, f); err != nil {
			return fail(err)
		}
	}
	if err := zw.Close(); err != nil {
		return fail(err)
	}
	if err := out.Close(); err != nil {
		out.Remove()
		return SingleFile{}, err
	}
	stat, err := os.Stat(fp)
	if err != nil {
		return SingleFile{}, err
	}
	return SingleFile{
		Path: fp,
		Name: filepath.Base(fp),
		MIME: "application/zip",
		Size: stat.Size(),
	}, nil
}

func addZipEntry(zw *zip.Writer, f SingleFile) error {
	src, err := os.Open(f.Path)
	if err != nil {
		return err
	}
	defer src.Close()
	w, err := zw.Create(f.Name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}
