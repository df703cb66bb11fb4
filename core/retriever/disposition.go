package retriever

import (
	"mime"
	"net/url"
	"path"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
)

// parseFilename extracts the filename from a Content-Disposition header.
// filename*= (RFC 5987) is tried before mime.ParseMediaType because some hosts send
// headers that fail strict parsing while the extended parameter is still valid.
func parseFilename(contentDisposition string) string {
	if contentDisposition == "" {
		return ""
	}
	if filename := parseFilenameExtended(contentDisposition); filename != "" {
		return filename
	}
	_, params, err := mime.ParseMediaType(contentDisposition)
	if err == nil {
		if filename := params["filename"]; filename != "" {
			return decodeFilenameParam(filename)
		}
	}
	return parseFilenameFallback(contentDisposition)
}

// filename*=charset'language'value
func parseFilenameExtended(cd string) string {
	lower := strings.ToLower(cd)
	idx := strings.Index(lower, "filename*=")
	if idx == -1 {
		return ""
	}
	value := cd[idx+len("filename*="):]
	if endIdx := strings.Index(value, ";"); endIdx != -1 {
		value = value[:endIdx]
	}
	value = strings.Trim(strings.TrimSpace(value), `"`)

	if parts := strings.SplitN(value, "''", 2); len(parts) == 2 {
		if decoded, err := url.PathUnescape(parts[1]); err == nil {
			return decoded
		}
	}
	if parts := strings.SplitN(value, "'", 3); len(parts) >= 3 {
		if decoded, err := url.PathUnescape(parts[2]); err == nil {
			return decoded
		}
	}
	return ""
}

func tryURLUnescape(s string) string {
	if decoded, err := url.PathUnescape(s); err == nil {
		return decoded
	}
	return s
}

// decodeFilenameParam handles MIME encoded-words, percent escapes and GBK encoded names.
func decodeFilenameParam(filename string) string {
	if strings.HasPrefix(filename, "=?") {
		decoder := new(mime.WordDecoder)
		// some servers write UTF8 instead of UTF-8
		normalized := strings.Replace(filename, "UTF8", "UTF-8", 1)
		if decoded, err := decoder.Decode(normalized); err == nil {
			return decoded
		}
	}
	decoded := tryURLUnescape(filename)
	if !utf8.ValidString(decoded) {
		if gbk := tryDecodeGBK(decoded); gbk != "" {
			return gbk
		}
	}
	return decoded
}

func tryDecodeGBK(s string) string {
	if s == "" {
		return ""
	}
	decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes([]byte(s))
	if err != nil {
		return ""
	}
	result := string(decoded)
	if utf8.ValidString(result) {
		return result
	}
	return ""
}

func parseFilenameFallback(cd string) string {
	lower := strings.ToLower(cd)
	idx := strings.Index(lower, "filename=")
	if idx == -1 {
		return ""
	}
	value := cd[idx+len("filename="):]
	if endIdx := strings.Index(value, ";"); endIdx != -1 {
		value = value[:endIdx]
	}
	value = strings.TrimSpace(value)
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			value = value[1 : len(value)-1]
		}
	}
	return decodeFilenameParam(value)
}

// parseFilenameFromURL returns the last path segment, unescaped.
func parseFilenameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Path == "" {
		return ""
	}
	decodedPath, err := url.PathUnescape(parsed.EscapedPath())
	if err != nil {
		decodedPath = parsed.Path
	}
	name := path.Base(decodedPath)
	if name == "/" || name == "." {
		return ""
	}
	return name
}
