package cosv4

import (
	"mime"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// detectContentType 优先按内容识别，识别为纯文本或无法识别时按扩展名
func detectContentType(path, localPath string) string {
	detected, err := mimetype.DetectFile(localPath)
	if err == nil && !detected.Is("text/plain") && !detected.Is("application/octet-stream") {
		return detected.String()
	}

	if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
		return byExt
	}
	if err == nil {
		return detected.String()
	}
	return "application/octet-stream"
}
