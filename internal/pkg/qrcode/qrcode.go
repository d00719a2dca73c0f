// Package qrcode renders share links for hosted pictures as inline QR code
// images. The hosted URL is probed first so the data URI can carry the
// content type of the object it points at; probe failures return descriptive
// placeholder strings rather than errors, which callers serve as-is.
package qrcode

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	qr "github.com/skip2/go-qrcode"
)

const (
	msgFetchFailed        = "Failed to fetch content from URL"
	msgUnknownContentType = "Unknown content type"
	msgUnknownDataFormat  = "Unknown data format"
)

type Generator struct {
	http *http.Client
}

func NewGenerator() *Generator {
	return &Generator{http: &http.Client{Timeout: 15 * time.Second}}
}

// Generate probes the link and returns a base64 data URI holding a QR code
// PNG for it. Unreachable or unclassifiable links yield one of the fixed
// placeholder strings.
func (g *Generator) Generate(link string) string {
	resp, err := g.http.Get(link)
	if err != nil {
		return msgFetchFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return msgFetchFailed
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		return msgUnknownContentType
	}

	exts, err := mime.ExtensionsByType(contentType)
	if err != nil || len(exts) == 0 {
		return msgUnknownDataFormat
	}

	png, err := qr.Encode(link, qr.Medium, 256)
	if err != nil {
		return msgUnknownDataFormat
	}

	mediaType := contentType
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	return fmt.Sprintf("data:%s;base64,%s", mediaType, base64.StdEncoding.EncodeToString(png))
}
