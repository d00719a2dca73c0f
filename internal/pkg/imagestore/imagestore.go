// Package imagestore talks to the external image hosting service over HTTP.
// Uploaded files land in a per-user folder derived from the account email,
// and the hosted URL embeds the requested display transformation.
package imagestore

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Transform describes the server-side rendering applied to an upload.
type Transform struct {
	Width   int
	Height  int
	Crop    string // fill / fit / scale
	Angle   int
	Gravity string // center / face / north / south
	Effect  string // none / sepia / grayscale
}

// DefaultTransform matches the 350x350 fill crop the gallery renders.
func DefaultTransform() Transform {
	return Transform{Width: 350, Height: 350, Crop: "fill", Gravity: "center", Effect: "none"}
}

type uploadResponse struct {
	Data struct {
		ID      string `json:"id"`
		Link    string `json:"link"`
		Version int    `json:"version"`
	} `json:"data"`
	Success bool `json:"success"`
	Status  int  `json:"status"`
}

// Client uploads pictures to the hosting API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient builds an image hosting client. baseURL points at the API root.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// FolderName derives a stable per-user folder from the account email: one
// hex character of the sha256 digest.
func FolderName(email string) string {
	sum := sha256.Sum256([]byte(email))
	digest := hex.EncodeToString(sum[:])
	return string(digest[12])
}

// Upload sends the file to the hosting service and returns the display URL
// with the transformation applied.
func (c *Client) Upload(file io.Reader, folder string, tr Transform) (string, error) {
	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(fileBytes)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	fields := map[string]string{
		"image":   encoded,
		"type":    "base64",
		"folder":  folder,
		"width":   strconv.Itoa(tr.Width),
		"height":  strconv.Itoa(tr.Height),
		"crop":    tr.Crop,
		"angle":   strconv.Itoa(tr.Angle),
		"gravity": tr.Gravity,
		"effect":  tr.Effect,
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return "", fmt.Errorf("build upload body: %w", err)
		}
	}
	writer.Close()

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/image", &body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read upload response: %w", err)
	}

	var parsed uploadResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("parse upload response: %w", err)
	}
	if !parsed.Success {
		return "", fmt.Errorf("image host rejected upload: status %d", parsed.Status)
	}

	return c.displayURL(parsed.Data.Link, parsed.Data.Version, tr), nil
}

// displayURL appends transformation and version parameters to the hosted
// link so clients fetch the rendered variant directly.
func (c *Client) displayURL(link string, version int, tr Transform) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	q := u.Query()
	q.Set("width", strconv.Itoa(tr.Width))
	q.Set("height", strconv.Itoa(tr.Height))
	q.Set("crop", tr.Crop)
	if version > 0 {
		q.Set("version", strconv.Itoa(version))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
