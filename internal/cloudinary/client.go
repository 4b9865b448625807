package cloudinary

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"resumehub/internal/storage"
)

// Client stores resume files as Cloudinary raw assets using their REST API.
type Client struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
	HTTP      *http.Client

	APIBase      string
	DeliveryBase string
	now          func() time.Time
}

// New creates a Cloudinary client.
func New(cloudName, apiKey, apiSecret, folder string) *Client {
	return &Client{
		CloudName:    cloudName,
		APIKey:       apiKey,
		APISecret:    apiSecret,
		Folder:       strings.Trim(folder, "/"),
		HTTP:         &http.Client{Timeout: 30 * time.Second},
		APIBase:      "https://api.cloudinary.com/v1_1",
		DeliveryBase: "https://res.cloudinary.com",
		now:          time.Now,
	}
}

// UploadResult holds the response from Cloudinary after a successful upload.
type UploadResult struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Bytes     int    `json:"bytes"`
}

// Save uploads data as a raw asset whose public id is the folder plus name.
func (c *Client) Save(ctx context.Context, name string, data []byte, _ string) error {
	params := c.signedParams(map[string]string{
		"public_id": name,
		"folder":    c.Folder,
		"overwrite": "true",
	})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range params {
		_ = w.WriteField(k, v)
	}
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return fmt.Errorf("cloudinary: create form file failed: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("cloudinary: write file failed: %w", err)
	}
	w.Close()

	var result UploadResult
	if err := c.post(ctx, "upload", w.FormDataContentType(), &buf, &result); err != nil {
		return err
	}
	return nil
}

// Open streams the asset from the delivery CDN.
func (c *Client) Open(ctx context.Context, name string) (*storage.Object, error) {
	url := fmt.Sprintf("%s/%s/raw/upload/%s", c.DeliveryBase, c.CloudName, c.publicID(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: create request failed: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: request failed: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, storage.ErrNotFound
	}
	if resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("cloudinary: fetch failed (%d)", resp.StatusCode)
	}
	return &storage.Object{Body: resp.Body, Size: resp.ContentLength, ContentType: resp.Header.Get("Content-Type")}, nil
}

// Remove destroys the asset.
func (c *Client) Remove(ctx context.Context, name string) error {
	params := c.signedParams(map[string]string{"public_id": c.publicID(name)})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range params {
		_ = w.WriteField(k, v)
	}
	w.Close()

	var result struct {
		Result string `json:"result"`
	}
	if err := c.post(ctx, "destroy", w.FormDataContentType(), &buf, &result); err != nil {
		return err
	}
	switch result.Result {
	case "ok":
		return nil
	case "not found":
		return storage.ErrNotFound
	}
	return fmt.Errorf("cloudinary: destroy returned %q", result.Result)
}

func (c *Client) publicID(name string) string {
	if c.Folder == "" {
		return name
	}
	return c.Folder + "/" + name
}

func (c *Client) signedParams(extra map[string]string) map[string]string {
	params := map[string]string{
		"timestamp": strconv.FormatInt(c.now().Unix(), 10),
		"api_key":   c.APIKey,
	}
	for k, v := range extra {
		if v != "" {
			params[k] = v
		}
	}
	params["signature"] = c.sign(params)
	return params
}

func (c *Client) post(ctx context.Context, action, contentType string, body io.Reader, out any) error {
	url := fmt.Sprintf("%s/%s/raw/%s", c.APIBase, c.CloudName, action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("cloudinary: create request failed: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("cloudinary: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("cloudinary: %s failed (%d): %s", action, resp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("cloudinary: decode response failed: %w", err)
	}
	return nil
}

// sign computes the Cloudinary API signature from the given params.
// api_key, file and resource_type are not signed.
func (c *Client) sign(params map[string]string) string {
	excludeKeys := map[string]bool{"api_key": true, "file": true, "resource_type": true}

	pairs := make([]string, 0, len(params))
	for k, v := range params {
		if !excludeKeys[k] && v != "" {
			pairs = append(pairs, k+"="+v)
		}
	}
	sort.Strings(pairs)

	payload := strings.Join(pairs, "&") + c.APISecret
	h := sha1.New()
	h.Write([]byte(payload))
	return fmt.Sprintf("%x", h.Sum(nil))
}
