package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/lessuseless-systems/infinite-storage-glitch/block"
	"github.com/lessuseless-systems/infinite-storage-glitch/crypto"
	"github.com/lessuseless-systems/infinite-storage-glitch/isgerr"
)

// AttachmentBackend stores block bytes by POSTing them as a multipart file
// attachment to a webhook endpoint (modeled on a Discord webhook), which
// responds with a JSON body naming a permanent CDN URL for the upload. That
// URL becomes the Location identifier; download is a plain HTTPS GET
// against it.
type AttachmentBackend struct {
	webhookURL string
	client     *http.Client
	maxSize    int
}

// attachmentResponse mirrors the subset of a webhook's JSON response this
// backend needs: the first attachment's permanent URL and stored size.
type attachmentResponse struct {
	ID          string       `json:"id"`
	Attachments []attachment `json:"attachments"`
}

type attachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Size     int    `json:"size"`
	URL      string `json:"url"`
	ProxyURL string `json:"proxy_url"`
}

// DefaultMaxAttachmentSize is the conservative default per-upload ceiling
// (25 MiB), matching the reference webhook platform's free-tier limit.
const DefaultMaxAttachmentSize = 25 * 1024 * 1024

// NewAttachmentBackend returns an AttachmentBackend posting to webhookURL,
// with the default 25 MiB size ceiling and a 300s request timeout.
func NewAttachmentBackend(webhookURL string) *AttachmentBackend {
	return &AttachmentBackend{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 300 * time.Second},
		maxSize:    DefaultMaxAttachmentSize,
	}
}

// WithMaxSize overrides the default per-upload size ceiling.
func (a *AttachmentBackend) WithMaxSize(max int) *AttachmentBackend {
	a.maxSize = max
	return a
}

func (a *AttachmentBackend) Name() string { return "attachment" }
func (a *AttachmentBackend) Tier() Tier   { return TierWarm }

// Upload rejects oversize blocks with CodeStorageLimit before attempting
// the request, then posts a single multipart form and parses the JSON
// response for the first attachment's CDN URL.
func (a *AttachmentBackend) Upload(ctx context.Context, b *block.Block) (block.Location, error) {
	if b.Size > a.maxSize {
		return block.Location{}, isgerr.New(isgerr.CodeStorageLimit, fmt.Sprintf("block of %d bytes exceeds the %d byte attachment limit", b.Size, a.maxSize))
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("content", fmt.Sprintf("ISG Block: %s.bin", b.Fingerprint.Hex())); err != nil {
		return block.Location{}, isgerr.Wrap(isgerr.CodeIO, "writing multipart field", err)
	}
	part, err := writer.CreateFormFile("file", b.Fingerprint.Hex()+".bin")
	if err != nil {
		return block.Location{}, isgerr.Wrap(isgerr.CodeIO, "creating multipart file part", err)
	}
	if _, err := part.Write(b.Bytes); err != nil {
		return block.Location{}, isgerr.Wrap(isgerr.CodeIO, "writing multipart body", err)
	}
	if err := writer.Close(); err != nil {
		return block.Location{}, isgerr.Wrap(isgerr.CodeIO, "closing multipart writer", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.webhookURL+"?wait=true", &body)
	if err != nil {
		return block.Location{}, isgerr.Wrap(isgerr.CodeStorageNetwork, "constructing upload request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := a.client.Do(req)
	if err != nil {
		return block.Location{}, isgerr.Wrap(isgerr.CodeStorageNetwork, "posting attachment", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return block.Location{}, isgerr.New(isgerr.CodeStorageNetwork, fmt.Sprintf("webhook returned status %d", resp.StatusCode))
	}

	var parsed attachmentResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return block.Location{}, isgerr.Wrap(isgerr.CodeStorageNetwork, "parsing webhook response", err)
	}
	if len(parsed.Attachments) == 0 {
		return block.Location{}, isgerr.New(isgerr.CodeStorageNetwork, "webhook response contained no attachment")
	}
	att := parsed.Attachments[0]

	return block.Location{
		Platform:   a.Name(),
		Identifier: att.URL,
		Metadata: block.StorageMetadata{
			UploadedAt: time.Now().UTC(),
			URL:        att.URL,
			StoredSize: att.Size,
			Extra: map[string]any{
				"message_id":    parsed.ID,
				"attachment_id": att.ID,
				"proxy_url":     att.ProxyURL,
			},
		},
	}, nil
}

// Download issues a plain HTTPS GET against the stored CDN URL.
func (a *AttachmentBackend) Download(ctx context.Context, loc block.Location) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc.Identifier, nil)
	if err != nil {
		return nil, isgerr.Wrap(isgerr.CodeStorageNetwork, "constructing download request", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, isgerr.Wrap(isgerr.CodeStorageNetwork, "downloading attachment", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, isgerr.New(isgerr.CodeStorageNotFound, "attachment no longer exists on CDN")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, isgerr.New(isgerr.CodeStorageNetwork, fmt.Sprintf("CDN returned status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, isgerr.Wrap(isgerr.CodeStorageNetwork, "reading attachment body", err)
	}
	return data, nil
}

// Delete is a no-op: this backend's webhook protocol offers no deletion
// endpoint without a privileged bot token, so the upload is orphaned
// instead of erroring.
func (a *AttachmentBackend) Delete(ctx context.Context, loc block.Location) error {
	return nil
}

// List is unsupported: the webhook protocol exposes no enumeration
// endpoint without channel-history access.
func (a *AttachmentBackend) List(ctx context.Context) ([]block.Location, error) {
	return nil, isgerr.New(isgerr.CodeStorageUnsupported, "attachment backend does not support listing")
}

func (a *AttachmentBackend) Exists(ctx context.Context, loc block.Location) (bool, error) {
	return Exists(ctx, a, loc)
}

func (a *AttachmentBackend) Verify(ctx context.Context, loc block.Location, expected crypto.Fingerprint) (bool, error) {
	return Verify(ctx, a, loc, expected)
}
