package storage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lessuseless-systems/infinite-storage-glitch/block"
)

func TestAttachmentBackendUploadDownloadRoundTrip(t *testing.T) {
	var cdnServer *httptest.Server
	var stored []byte

	cdnServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(stored)
	}))
	defer cdnServer.Close()

	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(32<<20))
		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		buf := make([]byte, 1<<20)
		n, _ := file.Read(buf)
		stored = buf[:n]

		resp := attachmentResponse{
			ID: "msg1",
			Attachments: []attachment{
				{ID: "att1", Filename: "x.bin", Size: n, URL: cdnServer.URL, ProxyURL: cdnServer.URL},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer webhook.Close()

	backend := NewAttachmentBackend(webhook.URL)
	ctx := context.Background()

	b := block.FromData([]byte("webhook payload"))
	loc, err := backend.Upload(ctx, b)
	require.NoError(t, err)
	require.Equal(t, "attachment", loc.Platform)
	require.Equal(t, cdnServer.URL, loc.Identifier)

	data, err := backend.Download(ctx, loc)
	require.NoError(t, err)
	require.Equal(t, b.Bytes, data)
}

func TestAttachmentBackendRejectsOversizeBlock(t *testing.T) {
	backend := NewAttachmentBackend("https://example.invalid/webhook").WithMaxSize(4)
	_, err := backend.Upload(context.Background(), block.FromData([]byte("too big")))
	require.Error(t, err)
}

func TestAttachmentBackendDeleteIsNoop(t *testing.T) {
	backend := NewAttachmentBackend("https://example.invalid/webhook")
	require.NoError(t, backend.Delete(context.Background(), block.Location{}))
}

func TestAttachmentBackendListUnsupported(t *testing.T) {
	backend := NewAttachmentBackend("https://example.invalid/webhook")
	_, err := backend.List(context.Background())
	require.Error(t, err)
}
