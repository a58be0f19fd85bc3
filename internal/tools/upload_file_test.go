package tools

import (
	"context"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxtech-lab/ignitus-mcp/internal/services"
	"github.com/rxtech-lab/ignitus-mcp/internal/utils"
)

type memoryUploader struct {
	files map[string]string
}

func (u *memoryUploader) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	cid := "Qm" + strings.ToUpper(name)
	u.files[cid] = string(body)
	return cid, nil
}

func (u *memoryUploader) GatewayURL(cid string) string {
	return "https://gateway.pinata.cloud/ipfs/" + cid
}

func newUploadService(t *testing.T) (services.UploadService, *memoryUploader) {
	t.Helper()
	db, err := services.NewSqliteDBService(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	uploader := &memoryUploader{files: map[string]string{}}
	return services.NewUploadService(db.GetDB(), uploader), uploader
}

func TestUploadFileHandler(t *testing.T) {
	t.Run("from path", func(t *testing.T) {
		service, uploader := newUploadService(t)
		path := filepath.Join(t.TempDir(), "thumb.png")
		require.NoError(t, os.WriteFile(path, []byte("png"), 0o600))
		_, handler := NewUploadFileTool(service, newNotifier())

		result, err := handler(context.Background(), callRequest(map[string]any{"file_path": path}))
		require.NoError(t, err)
		decoded := decodeResult(t, result, "File uploaded")
		assert.Equal(t, "QmTHUMB.PNG", decoded["cid"])
		assert.Equal(t, "https://gateway.pinata.cloud/ipfs/QmTHUMB.PNG", decoded["gateway_url"])
		assert.Equal(t, "png", uploader.files["QmTHUMB.PNG"])
	})

	t.Run("from base64 records the user", func(t *testing.T) {
		service, _ := newUploadService(t)
		_, handler := NewUploadFileTool(service, newNotifier())
		ctx := utils.WithAuthenticatedUser(context.Background(), &utils.AuthenticatedUser{Sub: "user123"})

		result, err := handler(ctx, callRequest(map[string]any{
			"file_name":      "clip.mp4",
			"content_base64": base64.StdEncoding.EncodeToString([]byte("video")),
		}))
		require.NoError(t, err)
		assert.False(t, result.IsError)

		user := "user123"
		uploads, err := service.ListUploads(&user)
		require.NoError(t, err)
		require.Len(t, uploads, 1)
		assert.Equal(t, "clip.mp4", uploads[0].FileName)
		assert.Equal(t, int64(5), uploads[0].Size)
	})

	t.Run("requires input", func(t *testing.T) {
		service, _ := newUploadService(t)
		_, handler := NewUploadFileTool(service, newNotifier())

		result, err := handler(context.Background(), callRequest(map[string]any{}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, resultText(t, result), "either file_path or file_name with content_base64 is required")
	})
}

func TestParseDeadline(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"1900000000", 1900000000, false},
		{"2030-01-02T00:00:00Z", 1893542400, false},
		{"2030-01-02", 1893542400, false},
		{"", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseDeadline(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
