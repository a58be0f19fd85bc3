package tools

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/ignitus-mcp/internal/notify"
	"github.com/rxtech-lab/ignitus-mcp/internal/services"
	"github.com/rxtech-lab/ignitus-mcp/internal/utils"
)

func NewUploadFileTool(uploads services.UploadService, notifier *notify.Notifier) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("upload_file",
		mcp.WithDescription("Pin a video, thumbnail or campaign image to IPFS and return its gateway URL. Pass either file_path (a file readable by the server) or file_name with content_base64."),
		mcp.WithString("file_path",
			mcp.Description("Path of a local file to upload"),
		),
		mcp.WithString("file_name",
			mcp.Description("File name to use with content_base64"),
		),
		mcp.WithString("content_base64",
			mcp.Description("Base64 encoded file content"),
		),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, size, reader, closeFn, err := openUpload(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		defer closeFn()

		record, err := uploads.Upload(ctx, utils.UserID(ctx), name, size, reader)
		if err != nil {
			if notifier != nil {
				notifier.Error(err)
			}
			return errorResult(notifier, err), nil
		}
		return jsonResult("File uploaded", map[string]any{
			"cid":         record.CID,
			"file_name":   record.FileName,
			"size":        record.Size,
			"gateway_url": record.GatewayURL,
		}), nil
	}

	return tool, handler
}

func openUpload(request mcp.CallToolRequest) (name string, size int64, r io.Reader, closeFn func(), err error) {
	noop := func() {}
	if path := request.GetString("file_path", ""); path != "" {
		file, err := os.Open(path)
		if err != nil {
			return "", 0, nil, noop, fmt.Errorf("failed to open %s: %w", path, err)
		}
		info, err := file.Stat()
		if err != nil {
			file.Close()
			return "", 0, nil, noop, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if info.IsDir() {
			file.Close()
			return "", 0, nil, noop, fmt.Errorf("%s is a directory", path)
		}
		return filepath.Base(path), info.Size(), file, func() { file.Close() }, nil
	}

	encoded := request.GetString("content_base64", "")
	name = request.GetString("file_name", "")
	if encoded == "" || name == "" {
		return "", 0, nil, noop, fmt.Errorf("either file_path or file_name with content_base64 is required")
	}
	content, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", 0, nil, noop, fmt.Errorf("invalid content_base64: %w", err)
	}
	return name, int64(len(content)), bytes.NewReader(content), noop, nil
}
