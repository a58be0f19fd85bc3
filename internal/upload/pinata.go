package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

var ErrUploadFailed = errors.New("upload failed")

const (
	DefaultEndpoint = "https://api.pinata.cloud/pinning/pinFileToIPFS"
	DefaultGateway  = "gateway.pinata.cloud"
	// MaxFileSize caps a single upload.
	MaxFileSize = 100 << 20
)

// Uploader stores files and returns their content id.
type Uploader interface {
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
	GatewayURL(cid string) string
}

// PinataUploader pins files through the Pinata pinning API
type PinataUploader struct {
	endpoint string
	gateway  string
	jwt      string
	client   *http.Client
}

type Option func(*PinataUploader)

func WithEndpoint(endpoint string) Option {
	return func(u *PinataUploader) {
		u.endpoint = endpoint
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(u *PinataUploader) {
		u.client = client
	}
}

// NewPinataUploader creates an uploader authenticated with a Pinata JWT.
// gateway is a host name such as "gateway.pinata.cloud".
func NewPinataUploader(jwt, gateway string, opts ...Option) *PinataUploader {
	if gateway == "" {
		gateway = DefaultGateway
	}
	u := &PinataUploader{
		endpoint: DefaultEndpoint,
		gateway:  strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(gateway, "https://"), "http://"), "/"),
		jwt:      jwt,
		client:   &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

// Upload sends the file as multipart form data and returns its CID.
func (u *PinataUploader) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	if u.jwt == "" {
		return "", fmt.Errorf("%w: pinata jwt is not configured", ErrUploadFailed)
	}
	if name == "" {
		name = "file"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	n, err := io.Copy(part, io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read file: %w", ErrUploadFailed, err)
	}
	if n > MaxFileSize {
		return "", fmt.Errorf("%w: file exceeds %d bytes", ErrUploadFailed, MaxFileSize)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+u.jwt)

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %w", ErrUploadFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrUploadFailed, resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var pinned pinResponse
	if err := json.Unmarshal(payload, &pinned); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %w", ErrUploadFailed, err)
	}
	if pinned.IpfsHash == "" {
		return "", fmt.Errorf("%w: response has no content id", ErrUploadFailed)
	}
	return pinned.IpfsHash, nil
}

// GatewayURL returns https://<gateway>/ipfs/<cid>.
func (u *PinataUploader) GatewayURL(cid string) string {
	return fmt.Sprintf("https://%s/ipfs/%s", u.gateway, cid)
}
