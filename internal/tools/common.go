package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rxtech-lab/ignitus-mcp/internal/notify"
	"github.com/rxtech-lab/ignitus-mcp/internal/session"
	"github.com/rxtech-lab/ignitus-mcp/internal/wallet"
)

// WalletSession is the part of the session manager the tools drive.
type WalletSession interface {
	Snapshot() session.Snapshot
	Connect(ctx context.Context) (session.Snapshot, error)
	Disconnect() session.Snapshot
	EnsureExpectedChain(ctx context.Context) (session.Snapshot, error)
	ExpectedChain() wallet.ChainDescriptor
}

// WalletPage is the browser page that answers wallet requests.
type WalletPage struct {
	URL string
	// Attached reports whether a page with a wallet is open. Nil when the
	// server signs with a local key.
	Attached func() bool
}

// openPage returns a result asking the user to open the wallet page, or nil
// when a wallet can answer requests right now.
func (p WalletPage) openPage() *mcp.CallToolResult {
	if p.Attached == nil || p.Attached() {
		return nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"No wallet is attached. Open %s in a browser with MetaMask installed, keep the tab open, then call this tool again. Please render the url using markdown link format.",
		p.URL,
	))
}

func (p WalletPage) fields(result map[string]any) map[string]any {
	if p.Attached != nil && p.URL != "" {
		result["wallet_url"] = p.URL
	}
	return result
}

func jsonResult(prefix string, v any) *mcp.CallToolResult {
	resultJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error encoding result: %v", err))
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: %s", prefix, string(resultJSON)))
}

// errorResult renders err the way the wallet page shows it.
func errorResult(notifier *notify.Notifier, err error) *mcp.CallToolResult {
	if notifier == nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s (%v)", notifier.Message(err), err))
}

func requireID(request mcp.CallToolRequest, name string) (uint64, error) {
	raw, err := request.RequireString(name)
	if err != nil {
		return 0, fmt.Errorf("%s parameter is required: %w", name, err)
	}
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return id, nil
}

// parseDeadline accepts unix seconds, RFC 3339 or a YYYY-MM-DD date (UTC midnight).
func parseDeadline(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("deadline is required")
	}
	if unix, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return unix, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Unix(), nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.Unix(), nil
	}
	return 0, fmt.Errorf("invalid deadline %q, use unix seconds, RFC 3339 or YYYY-MM-DD", raw)
}
