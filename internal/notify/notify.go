// Package notify turns the outcome of user-initiated actions into transient
// notifications. Failures are never dropped: every error passed to Error is
// kept in the ring and fanned out to subscribers.
package notify

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/google/uuid"

	"github.com/rxtech-lab/ignitus-mcp/internal/session"
	"github.com/rxtech-lab/ignitus-mcp/internal/upload"
	"github.com/rxtech-lab/ignitus-mcp/internal/wallet"
)

const DefaultCapacity = 100

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// UserMessenger is implemented by errors that carry their own user-facing text.
type UserMessenger interface {
	UserMessage() string
}

type Notifier struct {
	chainName string
	symbol    string
	observe   func(Level)

	mu    sync.Mutex
	ring  []Notification
	start int
	size  int

	feed event.Feed
}

type Option func(*Notifier)

// WithChain sets the network name and currency symbol used in messages.
func WithChain(name, symbol string) Option {
	return func(n *Notifier) {
		n.chainName = name
		n.symbol = symbol
	}
}

// WithObserver is called for every notification.
func WithObserver(fn func(Level)) Option {
	return func(n *Notifier) {
		n.observe = fn
	}
}

func New(capacity int, opts ...Option) *Notifier {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	n := &Notifier{
		chainName: wallet.NeroTestnet.ChainName,
		symbol:    wallet.NeroTestnet.NativeCurrency.Symbol,
		ring:      make([]Notification, capacity),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Notifier) Success(message string) Notification {
	return n.push(LevelSuccess, message, "")
}

func (n *Notifier) Info(message string) Notification {
	return n.push(LevelInfo, message, "")
}

// Error records err with its user-facing message.
func (n *Notifier) Error(err error) Notification {
	if err == nil {
		err = errors.New("unknown error")
	}
	slog.Warn("action failed", "error", err)
	return n.push(LevelError, n.Message(err), err.Error())
}

// List returns up to limit notifications, newest first. A limit <= 0 returns all.
func (n *Notifier) List(limit int) []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if limit <= 0 || limit > n.size {
		limit = n.size
	}
	out := make([]Notification, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (n.start + n.size - 1 - i) % len(n.ring)
		out = append(out, n.ring[idx])
	}
	return out
}

// Subscribe delivers every new notification to ch.
func (n *Notifier) Subscribe(ch chan<- Notification) event.Subscription {
	return n.feed.Subscribe(ch)
}

func (n *Notifier) push(level Level, message, detail string) Notification {
	item := Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		Detail:    detail,
		CreatedAt: time.Now(),
	}

	n.mu.Lock()
	if n.size < len(n.ring) {
		n.ring[(n.start+n.size)%len(n.ring)] = item
		n.size++
	} else {
		n.ring[n.start] = item
		n.start = (n.start + 1) % len(n.ring)
	}
	n.mu.Unlock()

	if n.observe != nil {
		n.observe(level)
	}
	n.feed.Send(item)
	return item
}

// Message maps err onto the text shown to the user.
func (n *Notifier) Message(err error) string {
	var messenger UserMessenger
	if errors.As(err, &messenger) {
		return messenger.UserMessage()
	}

	switch {
	case errors.Is(err, wallet.ErrProviderUnavailable):
		return "MetaMask is not installed!"
	case errors.Is(err, session.ErrNotReady), errors.Is(err, session.ErrNotConnected):
		return "Contract not initialized. Please connect your wallet."
	case errors.Is(err, session.ErrSuperseded):
		return "Wallet changed while the request was in progress. Please try again."
	case errors.Is(err, wallet.ErrChainRegistration):
		return fmt.Sprintf("Failed to add %s to MetaMask", n.chainName)
	case errors.Is(err, wallet.ErrChainSwitchFailed):
		return fmt.Sprintf("Failed to switch to %s", n.chainName)
	case errors.Is(err, upload.ErrUploadFailed):
		return "Failed to upload file. Please try again."
	}

	if reason, ok := wallet.RevertReason(err); ok {
		return revertMessage(reason)
	}

	switch wallet.Classify(err) {
	case wallet.ErrUserRejected:
		if strings.Contains(strings.ToLower(err.Error()), "user denied") {
			return "Transaction cancelled."
		}
		return "Transaction cancelled by user."
	case wallet.ErrInsufficientFunds:
		return fmt.Sprintf("Insufficient %s balance. Please add more funds to your wallet.", n.symbol)
	case wallet.ErrRequestPending:
		return "A wallet request is already pending. Please open your wallet."
	case wallet.ErrUnknownChain:
		return fmt.Sprintf("Failed to switch to %s", n.chainName)
	}
	if strings.Contains(err.Error(), "estimateGas") || strings.Contains(err.Error(), "gas required exceeds") {
		return "Transaction failed. Please check your wallet balance and try again."
	}
	return "Request failed. Please try again."
}

func revertMessage(reason string) string {
	lower := strings.ToLower(reason)
	switch {
	case strings.Contains(lower, "premium campaign is closed"):
		return "Premium campaign has ended. Please use regular watch option."
	case strings.Contains(lower, "premium campaign is still active"):
		return "Premium campaign is still active. Please use premium access option."
	case strings.Contains(lower, "amount must be at least"):
		return "Payment amount is too low. Please pay the full price."
	case reason == "":
		return "Transaction failed. Please check your wallet balance and try again."
	}
	return "Transaction failed: " + reason
}
