package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/rxtech-lab/ignitus-mcp/internal/services"
	"github.com/rxtech-lab/ignitus-mcp/internal/session"
	"github.com/rxtech-lab/ignitus-mcp/internal/upload"
	"github.com/rxtech-lab/ignitus-mcp/internal/wallet"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"form error", &services.FormError{Field: "title", Rule: "required"}, http.StatusBadRequest},
		{"fiber error", fiber.NewError(fiber.StatusNotFound, "missing"), http.StatusNotFound},
		{"unknown listing", fmt.Errorf("video 9: %w", services.ErrListingNotFound), http.StatusNotFound},
		{"not ready", session.ErrNotReady, http.StatusConflict},
		{"not connected", session.ErrNotConnected, http.StatusConflict},
		{"superseded", session.ErrSuperseded, http.StatusConflict},
		{"no provider", wallet.ErrProviderUnavailable, http.StatusServiceUnavailable},
		{"upload", fmt.Errorf("%w: boom", upload.ErrUploadFailed), http.StatusBadGateway},
		{"switch failed", fmt.Errorf("%w: nope", wallet.ErrChainSwitchFailed), http.StatusBadGateway},
		{"user rejected", &wallet.ProviderError{Code: wallet.CodeUserRejected, Message: "User denied transaction signature"}, http.StatusForbidden},
		{"insufficient funds", errors.New("insufficient funds for gas * price + value"), http.StatusPaymentRequired},
		{"pending", &wallet.ProviderError{Code: wallet.CodeRequestPending, Message: "already pending"}, http.StatusTooManyRequests},
		{"revert", &wallet.RevertError{Reason: "Video not found"}, http.StatusUnprocessableEntity},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
