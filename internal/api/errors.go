package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/ignitus-mcp/internal/services"
	"github.com/rxtech-lab/ignitus-mcp/internal/session"
	"github.com/rxtech-lab/ignitus-mcp/internal/upload"
	"github.com/rxtech-lab/ignitus-mcp/internal/wallet"
)

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var formErr *services.FormError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.As(err, &formErr):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrListingNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, session.ErrNotReady),
		errors.Is(err, session.ErrNotConnected),
		errors.Is(err, session.ErrSuperseded):
		return fiber.StatusConflict
	case errors.Is(err, wallet.ErrProviderUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, upload.ErrUploadFailed),
		errors.Is(err, wallet.ErrChainSwitchFailed),
		errors.Is(err, wallet.ErrChainRegistration):
		return fiber.StatusBadGateway
	}

	if _, ok := wallet.RevertReason(err); ok {
		return fiber.StatusUnprocessableEntity
	}
	switch wallet.Classify(err) {
	case wallet.ErrUserRejected:
		return fiber.StatusForbidden
	case wallet.ErrInsufficientFunds:
		return fiber.StatusPaymentRequired
	case wallet.ErrRequestPending:
		return fiber.StatusTooManyRequests
	case wallet.ErrUnknownChain:
		return fiber.StatusBadGateway
	case wallet.ErrTransactionReverted:
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

// sendError writes err as {"error": <user text>, "detail": <cause>}.
func (s *APIServer) sendError(c *fiber.Ctx, err error) error {
	message := err.Error()
	if s.deps.Notifier != nil {
		message = s.deps.Notifier.Message(err)
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		message = fiberErr.Message
	}
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error":  message,
		"detail": err.Error(),
	})
}
