package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/ignitus-mcp/internal/assets"
	"github.com/rxtech-lab/ignitus-mcp/internal/utils"
	"github.com/rxtech-lab/ignitus-mcp/internal/wallet"
)

type walletHelloRequest struct {
	HasProvider bool `json:"hasProvider"`
}

type walletEventRequest struct {
	Kind     wallet.EventKind `json:"kind"`
	Accounts []string         `json:"accounts"`
	// ChainID is a hex string from the wallet, a number is also accepted
	ChainID json.RawMessage `json:"chainId"`
}

// handleWalletPage serves the embedded wallet bridge page
func (s *APIServer) handleWalletPage(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Send(assets.WalletHTML)
}

// handleWalletJS serves the embedded wallet bridge script
func (s *APIServer) handleWalletJS(c *fiber.Ctx) error {
	c.Set("Content-Type", "application/javascript")
	return c.Send(assets.WalletJS)
}

func (s *APIServer) handleWalletHello(c *fiber.Ctx) error {
	var req walletHelloRequest
	if err := c.BodyParser(&req); err != nil {
		return s.sendError(c, fiber.NewError(fiber.StatusBadRequest, "Invalid request body"))
	}
	s.deps.Bridge.Hello(req.HasProvider)
	return c.JSON(fiber.Map{"attached": s.deps.Bridge.Attached()})
}

// handleWalletNext long-polls for the next request the page should run.
func (s *APIServer) handleWalletNext(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), s.deps.LongPoll)
	defer cancel()

	req, err := s.deps.Bridge.Next(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return s.sendError(c, err)
	}
	return c.JSON(req)
}

func (s *APIServer) handleWalletResolve(c *fiber.Ctx) error {
	var resp wallet.BridgeResponse
	if err := c.BodyParser(&resp); err != nil {
		return s.sendError(c, fiber.NewError(fiber.StatusBadRequest, "Invalid request body"))
	}
	if err := s.deps.Bridge.Resolve(c.Params("id"), resp); err != nil {
		if errors.Is(err, wallet.ErrUnknownRequest) {
			return s.sendError(c, fiber.NewError(fiber.StatusNotFound, "Unknown wallet request"))
		}
		return s.sendError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *APIServer) handleWalletEvent(c *fiber.Ctx) error {
	var req walletEventRequest
	if err := c.BodyParser(&req); err != nil {
		return s.sendError(c, fiber.NewError(fiber.StatusBadRequest, "Invalid request body"))
	}

	var ev wallet.Event
	switch req.Kind {
	case wallet.EventAccountsChanged:
		accounts := make([]common.Address, 0, len(req.Accounts))
		for _, raw := range req.Accounts {
			if !utils.IsValidEthereumAddress(raw) {
				return s.sendError(c, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Invalid account %q", raw)))
			}
			accounts = append(accounts, common.HexToAddress(raw))
		}
		ev = wallet.AccountsChanged(accounts...)
	case wallet.EventChainChanged:
		chainID, err := parseChainIDValue(req.ChainID)
		if err != nil {
			return s.sendError(c, fiber.NewError(fiber.StatusBadRequest, err.Error()))
		}
		ev = wallet.ChainChanged(chainID)
	default:
		return s.sendError(c, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Unknown event kind %q", req.Kind)))
	}

	delivered := s.deps.Bridge.Publish(ev)
	return c.JSON(fiber.Map{"delivered": delivered})
}

func parseChainIDValue(raw json.RawMessage) (uint64, error) {
	if len(raw) == 0 {
		return 0, errors.New("chainId is required")
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return wallet.ParseChainID(text)
	}
	var number uint64
	if err := json.Unmarshal(raw, &number); err != nil {
		return 0, fmt.Errorf("invalid chainId %s", strings.TrimSpace(string(raw)))
	}
	return number, nil
}
