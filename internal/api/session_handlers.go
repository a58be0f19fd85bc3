package api

import (
	"github.com/gofiber/fiber/v2"
)

func (s *APIServer) handleSession(c *fiber.Ctx) error {
	return c.JSON(s.deps.Session.Snapshot())
}

func (s *APIServer) handleConnect(c *fiber.Ctx) error {
	snap, err := s.deps.Session.Connect(c.UserContext())
	if err != nil {
		s.notifyError(err)
		return s.sendError(c, err)
	}
	return c.JSON(snap)
}

// handleRestore picks up an account the wallet already authorized, without prompting
func (s *APIServer) handleRestore(c *fiber.Ctx) error {
	if current := s.deps.Session.Snapshot(); current.Session.Connected() {
		return c.JSON(current)
	}
	snap, err := s.deps.Session.Restore(c.UserContext())
	if err != nil {
		s.notifyError(err)
		return s.sendError(c, err)
	}
	return c.JSON(snap)
}

func (s *APIServer) handleDisconnect(c *fiber.Ctx) error {
	return c.JSON(s.deps.Session.Disconnect())
}

func (s *APIServer) handleEnsureChain(c *fiber.Ctx) error {
	snap, err := s.deps.Session.EnsureExpectedChain(c.UserContext())
	if err != nil {
		s.notifyError(err)
		return s.sendError(c, err)
	}
	return c.JSON(snap)
}

// handleChain returns the expected chain in wallet_addEthereumChain form
func (s *APIServer) handleChain(c *fiber.Ctx) error {
	return c.JSON(s.deps.Session.ExpectedChain())
}

func (s *APIServer) notifyError(err error) {
	if s.deps.Notifier != nil {
		s.deps.Notifier.Error(err)
	}
}
