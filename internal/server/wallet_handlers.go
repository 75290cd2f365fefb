package server

import (
	"soltip/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetProfile handles GET /api/user/:wallet
func (s *Server) GetProfile(c *fiber.Ctx) error {
	wallet := c.Params("wallet")

	profile, err := s.walletService.GetProfile(c.UserContext(), wallet)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(profile)
}

// GetBalance handles GET /api/balance/:wallet: a live RPC read, no cache.
func (s *Server) GetBalance(c *fiber.Ctx) error {
	wallet := c.Params("wallet")

	lamports, err := s.walletService.GetBalance(c.UserContext(), wallet)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"wallet":      wallet,
		"lamports":    lamports,
		"balance_sol": models.LamportsToSol(int64(lamports)),
	})
}

// GetLeaderboard handles GET /api/leaderboard. Bare array, ordered by score.
func (s *Server) GetLeaderboard(c *fiber.Ctx) error {
	entries, err := s.walletService.Leaderboard(c.UserContext(), parseLimit(c))
	if err != nil {
		return fail(c, err)
	}
	if entries == nil {
		entries = []*models.WalletStats{}
	}

	return c.JSON(entries)
}
