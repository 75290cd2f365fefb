package server

import (
	"soltip/internal/middleware"
	"soltip/internal/service"

	"github.com/gofiber/fiber/v2"
)

// TipRequest is the body for POST /api/posts/:id/tip. The transfer must
// already be on chain; the signature is the receipt being claimed. The
// client sends the SOL amount as `amount`; `amount_sol` is accepted as an
// alias.
type TipRequest struct {
	FromWallet  string  `json:"from_wallet"`
	Amount      float64 `json:"amount"`
	AmountSol   float64 `json:"amount_sol"`
	TxSignature string  `json:"tx_signature"`
}

func (r TipRequest) amountSol() float64 {
	if r.Amount != 0 {
		return r.Amount
	}
	return r.AmountSol
}

// TipPost handles POST /api/posts/:id/tip
func (s *Server) TipPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req TipRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, invalidBody())
	}

	c.Locals("wallet", req.FromWallet)

	tip, post, applied, err := s.tipService.ApplyTip(c.UserContext(), service.ApplyTipInput{
		PostID:      postID,
		FromWallet:  req.FromWallet,
		AmountSol:   req.amountSol(),
		TxSignature: req.TxSignature,
	})
	if err != nil {
		return fail(c, err)
	}

	if !applied {
		middleware.Logger.InfoContext(c.UserContext(), "duplicate tip replayed",
			"tx_signature", req.TxSignature,
			"post_id", postID,
		)
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"duplicate": !applied,
		"tip":       tip,
		"post":      post,
	})
}
