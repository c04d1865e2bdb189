package handlers

import (
	"purse/internal/middleware"
	"purse/internal/services/ledger"
	"purse/internal/utils/pagination"
	"purse/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type WalletHandler struct {
	ledger *ledger.Service
	log    *zap.Logger
}

func NewWalletHandler(ledgerService *ledger.Service, log *zap.Logger) *WalletHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WalletHandler{ledger: ledgerService, log: log.Named("wallet_handler")}
}

type amountRequest struct {
	Amount      any    `json:"amount"`
	Description string `json:"description"`
}

type transferRequest struct {
	To          string `json:"to"`
	Amount      any    `json:"amount"`
	Description string `json:"description"`
}

func (h *WalletHandler) GetBalance(c *fiber.Ctx) error {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		return response.Unauthorized(c, "invalid claims")
	}
	res, err := h.ledger.GetBalance(c.UserContext(), account)
	return respondResult(c, h.log, res, err)
}

func (h *WalletHandler) Deposit(c *fiber.Ctx) error {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		return response.Unauthorized(c, "invalid claims")
	}
	var input amountRequest
	if err := decodeBody(c, &input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	res, err := h.ledger.Deposit(c.UserContext(), account, input.Amount, input.Description)
	return respondResult(c, h.log, res, err)
}

func (h *WalletHandler) Withdraw(c *fiber.Ctx) error {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		return response.Unauthorized(c, "invalid claims")
	}
	var input amountRequest
	if err := decodeBody(c, &input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	res, err := h.ledger.Withdraw(c.UserContext(), account, input.Amount, input.Description)
	return respondResult(c, h.log, res, err)
}

func (h *WalletHandler) Transfer(c *fiber.Ctx) error {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		return response.Unauthorized(c, "invalid claims")
	}
	var input transferRequest
	if err := decodeBody(c, &input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	res, err := h.ledger.TransferByEmail(c.UserContext(), account, input.To, input.Amount, input.Description)
	return respondResult(c, h.log, res, err)
}

func (h *WalletHandler) GetTransactions(c *fiber.Ctx) error {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		return response.Unauthorized(c, "invalid claims")
	}
	p := pagination.ParseFromRequest(c)

	res, err := h.ledger.History(c.UserContext(), account, p.Limit, p.Offset)
	if err != nil || !res.Success {
		return respondResult(c, h.log, res, err)
	}
	p.Total = res.Data.Total
	return response.Success(c, pagination.Response(p, res.Data.Entries))
}

// respondResult maps a ledger outcome onto the response envelope. Operation
// failures are logged here and reported without their cause.
func respondResult[T any](c *fiber.Ctx, log *zap.Logger, res *ledger.Result[T], err error) error {
	if err != nil {
		log.Error("ledger operation failed",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return response.ServerError(c)
	}
	if !res.Success {
		return response.Failure(c, res.Kind, res.Errors)
	}
	return response.Success(c, res.Data)
}
