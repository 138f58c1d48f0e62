package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-seat-reservation/internal/repository"
)

// WalletHandler exposes a thin balance view.  Top-ups, statements and
// account management belong to the surrounding wallet system; this service
// only reads the balance so the checkout screen can show whether a booking
// is affordable before the shopper types a PIN.
type WalletHandler struct {
	Wallets *repository.WalletRepo
}

// NewWalletHandler constructs a WalletHandler.
func NewWalletHandler(wallets *repository.WalletRepo) *WalletHandler {
	if wallets == nil {
		panic("nil repository passed to NewWalletHandler")
	}
	return &WalletHandler{Wallets: wallets}
}

// Balance handles GET /v1/wallet/:id.  The PIN hash never leaves the
// repository layer's model; only balance and currency are exposed.
func (h *WalletHandler) Balance(c echo.Context) error {
	accountID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || accountID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid account id"})
	}
	account, err := h.Wallets.GetByID(c.Request().Context(), accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "wallet account not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"account_id":    account.ID,
		"balance_cents": account.BalanceCents,
		"currency":      account.Currency,
	})
}
