package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/sharkz-dev/UltraEconomy/internal/adapter/http/dto"
	"github.com/sharkz-dev/UltraEconomy/internal/core/domain"
	"github.com/sharkz-dev/UltraEconomy/internal/core/ports"
	"github.com/sharkz-dev/UltraEconomy/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultLedgerLimit = 50
	maxLedgerLimit     = 200
)

// AccountReader is the listing surface the handlers need from the
// storage backend.
type AccountReader interface {
	ListAccounts(ctx context.Context, page, pageSize int) ([]*domain.Account, error)
	ListLedgerEntries(ctx context.Context, id uuid.UUID, limit int) ([]domain.LedgerEntry, error)
	TopBalances(ctx context.Context, currency domain.Currency, page, pageSize int) ([]*domain.Account, error)
}

// AccountHandler serves the read-only accounts API.
type AccountHandler struct {
	economy  ports.EconomyService
	reader   AccountReader
	registry ports.CurrencyRegistry
}

func NewAccountHandler(economy ports.EconomyService, reader AccountReader, registry ports.CurrencyRegistry) *AccountHandler {
	return &AccountHandler{economy: economy, reader: reader, registry: registry}
}

// GetAccount handles GET /api/v1/accounts/:key. The key is an account
// uuid or a display name.
func (h *AccountHandler) GetAccount(c *gin.Context) {
	acc, err := h.lookup(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromAccount(acc))
}

// ListAccounts handles GET /api/v1/accounts.
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	page, pageSize := dto.ParsePage(c)

	accounts, err := h.reader.ListAccounts(c.Request.Context(), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewPage(dto.FromAccounts(accounts), page, pageSize))
}

// GetLedger handles GET /api/v1/accounts/:key/ledger.
func (h *AccountHandler) GetLedger(c *gin.Context) {
	acc, err := h.lookup(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLedgerLimit)))
	if limit < 1 {
		limit = defaultLedgerLimit
	}
	if limit > maxLedgerLimit {
		limit = maxLedgerLimit
	}

	entries, err := h.reader.ListLedgerEntries(c.Request.Context(), acc.ID(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromLedgerEntries(entries))
}

// TopBalances handles GET /api/v1/top/:currency.
func (h *AccountHandler) TopBalances(c *gin.Context) {
	currency, err := h.registry.Resolve(c.Param("currency"))
	if err != nil {
		response.Error(c, err)
		return
	}
	page, pageSize := dto.ParsePage(c)

	accounts, err := h.reader.TopBalances(c.Request.Context(), currency, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewPage(dto.FromAccounts(accounts), page, pageSize))
}

func (h *AccountHandler) lookup(c *gin.Context) (*domain.Account, error) {
	key := c.Param("key")
	if id, err := uuid.Parse(key); err == nil {
		return h.economy.GetAccount(c.Request.Context(), id)
	}
	return h.economy.GetAccountByName(c.Request.Context(), key)
}

// HealthCheck handles GET /health — deep health check verifying all dependencies.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}
