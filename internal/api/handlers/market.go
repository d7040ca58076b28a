package handlers

import (
	"math"
	"net/http"

	"github.com/wonny/limitup/internal/contracts"
	"github.com/wonny/limitup/internal/market"
)

// MarketHandler serves the configured market registry.
type MarketHandler struct {
	registry *market.Registry
}

func NewMarketHandler(registry *market.Registry) *MarketHandler {
	return &MarketHandler{registry: registry}
}

// marketInfo is the read-only view of one market spec.
type marketInfo struct {
	Code             string              `json:"code"`
	Name             string              `json:"name"`
	DefaultUpRate    float64             `json:"default_up_rate"`
	DefaultLimitType contracts.LimitType `json:"default_limit_type"`
	OpenBoards       []string            `json:"open_boards,omitempty"`
	AmountTable      bool                `json:"amount_table"`
	TickBands        int                 `json:"tick_bands"`
}

// List returns every configured market.
// GET /api/markets
func (h *MarketHandler) List(w http.ResponseWriter, r *http.Request) {
	codes := h.registry.Codes()
	infos := make([]marketInfo, 0, len(codes))
	for _, code := range codes {
		spec, err := h.registry.Get(code)
		if err != nil {
			continue
		}
		rate := spec.DefaultUpRate
		if math.IsNaN(rate) || math.IsInf(rate, 0) {
			rate = 0
		}
		infos = append(infos, marketInfo{
			Code:             spec.Code,
			Name:             spec.Name,
			DefaultUpRate:    rate,
			DefaultLimitType: spec.DefaultLimitType,
			OpenBoards:       spec.OpenBoards,
			AmountTable:      spec.MoveAmount != nil,
			TickBands:        len(spec.Ticks),
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"markets": infos,
	})
}
