// Package handlers implements the HTTP API handlers.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/limitup/internal/contracts"
	"github.com/wonny/limitup/internal/store"
	"github.com/wonny/limitup/pkg/logger"
	"github.com/wonny/limitup/pkg/redis"
)

// ClassifyRunner triggers a pipeline run; satisfied by pipeline.Runner.
type ClassifyRunner interface {
	Run(ctx context.Context, market string, asOf time.Time) (*contracts.Snapshot, error)
}

// snapshotCacheTTL keeps served snapshots hot between runs without
// letting a stale board outlive the next scheduled classify.
const snapshotCacheTTL = 5 * time.Minute

// SnapshotHandler serves classified snapshots and triggers reruns.
// ⭐ SSOT: snapshot API handlers live only in this struct
type SnapshotHandler struct {
	snapshots contracts.SnapshotRepository
	runner    ClassifyRunner
	cache     *redis.Cache
	logger    *logger.Logger
}

func NewSnapshotHandler(snapshots contracts.SnapshotRepository, runner ClassifyRunner, cache *redis.Cache, log *logger.Logger) *SnapshotHandler {
	return &SnapshotHandler{
		snapshots: snapshots,
		runner:    runner,
		cache:     cache,
		logger:    log,
	}
}

// GetSnapshot returns the full snapshot for a market.
// GET /api/markets/{market}/snapshot?date=2025-07-14
func (h *SnapshotHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.load(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// GetBoard returns only the classified board rows.
func (h *SnapshotHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.load(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"market": snap.Market,
		"date":   snap.Date,
		"rows":   snap.Rows,
		"stats":  snap.Stats,
	})
}

// GetSectors returns the sector rollups.
func (h *SnapshotHandler) GetSectors(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.load(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"market":            snap.Market,
		"date":              snap.Date,
		"sectors":           snap.Sectors,
		"watchlist_sectors": snap.WatchlistSectors,
	})
}

// GetWatchlist returns the surge watchlist.
func (h *SnapshotHandler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.load(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"market":    snap.Market,
		"date":      snap.Date,
		"watchlist": snap.Watchlist,
	})
}

// GetPeers returns the same-sector peer lists.
func (h *SnapshotHandler) GetPeers(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.load(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"market":          snap.Market,
		"date":            snap.Date,
		"peers_by_sector": snap.PeersBySector,
	})
}

// Classify triggers a pipeline run for the market right now.
// POST /api/markets/{market}/classify?date=2025-07-14
func (h *SnapshotHandler) Classify(w http.ResponseWriter, r *http.Request) {
	market := mux.Vars(r)["market"]

	asOf := time.Now()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	snap, err := h.runner.Run(r.Context(), market, asOf)
	if err != nil {
		h.logger.WithError(err).Error("Classify run failed")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if h.cache != nil {
		h.cache.Delete(r.Context(), "snapshot:"+snap.Market)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"market": snap.Market,
		"date":   snap.Date,
		"stats":  snap.Stats,
	})
}

// load resolves the snapshot for the request, going through the cache
// for latest-snapshot reads.
func (h *SnapshotHandler) load(w http.ResponseWriter, r *http.Request) (*contracts.Snapshot, bool) {
	market := mux.Vars(r)["market"]

	if d := r.URL.Query().Get("date"); d != "" {
		date, err := time.Parse("2006-01-02", d)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
			return nil, false
		}
		snap, err := h.snapshots.Get(r.Context(), market, date)
		if err != nil {
			h.respondLoadError(w, err)
			return nil, false
		}
		return snap, true
	}

	var snap contracts.Snapshot
	if h.cache != nil {
		err := h.cache.GetOrSet(r.Context(), "snapshot:"+market, &snap, snapshotCacheTTL, func() (interface{}, error) {
			return h.snapshots.Latest(r.Context(), market)
		})
		if err != nil {
			h.respondLoadError(w, err)
			return nil, false
		}
		return &snap, true
	}

	latest, err := h.snapshots.Latest(r.Context(), market)
	if err != nil {
		h.respondLoadError(w, err)
		return nil, false
	}
	return latest, true
}

func (h *SnapshotHandler) respondLoadError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrSnapshotNotFound) {
		respondError(w, http.StatusNotFound, "no snapshot for this market/date")
		return
	}
	h.logger.WithError(err).Error("Failed to load snapshot")
	respondError(w, http.StatusInternalServerError, "failed to load snapshot")
}
