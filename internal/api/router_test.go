package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/limitup/internal/api/handlers"
	"github.com/wonny/limitup/internal/api/ws"
	"github.com/wonny/limitup/internal/contracts"
	"github.com/wonny/limitup/internal/market"
	"github.com/wonny/limitup/pkg/logger"
)

type fixedSnapshotRepo struct {
	snap *contracts.Snapshot
}

func (f *fixedSnapshotRepo) Save(context.Context, *contracts.Snapshot) error { return nil }

func (f *fixedSnapshotRepo) Latest(context.Context, string) (*contracts.Snapshot, error) {
	return f.snap, nil
}

func (f *fixedSnapshotRepo) Get(context.Context, string, time.Time) (*contracts.Snapshot, error) {
	return f.snap, nil
}

func testRouter() http.Handler {
	log := logger.NewWithWriter(io.Discard)
	repo := &fixedSnapshotRepo{snap: &contracts.Snapshot{
		Market: "TW",
		Date:   time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC),
	}}
	return NewRouter(
		handlers.NewSnapshotHandler(repo, nil, nil, log),
		handlers.NewMarketHandler(market.NewDefaultRegistry()),
		ws.NewHub(log),
		log,
	)
}

func TestHealthEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestSnapshotRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets/TW/snapshot", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMarketsRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClassifyRequiresPost(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets/TW/classify", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
