package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/stashkeeper-backend/internal/items"
	"github.com/angelmondragon/stashkeeper-backend/internal/storetest"
	"github.com/angelmondragon/stashkeeper-backend/internal/tracked"
	"github.com/angelmondragon/stashkeeper-backend/pkg/auth"
	"github.com/angelmondragon/stashkeeper-backend/pkg/cache"
	"github.com/angelmondragon/stashkeeper-backend/pkg/config"
	"github.com/angelmondragon/stashkeeper-backend/pkg/logger"
	"github.com/angelmondragon/stashkeeper-backend/pkg/metrics"
)

type harness struct {
	handler http.Handler
	cfg     *config.Config
}

func newHarness(t *testing.T) harness {
	t.Helper()
	cfg := &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{Secret: "router-secret", Issuer: "stashkeeper-test", ExpirationMinutes: 30},
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	client := storetest.Open(t)
	reg := prometheus.NewRegistry()
	c := cache.New(cache.NewMemoryBackend(), cache.Options{Metrics: metrics.NewCacheMetrics(reg), Logger: logg})

	itemSvc, err := items.NewService(items.NewRepository(client.DB()), client, c, auth.ContextUser{}, logg)
	require.NoError(t, err)
	trackedRepo := tracked.NewRepository(client.DB())
	engine, err := tracked.NewEngine(trackedRepo, client, logg, metrics.NewTransitionMetrics(reg))
	require.NoError(t, err)
	trackedSvc, err := tracked.NewService(trackedRepo, engine, client, c, auth.ContextUser{}, logg)
	require.NoError(t, err)

	handler := NewRouter(cfg, logg, Deps{DB: client, Cache: c, Gatherer: reg, Items: itemSvc, Tracked: trackedSvc})
	return harness{handler: handler, cfg: cfg}
}

func (h harness) token(t *testing.T, user uuid.UUID) string {
	t.Helper()
	token, err := auth.MintAccessToken(h.cfg.JWT, time.Now(), auth.AccessTokenPayload{UserID: user})
	require.NoError(t, err)
	return token
}

func (h harness) call(method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthRoutesArePublic(t *testing.T) {
	h := newHarness(t)

	rec := h.call(http.MethodGet, "/health/live", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.call(http.MethodGet, "/health/ready", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cache_memory":"ok"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestAPIRequiresBearerToken(t *testing.T) {
	h := newHarness(t)
	rec := h.call(http.MethodGet, "/api/v1/tracked-items", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTrackedLifecycleOverHTTP(t *testing.T) {
	h := newHarness(t)
	owner := h.token(t, uuid.New())

	rec := h.call(http.MethodPost, "/api/v1/tracked-items", owner, `{"name":"Log cabin","season":"FALL"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Data tracked.TrackedItemDTO `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	base := "/api/v1/tracked-items/" + created.Data.ID.String()

	rec = h.call(http.MethodPost, base+"/transitions", owner, `{"status":"IN_USE","usage":{"location":"shelf A"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.call(http.MethodGet, "/api/v1/tracked-items?status=IN_USE", owner, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)

	rec = h.call(http.MethodGet, base+"/usage-periods", owner, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"location":"shelf A"`)

	stranger := h.token(t, uuid.New())
	rec = h.call(http.MethodGet, base, stranger, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.call(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `stashkeeper_transitions_total{from="STORAGE",outcome="applied",to="IN_USE"} 1`)
	assert.Contains(t, rec.Body.String(), "stashkeeper_cache_requests_total")
}

func TestItemRoutesMounted(t *testing.T) {
	h := newHarness(t)
	owner := h.token(t, uuid.New())

	rec := h.call(http.MethodPost, "/api/v1/items", owner, `{"name":"Charizard","category":"TCG"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = h.call(http.MethodGet, "/api/v1/items?category=TCG", owner, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"item_number":1`)
}
