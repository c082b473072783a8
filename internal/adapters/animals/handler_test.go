package animals

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zookeeper/internal/core"
	"zookeeper/internal/infra/persistence/memory"
	"zookeeper/internal/logging"
	"zookeeper/pkg/domain"
)

type failingBackend struct{ *memory.Store }

func (failingBackend) Save(context.Context, domain.Snapshot) error { return errors.New("disk full") }

func seedAnimals() []domain.Animal {
	return []domain.Animal{
		{ID: "0", Name: "Max", Species: "dog", Diet: "herbivore", PersonalityTraits: []string{"loud", "hungry"}},
		{ID: "1", Name: "Midnight", Species: "cat", Diet: "carnivore", PersonalityTraits: []string{"rascal"}},
	}
}

func newTestService(t *testing.T, backend domain.SnapshotStore) *core.Service {
	t.Helper()
	store, err := core.OpenStore(context.Background(), backend)
	require.NoError(t, err)
	return core.NewService(store)
}

func newTestHandler(t *testing.T) (*Handler, *memory.Store) {
	t.Helper()
	backend := memory.NewStore(seedAnimals()...)
	return NewHandler(newTestService(t, backend), nil), backend
}

func decodeAnimals(t *testing.T, rec *httptest.ResponseRecorder) []domain.Animal {
	t.Helper()
	var out []domain.Animal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestListAnimalsFilters(t *testing.T) {
	h, _ := newTestHandler(t)
	cases := []struct {
		query string
		want  []string
	}{
		{"", []string{"Max", "Midnight"}},
		{"?diet=herbivore", []string{"Max"}},
		{"?personalityTraits=rascal&personalityTraits=loud", []string{}},
		{"?personalityTraits[]=loud&personalityTraits[]=hungry", []string{"Max"}},
		{"?species=cat&unknown=1", []string{"Midnight"}},
		{"?name=", []string{"Max", "Midnight"}},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/animals"+tc.query, nil))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			names := []string{}
			for _, a := range decodeAnimals(t, rec) {
				names = append(names, a.Name)
			}
			assert.Equal(t, tc.want, names)
		})
	}
}

func TestListAnimalsEmptyResultIsArray(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/animals?species=lion", nil))
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestGetAnimal(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/animals/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var a domain.Animal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	assert.Equal(t, "Midnight", a.Name)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/animals/42", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"animal not found"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/animals/1", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCreateAnimalJSON(t *testing.T) {
	h, backend := newTestHandler(t)
	body := `{"id":"99","name":"Rex","species":"dog","diet":"carnivore","personalityTraits":["loud"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/animals", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var created domain.Animal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "2", created.ID)
	assert.Equal(t, []string{"loud"}, created.PersonalityTraits)

	snap, err := backend.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Animals, 3)
	assert.Equal(t, "Rex", snap.Animals[2].Name)
}

func TestCreateAnimalForm(t *testing.T) {
	h, _ := newTestHandler(t)
	form := url.Values{
		"name":              {"Rex"},
		"species":           {"dog"},
		"diet":              {"carnivore"},
		"personalityTraits": {"loud", "brave"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/animals", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created domain.Animal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, []string{"loud", "brave"}, created.PersonalityTraits)
}

func TestCreateAnimalRejectsInvalidPayload(t *testing.T) {
	h, backend := newTestHandler(t)
	for _, body := range []string{
		`{"name":"Rex","species":"dog","diet":"carnivore"}`,
		`{"name":"Rex","species":"dog","diet":5,"personalityTraits":[]}`,
		`not json`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/animals", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, body)
		var payload struct {
			Error  string              `json:"error"`
			Fields []domain.FieldError `json:"fields"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, "The animal is not properly formatted.", payload.Error)
		assert.NotEmpty(t, payload.Fields)
	}
	assert.Equal(t, 0, backend.Saves())
}

func TestCreateAnimalPersistenceFailure(t *testing.T) {
	backend := failingBackend{memory.NewStore(seedAnimals()...)}
	svc := newTestService(t, backend)
	h := NewHandler(svc, nil)
	body := `{"name":"Rex","species":"dog","diet":"carnivore","personalityTraits":[]}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/animals", strings.NewReader(body)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 2, svc.Store().Len())
}

func TestHandlerWithoutService(t *testing.T) {
	rec := httptest.NewRecorder()
	(&Handler{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/animals", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func writePublic(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"index.html":      "<h1>index</h1>",
		"animals.html":    "<h1>animals</h1>",
		"zookeepers.html": "<h1>zookeepers</h1>",
		"assets/app.css":  "body{}",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestRouterServesPagesAssetsAndFallback(t *testing.T) {
	backend := memory.NewStore(seedAnimals()...)
	router := NewRouter(RouterConfig{Service: newTestService(t, backend), PublicDir: writePublic(t)})
	cases := map[string]string{
		"/":               "<h1>index</h1>",
		"/animals":        "<h1>animals</h1>",
		"/zookeepers":     "<h1>zookeepers</h1>",
		"/assets/app.css": "body{}",
		"/anything/else":  "<h1>index</h1>",
	}
	for path, want := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, want, rec.Body.String(), path)
	}
}

func TestRouterStampsRequestIDAndExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := core.NewPrometheusMetricsRecorder(reg)
	require.NoError(t, err)
	store, err := core.OpenStore(context.Background(), memory.NewStore(seedAnimals()...))
	require.NoError(t, err)
	svc := core.NewService(store, core.WithMetricsRecorder(metrics))
	router := NewRouter(RouterConfig{Service: svc, PublicDir: t.TempDir(), Gatherer: reg})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/animals", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/api/animals/0", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `zookeeper_operations_total{operation="list_animals",status="success"} 1`)
	assert.Contains(t, rec.Body.String(), "zookeeper_animals 2")
}

func TestRequestIDFromContext(t *testing.T) {
	var seen string
	h := withRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
	assert.Empty(t, RequestID(context.Background()))
}

func TestRouterLogsRequests(t *testing.T) {
	var buf bytes.Buffer
	backend := memory.NewStore(seedAnimals()...)
	router := NewRouter(RouterConfig{
		Service:   newTestService(t, backend),
		Logger:    logging.New(&buf, "info", "text"),
		PublicDir: t.TempDir(),
	})
	req := httptest.NewRequest(http.MethodGet, "/api/animals/7", nil)
	req.Header.Set(RequestIDHeader, "abc")
	router.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	assert.Contains(t, line, "http request")
	assert.Contains(t, line, "status=404")
	assert.Contains(t, line, "request_id=abc")
}

func TestRejectedCreateIsObservedAsClientError(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := core.NewPrometheusMetricsRecorder(reg)
	require.NoError(t, err)
	store, err := core.OpenStore(context.Background(), memory.NewStore(seedAnimals()...))
	require.NoError(t, err)
	svc := core.NewService(store, core.WithMetricsRecorder(metrics))
	router := NewRouter(RouterConfig{Service: svc, PublicDir: t.TempDir(), Gatherer: reg})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/animals", strings.NewReader(`{"name":"Rex"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/animals", strings.NewReader("name=Rex"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `zookeeper_operations_total{operation="create_animal",status="success"} 2`)
	assert.NotContains(t, rec.Body.String(), `operation="create_animal",status="error"`)
}
