package swaggerkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	phttp "ballotgate/internal/platform/net/http"
	"ballotgate/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
)

func serve(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	return rec
}

func TestMount_ServesDocWithDefaults(t *testing.T) {
	t.Setenv("API_DOCS_TITLE_SUFFIX", "(test)")
	var mutated bool
	testkit.Swap(t, &mutators, nil)
	Register(func(spec map[string]any) { mutated = true })
	Register(nil)

	m := chi.NewRouter()
	Mount(phttp.AdaptChi(m), true)

	rec := serve(t, m, "/api/docs/doc.json")
	if rec.Code != http.StatusOK {
		t.Fatalf("doc.json = %d", rec.Code)
	}
	var spec map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &spec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !mutated {
		t.Fatal("mutator not applied")
	}
	if spec["openapi"] != "3.0.3" || spec["servers"] == nil {
		t.Fatalf("servers/openapi not ensured: %v %v", spec["openapi"], spec["servers"])
	}
	if title := spec["info"].(map[string]any)["title"]; title != "ballotgate API (test)" {
		t.Fatalf("title = %v", title)
	}
	login := spec["paths"].(map[string]any)["/electors/login"].(map[string]any)["post"].(map[string]any)
	resps := login["responses"].(map[string]any)
	for _, code := range []string{"200", "401", "400", "500"} {
		if _, ok := resps[code]; !ok {
			t.Fatalf("login lacks %s response", code)
		}
	}

	if rec := serve(t, m, "/api/docs"); rec.Code != http.StatusPermanentRedirect {
		t.Fatalf("redirect = %d", rec.Code)
	}
}

func TestMount_Disabled(t *testing.T) {
	m := chi.NewRouter()
	Mount(phttp.AdaptChi(m), false)
	if rec := serve(t, m, "/api/docs/doc.json"); rec.Code != http.StatusNotFound {
		t.Fatalf("disabled docs = %d", rec.Code)
	}
}

func TestServeDocJSON_BadDocument(t *testing.T) {
	testkit.Swap(t, &docReader, func() []byte { return []byte("{") })
	if rec := serve(t, serveDocJSON(), "/"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("bad doc = %d", rec.Code)
	}
}

func TestEnsureServers_Downgrades31(t *testing.T) {
	spec := map[string]any{"openapi": "3.1.0", "servers": []any{}}
	ensureServers(spec, "/x")
	if spec["openapi"] != "3.0.3" {
		t.Fatalf("openapi = %v", spec["openapi"])
	}
}
