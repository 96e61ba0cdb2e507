package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "ballotgate/internal/platform/errors"
	pnet "ballotgate/internal/platform/net"
	phttp "ballotgate/internal/platform/net/http"
)

// helper to build a request with a request_id in context
func reqWithReqID(method, path, rid string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	return req.WithContext(pnet.WithRequestID(req.Context(), rid))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) phttp.Envelope {
	t.Helper()
	var env phttp.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal: %v (%s)", err, rec.Body.String())
	}
	return env
}

func TestRespondOK(t *testing.T) {
	rec := httptest.NewRecorder()
	phttp.RespondOK(rec, reqWithReqID("GET", "/", "rid-ok"), map[string]any{"k": "v"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content-type = %q", ct)
	}
	env := decode(t, rec)
	if env.RequestID != "rid-ok" {
		t.Fatalf("bad envelope: %+v", env)
	}
	m, ok := env.Data.(map[string]any)
	if !ok || m["k"] != "v" {
		t.Fatalf("expected data map with k=v, got %#v", env.Data)
	}
}

func TestRespondError_MapsCode(t *testing.T) {
	rec := httptest.NewRecorder()
	phttp.RespondError(rec, reqWithReqID("GET", "/", "rid-err"), perr.DuplicateKeyf("participant exists"))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"code":"duplicate_key"`) {
		t.Fatalf("code should serialize by name: %s", rec.Body.String())
	}
	env := decode(t, rec)
	if env.Error != "participant exists" || env.RequestID != "rid-err" {
		t.Fatalf("bad envelope: %+v", env)
	}
}

func TestHandle_ReturnStyle(t *testing.T) {
	cases := []struct {
		name   string
		resp   phttp.Response
		status int
	}{
		{"ok", phttp.OK("x"), http.StatusOK},
		{"created", phttp.Created("x"), http.StatusCreated},
		{"no content", phttp.NoContent(), http.StatusNoContent},
		{"zero status", phttp.Response{Body: 1}, http.StatusOK},
		{"error", phttp.Error(perr.Unauthorizedf("authentication failed")), http.StatusUnauthorized},
		{"foreign error", phttp.Error(errors.New("secret detail")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			phttp.Handle(func(*http.Request) phttp.Response { return tc.resp })(rec, httptest.NewRequest("GET", "/", nil))
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			if strings.Contains(rec.Body.String(), "secret detail") {
				t.Fatal("foreign error text leaked")
			}
		})
	}
}

func TestHandle_Headers(t *testing.T) {
	rec := httptest.NewRecorder()
	resp := phttp.OK(nil)
	resp.Header = http.Header{"Location": {"/lets-vote"}}
	phttp.Handle(func(*http.Request) phttp.Response { return resp })(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Header().Get("Location") != "/lets-vote" {
		t.Fatalf("header not copied: %v", rec.Header())
	}
}

func TestErrorWith_CarriesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	phttp.Handle(func(*http.Request) phttp.Response {
		return phttp.ErrorWith(perr.Unauthorizedf("authentication failed"), map[string]string{"reason": "Mismatch"})
	})(rec, httptest.NewRequest("POST", "/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decode(t, rec)
	m, _ := env.Data.(map[string]any)
	if env.Error != "authentication failed" || m["reason"] != "Mismatch" {
		t.Fatalf("bad envelope %+v", env)
	}
}

func TestJSONHandler(t *testing.T) {
	type in struct {
		ID string `json:"id" validate:"required"`
	}
	h := phttp.JSONHandler(func(_ *http.Request, v in) (any, error) {
		if v.ID == "boom" {
			return nil, perr.Unavailablef("store down")
		}
		if v.ID == "new" {
			return phttp.Created(v.ID), nil
		}
		return map[string]string{"id": v.ID}, nil
	})

	cases := []struct {
		body   string
		status int
	}{
		{`{"id":"V001"}`, http.StatusOK},
		{`{"id":"new"}`, http.StatusCreated},
		{`{"id":"boom"}`, http.StatusServiceUnavailable},
		{`{}`, http.StatusBadRequest},
		{`nope`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest("POST", "/", strings.NewReader(tc.body)))
		if rec.Code != tc.status {
			t.Fatalf("%s: status = %d, want %d", tc.body, rec.Code, tc.status)
		}
	}
}

func TestJSONHandlerNoBody(t *testing.T) {
	h := phttp.JSONHandlerNoBody(func(r *http.Request) (any, error) {
		return r.Context().Value(ctxKey{}), nil
	})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	h(rec, req.WithContext(context.WithValue(req.Context(), ctxKey{}, "hello")))
	if env := decode(t, rec); env.Data != "hello" {
		t.Fatalf("data = %#v", env.Data)
	}
}

type ctxKey struct{}
