package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/blendify/internal/shared"
	"golang.org/x/oauth2"
)

type mockExchanger struct {
	token *oauth2.Token
	err   error
	codes []string
}

func (m *mockExchanger) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	m.codes = append(m.codes, code)
	return m.token, m.err
}

func newRouter(h Handler) *BasicRouter {
	router := NewBasicRouter()
	router.Handler(h)
	return router
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestCallbackPath(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"http://127.0.0.1:3000/callback", "/callback"},
		{"http://localhost:8888/auth/spotify", "/auth/spotify"},
		{"http://localhost:8888", DefaultCallbackPath},
		{"http://localhost:8888/", DefaultCallbackPath},
		{"", DefaultCallbackPath},
	}

	for _, tt := range tests {
		if got := CallbackPath(tt.uri); got != tt.want {
			t.Errorf("CallbackPath(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}

func TestOAuthHandler(t *testing.T) {
	t.Run("exchanges code", func(t *testing.T) {
		ex := &mockExchanger{token: &oauth2.Token{AccessToken: "access"}}
		h := NewOAuthHandler(ex, "state123", "http://127.0.0.1:3000/callback")

		rec := get(t, newRouter(h), "/callback?state=state123&code=abc")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Spotify account linked") {
			t.Error("expected success page")
		}

		result := <-h.Result()
		if result.Error() != nil || result.Token.AccessToken != "access" {
			t.Errorf("unexpected result %+v", result)
		}
		if len(ex.codes) != 1 || ex.codes[0] != "abc" {
			t.Errorf("unexpected exchanged codes %v", ex.codes)
		}
	})

	t.Run("rejects state mismatch", func(t *testing.T) {
		ex := &mockExchanger{}
		h := NewOAuthHandler(ex, "state123", "")

		rec := get(t, h, "/callback?state=forged&code=abc")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		result := <-h.Result()
		if !errors.Is(result.Error(), shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", result.Error())
		}
		if len(ex.codes) != 0 {
			t.Error("forged callback should not be exchanged")
		}
	})

	t.Run("reports denied authorization", func(t *testing.T) {
		h := NewOAuthHandler(&mockExchanger{}, "s", "")

		rec := get(t, h, "/callback?state=s&error=access_denied")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		result := <-h.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected access_denied error, got %v", result.Error())
		}
	})

	t.Run("exchange failure", func(t *testing.T) {
		h := NewOAuthHandler(&mockExchanger{err: errors.New("invalid_grant")}, "s", "")

		rec := get(t, h, "/callback?state=s&code=abc")
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		result := <-h.Result()
		if !errors.Is(result.Error(), shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", result.Error())
		}
	})

	t.Run("only one callback is processed", func(t *testing.T) {
		ex := &mockExchanger{token: &oauth2.Token{AccessToken: "access"}}
		h := NewOAuthHandler(ex, "s", "")

		get(t, h, "/callback?state=s&code=first")
		rec := get(t, h, "/callback?state=s&code=second")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected replay to be rejected, got %d", rec.Code)
		}
		if len(ex.codes) != 1 {
			t.Errorf("expected one exchange, got %d", len(ex.codes))
		}
		if _, ok := <-h.Result(); !ok {
			t.Error("expected one result before close")
		}
		if _, ok := <-h.Result(); ok {
			t.Error("expected channel to be closed after one result")
		}
	})
}

func TestBasicRouter(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	})

	t.Run("method filtering", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle("get", "/ping", ok)

		if rec := get(t, router, "/ping"); rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("first"), mark("second"))
		router.Handle(http.MethodGet, "/ping", ok)
		get(t, router, "/ping")

		if strings.Join(order, ",") != "first,second" {
			t.Errorf("unexpected middleware order %v", order)
		}
	})

	t.Run("request logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

		router := NewBasicRouter()
		router.Use(RequestLogger(logger))
		router.Handler(NewOAuthHandler(&mockExchanger{}, "s", ""))

		get(t, router, "/callback?state=forged&code=secret-code")

		out := buf.String()
		if !strings.Contains(out, "/callback") || !strings.Contains(out, "400") {
			t.Errorf("expected path and status in log, got %q", out)
		}
		if strings.Contains(out, "secret-code") {
			t.Error("query string should not be logged")
		}
	})
}

func TestStart(t *testing.T) {
	srv, errs := Start("127.0.0.1:0", NewBasicRouter(), shared.NewLogger(io.Discard))
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	select {
	case err := <-errs:
		t.Errorf("unexpected server error %v", err)
	default:
	}
}
