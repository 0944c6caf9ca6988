package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func secured(opt SecurityOptions, pre ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(pre...)
	r.Use(SecurityHeaders(opt))
	r.GET("/questions/popular", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestSecurityHeaders_Baseline(t *testing.T) {
	r := secured(SecurityOptions{}, func(c *gin.Context) {
		c.Header("X-Request-ID", "rid-123")
		c.Next()
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/questions/popular", nil))

	h := w.Header()
	if h.Get("X-Content-Type-Options") != "nosniff" ||
		h.Get("X-Frame-Options") != "DENY" ||
		h.Get("Referrer-Policy") != "no-referrer" {
		t.Fatalf("baseline headers missing: %#v", h)
	}
	for _, k := range []string{"Permissions-Policy", "Cache-Control", "Strict-Transport-Security", "Vary"} {
		if h.Get(k) != "" {
			t.Fatalf("unexpected %s: %q", k, h.Get(k))
		}
	}
	if got := h.Get("Access-Control-Expose-Headers"); got != "X-Request-ID, ETag, Idempotency-Replayed" {
		t.Fatalf("expose headers = %q", got)
	}
}

func TestSecurityHeaders_ExposeHeadersMerge(t *testing.T) {
	cases := []struct {
		name, existing, want string
	}{
		{"append", "Foo", "Foo, X-Request-ID, ETag, Idempotency-Replayed"},
		{"no duplicates", "X-Request-ID, ETag", "X-Request-ID, ETag, Idempotency-Replayed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := secured(SecurityOptions{}, func(c *gin.Context) {
				c.Header("X-Request-ID", "rid-abc")
				c.Header("Access-Control-Expose-Headers", tc.existing)
				c.Next()
			})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/questions/popular", nil))
			if got := w.Header().Get("Access-Control-Expose-Headers"); got != tc.want {
				t.Fatalf("got %q; want %q", got, tc.want)
			}
		})
	}
}

func TestSecurityHeaders_VaryOnIdentity(t *testing.T) {
	r := secured(SecurityOptions{VaryOnIdentity: true})

	// Anonymous: shareable, but caches must key on the identity header.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/questions/popular", nil))
	if w.Header().Get("Vary") != HeaderUserID || w.Header().Get("Cache-Control") != "" {
		t.Fatalf("anonymous headers: %#v", w.Header())
	}

	// Identified callers get private responses.
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/questions/popular", nil)
	req.Header.Set(HeaderUserID, "7")
	r.ServeHTTP(w, req)
	if w.Header().Get("Cache-Control") != "private, no-cache" {
		t.Fatalf("identified Cache-Control = %q", w.Header().Get("Cache-Control"))
	}

	// NoStore wins over private.
	r = secured(SecurityOptions{VaryOnIdentity: true, NoStore: true})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("no-store expected, got %q", w.Header().Get("Cache-Control"))
	}
}

func TestSecurityHeaders_PolicyNoStoreHSTS(t *testing.T) {
	r := secured(SecurityOptions{
		EnableHSTS:   true,
		HSTSMaxAge:   24 * time.Hour,
		NoStore:      true,
		EnablePolicy: true,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/questions/popular", nil)
	req.TLS = &tls.ConnectionState{}
	r.ServeHTTP(w, req)

	h := w.Header()
	if h.Get("Permissions-Policy") == "" || h.Get("X-Permitted-Cross-Domain-Policies") != "none" {
		t.Fatalf("missing policy headers: %#v", h)
	}
	if h.Get("Cache-Control") != "no-store" || h.Get("Pragma") != "no-cache" || h.Get("Expires") != "0" {
		t.Fatalf("missing cache headers: %#v", h)
	}
	if got := h.Get("Strict-Transport-Security"); got != "max-age=86400; includeSubDomains; preload" {
		t.Fatalf("HSTS = %q", got)
	}
}

func TestSecurityHeaders_HSTSOnlyOverHTTPS(t *testing.T) {
	r := secured(SecurityOptions{EnableHSTS: true})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/questions/popular", nil))
	if got := w.Header().Get("Strict-Transport-Security"); got != "" {
		t.Fatalf("HSTS over plain HTTP: %q", got)
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/questions/popular", nil)
	req.Header.Set("X-Forwarded-Proto", "HTTPS")
	r.ServeHTTP(w, req)
	// Zero max age falls back to 180 days.
	if got := w.Header().Get("Strict-Transport-Security"); !strings.HasPrefix(got, "max-age=15552000;") {
		t.Fatalf("HSTS via proxy = %q", got)
	}
}

func Test_exposeHeader(t *testing.T) {
	h := http.Header{}
	exposeHeader(h, "ETag")
	exposeHeader(h, "ETag")
	exposeHeader(h, "X-Request-ID")
	if got := h.Get("Access-Control-Expose-Headers"); got != "ETag, X-Request-ID" {
		t.Fatalf("expose header = %q", got)
	}
}
