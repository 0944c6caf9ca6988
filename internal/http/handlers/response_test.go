package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-forum-backend/internal/http/middleware"
)

// loggedRouter installs a request id, caller identity and a capturing
// request-scoped logger in front of h.
func loggedRouter(buf *bytes.Buffer, h gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zerolog.New(buf).Level(zerolog.DebugLevel)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("X-Request-ID", "rid-1")
		c.Set("logger", &logger)
		c.Next()
	}, middleware.Identity())
	r.Any("/x", h)
	return r
}

func Test_fail_500_LogsCause(t *testing.T) {
	var buf bytes.Buffer
	r := loggedRouter(&buf, func(c *gin.Context) {
		_ = c.Error(errors.New("disk full"))
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal error")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set(middleware.HeaderUserID, "42")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.RequestID != "rid-1" || resp.Code != ErrCodeInternal || resp.Message != "internal error" {
		t.Fatalf("unexpected body: %+v", resp)
	}
	if strings.Contains(w.Body.String(), "disk full") {
		t.Fatalf("cause leaked to the client: %s", w.Body.String())
	}

	logs := buf.String()
	for _, want := range []string{`"level":"error"`, `"error":"disk full"`, `"code":"internal_error"`} {
		if !strings.Contains(logs, want) {
			t.Fatalf("log missing %s: %s", want, logs)
		}
	}
}

func Test_fail_4xx_LogsAtDebug(t *testing.T) {
	var buf bytes.Buffer
	r := loggedRouter(&buf, func(c *gin.Context) {
		Fail(c, http.StatusConflict, ErrCodeInvalidState, "question is not a draft")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
	if w.Code != http.StatusConflict {
		t.Fatalf("status=%d", w.Code)
	}
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("json: %v", err)
	}
	if er.Code != ErrCodeInvalidState {
		t.Fatalf("unexpected body: %+v", er)
	}
	if !strings.Contains(buf.String(), `"level":"debug"`) || strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("unexpected log: %s", buf.String())
	}
}

func Test_SuccessHelpers(t *testing.T) {
	var buf bytes.Buffer
	r := loggedRouter(&buf, func(c *gin.Context) {
		if c.Request.Method == http.MethodDelete {
			noContent(c)
			return
		}
		ok(c, http.StatusCreated, gin.H{"id": 7, "name": "Weekend plans"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body["name"] != "Weekend plans" || body["id"] != float64(7) {
		t.Fatalf("unexpected body: %#v", body)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/x", nil))
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("noContent: %d %q", w.Code, w.Body.String())
	}
}
