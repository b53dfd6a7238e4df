package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	apperr "github.com/theshibabasement/neuroflow/internal/pkg/errors"
	"github.com/theshibabasement/neuroflow/internal/platform/logger"
	"github.com/theshibabasement/neuroflow/internal/services"
)

type fakeAuthService struct {
	keys map[string]*services.Principal
}

func (f *fakeAuthService) Validate(ctx context.Context, rawKey string) (*services.Principal, error) {
	if p, ok := f.keys[rawKey]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: unknown api key", apperr.ErrUnauthorized)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	auth := &fakeAuthService{keys: map[string]*services.Principal{
		"user-key":  {Label: "static"},
		"admin-key": {Label: "admin", Admin: true},
	}}
	am := NewAuthMiddleware(log, auth)
	r := gin.New()
	r.GET("/protected", am.RequireAPIKey(), func(c *gin.Context) {
		p := Principal(c)
		if p == nil {
			c.String(http.StatusInternalServerError, "no principal")
			return
		}
		c.String(http.StatusOK, p.Label)
	})
	r.GET("/admin", am.RequireAdminKey(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func doRequest(r *gin.Engine, path string, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAPIKeyHeaderAndBearer(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, "/protected", "X-API-Key", "user-key")
	if w.Code != http.StatusOK || w.Body.String() != "static" {
		t.Fatalf("x-api-key: code=%d body=%q", w.Code, w.Body.String())
	}

	w = doRequest(r, "/protected", "Authorization", "Bearer user-key")
	if w.Code != http.StatusOK {
		t.Fatalf("bearer: code=%d", w.Code)
	}
}

func TestRequireAPIKeyRejectsMissingAndUnknown(t *testing.T) {
	r := newTestRouter(t)

	if w := doRequest(r, "/protected", "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing key: code=%d", w.Code)
	}
	if w := doRequest(r, "/protected", "X-API-Key", "nope"); w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown key: code=%d", w.Code)
	}
	if w := doRequest(r, "/protected", "Authorization", "Basic user-key"); w.Code != http.StatusUnauthorized {
		t.Fatalf("non-bearer auth: code=%d", w.Code)
	}
}

func TestRequireAdminKey(t *testing.T) {
	r := newTestRouter(t)

	if w := doRequest(r, "/admin", "X-API-Key", "admin-key"); w.Code != http.StatusOK {
		t.Fatalf("admin key: code=%d", w.Code)
	}
	if w := doRequest(r, "/admin", "X-API-Key", "user-key"); w.Code != http.StatusForbidden {
		t.Fatalf("non-admin key: code=%d", w.Code)
	}
	if w := doRequest(r, "/admin", "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing key: code=%d", w.Code)
	}
}
