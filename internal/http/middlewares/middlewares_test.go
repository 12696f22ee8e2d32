package middlewares_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/expromedia/Marx/internal/auth"
	"github.com/expromedia/Marx/internal/domain/user"
	"github.com/expromedia/Marx/internal/http/middlewares"
	"github.com/expromedia/Marx/internal/portal"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	verifyFn func(token string) (*auth.Claims, error)
}

func (f fakeVerifier) VerifyAccessToken(token string) (*auth.Claims, error) {
	return f.verifyFn(token)
}

type fakeRestorer struct {
	restoreFn func(ctx context.Context, clientID string) (portal.Snapshot, error)
}

func (f fakeRestorer) Restore(ctx context.Context, clientID string) (portal.Snapshot, error) {
	return f.restoreFn(ctx, clientID)
}

func TestClientID(t *testing.T) {
	known := uuid.NewString()

	tests := []struct {
		name     string
		header   string
		cookie   string
		wantSame bool
	}{
		{name: "header wins", header: known, wantSame: true},
		{name: "cookie", cookie: known, wantSame: true},
		{name: "garbage is replaced", header: "not-a-uuid"},
		{name: "none issues one"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(middlewares.ClientID(false))

			var seen string
			r.GET("/x", func(c *gin.Context) {
				seen = middlewares.ClientIDFromContext(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.header != "" {
				req.Header.Set(middlewares.ClientIDHeader, tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: middlewares.ClientCookie, Value: tt.cookie})
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if _, err := uuid.Parse(seen); err != nil {
				t.Fatalf("client id %q is not a uuid", seen)
			}
			if tt.wantSame && seen != known {
				t.Fatalf("got client id %q, want %q", seen, known)
			}
			if w.Header().Get(middlewares.ClientIDHeader) != seen {
				t.Fatalf("response header does not echo the client id")
			}
			if !strings.Contains(w.Header().Get("Set-Cookie"), middlewares.ClientCookie+"="+seen) {
				t.Fatalf("cookie not set: %q", w.Header().Get("Set-Cookie"))
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	clientID := uuid.NewString()
	admin := user.User{Username: "info@expromedia.com.ng", DisplayName: "John Smith", Role: user.RoleAdmin}

	goodClaims := &auth.Claims{ClientID: clientID, Username: admin.Username, Role: admin.Role}

	tests := []struct {
		name       string
		header     string
		verify     func(string) (*auth.Claims, error)
		restore    func(context.Context, string) (portal.Snapshot, error)
		wantStatus int
	}{
		{
			name:       "missing header",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "bad token",
			header: "Bearer nope",
			verify: func(string) (*auth.Claims, error) {
				return nil, auth.ErrInvalidToken
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "token for another client",
			header: "Bearer t",
			verify: func(string) (*auth.Claims, error) {
				return &auth.Claims{ClientID: uuid.NewString(), Username: admin.Username, Role: admin.Role}, nil
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "session already cleared",
			header: "Bearer t",
			verify: func(string) (*auth.Claims, error) { return goodClaims, nil },
			restore: func(context.Context, string) (portal.Snapshot, error) {
				return portal.Snapshot{Phase: portal.PhaseIdle}, nil
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "storage down",
			header: "Bearer t",
			verify: func(string) (*auth.Claims, error) { return goodClaims, nil },
			restore: func(context.Context, string) (portal.Snapshot, error) {
				return portal.Snapshot{}, errors.New("redis down")
			},
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:   "ok",
			header: "Bearer t",
			verify: func(string) (*auth.Claims, error) { return goodClaims, nil },
			restore: func(context.Context, string) (portal.Snapshot, error) {
				u := admin
				return portal.Snapshot{Phase: portal.PhaseLoggedIn, User: &u}, nil
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			m := middlewares.NewAuthMiddleware(
				fakeVerifier{verifyFn: tt.verify},
				fakeRestorer{restoreFn: tt.restore},
			)

			r := gin.New()
			r.Use(middlewares.ClientID(false))
			r.GET("/x", m.RequireAuth(), middlewares.RequireRole(user.RoleAdmin), func(c *gin.Context) {
				u, ok := middlewares.UserFromContext(c)
				if !ok || u != admin {
					t.Errorf("user not on context: %+v", u)
				}
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set(middlewares.ClientIDHeader, clientID)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestRequireRole_ForbidsStaff(t *testing.T) {
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		c.Set(middlewares.CtxUser, user.User{Username: "s", Role: user.RoleStaff})
	}, middlewares.RequireRole(user.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	if w.Code != http.StatusForbidden {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := middlewares.NewRateLimiter(2, time.Minute)

	r := gin.New()
	r.POST("/auth/login", rl.RateLimiterMiddleware(middlewares.KeyByIP), func(c *gin.Context) {
		c.Status(http.StatusAccepted)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests && w.Header().Get("Retry-After") == "" {
			t.Fatalf("missing Retry-After header")
		}
	}

	want := []int{http.StatusAccepted, http.StatusAccepted, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("request %d: got %d, want %d", i, codes[i], want[i])
		}
	}
}

func TestRequireJSON(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.RequireJSON())
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name       string
		body       string
		ct         string
		wantStatus int
	}{
		{name: "json", body: `{}`, ct: "application/json; charset=utf-8", wantStatus: http.StatusOK},
		{name: "form", body: `a=b`, ct: "application/x-www-form-urlencoded", wantStatus: http.StatusUnsupportedMediaType},
		{name: "no body", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(tt.body))
			if tt.ct != "" {
				req.Header.Set("Content-Type", tt.ct)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("got %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.CORSMiddleware([]string{"http://localhost:5173"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantAllow  string
	}{
		{name: "allowed simple", method: http.MethodGet, origin: "http://localhost:5173", wantStatus: http.StatusOK, wantAllow: "http://localhost:5173"},
		{name: "other origin still served", method: http.MethodGet, origin: "http://evil.test", wantStatus: http.StatusOK},
		{name: "allowed preflight", method: http.MethodOptions, origin: "http://localhost:5173", wantStatus: http.StatusNoContent, wantAllow: "http://localhost:5173"},
		{name: "foreign preflight", method: http.MethodOptions, origin: "http://evil.test", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/x", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Fatalf("allow origin = %q, want %q", got, tt.wantAllow)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.SecurityHeaders(true))
	r.GET("/auth/session", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/dashboard/menu", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/session", nil))
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("auth responses must not be cached")
	}
	if w.Header().Get("Strict-Transport-Security") == "" {
		t.Fatalf("expected HSTS")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard/menu", nil))
	if w.Header().Get("Cache-Control") != "" {
		t.Fatalf("unexpected Cache-Control on dashboard route")
	}
}
