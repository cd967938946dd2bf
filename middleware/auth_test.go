package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"storefront-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret-key-for-unit-tests")
	os.Exit(m.Run())
}

func TestCan(t *testing.T) {
	cases := []struct {
		role   string
		action string
		want   bool
	}{
		{"admin", "category_force_delete", true},
		{"admin", "product_delete", true},
		{"manager", "category_create", true},
		{"manager", "attribute_manage", true},
		{"manager", "category_force_delete", false},
		{"viewer", "category_create", false},
		{"viewer", "product_edit", false},
		{"unknown-role", "category_create", false},
	}
	for _, tc := range cases {
		if got := Can(tc.role, tc.action); got != tc.want {
			t.Errorf("Can(%q, %q) = %v, want %v", tc.role, tc.action, got, tc.want)
		}
	}
}

func TestAuthMiddlewareSetsIdentity(t *testing.T) {
	userID := uuid.New()
	tenantID := uuid.New()
	token, err := utils.GenerateToken(userID, tenantID, "user@test.com", "manager")
	if err != nil {
		t.Fatalf("token generation failed: %v", err)
	}

	r := gin.New()
	r.GET("/probe", AuthMiddleware(), func(c *gin.Context) {
		if c.MustGet("user_id").(uuid.UUID) != userID {
			t.Error("user_id not propagated")
		}
		if c.MustGet("tenant_id").(uuid.UUID) != tenantID {
			t.Error("tenant_id not propagated")
		}
		if c.MustGet("user_role").(string) != "manager" {
			t.Error("user_role not propagated")
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuthMiddlewareRejectsBadTokens(t *testing.T) {
	r := gin.New()
	r.GET("/probe", AuthMiddleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, header := range []string{"", "Basic abc", "Bearer not-a-jwt"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/probe", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, w.Code)
		}
	}
}

func TestRequireCapability(t *testing.T) {
	r := gin.New()
	r.POST("/probe", func(c *gin.Context) {
		c.Set("user_role", "viewer")
		c.Next()
	}, RequireCapability("category_create"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/probe", nil))
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for viewer, got %d", w.Code)
	}
}

func TestRateLimiterExhaustsAndRefills(t *testing.T) {
	rl := NewRateLimiter(3, 300*time.Millisecond)

	for i := 0; i < 3; i++ {
		if !rl.allow("client") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.allow("client") {
		t.Error("expected the bucket exhausted after 3 requests")
	}

	// Another client has its own bucket
	if !rl.allow("other") {
		t.Error("expected an independent bucket per client")
	}

	time.Sleep(150 * time.Millisecond)
	if !rl.allow("client") {
		t.Error("expected a token refilled after the window fraction elapsed")
	}
}
