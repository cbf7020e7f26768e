package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"marketplace-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret-key-for-unit-tests")
}

func setupTestRouter() *gin.Engine {
	r := gin.New()

	protected := r.Group("/api")
	protected.Use(AuthMiddleware())
	protected.GET("/test", func(c *gin.Context) {
		userID, role, ok := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{
			"user_id": userID,
			"role":    role,
			"ok":      ok,
		})
	})

	admin := r.Group("/api/admin")
	admin.Use(AuthMiddleware())
	admin.Use(AdminMiddleware())
	admin.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "admin access granted"})
	})

	stores := r.Group("/api/stores")
	stores.Use(AuthMiddleware())
	stores.Use(StoreManagerMiddleware())
	stores.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "store access granted"})
	})

	owner := r.Group("/api/store-owner")
	owner.Use(AuthMiddleware())
	owner.Use(StoreOwnerMiddleware())
	owner.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "owner access granted"})
	})

	return r
}

func get(t *testing.T, router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)
	return w
}

func tokenFor(t *testing.T, role string) string {
	t.Helper()
	token, err := utils.GenerateToken(uuid.New(), role+"@test.com", role)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	router := setupTestRouter()

	w := get(t, router, "/api/test", tokenFor(t, "customer"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	router := setupTestRouter()

	w := get(t, router, "/api/test", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuthMiddlewareMalformedToken(t *testing.T) {
	router := setupTestRouter()

	w := get(t, router, "/api/test", "not-a-valid-token")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuthMiddlewareInvalidFormatNoBearer(t *testing.T) {
	router := setupTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/test", nil)
	req.Header.Set("Authorization", "Token "+tokenFor(t, "customer"))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	router := setupTestRouter()

	claims := utils.Claims{
		UserID: uuid.New(),
		Email:  "expired@test.com",
		Role:   "customer",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			Issuer:    "marketplace-backend",
		},
	}
	expiredToken, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(os.Getenv("JWT_SECRET")))

	w := get(t, router, "/api/test", expiredToken)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRoleGates(t *testing.T) {
	router := setupTestRouter()

	tests := []struct {
		path string
		role string
		want int
	}{
		{"/api/admin/test", "admin", http.StatusOK},
		{"/api/admin/test", "store_owner", http.StatusForbidden},
		{"/api/admin/test", "customer", http.StatusForbidden},
		{"/api/stores/test", "store_owner", http.StatusOK},
		{"/api/stores/test", "admin", http.StatusOK},
		{"/api/stores/test", "driver", http.StatusForbidden},
		{"/api/stores/test", "customer", http.StatusForbidden},
		{"/api/store-owner/test", "store_owner", http.StatusOK},
		{"/api/store-owner/test", "admin", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.role+" "+tt.path, func(t *testing.T) {
			w := get(t, router, tt.path, tokenFor(t, tt.role))
			if w.Code != tt.want {
				t.Fatalf("expected status %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestRequireRolesWithoutAuth(t *testing.T) {
	r := gin.New()
	r.GET("/open", AdminMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := get(t, r, "/open", "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403 without a role, got %d", w.Code)
	}
}

func TestCurrentUserMissing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, _, ok := CurrentUser(c); ok {
		t.Error("expected no current user on a bare context")
	}
}
