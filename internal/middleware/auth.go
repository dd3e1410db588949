package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"crmtasks/internal/authz"
)

const (
	CtxUserID   = "user_id"
	CtxRoleID   = "role_id"
	CtxTenantID = "tenant_id"
)

type Claims struct {
	UserID   int    `json:"user_id"`
	RoleID   int    `json:"role_id"`
	TenantID string `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

// Credentials holds what AuthMiddleware verifies against. Either may be empty.
type Credentials struct {
	JWTKey         []byte
	ServiceKeyHash []byte
}

// public endpoints that never require a token
func isPublicPath(path string) bool {
	if strings.HasPrefix(path, "/swagger") ||
		strings.HasPrefix(path, "/healthz") {
		return true
	}
	return false
}

func AuthMiddleware(creds Credentials) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || isPublicPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		// service callers (backend jobs, edge proxies) send the service key
		if key := strings.TrimSpace(c.GetHeader("apikey")); key != "" {
			if len(creds.ServiceKeyHash) == 0 ||
				bcrypt.CompareHashAndPassword(creds.ServiceKeyHash, []byte(key)) != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid service key"})
				return
			}
			c.Set(CtxUserID, 0)
			c.Set(CtxRoleID, authz.RoleAdmin)
			c.Next()
			return
		}

		tokenStr, ok := bearerToken(c)
		if !ok || len(creds.JWTKey) == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
			// HMAC only
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return creds.JWTKey, nil
		}, jwt.WithLeeway(2*time.Minute), jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRoleID, claims.RoleID)
		if claims.TenantID != "" {
			c.Set(CtxTenantID, claims.TenantID)
		}
		c.Next()
	}
}

// bearerToken reads the Authorization header, then the access_token cookie
// (dashboard forms), then the token query parameter (WebSocket clients).
func bearerToken(c *gin.Context) (string, bool) {
	if h := strings.TrimSpace(c.GetHeader("Authorization")); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", false
		}
		tok := strings.TrimSpace(parts[1])
		return tok, tok != ""
	}
	if ck, err := c.Cookie("access_token"); err == nil && ck != "" {
		return ck, true
	}
	if q := c.Query("token"); q != "" {
		return q, true
	}
	return "", false
}

// Anonymous grants every request the given role. Used when no credentials are
// configured (local development).
func Anonymous(roleID int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(CtxUserID, 0)
		c.Set(CtxRoleID, roleID)
		c.Next()
	}
}

// IssueToken signs claims with key; used by tooling and tests.
func IssueToken(key []byte, userID, roleID int, tenantID string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:   userID,
		RoleID:   roleID,
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}
