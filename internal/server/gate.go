package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AdminRole is the role claim the gate requires.
const AdminRole = "ADMIN"

// accessCookie is read when no Authorization header is sent.
const accessCookie = "accessToken"

// GateClaims are the claims of a console access token.
type GateClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Gate lets requests with a valid HS256 admin token through. Any other
// request is redirected to redirectURL, or rejected with 401 when it is
// empty. An empty secret disables the gate.
func Gate(secret, redirectURL string) gin.HandlerFunc {
	if secret == "" {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		claims, err := ValidateToken(secret, bearerToken(c))
		if err == nil && claims.Role != AdminRole {
			err = fmt.Errorf("role %q is not allowed", claims.Role)
		}
		if err != nil {
			if redirectURL != "" {
				c.Redirect(http.StatusFound, redirectURL)
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{Success: false, Message: err.Error()})
			return
		}

		c.Set("subject", claims.Subject)
		c.Next()
	}
}

// ValidateToken parses an HS256 token signed with secret.
func ValidateToken(secret, token string) (*GateClaims, error) {
	if token == "" {
		return nil, fmt.Errorf("missing access token")
	}

	claims := &GateClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %w", err)
	}
	return claims, nil
}

// IssueToken signs a gate token with HS256.
func IssueToken(secret string, claims GateClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie(accessCookie); err == nil {
		return cookie
	}
	return ""
}
