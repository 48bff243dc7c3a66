package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"local-services-api/config"
	"local-services-api/models"
	"local-services-api/policy"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const principalKey = "principal"

// Token lifetimes per principal kind
const (
	UserTokenTTL  = 7 * 24 * time.Hour
	AdminTokenTTL = 24 * time.Hour
)

// Claims carries the principal id and kind for both account variants.
// Username and Role are denormalized for admin tokens only.
type Claims struct {
	PrincipalID uint                 `json:"pid"`
	Kind        policy.PrincipalKind `json:"kind"`
	Username    string               `json:"username,omitempty"`
	Role        models.AdminRole     `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// GenerateUserToken creates a signed 7-day JWT for an end user
func GenerateUserToken(user *models.User) (string, error) {
	claims := Claims{
		PrincipalID: user.ID,
		Kind:        policy.KindUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(UserTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(config.JWTSecret)
}

// GenerateAdminToken creates a signed 24-hour JWT for a console admin
func GenerateAdminToken(admin *models.Admin) (string, error) {
	claims := Claims{
		PrincipalID: admin.ID,
		Kind:        policy.KindAdmin,
		Username:    admin.Username,
		Role:        admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(AdminTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(config.JWTSecret)
}

// Token verification failures that callers must tell apart
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// ParseToken verifies a raw token string and returns its claims,
// distinguishing expired from otherwise-invalid tokens.
func ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return config.JWTSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ResolvePrincipal loads the account behind verified claims, rejecting
// principals that no longer exist or were deactivated.
func ResolvePrincipal(claims *Claims) (policy.Principal, error) {
	switch claims.Kind {
	case policy.KindUser:
		var user models.User
		if err := config.DB.First(&user, claims.PrincipalID).Error; err != nil {
			return policy.Principal{}, errors.New("user not found for the provided token")
		}
		if !user.IsActive {
			return policy.Principal{}, errors.New("account has been deactivated")
		}
		return policy.UserPrincipal(&user), nil
	case policy.KindAdmin:
		var admin models.Admin
		if err := config.DB.First(&admin, claims.PrincipalID).Error; err != nil {
			return policy.Principal{}, errors.New("admin not found for the provided token")
		}
		if !admin.IsActive {
			return policy.Principal{}, errors.New("account has been deactivated")
		}
		return policy.AdminPrincipal(&admin), nil
	}
	return policy.Principal{}, errors.New("unknown principal kind")
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(authHeader, "Bearer "), true
}

// authenticate runs the full resolve pipeline and aborts with the right
// status for each failure kind: 401 for a missing header or a vanished/
// deactivated principal, 403 for expired or invalid tokens.
func authenticate(c *gin.Context, want policy.PrincipalKind) (policy.Principal, bool) {
	tokenStr, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message": "Access token required",
			"error":   "Please provide a valid authentication token in the Authorization header",
		})
		c.Abort()
		return policy.Principal{}, false
	}

	claims, err := ParseToken(tokenStr)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			c.JSON(http.StatusForbidden, gin.H{
				"message": "Token expired",
				"error":   "Your session has expired. Please login again.",
			})
		} else {
			c.JSON(http.StatusForbidden, gin.H{
				"message": "Invalid token",
				"error":   "The provided token is not valid",
			})
		}
		c.Abort()
		return policy.Principal{}, false
	}

	if claims.Kind != want {
		c.JSON(http.StatusForbidden, gin.H{
			"message": "Invalid token",
			"error":   "The provided token is not valid for this resource",
		})
		c.Abort()
		return policy.Principal{}, false
	}

	principal, err := ResolvePrincipal(claims)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message": "Invalid token",
			"error":   err.Error(),
		})
		c.Abort()
		return policy.Principal{}, false
	}
	return principal, true
}

// RequireUser validates an end-user token and attaches the principal
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := authenticate(c, policy.KindUser)
		if !ok {
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireAdmin validates a console admin token and attaches the principal
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := authenticate(c, policy.KindAdmin)
		if !ok {
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// OptionalPrincipal resolves a bearer token when one is present but never
// rejects the request. Used by public endpoints that show more to owners
// and admins.
func OptionalPrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr, ok := bearerToken(c); ok {
			if claims, err := ParseToken(tokenStr); err == nil {
				if principal, err := ResolvePrincipal(claims); err == nil {
					c.Set(principalKey, principal)
				}
			}
		}
		c.Next()
	}
}

// GetPrincipal extracts the authenticated principal from context
func GetPrincipal(c *gin.Context) (policy.Principal, bool) {
	val, exists := c.Get(principalKey)
	if !exists {
		return policy.Principal{}, false
	}
	principal, ok := val.(policy.Principal)
	return principal, ok
}

// MustUser returns the authenticated end user; only call behind RequireUser
func MustUser(c *gin.Context) *models.User {
	principal, _ := GetPrincipal(c)
	return principal.User
}

// MustAdmin returns the authenticated admin; only call behind RequireAdmin
func MustAdmin(c *gin.Context) *models.Admin {
	principal, _ := GetPrincipal(c)
	return principal.Admin
}
