package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/sparesx/sparesx-api/config"
	"github.com/sparesx/sparesx-api/logger"
)

const (
	userIDKey = "user_id"
	roleKey   = "user_role"
	claimsKey = "validated_claims"
)

// CustomClaims contains the application claims carried by access tokens.
type CustomClaims struct {
	Role string `json:"role"`
}

// Validate rejects tokens that carry no role
func (c CustomClaims) Validate(ctx context.Context) error {
	if c.Role == "" {
		return errors.New("token has no role claim")
	}
	return nil
}

// HasRole checks whether the token's role is one of roles
func (c CustomClaims) HasRole(roles ...string) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

// newValidator builds an HS256 validator bound to the configured issuer and audience
func newValidator(cfg *config.Config) (*validator.Validator, error) {
	secret := []byte(cfg.JWTSecret)
	keyFunc := func(ctx context.Context) (interface{}, error) {
		return secret, nil
	}

	return validator.New(
		keyFunc,
		validator.HS256,
		cfg.JWTIssuer,
		[]string{cfg.JWTAudience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
}

// EnsureValidToken is a middleware that rejects requests without a valid bearer token.
func EnsureValidToken(cfg *config.Config) gin.HandlerFunc {
	return tokenMiddleware(cfg, false)
}

// OptionalToken authenticates the caller when a bearer token is present and
// lets anonymous requests through. A present but invalid token is still rejected.
func OptionalToken(cfg *config.Config) gin.HandlerFunc {
	return tokenMiddleware(cfg, true)
}

func tokenMiddleware(cfg *config.Config, optional bool) gin.HandlerFunc {
	jwtValidator, err := newValidator(cfg)
	if err != nil {
		// Only reachable with an empty issuer or audience, which Load never produces.
		panic(fmt.Sprintf("failed to set up the jwt validator: %v", err))
	}

	return func(c *gin.Context) {
		errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
			logger.L().Debugw("rejected bearer token", "path", r.URL.Path, "error", err)

			code, message := "INVALID_TOKEN", "Failed to validate JWT."
			if errors.Is(err, jwtmiddleware.ErrJWTMissing) {
				code, message = "UNAUTHORIZED", "Authorization bearer token is required"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    code,
					"message": message,
				},
			})
		}

		middleware := jwtmiddleware.New(
			jwtValidator.ValidateToken,
			jwtmiddleware.WithErrorHandler(errorHandler),
			jwtmiddleware.WithCredentialsOptional(optional),
		)

		passed := false
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			passed = true

			token, ok := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
			if !ok {
				// Anonymous request on an optional route
				return
			}

			userID, err := strconv.ParseUint(token.RegisteredClaims.Subject, 10, 64)
			if err != nil {
				errorHandler(w, r, fmt.Errorf("invalid subject claim: %w", err))
				passed = false
				return
			}

			customClaims, _ := token.CustomClaims.(*CustomClaims)
			role := ""
			if customClaims != nil {
				role = customClaims.Role
			}

			c.Set(userIDKey, uint(userID))
			c.Set(roleKey, role)
			c.Set(claimsKey, token)
		}

		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)

		if !passed {
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole is a middleware that lets the request through only when the
// authenticated caller holds one of roles. It must run after EnsureValidToken.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := GetClaims(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Could not retrieve token claims",
				},
			})
			return
		}

		customClaims, ok := claims.CustomClaims.(*CustomClaims)
		if !ok || !customClaims.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "You do not have permission to access this resource",
				},
			})
			return
		}

		c.Next()
	}
}

// GetUserID extracts the authenticated user's id from the Gin context
func GetUserID(c *gin.Context) (uint, error) {
	userID, exists := c.Get(userIDKey)
	if !exists {
		return 0, &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}

	id, ok := userID.(uint)
	if !ok {
		return 0, &AuthError{Code: "INVALID_USER_ID", Message: "User ID is not a uint"}
	}

	return id, nil
}

// OptionalUserID returns the caller's id, or 0 for anonymous requests
func OptionalUserID(c *gin.Context) uint {
	id, err := GetUserID(c)
	if err != nil {
		return 0
	}
	return id
}

// GetRole extracts the authenticated user's role from the Gin context
func GetRole(c *gin.Context) string {
	role, _ := c.Get(roleKey)
	r, _ := role.(string)
	return r
}

// GetClaims extracts the validated JWT claims from the Gin context
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	claims, exists := c.Get(claimsKey)
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return validatedClaims, nil
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
