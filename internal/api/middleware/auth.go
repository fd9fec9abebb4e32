package middleware

import (
	"context"
	"crypto/rsa"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	apierrors "github.com/feral-file/ff-crowdfund/internal/api/shared/errors"
	"github.com/feral-file/ff-crowdfund/internal/logger"
)

const (
	AUTH_METHOD_JWT    = "jwt"
	AUTH_METHOD_APIKEY = "apikey"
)

// AuthConfig holds operator authentication configuration
type AuthConfig struct {
	JWTPublicKey string // RSA public key in PEM format
	// APIKeys holds "name:key" entries. A bare key is named apikey-<position>.
	APIKeys []string
}

// Enabled reports whether any operator credential is configured
func (c AuthConfig) Enabled() bool {
	if c.JWTPublicKey != "" {
		return true
	}
	for _, key := range c.APIKeys {
		if key != "" {
			return true
		}
	}
	return false
}

// Operator is the authenticated client behind a write call.
// Ledger calls log its ID next to the signers that authorized them.
type Operator struct {
	ID     string
	Method string
}

type operatorKey struct{}

// WithOperator returns a context carrying op
func WithOperator(ctx context.Context, op Operator) context.Context {
	return context.WithValue(ctx, operatorKey{}, op)
}

// OperatorFrom returns the operator authenticated for ctx
func OperatorFrom(ctx context.Context) (Operator, bool) {
	op, ok := ctx.Value(operatorKey{}).(Operator)
	return op, ok
}

type apiKey struct {
	operator string
	secret   []byte
}

// authenticator resolves an Authorization header to an operator
type authenticator struct {
	publicKey *rsa.PublicKey
	keyErr    error
	keys      []apiKey
}

func newAuthenticator(cfg AuthConfig) *authenticator {
	a := &authenticator{}
	if cfg.JWTPublicKey == "" {
		a.keyErr = errors.New("JWT public key not configured")
	} else if a.publicKey, a.keyErr = jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.JWTPublicKey)); a.keyErr != nil {
		a.keyErr = fmt.Errorf("failed to parse RSA public key: %w", a.keyErr)
	}

	for i, entry := range cfg.APIKeys {
		if entry == "" {
			continue
		}
		name, secret, named := strings.Cut(entry, ":")
		if !named || name == "" || secret == "" {
			name, secret = "apikey-"+strconv.Itoa(i), entry
		}
		a.keys = append(a.keys, apiKey{operator: name, secret: []byte(secret)})
	}
	return a
}

// authenticate validates the Authorization header and returns its operator
func (a *authenticator) authenticate(header string) (Operator, error) {
	if header == "" {
		return Operator{}, errors.New("missing Authorization header")
	}
	scheme, credentials, ok := strings.Cut(header, " ")
	if !ok {
		return Operator{}, errors.New("invalid Authorization header format")
	}

	switch strings.ToLower(scheme) {
	case "bearer":
		subject, err := a.validateJWT(credentials)
		if err != nil {
			return Operator{}, err
		}
		return Operator{ID: subject, Method: AUTH_METHOD_JWT}, nil
	case "apikey":
		name, err := a.validateAPIKey(credentials)
		if err != nil {
			return Operator{}, err
		}
		return Operator{ID: name, Method: AUTH_METHOD_APIKEY}, nil
	default:
		return Operator{}, fmt.Errorf("unsupported authorization type: %s", scheme)
	}
}

// validateJWT checks an RS-signed token and returns its subject
func (a *authenticator) validateJWT(token string) (string, error) {
	if a.keyErr != nil {
		return "", a.keyErr
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return a.publicKey, nil
	}, jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}))
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

func (a *authenticator) validateAPIKey(secret string) (string, error) {
	if len(a.keys) == 0 {
		return "", errors.New("no API keys configured")
	}
	operator := ""
	for _, key := range a.keys {
		if subtle.ConstantTimeCompare(key.secret, []byte(secret)) == 1 {
			operator = key.operator
		}
	}
	if operator == "" {
		return "", errors.New("invalid API key")
	}
	return operator, nil
}

// Auth returns a gin middleware that authenticates the operator of a write call
// with a JWT bearer token or an API key. The operator is stored in the request
// context and tagged on every log line of the call.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	a := newAuthenticator(cfg)
	if cfg.JWTPublicKey != "" && a.keyErr != nil {
		logger.Error(a.keyErr, zap.String("component", "auth"))
	}

	return func(c *gin.Context) {
		op, err := a.authenticate(c.GetHeader("Authorization"))
		if err != nil {
			logger.WarnCtx(c.Request.Context(), "Authentication failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierrors.NewUnauthorizedError("Authentication failed", err.Error()))
			return
		}

		ctx := WithOperator(c.Request.Context(), op)
		ctx = logger.WithOperator(ctx, op.ID)
		logger.DebugCtx(ctx, "Operator authenticated", zap.String("method", op.Method))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
