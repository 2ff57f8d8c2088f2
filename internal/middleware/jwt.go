package middleware

import (
	"errors"
	"strings"
	"time"

	"invoicedesk/internal/common"
	"invoicedesk/internal/models"
	"invoicedesk/internal/session"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// BusinessHeader selects the business a request works in
const BusinessHeader = "X-Business-ID"

const tokenContextKey = "user"

// AdminRole is the role claim value granting administrator rights
const AdminRole = "admin"

// IdentityClaims are the token claims the identity provider issues. The
// subject is the identity id.
type IdentityClaims struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// IdentityHook runs once a request's session is established
type IdentityHook func(c echo.Context, state *session.State)

// AuthConfig configures token verification. Set Secret for HS256 tokens or
// JWKSURL for tokens signed by a remote key set.
type AuthConfig struct {
	Secret          string
	JWKSURL         string
	RefreshInterval time.Duration
	OnIdentity      IdentityHook
	Logger          zerolog.Logger
}

// Authenticator verifies bearer tokens and attaches a session to the request
type Authenticator struct {
	jwtConfig  echojwt.Config
	jwks       *keyfunc.JWKS
	onIdentity IdentityHook
	logger     zerolog.Logger
}

// NewAuthenticator builds an Authenticator. With a JWKS URL the key set is
// fetched now and refreshed in the background until Close.
func NewAuthenticator(cfg AuthConfig) (*Authenticator, error) {
	a := &Authenticator{
		onIdentity: cfg.OnIdentity,
		logger:     cfg.Logger.With().Str("component", "auth").Logger(),
	}

	a.jwtConfig = echojwt.Config{
		ContextKey: tokenContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(IdentityClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			a.logger.Debug().Err(err).Str("path", c.Path()).Msg("token rejected")
			return common.SendUnauthorizedError(c)
		},
	}

	switch {
	case cfg.JWKSURL != "":
		refresh := cfg.RefreshInterval
		if refresh <= 0 {
			refresh = time.Hour
		}
		jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{
			RefreshInterval:   refresh,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				a.logger.Warn().Err(err).Msg("failed to refresh signing keys")
			},
		})
		if err != nil {
			return nil, err
		}
		a.jwks = jwks
		a.jwtConfig.KeyFunc = jwks.Keyfunc
	case cfg.Secret != "":
		a.jwtConfig.SigningKey = []byte(cfg.Secret)
	default:
		return nil, errors.New("auth: a signing secret or JWKS URL is required")
	}

	return a, nil
}

// Middleware verifies the token, then opens a session for the request and
// closes it when the handler returns.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	verify := echojwt.WithConfig(a.jwtConfig)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(a.openSession(next))
	}
}

func (a *Authenticator) openSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, err := identityFromToken(c.Get(tokenContextKey))
		if err != nil {
			a.logger.Debug().Err(err).Msg("token carries no usable identity")
			return common.SendUnauthorizedError(c)
		}

		state := session.New(identity)
		defer state.Close()

		if raw := c.Request().Header.Get(BusinessHeader); raw != "" {
			businessID, err := common.ValidateUUID(raw, "business_id")
			if err != nil {
				return common.SendValidationError(c, "business_id", err.Error())
			}
			state.SelectBusiness(businessID)
		}

		c.SetRequest(c.Request().WithContext(session.WithState(c.Request().Context(), state)))

		if a.onIdentity != nil {
			a.onIdentity(c, state)
		}

		return next(c)
	}
}

// Close stops background key refresh
func (a *Authenticator) Close() {
	if a.jwks != nil {
		a.jwks.EndBackground()
	}
}

func identityFromToken(value interface{}) (models.Identity, error) {
	token, ok := value.(*jwt.Token)
	if !ok || token == nil {
		return models.Identity{}, errors.New("missing token")
	}
	claims, ok := token.Claims.(*IdentityClaims)
	if !ok {
		return models.Identity{}, errors.New("unexpected claims type")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return models.Identity{}, errors.New("subject is not a valid identity id")
	}
	return models.Identity{
		ID:    id,
		Email: strings.ToLower(strings.TrimSpace(claims.Email)),
		Admin: claims.Role == AdminRole,
	}, nil
}

// SessionFrom returns the session of an authenticated request
func SessionFrom(c echo.Context) (*session.State, bool) {
	return session.FromContext(c.Request().Context())
}
