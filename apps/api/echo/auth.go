package echoapi

import (
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/ifcet/aula/core"
	"github.com/ifcet/aula/core/session"
	"github.com/ifcet/aula/core/student"
)

var (
	// appJWTConfig is the default JWT auth middleware config.
	appJWTConfig = middleware.JWTConfig{
		SigningKey:    []byte(core.Conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "userToken",
		Claims:        new(Claims),
	}
	contextStoreKey = "sessionStore"
)

// Claims represents the authorization claims transmitted via a JWT.
// The token id names the namespace the portal values are persisted under.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Username     string `json:"username,omitempty"`
	Name         string `json:"name,omitempty"`
}

// NewNamespace returns a fresh session namespace for a login.
func NewNamespace() string {
	return uuid.New().String()
}

func GetSessionClaims(s *session.Session, namespace string, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        namespace,
			Issuer:    core.Conf.AppName,
			Subject:   strconv.Itoa(s.ID),
			Audience:  "Aula Virtual",
			ExpiresAt: now.Add(core.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Username:     s.Username,
		Name:         s.Name,
	}
}

// GenerateToken generates a signed JWT token string representing the session Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// storeMiddleware scopes the session store to the token's namespace.
func storeMiddleware(backend session.Backend) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.Id == "" {
				return errUnauthorized
			}
			ctx.Set(contextStoreKey, backend.Scope(claims.Id))
			return next(ctx)
		}
	}
}

func getContextStore(ctx echo.Context) (session.Store, error) {
	if store, ok := ctx.Get(contextStoreKey).(session.Store); ok {
		return store, nil
	}
	return nil, errUnauthorized
}

func refreshToken(ctx echo.Context, svc *student.Service) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(core.Conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	// check if the student still exists
	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return "", errUnauthorized
	}
	st, err := svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return "", errUnauthorized
		}
		return "", errors.Wrap(err, "finding student by ID")
	}

	newClaims := GetSessionClaims(st.Session(), claims.Id, claims.OrigIssuedAt)
	token, err := GenerateToken(newClaims)
	return token, errors.Wrap(err, "generating token")
}
