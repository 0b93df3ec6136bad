package echoapi

import (
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hudumahq/huduma/core"
	"github.com/hudumahq/huduma/core/access"
	"github.com/hudumahq/huduma/core/company"
)

var contextTokenKey = "actorToken"

// Claims represents the authorization claims transmitted via a JWT.
// Token issuance happens out of band (ops tooling, portal gateway); this API
// only consumes claims and maps them to an access.Actor.
type Claims struct {
	jwt.StandardClaims
	CompanyName string `json:"company_name,omitempty"`
	IsStaff     bool   `json:"is_staff,omitempty"`
}

// jwtConfig wraps the echo JWT middleware config with the app secret.
type jwtConfig struct {
	conf *core.Config
}

func newJWTConfig(conf *core.Config) *jwtConfig {
	return &jwtConfig{conf: conf}
}

func (c *jwtConfig) middlewareConfig() middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(c.conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

// GetCompanyClaims builds the claims for a company portal session.
func GetCompanyClaims(conf *core.Config, cmp company.Company) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   strconv.Itoa(cmp.ID),
			Audience:  "CompanyPortal",
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		CompanyName: cmp.Name,
	}
}

// GetStaffClaims builds the claims for a staff session.
func GetStaffClaims(conf *core.Config, staffID int) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   strconv.Itoa(staffID),
			Audience:  "AdminPortal",
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		IsStaff: true,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(middleware.AlgorithmHS256)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextActor maps the authenticated claims to the acting identity passed
// into the core services.
func getContextActor(ctx echo.Context) (access.Actor, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return access.Actor{}, err
	}
	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return access.Actor{}, errUnauthorized
	}
	if claims.IsStaff {
		return access.Staff(id), nil
	}
	return access.Company(id), nil
}
