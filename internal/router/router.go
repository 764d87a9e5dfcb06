package router

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/arcanewagers/Auth/internal/auth"
	apperrors "github.com/arcanewagers/Auth/internal/errors"
	"github.com/arcanewagers/Auth/internal/handler"
)

// gateExempt lists the paths the request gate lets through without a bearer
// token: the public auth endpoints, health check and API docs. OPTIONS
// requests are exempt regardless of path.
//
// /profile is exempt here but authenticates inside its handler; the observable
// contract (401 without a valid token) is unchanged.
var gateExempt = []*regexp.Regexp{
	regexp.MustCompile(`^/api/v1/auth/(login|signup|profile|forgot-password|reset-password|google-login)$`),
	regexp.MustCompile(`^/health$`),
	regexp.MustCompile(`^/swagger(/.*)?$`),
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	jwtService *auth.JWTService,
	authHandler *handler.AuthHandler,
	healthHandler *handler.HealthHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(RequestGate(jwtService))

	e.GET("/health", healthHandler.Check)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api/v1/auth")
	api.POST("/signup", authHandler.Signup)
	api.POST("/login", authHandler.Login)
	api.POST("/google-login", authHandler.GoogleLogin)
	api.GET("/profile", authHandler.Profile)
	api.POST("/forgot-password", authHandler.ForgotPassword)
	api.POST("/reset-password", authHandler.ResetPassword)
}

// RequestGate rejects any non-exempt request lacking a valid bearer token
// before it reaches a handler. Decoded claims end up on the echo context
// under "user".
func RequestGate(jwtService *auth.JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		Skipper: func(c echo.Context) bool {
			if c.Request().Method == http.MethodOptions {
				return true
			}
			path := c.Request().URL.Path
			for _, pattern := range gateExempt {
				if pattern.MatchString(path) {
					return true
				}
			}
			return false
		},
		TokenLookupFuncs: []middleware.ValuesExtractor{bearerFromHeader},
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return jwtService.ValidateAccessToken(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized,
				apperrors.NewErrorResponse(apperrors.ErrInvalidToken.Error()))
		},
	})
}

// bearerFromHeader extracts the Authorization header value, stripping a
// literal "Bearer " prefix if present.
func bearerFromHeader(c echo.Context) ([]string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return nil, stderrors.New("missing authorization header")
	}
	return []string{strings.TrimPrefix(header, "Bearer ")}, nil
}

// CustomValidator wraps validator for Echo and reports input-shape violations
// as a 422 with one entry per failed field.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs []apperrors.FieldError
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		for _, fe := range verrs {
			fieldErrs = append(fieldErrs, apperrors.FieldError{
				Location: strings.ToLower(fe.Field()),
				Message:  fmt.Sprintf("failed on the '%s' rule", fe.Tag()),
				Kind:     fe.Tag(),
			})
		}
	}
	return echo.NewHTTPError(http.StatusUnprocessableEntity, apperrors.ValidationResponse{
		Status:  "error",
		Message: "validation failed",
		Errors:  fieldErrs,
	})
}
