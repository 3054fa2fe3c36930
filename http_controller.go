package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// HTTPController exposes the login pipeline over HTTP.
type HTTPController struct {
	auth   Authenticator
	logger Logger
}

// NewHTTPController creates the controller.
func NewHTTPController(auther Authenticator) *HTTPController {
	return &HTTPController{
		auth:   auther,
		logger: defLogger{},
	}
}

func (h *HTTPController) WithLogger(logger Logger) *HTTPController {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// RegisterRoutes mounts the public login endpoints on the app.
func (h *HTTPController) RegisterRoutes(app fiber.Router) {
	app.Post("/auth/google", h.GoogleLogin)
	app.Post("/auth/login", h.EmailLogin)
}

// RegisterSessionRoutes mounts the endpoints that read the request principal.
// Mount these after the request-authentication middleware or they will only
// ever see anonymous requests.
func (h *HTTPController) RegisterSessionRoutes(app fiber.Router) {
	app.Get("/auth/me", h.Me)
}

// GoogleLoginPayload is the body of POST /auth/google.
type GoogleLoginPayload struct {
	GoogleIDToken string `json:"googleIdToken"`
}

func (p GoogleLoginPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.GoogleIDToken, validation.Required),
	)
}

// EmailLoginPayload is the body of the legacy POST /auth/login.
type EmailLoginPayload struct {
	Email string `json:"email"`
}

func (p EmailLoginPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
	)
}

// GoogleLogin handles POST /auth/google: verify the identity token, reconcile
// the user, issue a session token.
func (h *HTTPController) GoogleLogin(c *fiber.Ctx) error {
	payload := GoogleLoginPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return h.unauthorized(c)
	}

	if err := payload.Validate(); err != nil {
		return h.unauthorized(c)
	}

	result, err := h.auth.LoginWithIdentityToken(c.UserContext(), payload.GoogleIDToken)
	if err != nil {
		return h.loginError(c, err)
	}

	return c.JSON(result)
}

// EmailLogin handles the legacy POST /auth/login. The path performs no
// identity verification at all and only works when the development gate is
// explicitly enabled.
func (h *HTTPController) EmailLogin(c *fiber.Ctx) error {
	payload := EmailLoginPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return h.unauthorized(c)
	}

	if err := payload.Validate(); err != nil {
		return h.unauthorized(c)
	}

	result, err := h.auth.LoginWithEmail(c.UserContext(), payload.Email)
	if err != nil {
		return h.loginError(c, err)
	}

	return c.JSON(result)
}

// Me handles GET /auth/me: it answers with the authenticated caller's
// identity, or 401 when the request resolved to anonymous.
func (h *HTTPController) Me(c *fiber.Ctx) error {
	principal, ok := PrincipalFromContext(c.UserContext())
	if !ok {
		return h.unauthorized(c)
	}

	return c.JSON(fiber.Map{
		"userId":      principal.UserID.String(),
		"email":       principal.Email,
		"displayName": principal.DisplayName,
	})
}

// loginError maps pipeline failures onto HTTP statuses: verification and
// lookup failures become a generic 401 with no provider detail, persistence
// failures become 500 and get logged with full context.
func (h *HTTPController) loginError(c *fiber.Ctx, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "unexpected login error")
	}

	switch richErr.Category {
	case errors.CategoryAuth, errors.CategoryAuthz, errors.CategoryNotFound, errors.CategoryBadInput:
		h.logger.Debug("Login rejected", "path", c.Path(), "text_code", richErr.TextCode)
		return h.unauthorized(c)
	default:
		h.logger.Error("Login failed", "path", c.Path(), "error", richErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
}

func (h *HTTPController) unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "authentication failed",
	})
}
