package auth

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// RegisterAuthRoutes mounts the JSON auth endpoints on the router.
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Signin, controller.SigninPost).
		SetName("sign-in.post")

	app.Post(controller.Routes.Signup, controller.SignupPost).
		SetName("sign-up.post")

	app.Post(controller.Routes.ConfirmEmail, controller.ConfirmEmailPost).
		SetName("confirm-email.post")

	app.Post(controller.Routes.PasswordReset, controller.PasswordResetPost).
		SetName("pwd-reset.post")

	app.Post(controller.Routes.ChangePassword, controller.ChangePasswordPost).
		SetName("pwd-change.post")
}

type AuthControllerRoutes struct {
	Signin         string
	Signup         string
	ConfirmEmail   string
	PasswordReset  string
	ChangePassword string
}

type AuthController struct {
	Logger   Logger
	Auther   Authenticator
	Accounts *Accounts
	Routes   *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

// WithControllerAuthenticator sets the signin authenticator.
func WithControllerAuthenticator(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

// WithControllerAccounts sets the account flows.
func WithControllerAccounts(accounts *Accounts) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Accounts = accounts
		return c
	}
}

// WithControllerLogger sets the logger.
func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// WithControllerRoutes overrides the route paths.
func WithControllerRoutes(routes *AuthControllerRoutes) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if routes != nil {
			c.Routes = routes
		}
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Signin:         "/signin",
			Signup:         "/signup",
			ConfirmEmail:   "/confirm-email",
			PasswordReset:  "/reset-password",
			ChangePassword: "/change-password",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Accounts == nil {
		panic("Missing Accounts in auth controller...")
	}

	return c
}

// SigninRequest payload
type SigninRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
	Code     string `form:"code" json:"code"`
}

// Validate will run validation rules
func (r SigninRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AuthController) SigninPost(ctx router.Context) error {
	payload := new(SigninRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.handleError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]any{
			"error": err.Error(),
		})
	}

	token, err := a.Auther.Login(ctx.Context(), payload.Email, payload.Password, payload.Code)
	if err != nil {
		return a.handleError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"access_token": token,
	})
}

func (a *AuthController) SignupPost(ctx router.Context) error {
	payload := new(SignupPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.handleError(ctx, err)
	}

	status, err := a.Accounts.Signup(ctx.Context(), *payload)
	if err != nil {
		return a.handleError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"success": status,
	})
}

// ConfirmEmailRequest payload
type ConfirmEmailRequest struct {
	Token string `form:"token" json:"token"`
}

// Validate will run validation rules
func (r ConfirmEmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
	)
}

func (a *AuthController) ConfirmEmailPost(ctx router.Context) error {
	payload := new(ConfirmEmailRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.handleError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]any{
			"error": err.Error(),
		})
	}

	status, err := a.Accounts.ConfirmEmail(ctx.Context(), payload.Token)
	if err != nil {
		return a.handleError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"success": status,
	})
}

// PasswordResetRequest payload
type PasswordResetRequest struct {
	Email string `form:"email" json:"email"`
}

// Validate will run validation rules
func (r PasswordResetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) PasswordResetPost(ctx router.Context) error {
	payload := new(PasswordResetRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.handleError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]any{
			"error": err.Error(),
		})
	}

	status, err := a.Accounts.RequestPasswordReset(ctx.Context(), payload.Email)
	if err != nil {
		return a.handleError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"success": status,
	})
}

// ChangePasswordRequest payload
type ChangePasswordRequest struct {
	Token    string `form:"token" json:"token"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 0)),
	)
}

func (a *AuthController) ChangePasswordPost(ctx router.Context) error {
	payload := new(ChangePasswordRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.handleError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]any{
			"error": err.Error(),
		})
	}

	status, err := a.Accounts.ChangePassword(ctx.Context(), payload.Token, payload.Password)
	if err != nil {
		return a.handleError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"success": status,
	})
}

func (a *AuthController) handleError(ctx router.Context, err error) error {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		a.Logger.Error("unhandled error: %v", err)
		return ctx.JSON(http.StatusInternalServerError, map[string]any{
			"error": "internal error",
		})
	}

	status := http.StatusInternalServerError
	switch rich.Category {
	case goerrors.CategoryAuth:
		status = http.StatusUnauthorized
	case goerrors.CategoryConflict:
		status = http.StatusConflict
	case goerrors.CategoryNotFound:
		status = http.StatusNotFound
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		a.Logger.Error("request failed: %v", err)
		return ctx.JSON(status, map[string]any{
			"error": "internal error",
		})
	}

	body := rich.Message
	if rich.TextCode != "" {
		body = rich.TextCode
	}

	return ctx.JSON(status, map[string]any{
		"error": body,
	})
}
