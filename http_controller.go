package webauth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

type AuthControllerRoutes struct {
	Register string
	Login    string
	Me       string
}

type AuthController struct {
	Debug        bool
	Logger       Logger
	Auther       Authenticator
	Config       Config
	TokenService TokenService
	Routes       *AuthControllerRoutes
	ErrorHandler fiber.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerAuther(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerConfig(cfg Config) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Config = cfg
		return c
	}
}

func WithControllerTokenService(ts TokenService) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.TokenService = ts
		return c
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = logger
		return c
	}
}

func WithControllerErrorHandler(handler fiber.ErrorHandler) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.ErrorHandler = handler
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Register: "/auth/register",
			Login:    "/auth/login",
			Me:       "/auth/me",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Config == nil {
		panic("Missing Config in auth controller...")
	}

	if c.TokenService == nil {
		if provider, ok := c.Auther.(interface{ TokenService() TokenService }); ok {
			c.TokenService = provider.TokenService()
		}
	}

	if c.TokenService == nil {
		panic("Missing TokenService in auth controller...")
	}

	if c.ErrorHandler == nil {
		c.ErrorHandler = RenderError(c.Logger)
	}

	return c
}

// RegisterAuthRoutes mounts the authentication endpoints. Logout has no
// server side: discarding the token is a client concern.
func RegisterAuthRoutes(app fiber.Router, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Register, controller.RegisterPost)
	app.Post(controller.Routes.Login, controller.LoginPost)
	app.Get(controller.Routes.Me,
		ProtectedRoute(
			controller.Config,
			controller.TokenService,
			AuthErrorHandler(controller.ErrorHandler),
		),
		controller.MeGet,
	)

	return controller
}

// RegisterRequest payload
type RegisterRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) RegisterPost(c *fiber.Ctx) error {
	payload := new(RegisterRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register parse payload", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "validation failed",
			"fields": FormatValidationErrorToMap(err),
		})
	}

	summary, err := a.Auther.Register(c.Context(), payload.Name, payload.Email, payload.Password)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user": summary,
	})
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "validation failed",
			"fields": FormatValidationErrorToMap(err),
		})
	}

	token, summary, err := a.Auther.Login(c.Context(), payload.Email, payload.Password)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  summary,
	})
}

func (a *AuthController) MeGet(c *fiber.Ctx) error {
	userID, ok := GetSessionUserID(c, a.Config.GetContextKey())
	if !ok {
		return a.ErrorHandler(c, ErrInvalidToken)
	}

	summary, err := a.Auther.IdentityFromSession(c.UserContext(), userID)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.JSON(fiber.Map{
		"user": summary,
	})
}

// FormatValidationErrorToMap flattens ozzo validation errors into a
// field -> message map for the error payload.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, ferr := range verrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	out["error"] = err.Error()
	return out
}
