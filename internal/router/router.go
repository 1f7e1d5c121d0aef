package router

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"hostel/internal/auth"
	"hostel/internal/config"
	"hostel/internal/handler"
	authmw "hostel/internal/middleware"
	"hostel/internal/model"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Room    *handler.RoomHandler
	Payment *handler.PaymentHandler
	Seed    *handler.SeedHandler
	Health  *handler.HealthHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	h Handlers,
) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowCredentials: true,
	}))

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", h.Health.Live)
	e.GET("/readyz", h.Health.Ready)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	jsonBody := middleware.BodyLimit("16K")
	secured := authmw.JWT(jwtService, tokenStore)
	admin := authmw.RequireRole(model.RoleAdmin)

	api := e.Group("/api/v1")

	users := api.Group("/users")
	users.POST("/register", h.User.Register, middleware.BodyLimit("5M"))
	users.POST("/login", h.Auth.Login, jsonBody)
	users.POST("/refresh-token", h.Auth.Refresh, jsonBody)
	users.POST("/logout", h.Auth.Logout, secured)
	users.GET("/me", h.User.Me, secured)
	users.DELETE("/me", h.User.DeleteSelf, secured)
	users.POST("/change-password", h.User.ChangePassword, jsonBody, secured)
	users.PATCH("/account", h.User.UpdateAccount, jsonBody, secured)
	users.PATCH("/username", h.User.UpdateUsername, jsonBody, secured)
	users.PATCH("/avatar", h.User.UpdateAvatar, middleware.BodyLimit("5M"), secured)
	users.GET("", h.User.List, secured, admin)
	users.DELETE("/cnic/:cnic", h.User.DeleteByCNIC, secured, admin)
	users.PATCH("/:id/role", h.User.UpdateRole, jsonBody, secured, admin)
	users.PATCH("/:id/credentials", h.User.UpdateCredentials, jsonBody, secured, admin)

	rooms := api.Group("/room", jsonBody)
	rooms.GET("", h.Room.List)
	rooms.GET("/:id", h.Room.Get)
	rooms.GET("/:id/occupants", h.Room.Occupants)
	rooms.GET("/number/:roomNumber", h.Room.GetByNumber)
	rooms.POST("", h.Room.Create, secured, admin)
	rooms.POST("/seed", h.Seed.Seed, secured, admin)
	rooms.PATCH("/:id", h.Room.Update, secured, admin)
	rooms.DELETE("/:id", h.Room.Delete, secured, admin)
	rooms.PATCH("/:id/assign", h.Room.Assign, secured, admin)
	rooms.PATCH("/:id/occupants", h.Room.Toggle, secured, admin)
	rooms.PATCH("/number/:roomNumber/assign", h.Room.AssignByNumber, secured, admin)

	payments := api.Group("/payment", jsonBody, secured)
	payments.POST("/record", h.Payment.Record)
	payments.GET("/paid", h.Payment.Paid, admin)
	payments.GET("/unpaid", h.Payment.Unpaid, admin)
	payments.GET("/export", h.Payment.Export, admin)
	payments.GET("/cnic/:cnic", h.Payment.GetByCNIC, admin)
	payments.GET("/cnic/:cnic/attempts", h.Payment.Attempts, admin)
	payments.GET("", h.Payment.List, admin)
	payments.GET("/:id", h.Payment.Get, admin)
	payments.DELETE("/:id", h.Payment.Delete, admin)
	payments.POST("/generate", h.Payment.Generate, admin)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
