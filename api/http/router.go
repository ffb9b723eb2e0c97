package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dkrasnov87/shoply/api/http/handlers"
)

// Register wires all HTTP routes onto given Fiber app.
func Register(
	app *fiber.App,
	auth *handlers.AuthHandler,
	users *handlers.UserHandler,
	health *handlers.HealthHandler,
	authMW fiber.Handler,
) {
	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Health and readiness endpoints for probes/monitoring
	v1.Get("/health", health.Health)
	v1.Get("/ready", health.Ready)

	a := v1.Group("/auth")
	a.Post("/signup", auth.Signup)
	a.Post("/login", auth.Login)
	a.Post("/verify-otp", auth.VerifyOtp)
	a.Post("/resend-otp", auth.ResendOtp)
	a.Post("/forgot-password", auth.ForgotPassword)
	a.Post("/reset-password", auth.ResetPassword)
	a.Get("/logout", auth.Logout)
	a.Get("/check-auth", authMW, auth.CheckAuth)

	u := v1.Group("/users", authMW)
	u.Get("/:id", users.GetByID)
	u.Patch("/:id", users.UpdateByID)
}
