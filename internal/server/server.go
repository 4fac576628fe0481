package server

import (
	"net"
	"strings"
	"time"

	"github.com/Kyz7/storefront/internal/config"
	"github.com/Kyz7/storefront/internal/mail"
	"github.com/Kyz7/storefront/internal/metrics"
	"github.com/Kyz7/storefront/internal/response"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Log      *logrus.Logger
	Metrics  *metrics.Metrics
	Notifier mail.Notifier
}

func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		ErrorHandler: errorHandler(deps.Log),
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		Output: deps.Log.Writer(),
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(deps.Config.CORSOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS, PATCH",
	}))
	app.Use(trustedHosts(deps.Config.AllowedHosts))
	app.Use(compress.New())
	app.Use(deps.Metrics.Middleware())

	SetupRoutes(app, deps)

	return app
}

// trustedHosts rejects requests whose Host header is not listed. "*" allows any host.
func trustedHosts(allowed []string) fiber.Handler {
	hosts := make(map[string]bool, len(allowed))
	for _, h := range allowed {
		if h == "*" {
			return func(c *fiber.Ctx) error { return c.Next() }
		}
		hosts[strings.ToLower(h)] = true
	}

	return func(c *fiber.Ctx) error {
		host := c.Hostname()
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		if !hosts[strings.ToLower(host)] {
			return response.BadRequest(c, "Invalid host header", nil)
		}
		return c.Next()
	}
}

func errorHandler(log *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if fe, ok := err.(*fiber.Error); ok {
			code := "INTERNAL_ERROR"
			switch fe.Code {
			case fiber.StatusNotFound:
				code = "NOT_FOUND"
			case fiber.StatusMethodNotAllowed:
				code = "METHOD_NOT_ALLOWED"
			case fiber.StatusRequestEntityTooLarge:
				code = "PAYLOAD_TOO_LARGE"
			case fiber.StatusTooManyRequests:
				code = "TOO_MANY_REQUESTS"
			default:
				if fe.Code < 500 {
					code = "BAD_REQUEST"
				}
			}
			return response.Error(c, fe.Code, code, fe.Message, nil)
		}

		log.WithError(err).WithField("path", c.Path()).Error("unhandled error")
		return response.InternalError(c, "Internal server error")
	}
}
