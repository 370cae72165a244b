package webhook

import (
	"time"

	"github.com/Abraxas-365/reactorbot/pkg/errx"
	"github.com/Abraxas-365/reactorbot/pkg/kernel"
	"github.com/Abraxas-365/reactorbot/pkg/logx"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServerConfig configures NewApp.
type ServerConfig struct {
	AppName      string
	Version      string
	BodyLimit    int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Gatherer backs /metrics; nil disables the route.
	Gatherer prometheus.Gatherer
}

// NewApp builds the fiber app serving the webhook, health and metrics routes.
func NewApp(cfg ServerConfig, h *Handler) *fiber.App {
	if cfg.AppName == "" {
		cfg.AppName = "reactorbot"
	}
	log := logx.Component("http")

	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: true,
		BodyLimit:             cfg.BodyLimit,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.WithError(err).WithFields(logx.Fields{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": c.GetRespHeader(fiber.HeaderXRequestID),
			}).Warn("request failed")
			return errx.FiberErrorHandler(c, err)
		},
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	}))
	app.Use(func(c *fiber.Ctx) error {
		c.SetUserContext(kernel.WithRequestID(c.UserContext(), c.GetRespHeader(fiber.HeaderXRequestID)))
		return c.Next()
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.AppName, "version": cfg.Version})
	})
	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}
	h.RegisterRoutes(app)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "route not found: "+c.Method()+" "+c.Path())
	})
	return app
}
