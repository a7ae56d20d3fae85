package tracker

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/fredyk/entrytracker/tracker/utils"
)

const requestIdLocal = "requestId"

func appBoot(customRoutesCallbacks []func(app *Tracker), app *Tracker) {
	app.Middleware(app.requestLogger)

	pprofAuthUsername := os.Getenv("PPROF_AUTH_USERNAME")
	pprofAuthPassword := os.Getenv("PPROF_AUTH_PASSWORD")
	if pprofAuthUsername != "" && pprofAuthPassword != "" {
		app.Middleware(utils.PprofHandlers(utils.PprofMiddleOptions{
			Auth: utils.BasicAuthOptions{
				Username: pprofAuthUsername,
				Password: pprofAuthPassword,
			},
		}))
	}

	app.Middleware(func(c *fiber.Ctx) error {
		method := c.Method()
		err := c.Next()
		if err != nil {
			app.logger.Warn("request failed", "method", method, "url", c.OriginalURL(), "err", err, "request_id", requestId(c))
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				if fiberErr.Code == fiber.StatusNotFound {
					return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiber.Map{"status": fiberErr.Code, "message": fmt.Sprintf("Unknown method %v %v", method, c.Path())}})
				}
				return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiber.Map{"status": fiberErr.Code, "message": fiberErr.Message}})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fiber.Map{"status": fiber.StatusInternalServerError, "message": err.Error()}})
		}
		return nil
	})

	app.Middleware(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			app.logger.Error("panic while handling request", "panic", e, "request_id", requestId(c), "stack", string(debug.Stack()))
		},
	}))

	if app.Options.EnableCompression {
		app.Middleware(compress.New(app.Options.CompressionConfig))
	}

	app.loadEntryRoutes()
	app.loadSystemRoutes()

	for _, cb := range customRoutesCallbacks {
		cb(app)
	}
}

// requestLogger tags every request with an X-Request-Id, reusing the one sent
// by the client when present.
func (app *Tracker) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	id := c.Get(fiber.HeaderXRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(fiber.HeaderXRequestID, id)
	c.Locals(requestIdLocal, id)

	err := c.Next()

	app.logger.Info("request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"took", time.Since(start),
		"request_id", id,
	)
	return err
}

func requestId(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIdLocal).(string)
	return id
}
