package tracker

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/fredyk/entrytracker/tracker/datasource"
	"github.com/fredyk/entrytracker/tracker/model"
)

func (app *Tracker) loadEntryRoutes() {
	app.Server.Get("/entries", app.listEntries)
	app.Server.Post("/entries", app.addEntry)
	app.Server.Post("/entries/add", app.addEntry)

	// Mutating on GET is kept only for old clients.
	if app.Viper.GetBool("legacyGetAdd") {
		app.logger.Warn("legacy route GET /entries/add is enabled")
		app.Server.Get("/entries/add", app.addEntry)
	}
}

func (app *Tracker) loadSystemRoutes() {
	app.Server.Get("/system/ping", func(c *fiber.Ctx) error {
		if p, ok := app.store.(pinger); ok {
			err := p.Ping(c.UserContext())
			if err != nil {
				app.logger.Error("ping failed", "err", err, "request_id", requestId(c))
				return sendPlainText(c, fiber.StatusServiceUnavailable, err.Error())
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
}

// addEntry stamps a new entry with the server clock in RFC 2822 format.
func (app *Tracker) addEntry(c *fiber.Ctx) error {
	timestamp := model.FormatTimestamp(app.now())

	entry, err := app.store.Create(c.UserContext(), timestamp)
	if err != nil {
		return app.storeFailure(c, err)
	}
	if !entry.Persisted() {
		return app.storeFailure(c, datasource.NewError(datasource.WriteError, "error adding new entry", errors.New("store did not assign an id")))
	}

	app.logger.Info("entry added", "id", entry.ID.Hex(), "timestamp", entry.Timestamp, "request_id", requestId(c))
	return c.JSON(entry)
}

func (app *Tracker) listEntries(c *fiber.Ctx) error {
	entries, err := app.store.List(c.UserContext())
	if err != nil {
		return app.storeFailure(c, err)
	}
	if entries == nil {
		entries = []model.Entry{}
	}

	app.logger.Debug("retrieved list of entries", "count", len(entries), "request_id", requestId(c))
	return c.JSON(entries)
}

func (app *Tracker) storeFailure(c *fiber.Ctx, err error) error {
	app.logger.Error("store operation failed",
		"kind", datasource.KindOf(err).String(),
		"err", err,
		"method", c.Method(),
		"path", c.Path(),
		"request_id", requestId(c),
	)
	return sendPlainText(c, fiber.StatusInternalServerError, err.Error())
}

func sendPlainText(c *fiber.Ctx, status int, message string) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(status).SendString(message)
}
