package auth

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/gofiber/fiber/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type loadingPage struct {
	RefreshSeconds int
}

type redirectPage struct {
	Location string
}

// renderPage writes a gate placeholder. Placeholders must never be cached since the
// next navigation may resolve differently.
func renderPage(c *fiber.Ctx, name string, data any) error {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Type("html", "utf-8")
	return c.Status(fiber.StatusOK).Send(buf.Bytes())
}
