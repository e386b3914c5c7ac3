package handlers

import (
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	// Inject user if present
	if u := c.Locals("user"); u != nil {
		data["User"] = u
	}
	// Pick up the token the CSRF middleware put into Locals; fall back to
	// the cookie so hidden form fields never render empty.
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	if kind, msg, ok := takeFlash(c); ok {
		data["Flash"] = fiber.Map{"Kind": kind, "Text": msg}
	}
	return c.Render(tmpl, data)
}

const flashCookie = "flash"

// setFlash stores a one-shot notice that survives the PRG redirect.
func setFlash(c *fiber.Ctx, kind, msg string) {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(kind + "|" + msg),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// takeFlash pops the pending notice, expiring its cookie.
func takeFlash(c *fiber.Ctx) (kind, msg string, ok bool) {
	raw := c.Cookies(flashCookie)
	if raw == "" {
		return "", "", false
	}
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-time.Hour),
	})
	s, err := url.QueryUnescape(raw)
	if err != nil {
		return "", "", false
	}
	kind, msg, found := strings.Cut(s, "|")
	if !found {
		return "notice", s, true
	}
	return kind, msg, true
}
