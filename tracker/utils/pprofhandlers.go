package utils

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"golang.org/x/crypto/bcrypt"
)

type BasicAuthOptions struct {
	Username string
	// Password is either the plain password or its bcrypt hash.
	Password string
}

type PprofMiddleOptions struct {
	Auth BasicAuthOptions
}

func PprofHandlers(options PprofMiddleOptions) fiber.Handler {
	pprofHandler := pprof.New()
	return func(ctx *fiber.Ctx) error {
		if !strings.HasPrefix(ctx.Path(), "/debug/pprof") {
			return ctx.Next()
		}

		user, pass, ok := parseBasicAuth(ctx.Get(fiber.HeaderAuthorization))
		if !ok || !options.Auth.matches(user, pass) {
			ctx.Set(fiber.HeaderWWWAuthenticate, `Basic realm="pprof"`)
			return ctx.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}

		return pprofHandler(ctx)
	}
}

func (auth BasicAuthOptions) matches(user string, pass string) bool {
	if subtle.ConstantTimeCompare([]byte(user), []byte(auth.Username)) != 1 {
		return false
	}
	if isBcryptHash(auth.Password) {
		return bcrypt.CompareHashAndPassword([]byte(auth.Password), []byte(pass)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(pass), []byte(auth.Password)) == 1
}

func isBcryptHash(value string) bool {
	_, err := bcrypt.Cost([]byte(value))
	return err == nil
}

func parseBasicAuth(auth string) (user string, pass string, ok bool) {
	if !strings.HasPrefix(auth, "Basic ") {
		return
	}
	c, err := base64.StdEncoding.DecodeString(auth[6:])
	if err != nil {
		return
	}
	cs := string(c)
	s := strings.IndexByte(cs, ':')
	if s < 0 {
		return
	}
	return cs[:s], cs[s+1:], true
}
