package session

import (
	"context"
	"os"

	"suratgen/bizerror"

	"github.com/gin-gonic/gin"
)

const KeySession = "Session"

// Session carries the caller's auth cookies across the pipeline so that
// every upstream call is made on behalf of the signed-in user. The backend
// owns authentication; this service only forwards the cookie header.
type Session struct {
	Context context.Context
	Cookies string
}

func (s *Session) Clone() Session {
	return Session{Context: s.Context, Cookies: s.Cookies}
}

func AuthCookieName() string {
	name := os.Getenv("AUTH_COOKIE_NAME")
	if name == "" {
		name = "access_token"
	}
	return name
}

func ExtractSessionFromGinContext(ctx *gin.Context) *Session {
	value, found := ctx.Get(KeySession)
	if !found {
		return &Session{Context: ctx.Request.Context()}
	}
	s0, ok := value.(*Session)
	if !ok {
		return &Session{Context: ctx.Request.Context()}
	}
	s := s0.Clone()
	s.Context = ctx.Request.Context() // trace context
	return &s
}

func InjectSessionIntoGinContext(ctx *gin.Context, s *Session) {
	if s != nil && s.Cookies != "" {
		ctx.Set(KeySession, s)
	}
}

// CookieAuthFilter rejects requests without the auth cookie and stashes the
// raw cookie header for upstream forwarding.
func CookieAuthFilter() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if _, err := ctx.Cookie(AuthCookieName()); err != nil {
			panic(bizerror.ErrUnauthenticated)
		}
		InjectSessionIntoGinContext(ctx, &Session{
			Context: ctx.Request.Context(),
			Cookies: ctx.Request.Header.Get("Cookie"),
		})
		ctx.Next()
	}
}
