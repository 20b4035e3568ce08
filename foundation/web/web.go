// Package web wraps gin with the small handler/middleware contract the rest
// of the service is written against. Handlers return errors instead of
// writing failure responses themselves.
package web

import (
	"net/http"
	"syscall"

	"github.com/gin-gonic/gin"
)

// Handler is the signature every controller method implements.
type Handler func(c *Context) error

// Middleware wraps a Handler with some reusable behaviour.
type Middleware func(handler Handler) Handler

// App is the gin engine plus the error-aware handler registration helpers.
type App struct {
	*gin.Engine
	shutdown chan struct{}
}

func NewApp() *App {
	return &App{
		Engine:   gin.New(),
		shutdown: make(chan struct{}),
	}
}

// SignalShutdown is used by handlers that detect an unrecoverable condition.
func (a *App) SignalShutdown() {
	close(a.shutdown)
	_ = syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
}

func (a *App) handle(method, path string, handler Handler, middlewares ...Middleware) {
	// Middlewares wrap outermost-first, matching registration order.
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] != nil {
			handler = middlewares[i](handler)
		}
	}

	a.Engine.Handle(method, path, func(c *gin.Context) {
		ctx := &Context{
			Context: c,
			Ctx:     c.Request.Context(),
		}

		if err := handler(ctx); err != nil {
			// A non-nil error here means the handler could not even
			// write its own error response.
			_ = ctx.RespondError(err)
		}
	})
}

func (a *App) Get(path string, handler Handler, middlewares ...Middleware) {
	a.handle(http.MethodGet, path, handler, middlewares...)
}

func (a *App) Post(path string, handler Handler, middlewares ...Middleware) {
	a.handle(http.MethodPost, path, handler, middlewares...)
}

func (a *App) Put(path string, handler Handler, middlewares ...Middleware) {
	a.handle(http.MethodPut, path, handler, middlewares...)
}

func (a *App) Patch(path string, handler Handler, middlewares ...Middleware) {
	a.handle(http.MethodPatch, path, handler, middlewares...)
}

func (a *App) Delete(path string, handler Handler, middlewares ...Middleware) {
	a.handle(http.MethodDelete, path, handler, middlewares...)
}
