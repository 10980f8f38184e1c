package gee

import (
	"log/slog"
	"net/http"
	"strings"
)

type Engine struct {
	*RouterGroup
	router   *router
	groups   []*RouterGroup
	noMethod []HandlerFunc
	noRoute  []HandlerFunc
}

type RouterGroup struct {
	prefix      string
	middlewares []HandlerFunc
	parent      *RouterGroup
	engine      *Engine
}

func New() *Engine {
	engine := &Engine{
		router: newRouter(),
	}
	engine.noRoute = []HandlerFunc{func(ctx *Context) { ctx.AbortWithError(http.StatusNotFound, "not found: "+ctx.Path) }}
	engine.noMethod = []HandlerFunc{func(ctx *Context) { ctx.AbortWithError(http.StatusMethodNotAllowed, "method not allowed: "+ctx.Path) }}
	engine.RouterGroup = &RouterGroup{engine: engine}
	engine.groups = []*RouterGroup{engine.RouterGroup}
	return engine
}

// NoRoute replaces the handlers run when no route matches the path.
// Group middlewares still run before them.
func (e *Engine) NoRoute(handlers ...HandlerFunc) {
	e.noRoute = handlers
}

func (e *Engine) NoMethod(handlers ...HandlerFunc) {
	e.noMethod = handlers
}

func (group *RouterGroup) Group(prefix string) *RouterGroup {
	engine := group.engine
	newGroup := &RouterGroup{
		prefix: group.prefix + prefix,
		parent: group,
		engine: engine,
	}
	engine.groups = append(engine.groups, newGroup)
	return newGroup
}

// Use appends middlewares to the group.
func (group *RouterGroup) Use(middlewares ...HandlerFunc) {
	group.middlewares = append(group.middlewares, middlewares...)
}

func (group *RouterGroup) addRoute(method string, comp string, handlers ...HandlerFunc) {
	pattern := group.prefix + comp
	slog.Debug("route registered", "method", method, "pattern", pattern)
	group.engine.router.addRoute(method, pattern, handlers...)
}

func (group *RouterGroup) GET(pattern string, handlers ...HandlerFunc) {
	group.addRoute(http.MethodGet, pattern, handlers...)
}

func (group *RouterGroup) HEAD(pattern string, handlers ...HandlerFunc) {
	group.addRoute(http.MethodHead, pattern, handlers...)
}

func (group *RouterGroup) POST(pattern string, handlers ...HandlerFunc) {
	group.addRoute(http.MethodPost, pattern, handlers...)
}

func (group *RouterGroup) PUT(pattern string, handlers ...HandlerFunc) {
	group.addRoute(http.MethodPut, pattern, handlers...)
}

func (group *RouterGroup) PATCH(pattern string, handlers ...HandlerFunc) {
	group.addRoute(http.MethodPatch, pattern, handlers...)
}

func (group *RouterGroup) DELETE(pattern string, handlers ...HandlerFunc) {
	group.addRoute(http.MethodDelete, pattern, handlers...)
}

func (group *RouterGroup) OPTIONS(pattern string, handlers ...HandlerFunc) {
	group.addRoute(http.MethodOptions, pattern, handlers...)
}

// WrapH adapts a plain http.Handler so it can sit at the end of a gee chain.
func WrapH(h http.Handler) HandlerFunc {
	return func(ctx *Context) {
		h.ServeHTTP(ctx.Writer, ctx.Req)
	}
}

// ServeHTTP implements http.Handler.
func (e *Engine) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var middlewares []HandlerFunc
	for _, group := range e.groups {
		if strings.HasPrefix(req.URL.Path, group.prefix) {
			middlewares = append(middlewares, group.middlewares...)
		}
	}
	ctx := newContext(w, req)
	ctx.handlers = middlewares
	ctx.engine = e
	e.router.handle(ctx)
}

func (e *Engine) Run(addr string) error {
	return http.ListenAndServe(addr, e)
}
