package gee

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
)

type H map[string]any

// abortIndex must exceed any real handler index without letting nested Next
// loops overflow when they increment c.index after Abort.
const abortIndex = math.MaxInt32

type Context struct {
	Writer *ResponseWriter
	Req    *http.Request

	Path         string
	Method       string
	Params       map[string]string
	RoutePattern string

	handlers []HandlerFunc
	index    int
	engine   *Engine
}

func newContext(w http.ResponseWriter, req *http.Request) *Context {
	return &Context{
		Writer: NewResponseWriter(w),
		Req:    req,
		Path:   req.URL.Path,
		Method: req.Method,
		index:  -1,
	}
}

func (c *Context) Param(key string) string {
	return c.Params[key]
}

func (c *Context) Next() {
	c.index++
	s := len(c.handlers)
	for ; c.index < s && !c.IsAborted(); c.index++ {
		c.handlers[c.index](c)
	}
}

// Query returns the first value of the URL query parameter, or "".
func (c *Context) Query(key string) string {
	return c.Req.URL.Query().Get(key)
}

func (c *Context) Status(code int) {
	c.Writer.WriteHeader(code)
}

func (c *Context) SetHeader(key string, value string) {
	c.Writer.SetHeader(key, value)
}

func (c *Context) String(code int, format string, values ...any) {
	c.SetHeader("Content-Type", "text/plain; charset=utf-8")
	c.Status(code)
	c.Writer.Write([]byte(fmt.Sprintf(format, values...)))
}

func (c *Context) JSON(code int, obj any) {
	c.SetHeader("Content-Type", "application/json")
	c.Status(code)
	encoder := json.NewEncoder(c.Writer)
	if err := encoder.Encode(obj); err != nil {
		http.Error(c.Writer, err.Error(), 500)
	}
}

// Data writes a binary body with an exact Content-Length.
func (c *Context) Data(code int, contentType string, data []byte) {
	if contentType != "" {
		c.SetHeader("Content-Type", contentType)
	}
	c.SetHeader("Content-Length", strconv.Itoa(len(data)))
	c.Status(code)
	if c.Method == http.MethodHead {
		return
	}
	c.Writer.Write(data)
}

func (c *Context) Fail(code int, format string) {
	c.String(code, "%s", format)
	c.Abort()
}

func (c *Context) Abort() {
	c.index = abortIndex
}

func (c *Context) IsAborted() bool {
	return c.index >= abortIndex
}

func (c *Context) AbortWithStatus(code int) {
	c.Status(code)
	c.Abort()
}

func (c *Context) AbortWithStatusJSON(code int, obj any) {
	c.Abort()

	if c.Writer.Written() {
		return
	}

	bytes, err := json.Marshal(obj)
	if err != nil {
		code = http.StatusInternalServerError
		bytes = []byte(`{"error":"Internal Server Error"}`)
	}
	c.SetHeader("Content-Type", "application/json")
	c.Status(code)
	c.Writer.Write(bytes)
}

func (c *Context) AbortWithError(code int, message string) {
	c.AbortWithStatusJSON(code, NewErrorResponse(message))
}
