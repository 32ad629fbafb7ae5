package mediator

import (
	"context"
	"reflect"
	"strings"
)

// Request is a command or query. Handlers are looked up by its dynamic type.
type Request interface{}

// Response is whatever a handler returns for its request
type Response interface{}

// RequestHandler handles one request type
type RequestHandler interface {
	Handle(ctx context.Context, request Request) (Response, error)
}

// HandlerFunc adapts a plain function to RequestHandler
type HandlerFunc func(ctx context.Context, request Request) (Response, error)

// Handle calls f
func (f HandlerFunc) Handle(ctx context.Context, request Request) (Response, error) {
	return f(ctx, request)
}

// Middleware wraps every Send. It must call next to reach the handler.
type Middleware func(ctx context.Context, request Request, next HandlerFunc) (Response, error)

// RequestName is the bare type name of a request, e.g. "RunSweepCommand"
// for a *commands.RunSweepCommand
func RequestName(request Request) string {
	if request == nil {
		return "Unknown"
	}
	name := reflect.TypeOf(request).String()
	name = strings.TrimLeft(name, "*")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}
