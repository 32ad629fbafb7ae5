package mediator_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/solarion-go/internal/application/mediator"
)

type runSweepCommand struct{ Kinds []string }

type sweepResponse struct{ Processed int }

func TestMediator_SendRunsMiddlewaresInRegistrationOrder(t *testing.T) {
	m := mediator.NewMediator()

	var trace []string
	record := func(name string) mediator.Middleware {
		return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
			trace = append(trace, name+":before")
			resp, err := next(ctx, request)
			trace = append(trace, name+":after")
			return resp, err
		}
	}
	m.RegisterMiddleware(record("metrics"))
	m.RegisterMiddleware(record("user"))

	handler := mediator.HandlerFunc(func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		trace = append(trace, "handler")
		return &sweepResponse{Processed: len(request.(*runSweepCommand).Kinds)}, nil
	})
	require.NoError(t, mediator.RegisterHandler[*runSweepCommand](m, handler))

	resp, err := m.Send(context.Background(), &runSweepCommand{Kinds: []string{"construction", "movement"}})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.(*sweepResponse).Processed)
	assert.Equal(t, []string{"metrics:before", "user:before", "handler", "user:after", "metrics:after"}, trace)
}

func TestMediator_RegistrationErrors(t *testing.T) {
	m := mediator.NewMediator()
	handler := mediator.HandlerFunc(func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		return nil, nil
	})

	require.NoError(t, m.Register(reflect.TypeOf(&runSweepCommand{}), handler))
	assert.Error(t, m.Register(reflect.TypeOf(&runSweepCommand{}), handler), "duplicate handler")
	assert.Error(t, m.Register(nil, handler))
	assert.Error(t, m.Register(reflect.TypeOf(&sweepResponse{}), nil))

	_, err := m.Send(context.Background(), &sweepResponse{})
	assert.ErrorContains(t, err, "no handler registered")

	_, err = m.Send(context.Background(), nil)
	assert.Error(t, err)
}

func TestRequestName(t *testing.T) {
	assert.Equal(t, "runSweepCommand", mediator.RequestName(&runSweepCommand{}))
	assert.Equal(t, "runSweepCommand", mediator.RequestName(runSweepCommand{}))
	assert.Equal(t, "Unknown", mediator.RequestName(nil))
}
