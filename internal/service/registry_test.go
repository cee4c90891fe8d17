package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/foldergraph/internal/shared/failure"
)

func echoChannel(name string) Channel {
	return Channel{
		Name:        name,
		Description: "echo " + name,
		Handler: func(_ context.Context, args []byte) (string, any, error) {
			return "echoed", string(args), nil
		},
	}
}

func TestRegister(t *testing.T) {
	r := NewRegistry(nil)

	require.NoError(t, r.Register(echoChannel("echo")))
	_, ok := r.Get("echo")
	assert.True(t, ok)

	assert.Error(t, r.Register(echoChannel("echo")), "duplicate names are rejected")
	assert.Error(t, r.Register(Channel{Name: "", Handler: echoChannel("x").Handler}))
	assert.Error(t, r.Register(Channel{Name: "nil-handler"}))
}

func TestList(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(echoChannel("b")))
	require.NoError(t, r.Register(echoChannel("a")))

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name)
	assert.Equal(t, "echo a", list[0].Description)
	assert.Equal(t, "b", list[1].Name)
}

func TestInvokeSuccess(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(echoChannel("echo")))

	res, err := r.Invoke(context.Background(), "echo", []byte(`{"x":1}`))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "echoed", res.Message)
	assert.Equal(t, `{"x":1}`, res.Data)
	assert.Empty(t, res.Kind)
}

func TestInvokeUnknownChannel(t *testing.T) {
	r := NewRegistry(nil)

	res, err := r.Invoke(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, ErrUnknownChannel)
	assert.False(t, res.Success)
	assert.Equal(t, failure.InvalidArgument, res.Kind)
}

func TestInvokeFailureBecomesResult(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(Channel{
		Name: "fail",
		Handler: func(context.Context, []byte) (string, any, error) {
			return "", nil, failure.Wrap(failure.IOFailure, "fail", "/x", errors.New("disk full"))
		},
	}))

	res, err := r.Invoke(context.Background(), "fail", nil)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, failure.IOFailure, res.Kind)
	assert.Equal(t, "disk full", res.Error)
	assert.Contains(t, res.Message, "disk full")
}

func TestInvokeRecoversPanics(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(Channel{
		Name: "boom",
		Handler: func(context.Context, []byte) (string, any, error) {
			panic("kaboom")
		},
	}))

	res, err := r.Invoke(context.Background(), "boom", nil)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, failure.IOFailure, res.Kind)
	assert.Contains(t, res.Error, "kaboom")
}

func TestInvokeNotifiesObserver(t *testing.T) {
	type call struct {
		channel, kind string
	}
	var calls []call
	r := NewRegistry(nil).WithObserver(func(channel, kind string, _ time.Duration) {
		calls = append(calls, call{channel, kind})
	})
	require.NoError(t, r.Register(echoChannel("echo")))
	require.NoError(t, r.Register(Channel{
		Name: "missing",
		Handler: func(context.Context, []byte) (string, any, error) {
			return "", nil, failure.New(failure.NotFound, "missing", "/x", "gone")
		},
	}))

	_, _ = r.Invoke(context.Background(), "echo", nil)
	_, _ = r.Invoke(context.Background(), "missing", nil)

	assert.Equal(t, []call{{"echo", ""}, {"missing", string(failure.NotFound)}}, calls)
}

func TestDecode(t *testing.T) {
	args, err := decode[pathArgs]("op", nil)
	require.NoError(t, err)
	assert.Empty(t, args.Path)

	args, err = decode[pathArgs]("op", []byte(" null "))
	require.NoError(t, err)
	assert.Empty(t, args.Path)

	args, err = decode[pathArgs]("op", []byte(`{"path":"/tmp"}`))
	require.NoError(t, err)
	assert.Equal(t, "/tmp", args.Path)

	_, err = decode[pathArgs]("op", []byte(`{"path":42}`))
	assert.True(t, failure.Is(err, failure.InvalidArgument))
}
