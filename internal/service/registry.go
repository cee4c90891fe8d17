package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/foldergraph/internal/shared/failure"
	"github.com/GriffinCanCode/foldergraph/internal/shared/types"
)

// ErrUnknownChannel is returned by Invoke for unregistered channel names
var ErrUnknownChannel = errors.New("unknown channel")

// Handler runs one invocation with the channel's raw JSON arguments
type Handler func(ctx context.Context, args []byte) (message string, data any, err error)

// Channel is one named operation
type Channel struct {
	Name        string
	Description string
	Handler     Handler
}

// Info describes a registered channel
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Observer is told about every invocation. kind is empty on success.
type Observer func(channel, kind string, elapsed time.Duration)

// Registry manages channel registration and invocation
type Registry struct {
	channels sync.Map
	logger   *zap.Logger
	observer Observer
}

// NewRegistry creates a new channel registry. A nil logger discards output.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{logger: logger}
}

// WithObserver sets the invocation observer
func (r *Registry) WithObserver(o Observer) *Registry {
	r.observer = o
	return r
}

// Register adds a channel. Names are unique.
func (r *Registry) Register(ch Channel) error {
	if ch.Name == "" {
		return fmt.Errorf("channel name cannot be empty")
	}
	if ch.Handler == nil {
		return fmt.Errorf("channel %s has no handler", ch.Name)
	}
	if _, loaded := r.channels.LoadOrStore(ch.Name, ch); loaded {
		return fmt.Errorf("channel %s already registered", ch.Name)
	}
	return nil
}

// Get retrieves a channel by name
func (r *Registry) Get(name string) (Channel, bool) {
	val, ok := r.channels.Load(name)
	if !ok {
		return Channel{}, false
	}
	return val.(Channel), true
}

// List returns all registered channels sorted by name
func (r *Registry) List() []Info {
	var out []Info
	r.channels.Range(func(_, value any) bool {
		ch := value.(Channel)
		out = append(out, Info{Name: ch.Name, Description: ch.Description})
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// Invoke runs a channel. Operation failures, including panics, are reported
// in the Result; the error return is only ErrUnknownChannel.
func (r *Registry) Invoke(ctx context.Context, name string, args []byte) (result types.Result, err error) {
	ch, ok := r.Get(name)
	if !ok {
		return types.Failf(failure.InvalidArgument, "unknown channel: "+name), fmt.Errorf("%w: %s", ErrUnknownChannel, name)
	}

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("Channel panicked", zap.String("channel", name), zap.Any("panic", p), zap.Stack("stack"))
			result = types.Fail(failure.IO(name, "", fmt.Errorf("internal error: %v", p)))
		}
		if r.observer != nil {
			r.observer(name, string(result.Kind), time.Since(start))
		}
	}()

	message, data, herr := ch.Handler(ctx, args)
	if herr != nil {
		r.logger.Warn("Channel failed",
			zap.String("channel", name),
			zap.String("kind", string(failure.KindOf(herr))),
			zap.Error(herr))
		return types.Fail(herr), nil
	}

	r.logger.Debug("Channel succeeded", zap.String("channel", name), zap.Duration("elapsed", time.Since(start)))
	return types.OK(message, data), nil
}

// decode unmarshals channel arguments. Empty and null arguments decode to the
// zero value.
func decode[T any](op string, raw []byte) (T, error) {
	var v T
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return v, nil
	}
	if err := sonic.Unmarshal(trimmed, &v); err != nil {
		return v, failure.Wrap(failure.InvalidArgument, op, "", err)
	}
	return v, nil
}
