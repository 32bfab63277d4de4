package wsrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
)

var (
	ErrUnknownMessageType = errors.New("unknown message type")
	ErrInvalidMessage     = errors.New("invalid message")
	ErrInvalidPayload     = errors.New("invalid payload")
)

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type HandlerFunc[T any] func(ctx context.Context, conn *websocket.Conn, payload T) error

type Middleware func(next HandlerFunc[any]) HandlerFunc[any]

type ErrorHandler func(ctx context.Context, conn *websocket.Conn, err error)

type WSRouter struct {
	routes       map[string]HandlerFunc[any]
	middlewares  []Middleware
	errorHandler ErrorHandler
}

func New() *WSRouter {
	return &WSRouter{
		routes:       make(map[string]HandlerFunc[any]),
		errorHandler: func(context.Context, *websocket.Conn, error) {},
	}
}

// Use registers middlewares. They wrap handlers registered afterwards as well as before.
func (r *WSRouter) Use(mws ...Middleware) {
	r.middlewares = append(r.middlewares, mws...)
}

func (r *WSRouter) OnError(h ErrorHandler) {
	r.errorHandler = h
}

// Handle registers handler for messageType. The raw payload is decoded into T before the call;
// a missing or null payload leaves T at its zero value.
func Handle[T any](r *WSRouter, messageType string, handler HandlerFunc[T]) {
	r.routes[messageType] = func(ctx context.Context, conn *websocket.Conn, payload any) error {
		var input T
		raw, _ := payload.(json.RawMessage)
		if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
			if err := json.Unmarshal(raw, &input); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
			}
		}

		return handler(ctx, conn, input)
	}
}

// Dispatch routes a single encoded frame.
func (r *WSRouter) Dispatch(ctx context.Context, conn *websocket.Conn, data []byte) error {
	var msg message
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	handler, ok := r.routes[msg.Type]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMessageType, msg.Type)
	}

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		handler = r.middlewares[i](handler)
	}

	ctx = context.WithValue(ctx, messageTypeKey, msg.Type)
	return handler(ctx, conn, msg.Payload)
}

// ServeConn reads frames until the connection fails. Per-message errors go to the error handler
// and never terminate the loop.
func (r *WSRouter) ServeConn(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		if err := r.Dispatch(ctx, conn, data); err != nil {
			r.errorHandler(ctx, conn, err)
		}
	}
}
