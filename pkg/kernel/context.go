package kernel

import "context"

// ContextKey is the type of every value stored in a context by this module.
type ContextKey string

const (
	// RequestIDKey holds the HTTP request id (X-Request-ID)
	RequestIDKey ContextKey = "request_id"

	// DeliveryIDKey holds the DeliveryID of the event being processed
	DeliveryIDKey ContextKey = "delivery_id"
)

// WithDeliveryID stores id in ctx.
func WithDeliveryID(ctx context.Context, id DeliveryID) context.Context {
	return context.WithValue(ctx, DeliveryIDKey, id)
}

// DeliveryIDFrom returns the DeliveryID stored in ctx, if any.
func DeliveryIDFrom(ctx context.Context) (DeliveryID, bool) {
	id, ok := ctx.Value(DeliveryIDKey).(DeliveryID)
	return id, ok && !id.IsEmpty()
}

// WithRequestID stores the HTTP request id in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// RequestIDFrom returns the request id stored in ctx, if any.
func RequestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(RequestIDKey).(string)
	return id, ok && id != ""
}
