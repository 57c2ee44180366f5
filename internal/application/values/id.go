package values

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidID is returned when a path identifier is not a 64-bit integer
var ErrInvalidID = errors.New("invalid value id")

// ParseID parses a raw path parameter into a value id.
// Any integer that fits in 64 bits is accepted; it does not need to refer to anything.
func ParseID(raw string) (int64, error) {
	if raw == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidID)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidID, raw)
		}
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidID, raw)
	}

	return id, nil
}

type requestIDKey struct{}

// WithRequestID returns a context carrying the request id
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request id stored in ctx, if any
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
