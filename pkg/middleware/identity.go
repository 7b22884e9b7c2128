package middleware

import (
	"context"
	"net/http"
)

// contextKey is a private type so values stored by this package never
// collide with context keys set by other packages.
type contextKey string

const (
	ContextKeyAccountID contextKey = "account_id"
	ContextKeyCallerARN contextKey = "caller_arn"
	ContextKeyUserID    contextKey = "user_id"
	ContextKeySourceIP  contextKey = "source_ip"
	ContextKeyRequestID contextKey = "request_id"
)

// Headers the edge proxy/API gateway populates with the caller's identity
// ahead of this service; this middleware only ever reads them and copies
// their values as received, without authenticating them itself.
const (
	HeaderAccountID = "X-Rosa-Account-Id"
	HeaderCallerARN = "X-Rosa-Caller-Arn"
	HeaderUserID    = "X-Rosa-User-Id"
	HeaderSourceIP  = "X-Rosa-Source-Ip"
	HeaderRequestID = "X-Rosa-Request-Id"
)

// Identity copies the caller-identity headers into the request context so
// downstream handlers can read them without reaching back into
// http.Request.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if v := r.Header.Get(HeaderAccountID); v != "" {
			ctx = context.WithValue(ctx, ContextKeyAccountID, v)
		}
		if v := r.Header.Get(HeaderCallerARN); v != "" {
			ctx = context.WithValue(ctx, ContextKeyCallerARN, v)
		}
		if v := r.Header.Get(HeaderUserID); v != "" {
			ctx = context.WithValue(ctx, ContextKeyUserID, v)
		}
		if v := r.Header.Get(HeaderSourceIP); v != "" {
			ctx = context.WithValue(ctx, ContextKeySourceIP, v)
		}
		if v := r.Header.Get(HeaderRequestID); v != "" {
			ctx = context.WithValue(ctx, ContextKeyRequestID, v)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAccountID returns the caller's AWS account ID, or "" if absent.
func GetAccountID(ctx context.Context) string {
	return stringFromContext(ctx, ContextKeyAccountID)
}

// GetCallerARN returns the caller's principal ARN, or "" if absent.
func GetCallerARN(ctx context.Context) string {
	return stringFromContext(ctx, ContextKeyCallerARN)
}

// GetRequestID returns the inbound request ID, or "" if absent.
func GetRequestID(ctx context.Context) string {
	return stringFromContext(ctx, ContextKeyRequestID)
}

func stringFromContext(ctx context.Context, key contextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
