package common

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
)

// CustomerHeader carries the authenticated customer id set by the edge proxy.
const CustomerHeader = "X-Customer-ID"

// ErrMissingCustomer is returned when a request carries no customer identity.
var ErrMissingCustomer = errors.New("customer identity required")

type ctxKey string

const customerIDKey ctxKey = "identity/customer-id"

// WithCustomerID stores the calling customer on ctx.
func WithCustomerID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, customerIDKey, id)
}

// CustomerID extracts the calling customer from ctx if present.
func CustomerID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(customerIDKey).(int64)
	return id, ok
}

// ParseID parses a positive decimal identifier.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, errors.New("identifier must be positive")
	}
	return id, nil
}

// CustomerIdentity resolves the customer header into the request context.
// Requests without a valid header are rejected with 401.
func CustomerIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(CustomerHeader)
		if strings.TrimSpace(raw) == "" {
			JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", ErrMissingCustomer.Error(), nil)
			return
		}
		id, err := ParseID(raw)
		if err != nil {
			JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid customer identity", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCustomerID(r.Context(), id)))
	})
}

// ClientIP returns the caller address: the first valid X-Forwarded-For hop,
// then X-Real-IP, then the connection's remote address.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return addr.String()
		}
	}
	if addr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return addr.String()
	}
	remote := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(remote); err == nil {
		return host
	}
	return remote
}
