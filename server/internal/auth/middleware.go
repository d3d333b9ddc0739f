package auth

import (
	"context"
	"encoding/json"
	"net/http"
)

// AnonymousSender is the sender name used when authentication is disabled.
const AnonymousSender = "anonymous"

type senderKey struct{}

// Sender returns the sender name attached by Middleware, or AnonymousSender.
func Sender(ctx context.Context) string {
	if s, ok := ctx.Value(senderKey{}).(string); ok {
		return s
	}
	return AnonymousSender
}

// WithSender returns a copy of ctx carrying sender.
func WithSender(ctx context.Context, sender string) context.Context {
	return context.WithValue(ctx, senderKey{}, sender)
}

// Middleware enforces API key authentication on every request to next.
//
// Behaviour:
//   - If mode != "apikey", all requests pass as AnonymousSender.
//   - Otherwise the key is read from the api_key query parameter, then
//     from header.
//   - A missing key or one not in the keyring gets 401 with a JSON body.
//     An empty keyring accepts nothing.
func Middleware(mode, header string, keys *Keyring, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if mode != "apikey" {
			next.ServeHTTP(w, r.WithContext(WithSender(r.Context(), AnonymousSender)))
			return
		}

		key := r.URL.Query().Get("api_key")
		if key == "" {
			key = r.Header.Get(header)
		}
		if key == "" {
			unauthorized(w, "Missing 'api_key' argument")
			return
		}

		sender, ok := keys.Lookup(key)
		if !ok {
			unauthorized(w, "Invalid API key")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSender(r.Context(), sender)))
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"result": "error", "msg": msg}) //nolint:errcheck
}
