// Package auth authenticates webhook callers by API key.
//
// Keyring maps API keys to sender names and can be replaced atomically when
// the config file is reloaded. Middleware(mode, header, keyring, next)
// reads the key from the api_key query parameter, falling back to the
// named header, and rejects missing or unknown keys with 401.
//
// When mode != "apikey" or the keyring is empty, every request passes
// through as sender "anonymous" (local development with auth disabled).
package auth
