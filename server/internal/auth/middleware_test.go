package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// echoSender is a handler that writes the authenticated sender name.
var echoSender = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(Sender(r.Context()))) //nolint:errcheck
})

func serve(t *testing.T, h http.Handler, target string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func errMsg(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if body["result"] != "error" {
		t.Errorf("result: got %q, want error", body["result"])
	}
	return body["msg"]
}

func TestMiddleware_ModeNone_PassesThrough(t *testing.T) {
	h := Middleware("none", "x-api-key", NewKeyring(map[string]string{"secret": "bot"}), echoSender)
	rr := serve(t, h, "/hook", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if rr.Body.String() != AnonymousSender {
		t.Errorf("sender: got %q, want %q", rr.Body.String(), AnonymousSender)
	}
}

func TestMiddleware_EmptyKeyring_Unauthorized(t *testing.T) {
	h := Middleware("apikey", "x-api-key", NewKeyring(map[string]string{}), echoSender)

	rr := serve(t, h, "/hook", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("no key: got %d, want 401", rr.Code)
	}
	if msg := errMsg(t, rr); msg != "Missing 'api_key' argument" {
		t.Errorf("no key msg: got %q", msg)
	}

	rr = serve(t, h, "/hook?api_key=anything", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("any key: got %d, want 401", rr.Code)
	}
}

func TestMiddleware_ReplaceWithEmptyClosesEndpoint(t *testing.T) {
	kr := NewKeyring(map[string]string{"secret": "bot"})
	h := Middleware("apikey", "x-api-key", kr, echoSender)
	if rr := serve(t, h, "/hook?api_key=secret", nil); rr.Code != http.StatusOK {
		t.Fatalf("before Replace: got %d, want 200", rr.Code)
	}

	kr.Replace(nil)
	if rr := serve(t, h, "/hook?api_key=secret", nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("after Replace(nil): got %d, want 401", rr.Code)
	}
}

func TestMiddleware_QueryKey_Passes(t *testing.T) {
	h := Middleware("apikey", "x-api-key", NewKeyring(map[string]string{"secret": "splunk-bot"}), echoSender)
	rr := serve(t, h, "/hook?api_key=secret&stream=splunk", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if rr.Body.String() != "splunk-bot" {
		t.Errorf("sender: got %q, want splunk-bot", rr.Body.String())
	}
}

func TestMiddleware_HeaderKey_Passes(t *testing.T) {
	h := Middleware("apikey", "x-hook-key", NewKeyring(map[string]string{"secret": "bot"}), echoSender)
	rr := serve(t, h, "/hook", map[string]string{"X-Hook-Key": "secret"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
}

func TestMiddleware_WrongKey_Unauthorized(t *testing.T) {
	h := Middleware("apikey", "x-api-key", NewKeyring(map[string]string{"secret": "bot"}), echoSender)
	rr := serve(t, h, "/hook?api_key=wrong", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401", rr.Code)
	}
	if msg := errMsg(t, rr); msg != "Invalid API key" {
		t.Errorf("msg: got %q, want Invalid API key", msg)
	}
}

func TestMiddleware_MissingKey_Unauthorized(t *testing.T) {
	h := Middleware("apikey", "x-api-key", NewKeyring(map[string]string{"secret": "bot"}), echoSender)
	rr := serve(t, h, "/hook", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401", rr.Code)
	}
	if msg := errMsg(t, rr); msg != "Missing 'api_key' argument" {
		t.Errorf("msg: got %q", msg)
	}
}

func TestKeyring_Replace(t *testing.T) {
	kr := NewKeyring(map[string]string{"old": "a"})
	kr.Replace(map[string]string{"new": "b"})

	if _, ok := kr.Lookup("old"); ok {
		t.Error("Lookup(old) after Replace: expected false")
	}
	if name, ok := kr.Lookup("new"); !ok || name != "b" {
		t.Errorf("Lookup(new): got %q, %v, want b, true", name, ok)
	}
}

func TestKeyring_ReplaceCopiesInput(t *testing.T) {
	in := map[string]string{"k": "a"}
	kr := NewKeyring(in)
	in["k2"] = "b"
	if kr.Len() != 1 {
		t.Errorf("Len: got %d, want 1", kr.Len())
	}
}

func TestKeyring_ConcurrentReplaceAndLookup(t *testing.T) {
	kr := NewKeyring(map[string]string{"k": "a"})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); kr.Replace(map[string]string{"k": "a"}) }()
		go func() { defer wg.Done(); kr.Lookup("k") }()
	}
	wg.Wait()
}

func TestSender_Default(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if s := Sender(req.Context()); s != AnonymousSender {
		t.Errorf("Sender: got %q, want %q", s, AnonymousSender)
	}
}
