package kit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type greetRequest struct {
	Name string `json:"name"`
}

var errNobody = errors.New("nobody to greet")

func greet(ctx context.Context, req any) (any, error) {
	r := req.(*greetRequest)
	if r.Name == "" {
		return nil, errNobody
	}
	return map[string]string{"greeting": "hello " + r.Name, "transport": GetTransport(ctx)}, nil
}

func serve(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	var out map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return rec, out
}

func TestHTTPHandler_OK(t *testing.T) {
	h := HTTPHandler(greet, DecodeJSON[greetRequest](), nil)
	rec, out := serve(t, h, `{"name":"ada"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("content type %q", rec.Header().Get("Content-Type"))
	}
	if out["greeting"] != "hello ada" || out["transport"] != "http" {
		t.Fatalf("got %v", out)
	}
}

func TestHTTPHandler_DecodeErrors(t *testing.T) {
	h := HTTPHandler(greet, DecodeJSON[greetRequest](), nil)
	for _, body := range []string{"", "{", `{"name":"ada","extra":1}`} {
		rec, out := serve(t, h, body)
		if rec.Code != http.StatusBadRequest || out["error"] == "" {
			t.Errorf("body %q: status %d, %v", body, rec.Code, out)
		}
	}
}

func TestHTTPHandler_BodyTooLarge(t *testing.T) {
	inner := HTTPHandler(greet, DecodeJSON[greetRequest](), nil)
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 8)
		inner(w, r)
	})
	rec, _ := serve(t, h, `{"name":"a very long name"}`)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestHTTPHandler_EndpointError(t *testing.T) {
	status := func(err error) int {
		if errors.Is(err, errNobody) {
			return http.StatusUnprocessableEntity
		}
		return http.StatusInternalServerError
	}
	rec, out := serve(t, HTTPHandler(greet, DecodeJSON[greetRequest](), status), `{}`)
	if rec.Code != http.StatusUnprocessableEntity || out["error"] != errNobody.Error() {
		t.Fatalf("status %d, %v", rec.Code, out)
	}

	rec, _ = serve(t, HTTPHandler(greet, DecodeJSON[greetRequest](), nil), `{}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("nil status func: %d", rec.Code)
	}
}
