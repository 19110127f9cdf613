package requestid

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofrs/uuid"
)

func TestMiddleware_KeepsIncomingID(t *testing.T) {
	const wantID = "test-req-id-123"
	var gotID string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = FromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(Header, wantID)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if gotID != wantID {
		t.Errorf("want request id in context %q, got %q", wantID, gotID)
	}
	if got := w.Header().Get(Header); got != wantID {
		t.Errorf("want %s header %q, got %q", Header, wantID, got)
	}
}

func TestMiddleware_GeneratesUUIDWhenMissing(t *testing.T) {
	var gotID string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = FromContext(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	respID := w.Header().Get(Header)
	if respID == "" || respID != gotID {
		t.Fatalf("want matching non-empty ids, got header %q context %q", respID, gotID)
	}
	if _, err := uuid.FromString(respID); err != nil {
		t.Errorf("want valid UUID for generated request id, got %q", respID)
	}
}

func TestFromContext_EmptyOutsideMiddleware(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := FromContext(r.Context()); got != "" {
		t.Fatalf("expected empty id, got %q", got)
	}
}
