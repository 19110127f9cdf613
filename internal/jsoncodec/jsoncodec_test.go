package jsoncodec

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWrite_SetsStatusAndContentType(t *testing.T) {
	w := httptest.NewRecorder()

	if err := Write(w, http.StatusCreated, map[string]string{"status": "ok"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var got map[string]string
	if err := Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if got["status"] != "ok" {
		t.Fatalf("unexpected body %v", got)
	}
}

func TestWrite_UnsupportedValueWritesNothing(t *testing.T) {
	w := httptest.NewRecorder()

	if err := Write(w, http.StatusOK, map[string]any{"ch": make(chan int)}); err == nil {
		t.Fatalf("expected marshal error")
	}
	if w.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", w.Body.String())
	}
}

func TestUnmarshal_RejectsMalformedInput(t *testing.T) {
	var v any
	if err := Unmarshal([]byte(`{"a":`), &v); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}
