package external

import (
	"context"
	"errors"
	"testing"
)

func TestWrap(t *testing.T) {
	if Wrap("assistant", nil) != nil {
		t.Fatal("nil should stay nil")
	}

	err := Wrap("assistant", context.DeadlineExceeded)
	var se *ServiceError
	if !errors.As(err, &se) || se.Service != "assistant" {
		t.Fatalf("got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("cause should unwrap")
	}
	if err.Error() != "assistant: context deadline exceeded" {
		t.Errorf("message = %q", err.Error())
	}

	again := Wrap("sync", err)
	if again != err {
		t.Error("existing ServiceError should pass through")
	}
}

func TestServiceError_StatusInMessage(t *testing.T) {
	err := &ServiceError{Service: "sync", StatusCode: 503, Err: errors.New("unavailable")}
	if err.Error() != "sync: status 503: unavailable" {
		t.Errorf("message = %q", err.Error())
	}
	if !Is(err) || Is(errors.New("plain")) {
		t.Error("Is misclassifies")
	}
}
