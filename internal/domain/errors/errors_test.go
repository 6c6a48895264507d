package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := New(KindInvalidToken, "token verification failed")
	if KindOf(err) != KindInvalidToken {
		t.Errorf("KindOf = %v, want KindInvalidToken", KindOf(err))
	}
	wrapped := fmt.Errorf("verify: %w", err)
	if KindOf(wrapped) != KindInvalidToken {
		t.Errorf("KindOf through wrap = %v, want KindInvalidToken", KindOf(wrapped))
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("KindOf on plain error should be KindUnknown")
	}
	if KindOf(nil) != KindUnknown {
		t.Error("KindOf on nil should be KindUnknown")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(KindHashing, "hashing failed", cause)
	if !errors.Is(err, cause) {
		t.Error("wrapped cause should be reachable via errors.Is")
	}
	if err.Error() != "hashing: hashing failed: boom" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestSentinelErrors(t *testing.T) {
	if ErrInvalidCredentials == nil {
		t.Error("ErrInvalidCredentials should not be nil")
	}
	if ErrUserExists == nil {
		t.Error("ErrUserExists should not be nil")
	}
	if ErrNoRoles == nil {
		t.Error("ErrNoRoles should not be nil")
	}
}
