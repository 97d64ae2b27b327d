package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	err := New(CodeNotFound, "node missing")
	if !strings.Contains(err.Error(), "NOT_FOUND") {
		t.Errorf("Expected code in message, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "node missing") {
		t.Errorf("Expected message text, got %q", err.Error())
	}
}

func TestWrap_Unwrap(t *testing.T) {
	inner := stderrors.New("disk full")
	err := Wrap(inner, CodeIO, "cache write failed")

	if !stderrors.Is(err, inner) {
		t.Error("Expected wrapped error to unwrap to inner")
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Expected inner message in output, got %q", err.Error())
	}
}

func TestIsCode(t *testing.T) {
	err := Newf(CodeDuplicateNode, "duplicate node id %q", "intervals")
	if !IsCode(err, CodeDuplicateNode) {
		t.Error("Expected IsCode to match DUPLICATE_NODE")
	}
	if IsCode(err, CodeNotFound) {
		t.Error("Did not expect IsCode to match NOT_FOUND")
	}
	if IsCode(stderrors.New("plain"), CodeInternal) {
		t.Error("Plain errors should not match any code")
	}
}

func TestAddContext(t *testing.T) {
	err := New(CodeDanglingReference, "edge endpoint unknown")
	err = AddContext(err, CtxNode, "ghost")

	var de *DomainError
	if !stderrors.As(err, &de) {
		t.Fatal("Expected DomainError")
	}
	if de.Context[CtxNode] != "ghost" {
		t.Errorf("Expected context node=ghost, got %v", de.Context[CtxNode])
	}

	wrapped := AddContext(stderrors.New("plain"), CtxPath, "/tmp/x")
	if !stderrors.As(wrapped, &de) {
		t.Fatal("Expected plain error to be wrapped into DomainError")
	}
	if de.Code != CodeInternal {
		t.Errorf("Expected INTERNAL_ERROR code, got %s", de.Code)
	}
}

func TestCacheMissVsUnreadable(t *testing.T) {
	miss := New(CodeCacheMiss, "no cache present")
	corrupt := New(CodeCacheUnreadable, "cache schema mismatch")

	if IsCode(miss, CodeCacheUnreadable) || IsCode(corrupt, CodeCacheMiss) {
		t.Error("Cache miss and cache unreadable must stay distinct codes")
	}
}
