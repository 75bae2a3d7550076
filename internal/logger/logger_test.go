package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVs(t *testing.T) {
	out := sanitizeKVs([]interface{}{"email", "jean@exemple.fr", "phone", "0611223344", "path", "/clients", "dangling"})
	if len(out) != 7 {
		t.Fatalf("expected 7 entries got %d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("email should be redacted, got %v", out[1])
	}
	hashed, ok := out[3].(string)
	if !ok || !strings.HasPrefix(hashed, "hash:") || strings.Contains(hashed, "0611223344") {
		t.Fatalf("phone should be hashed, got %v", out[3])
	}
	if out[5] != "/clients" {
		t.Fatalf("path should be untouched, got %v", out[5])
	}
	if out[6] != "dangling" {
		t.Fatalf("odd trailing key should be kept, got %v", out[6])
	}
}

func TestHashStable(t *testing.T) {
	if hashValue("0611223344") != hashValue("0611223344") {
		t.Fatalf("hash should be deterministic")
	}
	if hashValue("") != "" {
		t.Fatalf("empty values hash to empty")
	}
}

func TestNopDoesNotPanic(t *testing.T) {
	l := Nop().With("component", "test")
	l.Info("hello", "phone", "0611223344")
	l.Sync()
}
