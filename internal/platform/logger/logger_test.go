package logger

import "testing"

func TestSanitizeKVsRedactsSensitiveKeys(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"email", "jane@example.com",
		"access_token", "abc",
		"course_id", "c-1",
		"user_id", "u-1",
	})
	if len(out) != 8 {
		t.Fatalf("expected 8 entries, got %d", len(out))
	}
	if out[1] != "[REDACTED]" || out[3] != "[REDACTED]" {
		t.Fatalf("expected email and token redacted, got %v", out)
	}
	if out[5] != "c-1" {
		t.Fatalf("course_id should pass through, got %v", out[5])
	}
	hashed, _ := out[7].(string)
	if len(hashed) != len("hash:")+12 {
		t.Fatalf("expected hashed user id, got %q", hashed)
	}
}

func TestSanitizeValueRedactsJWTLookingStrings(t *testing.T) {
	jwt := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.sig"
	if got := sanitizeValue("note", jwt); got != "[REDACTED]" {
		t.Fatalf("expected jwt redacted, got %v", got)
	}
	nested := sanitizeValue("payload", map[string]interface{}{"password": "x", "title": "Go"}).(map[string]interface{})
	if nested["password"] != "[REDACTED]" || nested["title"] != "Go" {
		t.Fatalf("unexpected nested sanitize: %v", nested)
	}
}

func TestOddKVKeepsTrailingKey(t *testing.T) {
	out := sanitizeKVs([]interface{}{"a", 1, "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected output: %v", out)
	}
}
