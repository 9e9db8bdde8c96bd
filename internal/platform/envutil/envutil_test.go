package envutil

import (
	"testing"
	"time"
)

func TestDurationParsesUnitsAndSeconds(t *testing.T) {
	t.Setenv("X_TTL", "15m")
	if got := Duration("X_TTL", time.Second); got != 15*time.Minute {
		t.Fatalf("expected 15m, got %s", got)
	}
	t.Setenv("X_TTL", "90")
	if got := Duration("X_TTL", time.Second); got != 90*time.Second {
		t.Fatalf("expected 90s, got %s", got)
	}
	t.Setenv("X_TTL", "soon")
	if got := Duration("X_TTL", time.Second); got != time.Second {
		t.Fatalf("expected default, got %s", got)
	}
}

func TestBoolAndIntDefaults(t *testing.T) {
	t.Setenv("X_FLAG", "off")
	if Bool("X_FLAG", true) {
		t.Fatalf("expected false")
	}
	t.Setenv("X_FLAG", "maybe")
	if !Bool("X_FLAG", true) {
		t.Fatalf("expected default true")
	}
	t.Setenv("X_NUM", "abc")
	if Int("X_NUM", 7) != 7 {
		t.Fatalf("expected default 7")
	}
	t.Setenv("X_RATE", "7.5")
	if Float("X_RATE", 5) != 7.5 {
		t.Fatalf("expected 7.5")
	}
}

func TestListSkipsBlanks(t *testing.T) {
	t.Setenv("TEST_ENVUTIL_LIST", " https://a.example.com, ,https://b.example.com ")
	got := List("TEST_ENVUTIL_LIST")
	if len(got) != 2 || got[0] != "https://a.example.com" || got[1] != "https://b.example.com" {
		t.Fatalf("List: got=%v", got)
	}
	if List("TEST_ENVUTIL_LIST_UNSET") != nil {
		t.Fatalf("unset should give nil")
	}
}
