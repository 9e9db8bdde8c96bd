package observability

import (
	"context"
	"testing"
)

func TestParseHeaders(t *testing.T) {
	got := parseHeaders(" api-key = abc , broken, =x, tenant=t1 ")
	if len(got) != 2 || got["api-key"] != "abc" || got["tenant"] != "t1" {
		t.Fatalf("parseHeaders: got=%v", got)
	}
	if parseHeaders("") != nil {
		t.Fatalf("empty input should give nil")
	}
}

func TestClampRatio(t *testing.T) {
	cases := map[float64]float64{-1: 0, 0.25: 0.25, 3: 1}
	for in, want := range cases {
		if got := clampRatio(in); got != want {
			t.Fatalf("clampRatio(%v): want=%v got=%v", in, want, got)
		}
	}
}

func TestOtelConfigFromEnv(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_SAMPLER_RATIO", "7")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "k=v")
	cfg := OtelConfigFromEnv()
	if !cfg.Enabled || cfg.SampleRatio != 1 || cfg.Headers["k"] != "v" {
		t.Fatalf("config: %+v", cfg)
	}
	if cfg.ServiceName != "coursehub-api" {
		t.Fatalf("service name default: %q", cfg.ServiceName)
	}
}

func TestDisabledShutdownIsNoop(t *testing.T) {
	if err := otelShutdown(context.Background()); err != nil {
		t.Fatalf("default shutdown: %v", err)
	}
}
