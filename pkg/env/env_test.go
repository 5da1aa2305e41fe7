package env

import "testing"

func TestGetTrimsAndFallsBack(t *testing.T) {
	t.Setenv("STASH_ENV_TEST", "  console ")
	if got := Get("STASH_ENV_TEST", "json"); got != "console" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	t.Setenv("STASH_ENV_TEST", "   ")
	if got := Get("STASH_ENV_TEST", "json"); got != "json" {
		t.Fatalf("expected fallback for blank value, got %q", got)
	}
}

func TestFirst(t *testing.T) {
	t.Setenv("STASH_ENV_A", "")
	t.Setenv("STASH_ENV_B", "web.1")
	if got := First("STASH_ENV_A", "STASH_ENV_B"); got != "web.1" {
		t.Fatalf("expected second key, got %q", got)
	}
	if got := First("STASH_ENV_A"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
