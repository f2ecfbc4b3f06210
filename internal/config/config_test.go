package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("PROGRESS_STORE", "")
	t.Setenv("GEMINI_TIMEOUT", "")
	t.Setenv("PLAYER_IDLE_TIMEOUT", "")

	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("GeminiModel = %q, want gemini-2.5-flash", cfg.GeminiModel)
	}
	if cfg.ProgressStore != "sql" {
		t.Errorf("ProgressStore = %q, want sql", cfg.ProgressStore)
	}
	if cfg.GeminiTimeout != 0 {
		t.Errorf("GeminiTimeout = %v, want 0", cfg.GeminiTimeout)
	}
	if cfg.PlayerIdleTimeout != 30*time.Minute {
		t.Errorf("PlayerIdleTimeout = %v, want 30m", cfg.PlayerIdleTimeout)
	}
}

func TestGetDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{name: "empty uses default", value: "", want: 5 * time.Second},
		{name: "go duration", value: "90s", want: 90 * time.Second},
		{name: "bare seconds", value: "30", want: 30 * time.Second},
		{name: "garbage uses default", value: "soon", want: 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.value)
			if got := getDuration("TEST_DURATION", 5*time.Second); got != tt.want {
				t.Errorf("getDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetInt(t *testing.T) {
	t.Setenv("TEST_INT", "-4")
	if got := getInt("TEST_INT", 20); got != 20 {
		t.Errorf("getInt() with negative value = %d, want default 20", got)
	}
	t.Setenv("TEST_INT", "7")
	if got := getInt("TEST_INT", 20); got != 7 {
		t.Errorf("getInt() = %d, want 7", got)
	}
}
