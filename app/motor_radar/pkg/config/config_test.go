package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/errs"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
llm:
  base_url: https://api.example.com/v1
  api_key: sk-test
  model: test-model
youtube:
  api_key: yt-test
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.YouTube.MaxSearchResults != 50 {
		t.Errorf("MaxSearchResults = %d, want 50", cfg.YouTube.MaxSearchResults)
	}
	if cfg.YouTube.MaxCommentsPerVideo != 100 {
		t.Errorf("MaxCommentsPerVideo = %d, want 100", cfg.YouTube.MaxCommentsPerVideo)
	}
	if cfg.Transcribe.YtDlpPath != "yt-dlp" || cfg.Transcribe.WhisperPath != "whisper" {
		t.Errorf("binary defaults: %q / %q", cfg.Transcribe.YtDlpPath, cfg.Transcribe.WhisperPath)
	}
	if len(cfg.Transcribe.CaptionLanguages) != 2 || cfg.Transcribe.CaptionLanguages[0] != "ko" {
		t.Errorf("CaptionLanguages = %v", cfg.Transcribe.CaptionLanguages)
	}
	if cfg.Transcribe.VideoTimeout != 900 {
		t.Errorf("VideoTimeout = %d, want 900", cfg.Transcribe.VideoTimeout)
	}
	if cfg.Concurrency.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Concurrency.Workers)
	}
	if len(cfg.Presets) == 0 {
		t.Error("Presets default table must not be empty")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadConfig_EnvFallback(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "env-yt-key")
	t.Setenv("LLM_API_KEY", "env-llm-key")

	path := writeConfig(t, `
llm:
  model: test-model
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.YouTube.APIKey != "env-yt-key" {
		t.Errorf("YouTube.APIKey = %q", cfg.YouTube.APIKey)
	}
	if cfg.LLM.APIKey != "env-llm-key" {
		t.Errorf("LLM.APIKey = %q", cfg.LLM.APIKey)
	}
}

func TestValidate_MissingCredentials(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"no youtube key", Config{LLM: LLMConfig{APIKey: "x", Model: "m"}}},
		{"no llm key", Config{YouTube: YouTubeConfig{APIKey: "y"}, LLM: LLMConfig{Model: "m"}}},
		{"no llm model", Config{YouTube: YouTubeConfig{APIKey: "y"}, LLM: LLMConfig{APIKey: "x"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !errors.Is(err, errs.ErrConfig) {
				t.Errorf("error must wrap ErrConfig, got %v", err)
			}
		})
	}
}

func TestLoadConfig_PresetOverride(t *testing.T) {
	path := writeConfig(t, `
llm:
  api_key: x
  model: m
youtube:
  api_key: y
presets:
  mycar:
    company: TestCo
    model: TestCar
    search_queries: ["TestCar review"]
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	p, ok := cfg.Presets["mycar"]
	if !ok {
		t.Fatal("custom preset missing")
	}
	if p.Company != "TestCo" || len(p.SearchQueries) != 1 {
		t.Errorf("preset = %+v", p)
	}
	// 出现自定义表时不再合并默认表
	if _, ok := cfg.Presets["scenic"]; ok {
		t.Error("default presets must not leak into a custom table")
	}
}

func TestDefaultPresets(t *testing.T) {
	presets := DefaultPresets()
	for _, key := range []string{"scenic", "koleos", "torres", "sorento", "santafe"} {
		p, ok := presets[key]
		if !ok {
			t.Errorf("preset %q missing", key)
			continue
		}
		if p.Company == "" || p.Model == "" || len(p.SearchQueries) == 0 {
			t.Errorf("preset %q incomplete: %+v", key, p)
		}
	}
}
