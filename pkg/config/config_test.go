package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Corpus.Source != SourceDir || cfg.Corpus.Dir != "data" || cfg.Corpus.Extension != ".txt" {
		t.Errorf("unexpected corpus defaults: %+v", cfg.Corpus)
	}
	if cfg.Normalizer.StopWords != nil {
		t.Errorf("StopWords default = %v, want nil (built-in list)", cfg.Normalizer.StopWords)
	}
	if cfg.Search.DefaultLimit != 10 {
		t.Errorf("DefaultLimit = %d, want 10", cfg.Search.DefaultLimit)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
corpus:
  dir: /srv/docs
  extension: .md
normalizer:
  stopWords: [the, a]
redis:
  enabled: true
  cacheTTL: 2m
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Corpus.Dir != "/srv/docs" || cfg.Corpus.Extension != ".md" {
		t.Errorf("corpus = %+v", cfg.Corpus)
	}
	if cfg.Corpus.Concurrency != 8 {
		t.Errorf("unset fields should keep defaults, Concurrency = %d", cfg.Corpus.Concurrency)
	}
	if !reflect.DeepEqual(cfg.Normalizer.StopWords, []string{"the", "a"}) {
		t.Errorf("StopWords = %v", cfg.Normalizer.StopWords)
	}
	if !cfg.Redis.Enabled || cfg.Redis.CacheTTL != 2*time.Minute {
		t.Errorf("redis = %+v", cfg.Redis)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SP_CORPUS_DIR", "/env/docs")
	t.Setenv("SP_NORMALIZER_STOP_WORDS", "foo,bar")
	t.Setenv("SP_REDIS_ENABLED", "true")
	t.Setenv("SP_SERVER_PORT", "9999")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Corpus.Dir != "/env/docs" {
		t.Errorf("Dir = %q", cfg.Corpus.Dir)
	}
	if !reflect.DeepEqual(cfg.Normalizer.StopWords, []string{"foo", "bar"}) {
		t.Errorf("StopWords = %v", cfg.Normalizer.StopWords)
	}
	if !cfg.Redis.Enabled || cfg.Server.Port != 9999 {
		t.Errorf("redis enabled = %v, port = %d", cfg.Redis.Enabled, cfg.Server.Port)
	}
}

func TestLoadRejectsUnknownSource(t *testing.T) {
	t.Setenv("SP_CORPUS_SOURCE", "s3")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for unknown corpus source")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "example.yaml"))
	if err != nil {
		t.Fatalf("Load(example.yaml): %v", err)
	}
	if cfg.Redis.CacheTTL != time.Minute || cfg.Analytics.FlushInterval != 5*time.Second {
		t.Errorf("durations not decoded: %+v %+v", cfg.Redis, cfg.Analytics)
	}
	if len(cfg.Normalizer.StopWords) != 10 {
		t.Errorf("StopWords = %v", cfg.Normalizer.StopWords)
	}
}
