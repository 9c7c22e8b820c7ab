package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/verte-zerg/tuifocus/internal/config"
)

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"tuifocus": run,
	}))
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
		Setup: func(env *testscript.Env) error {
			env.Setenv("XDG_CONFIG_HOME", filepath.Join(env.WorkDir, "config"))
			env.Setenv("XDG_DATA_HOME", filepath.Join(env.WorkDir, "data"))
			return nil
		},
	})
}

func TestParseFormats(t *testing.T) {
	got, err := parseFormats(" CSV, sqlite,csv ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 2 || got[0] != "csv" || got[1] != "sqlite" {
		t.Fatalf("unexpected formats: %v", got)
	}
	if _, err := parseFormats("xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if _, err := parseFormats(" , "); err == nil {
		t.Fatalf("expected error for empty format list")
	}
}

func TestDefaultConfigTemplateLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("template should decode: %v", err)
	}
	if cfg.Timer.WorkMins != nil {
		t.Fatalf("template values should be commented out")
	}
}
