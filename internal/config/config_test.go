package config

import (
	"log/slog"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 || cfg.FPS != 60 {
		t.Fatalf("defaults\nhave port %d fps %d\nwant 8080 60", cfg.Port, cfg.FPS)
	}
	vp := cfg.Viewport()
	if vp.Width != 1200 || vp.Height != 800 || vp.Scale != 50 {
		t.Fatalf("viewport\nhave %+v", vp)
	}
	if cfg.PresetDir != "./presets" || !cfg.WatchPreset {
		t.Fatalf("presets\nhave dir %q watch %t", cfg.PresetDir, cfg.WatchPreset)
	}
	if o := cfg.Origins(); len(o) != 2 || o[0] != "http://localhost:5173" {
		t.Fatalf("origins\nhave %v", o)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("VIEW_SCALE", "80")
	t.Setenv("CIRCLE_TOLERANCE", "0.25")
	t.Setenv("LOG_LEVEL", "debug")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Viewport().Scale != 80 {
		t.Fatalf("scale\nhave %v\nwant 80", cfg.Viewport().Scale)
	}
	if tol := cfg.Engine().Geometry.CircleTolerance; tol != 0.25 {
		t.Fatalf("tolerance\nhave %v\nwant 0.25", tol)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Fatalf("level\nhave %v\nwant debug", cfg.Level())
	}
}

func TestLoadRejectsFPS(t *testing.T) {
	t.Setenv("FPS", "0")
	if _, err := Load(); err == nil {
		t.Fatal("FPS=0 accepted")
	}
}
