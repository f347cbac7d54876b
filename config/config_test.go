package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadFormats(t *testing.T) {
	d := t.TempDir()
	files := map[string]string{
		"cfg.json": `{"width": 800, "height": 600, "title": "cam1", "settle_delay": "50ms", "scaler": "nearest"}`,
		"cfg.yaml": "width: 800\nheight: 600\ntitle: cam1\nsettle_delay: 50ms\nscaler: nearest\n",
		"cfg.toml": "width = 800\nheight = 600\ntitle = \"cam1\"\nsettle_delay = \"50ms\"\nscaler = \"nearest\"\n",
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			c, err := LoadConfig(writeTempFile(t, d, name, content))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if c.Width != 800 || c.Height != 600 || c.Title != "cam1" || c.Scaler != "nearest" {
				t.Fatalf("unexpected config: %+v", c)
			}
			if time.Duration(c.SettleDelay) != 50*time.Millisecond {
				t.Fatalf("unexpected settle delay %s", c.SettleDelay)
			}
			if time.Duration(c.GracePeriod) != 5*time.Second {
				t.Fatalf("default grace period lost: %s", c.GracePeriod)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	d := t.TempDir()
	if _, err := LoadConfig(filepath.Join(d, "missing.json")); !os.IsNotExist(err) {
		t.Fatalf("expected not exist, got %v", err)
	}
	if _, err := LoadConfig(writeTempFile(t, d, "cfg.txt", "width=1")); err == nil {
		t.Fatal("expected unsupported extension error")
	}
	if _, err := LoadConfig(writeTempFile(t, d, "bad.json", `{"width": 0}`)); err == nil {
		t.Fatal("expected invalid size error")
	}
	if _, err := LoadConfig(writeTempFile(t, d, "scaler.json", `{"scaler": "cubic"}`)); err == nil {
		t.Fatal("expected unknown scaler error")
	}
	if _, err := LoadConfig(writeTempFile(t, d, "delay.json", `{"settle_delay": "soon"}`)); err == nil {
		t.Fatal("expected duration parse error")
	}
}

func TestEnsureConfig(t *testing.T) {
	for _, name := range []string{"config.json", "config.yaml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			file := filepath.Join(t.TempDir(), "liveview", name)
			created, err := EnsureConfig(file)
			if err != nil || !created {
				t.Fatalf("expected config to be created: %v", err)
			}

			c, err := LoadConfig(file)
			if err != nil {
				t.Fatal(err)
			}
			if c != Defaults() {
				t.Fatalf("round trip mismatch:\n%+v\n%+v", c, Defaults())
			}

			created, err = EnsureConfig(file)
			if err != nil || created {
				t.Fatalf("existing config overwritten: %v", err)
			}
		})
	}
}

func TestToViewerConfig(t *testing.T) {
	c := Defaults()
	c.Font = "goregular"
	v := c.ToViewerConfig()
	if v.Width != 1280 || v.Height != 720 || v.Title != "Maxpixel" {
		t.Fatalf("unexpected viewer config %+v", v)
	}
	if v.SettleDelay != 100*time.Millisecond || v.Render.Font != "goregular" {
		t.Fatalf("unexpected viewer config %+v", v)
	}
}
