package facility

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	p, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.DateYearsBack != 2 || p.CloseSettleDelay != 10*time.Second {
		t.Errorf("defaults = %+v", p)
	}
	if p.PutAwayPrompt || p.PlatformPrompt {
		t.Error("prompts should default off")
	}
}

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facility.toml")
	content := `
put_away_prompt = true
platform_prompt = true
platform_types = ["WOOD", "CHEP"]
date_years_back = 3
label_printer = "belt-2"
quick_receive_gl_code = "4410"
close_settle_delay = "30s"
move_to_yard = true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !p.PutAwayPrompt || !p.PlatformPrompt || !p.MoveToYard {
		t.Errorf("prompts = %+v", p)
	}
	if p.DateYearsBack != 3 || p.LabelPrinter != "belt-2" || p.QuickReceiveGLCode != "4410" {
		t.Errorf("profile = %+v", p)
	}
	if len(p.PlatformTypes) != 2 || p.PlatformTypes[1] != "CHEP" {
		t.Errorf("platform types = %v", p.PlatformTypes)
	}
	if p.CloseSettleDelay != 30*time.Second {
		t.Errorf("settle delay = %v", p.CloseSettleDelay)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("missing configured profile should error")
	}
}

func TestLoadBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facility.toml")
	if err := os.WriteFile(path, []byte(`close_settle_delay = "soon"`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("bad duration should error")
	}
}
