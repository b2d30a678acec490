package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Garsondee/Particle-Header/internal/swarm"
)

func TestDefaultMatchesParams(t *testing.T) {
	got := Default().Params()
	want := swarm.DefaultParams()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Default().Params() differs from swarm.DefaultParams():\n got %+v\nwant %+v", got, want)
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
}

func TestLoadShippedFile(t *testing.T) {
	tun, err := Load(filepath.Join("..", "..", "configs", "tuning.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(tun.Params(), swarm.DefaultParams()) {
		t.Fatal("shipped tuning.yaml drifted from the built-in defaults")
	}
}

func TestParse_PartialOverride(t *testing.T) {
	tun, err := Parse([]byte("capture:\n  radius: 45\ncelebration:\n  resetAfterMs: 3000\n  revealAfterMs: 2000\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p := tun.Params()
	if p.CaptureRadius != 45 {
		t.Errorf("CaptureRadius = %v, want 45", p.CaptureRadius)
	}
	if p.ResetAfter != 3*time.Second || p.RevealAfter != 2*time.Second {
		t.Errorf("timeline reset=%v reveal=%v", p.ResetAfter, p.RevealAfter)
	}
	if p.TotalParticles != 80 || p.RepelRadius != 120 {
		t.Errorf("unspecified keys lost their defaults: %+v", p)
	}
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"bad yaml":             "field: [",
		"zero cols":            "field:\n  cols: 0\n",
		"too many particles":   "field:\n  totalParticles: 100\n",
		"inverted range":       "agent:\n  maxSpeed: {min: 3, max: 1}\n",
		"attract inside repel": "pointer:\n  attractRadius: 50\n",
		"burst after reset":    "celebration:\n  burstOffsetsMs: [0, 5000]\n",
		"bad palette":          "celebration:\n  palette: [\"#zzzzzz\"]\n",
		"origin off surface":   "celebration:\n  originX: 2\n",
		"lerp above one":       "capture:\n  homingLerp: 1.5\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); err == nil {
				t.Fatalf("Parse accepted %q", doc)
			}
		})
	}
}

func TestLoad_MissingFileWrapsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want wrapped not-exist", err)
	}
	if !strings.Contains(err.Error(), "failed to read tuning config") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadOrDefault_Empty(t *testing.T) {
	tun, err := LoadOrDefault("")
	if err != nil || tun == nil {
		t.Fatalf("LoadOrDefault(\"\") = %v, %v", tun, err)
	}
}

func TestMarshalRoundTripKeepsParams(t *testing.T) {
	data, err := Default().Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	tun, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(tun.Params(), swarm.DefaultParams()) {
		t.Fatal("marshalled defaults did not parse back to the same params")
	}
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#9b87f5")
	if err != nil || c.R != 0x9b || c.G != 0x87 || c.B != 0xf5 || c.A != 0xff {
		t.Fatalf("ParseHex = %+v, %v", c, err)
	}
	c, err = ParseHex("#fff")
	if err != nil || c.R != 0xff || c.G != 0xff || c.B != 0xff {
		t.Fatalf("short form = %+v, %v", c, err)
	}
	for _, bad := range []string{"", "#12345", "#gggggg", "9b87f5ff"} {
		if _, err := ParseHex(bad); err == nil {
			t.Errorf("ParseHex(%q) accepted", bad)
		}
	}
	if got := Palette([]string{"nope"}); len(got) != 1 {
		t.Fatalf("Palette fallback = %v", got)
	}
}
