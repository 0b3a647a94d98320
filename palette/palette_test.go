package palette

import (
	"testing"

	"lightbeat/light"
)

func near(a, b light.RGB, tol int) bool {
	for i := 0; i < 3; i++ {
		d := int(a[i]) - int(b[i])
		if d < 0 {
			d = -d
		}
		if d > tol {
			return false
		}
	}
	return true
}

func TestParseMode(t *testing.T) {
	cases := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"hcl", ModeHcl, false},
		{"hcl-long", ModeHclLong, false},
		{"rgb", ModeRGB, false},
		{"", ModeHcl, false},
		{"hsv", "", true},
	}
	for _, c := range cases {
		got, err := ParseMode(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseMode(%q) accepted an unknown mode", c.in)
			}
			continue
		}
		if err != nil || got != c.want {
			t.Errorf("ParseMode(%q) = %q, %v, want %q", c.in, got, err, c.want)
		}
	}
}

func TestGradient_Endpoints(t *testing.T) {
	from := light.RGB{0x1a, 0x05, 0x33}
	to := light.RGB{0xff, 0x9e, 0x00}

	for _, m := range []Mode{ModeHcl, ModeHclLong, ModeRGB} {
		g := NewGradient(from, to, m)
		// Color space round trips can be off by a rounding step.
		if got := g.Sample(0); !near(got, from, 1) {
			t.Errorf("%s: Sample(0) = %v, want ≈%v", m, got, from)
		}
		if got := g.Sample(1); !near(got, to, 1) {
			t.Errorf("%s: Sample(1) = %v, want ≈%v", m, got, to)
		}
	}
}

func TestGradient_SampleClamps(t *testing.T) {
	g := NewGradient(light.RGB{0, 0, 0}, light.RGB{255, 255, 255}, ModeRGB)
	if got := g.Sample(-0.5); got != g.Sample(0) {
		t.Errorf("Sample(-0.5) = %v, want the from endpoint", got)
	}
	if got := g.Sample(1.5); got != g.Sample(1) {
		t.Errorf("Sample(1.5) = %v, want the to endpoint", got)
	}
}

func TestHclLongTakesTheOtherHuePath(t *testing.T) {
	// Red to blue: the short hue path passes magenta, the long one green.
	red := light.RGB{255, 0, 0}
	blue := light.RGB{0, 0, 255}

	short := blendHcl(red, blue, 0.5)
	long := blendHclLong(red, blue, 0.5)
	if near(short, long, 8) {
		t.Errorf("midpoints agree (%v vs %v); long path is not taking the other way around", short, long)
	}
	// Both paths still meet at the endpoints.
	if !near(blendHclLong(red, blue, 0), red, 1) || !near(blendHclLong(red, blue, 1), blue, 1) {
		t.Error("long path does not land on its endpoints")
	}
}

func TestModeRGBIsChannelLinear(t *testing.T) {
	got := blendRGB(light.RGB{0, 0, 0}, light.RGB{200, 100, 50}, 0.5)
	if !near(got, light.RGB{100, 50, 25}, 1) {
		t.Errorf("midpoint = %v, want ≈{100 50 25}", got)
	}
}

func TestParseHex(t *testing.T) {
	got, err := ParseHex("#1a0533")
	if err != nil {
		t.Fatal(err)
	}
	if got != (light.RGB{0x1a, 0x05, 0x33}) {
		t.Errorf("ParseHex(#1a0533) = %v", got)
	}

	for _, bad := range []string{"", "1a0533", "#xyzxyz", "#fff0"} {
		if _, err := ParseHex(bad); err == nil {
			t.Errorf("ParseHex(%q) accepted invalid input", bad)
		}
	}
}
