package facematch

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"ballotgate/internal/core/imaging"
)

// gradient returns a deterministic w by h image whose pixels vary with seed
func gradient(w, h int, seed uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.SetGray(x, y, color.Gray{Y: uint8(x*7+y*3) + seed})
		}
	}
	return g
}

func TestScore_IdentityAndSymmetry(t *testing.T) {
	m := New(DefaultOptions())
	a := gradient(120, 90, 0)
	b := gradient(64, 64, 40)

	if s, ok := m.Score(a, a); !ok || s != 0 {
		t.Fatalf("self score = %d, %v", s, ok)
	}
	if !m.IsMatch(a, a) {
		t.Fatal("an image must match itself")
	}

	ab, _ := m.Score(a, b)
	ba, _ := m.Score(b, a)
	if ab != ba {
		t.Fatalf("asymmetric score %d vs %d", ab, ba)
	}
	if m.IsMatch(a, b) != m.IsMatch(b, a) {
		t.Fatal("IsMatch must be symmetric")
	}
}

// withChanged returns a 100x100 image of v with the first n pixels raised by one
func withChanged(v uint8, n int) *image.Gray {
	g := imaging.Fill(100, 100, v)
	for i := 0; i < n; i++ {
		g.Pix[i] = v + 1
	}
	return g
}

func TestIsMatch_ThresholdBoundary(t *testing.T) {
	// at the canonical size each changed pixel adds exactly one to the score
	m := New(DefaultOptions())
	base := imaging.Fill(100, 100, 100)

	cases := []struct {
		name  string
		other *image.Gray
		score int64
		match bool
	}{
		{"equal after resize", imaging.Fill(80, 80, 100), 0, true},
		{"one below threshold", withChanged(100, 4999), 4999, true},
		{"exactly at threshold", withChanged(100, 5000), 5000, false},
		{"every pixel one level apart", imaging.Fill(50, 50, 101), 10000, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, ok := m.Score(base, tc.other)
			if !ok || s != tc.score {
				t.Fatalf("score = %d, want %d", s, tc.score)
			}
			if got := m.IsMatch(base, tc.other); got != tc.match {
				t.Fatalf("IsMatch = %v, want %v", got, tc.match)
			}
		})
	}
}

func TestIsMatch_EmptyFailsClosed(t *testing.T) {
	m := New(DefaultOptions())
	a := gradient(10, 10, 0)
	for _, b := range []image.Image{nil, image.NewGray(image.Rectangle{})} {
		if m.IsMatch(a, b) || m.IsMatch(b, a) {
			t.Fatalf("empty input must not match")
		}
		if _, ok := m.Score(a, b); ok {
			t.Fatal("score must report not ok")
		}
	}
}

func TestNew_InvalidOptionsFallBack(t *testing.T) {
	for _, o := range []Options{{}, {Width: 10, Height: 10}, {Width: -1, Height: 5, Threshold: 3}} {
		if got := New(o).Options(); got != DefaultOptions() {
			t.Fatalf("New(%+v).Options() = %+v", o, got)
		}
	}
	custom := Options{Width: 32, Height: 24, Threshold: 10}
	if got := New(custom).Options(); got != custom {
		t.Fatalf("custom options dropped: %+v", got)
	}
}

func TestFromConfig(t *testing.T) {
	t.Setenv("MATCH_WIDTH", "")
	t.Setenv("MATCH_HEIGHT", "")
	t.Setenv("MATCH_THRESHOLD", "")
	if got := FromConfig(configRoot()); got != DefaultOptions() {
		t.Fatalf("defaults = %+v", got)
	}
	t.Setenv("MATCH_THRESHOLD", "12000")
	if got := FromConfig(configRoot()); got.Threshold != 12000 {
		t.Fatalf("threshold = %d", got.Threshold)
	}
}

func TestMatchHandles(t *testing.T) {
	imgs := map[string]image.Image{"ref": gradient(40, 40, 0), "same": gradient(40, 40, 0)}
	op := OpenerFunc(func(h string) (image.Image, error) {
		if img, ok := imgs[h]; ok {
			return img, nil
		}
		return nil, errors.New("no such handle")
	})
	m := New(DefaultOptions())
	if !m.MatchHandles(op, "ref", "same") {
		t.Fatal("identical handles should match")
	}
	if m.MatchHandles(op, "ref", "missing") || m.MatchHandles(op, "missing", "ref") {
		t.Fatal("a load failure must be a mismatch")
	}
}

func TestMatchReference(t *testing.T) {
	ref := gradient(40, 40, 0)
	op := OpenerFunc(func(h string) (image.Image, error) {
		if h == "ref" {
			return ref, nil
		}
		return nil, errors.New("no such handle")
	})
	m := New(DefaultOptions())
	cases := []struct {
		name   string
		sample image.Image
		handle string
		want   bool
	}{
		{"same face", gradient(40, 40, 0), "ref", true},
		{"missing reference", gradient(40, 40, 0), "missing", false},
		{"nil sample", nil, "ref", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.MatchReference(op, tc.sample, tc.handle); got != tc.want {
				t.Fatalf("MatchReference = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsMatchFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, img image.Image) string {
		p := filepath.Join(dir, name)
		f, err := os.Create(p)
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()
		if err := imaging.EncodePNG(f, img); err != nil {
			t.Fatal(err)
		}
		return p
	}
	a := write("a.png", gradient(30, 30, 0))
	b := write("b.png", gradient(30, 30, 0))
	c := write("c.png", gradient(30, 30, 90))

	m := New(DefaultOptions())
	if !m.IsMatchFiles(a, b) {
		t.Fatal("same pixels on disk should match")
	}
	if m.IsMatchFiles(a, c) {
		t.Fatal("different pixels should not match")
	}
	if m.IsMatchFiles(a, filepath.Join(dir, "nope.png")) {
		t.Fatal("missing file must not match")
	}
}
