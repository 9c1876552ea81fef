package visualizer

import "testing"

func TestPeaksJumpAndFall(t *testing.T) {
	p := NewPeaks(20)
	if got := p.Update([]float64{100})[0]; got != 100 {
		t.Fatalf("expected cap to jump to 100, got %g", got)
	}
	prev := 100.0
	for range 40 {
		got := p.Update([]float64{0})[0]
		if got > prev {
			t.Fatalf("cap rose while falling: %g -> %g", prev, got)
		}
		if got < 0 {
			t.Fatalf("cap fell below its bar: %g", got)
		}
		prev = got
	}
	if prev > 10 {
		t.Fatalf("expected cap to settle near 0, still at %g", prev)
	}
}

func TestPeaksNeverBelowBar(t *testing.T) {
	p := NewPeaks(20)
	p.Update([]float64{200})
	for range 10 {
		if got := p.Update([]float64{150})[0]; got < 150 {
			t.Fatalf("cap %g below bar 150", got)
		}
	}
}

func TestPeaksReset(t *testing.T) {
	p := NewPeaks(20)
	p.Update([]float64{50, 60})
	p.Reset()
	for _, v := range p.Update([]float64{0, 0}) {
		if v != 0 {
			t.Fatalf("expected caps at 0 after reset, got %g", v)
		}
	}
}
