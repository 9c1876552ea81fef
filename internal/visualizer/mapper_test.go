package visualizer

import (
	"math"
	"testing"
)

func sineBlock(freq float64, n, sampleRate int) []float32 {
	block := make([]float32, n)
	for i := range block {
		block[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate)))
	}
	return block
}

func TestLogIndicesStrictlyIncreasing(t *testing.T) {
	for _, n := range []int{1, 2, 5, 20, 64} {
		for bins := n; bins <= 4097; bins += 7 {
			b := LogIndices(bins, n)
			if len(b) != n+1 {
				t.Fatalf("bins=%d n=%d: expected %d boundaries, got %d", bins, n, n+1, len(b))
			}
			if b[0] != 0 {
				t.Fatalf("bins=%d n=%d: first boundary %d, want 0", bins, n, b[0])
			}
			for i := 1; i < len(b); i++ {
				if b[i] <= b[i-1] {
					t.Fatalf("bins=%d n=%d: boundaries not increasing at %d: %v", bins, n, i, b)
				}
			}
		}
	}
}

func TestLogIndicesReferenceSchedule(t *testing.T) {
	want := []int{0, 2, 3, 4, 5, 6, 9, 12, 15, 21, 28, 37, 50, 66, 89, 119, 160, 214, 286, 383, 513}
	got := LogIndices(513, 20)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("boundary %d = %d, want %d (got %v)", i, got[i], want[i], got)
		}
	}
}

func TestLogIndicesCollisionsAreBumped(t *testing.T) {
	// raw schedule for 4 bins over 6 bars rounds to 2,2,3,3,3,4
	want := []int{0, 2, 3, 4, 5, 6, 7}
	got := LogIndices(4, 6)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("LogIndices(4, 6) = %v, want %v", got, want)
		}
	}
}

func TestMapDeterministic(t *testing.T) {
	block := sineBlock(440, 1024, 44100)
	for i := range block {
		block[i] += float32(i%7) * 0.01
	}
	a := append([]float64(nil), NewMapper(20, 15).Map(block)...)
	m := NewMapper(20, 15)
	m.Map(sineBlock(3000, 1024, 44100))
	b := m.Map(block)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("bar %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestMapPeaksAtOneKilohertz(t *testing.T) {
	bars := NewMapper(20, 15).Map(sineBlock(1000, 1024, 44100))

	peak := 0
	for i, v := range bars {
		if v > bars[peak] {
			peak = i
		}
	}
	// 1 kHz is bin ~23.2 at 1024/44100, inside bar 9's range [21, 28)
	if peak != 9 {
		t.Fatalf("expected peak in bar 9, got bar %d (%v)", peak, bars)
	}
	for i, v := range bars {
		if i >= 7 && i <= 11 {
			continue
		}
		if v > bars[peak]*0.05 {
			t.Fatalf("bar %d = %g is more than 5%% of peak %g", i, v, bars[peak])
		}
	}
}

func TestMapSilenceIsZero(t *testing.T) {
	for i, v := range NewMapper(20, 15).Map(make([]float32, 1024)) {
		if v != 0 {
			t.Fatalf("bar %d = %g, want 0 for silence", i, v)
		}
	}
}

func TestMapDegenerateBarsAreZero(t *testing.T) {
	m := NewMapper(8, 15)
	bars := m.Map(sineBlock(1000, 8, 44100))
	bins := 8/2 + 1
	b := LogIndices(bins, 8)
	for i := range bars {
		if b[i+1] > bins && bars[i] != 0 {
			t.Fatalf("bar %d spans [%d,%d) past %d bins but is %g", i, b[i], b[i+1], bins, bars[i])
		}
	}
}

func TestMapTinyBlock(t *testing.T) {
	m := NewMapper(4, 15)
	for _, v := range m.Map([]float32{0.5}) {
		if v != 0 {
			t.Fatal("expected zero bars for a one-sample block")
		}
	}
}

func TestMapBoostRisesWithFrequency(t *testing.T) {
	m := NewMapper(20, 15)
	if m.boost(0) != 0.3 {
		t.Fatalf("boost(0) = %g, want 0.3", m.boost(0))
	}
	if got := m.boost(10); math.Abs(got-7.8) > 1e-9 {
		t.Fatalf("boost(10) = %g, want 7.8", got)
	}
}
