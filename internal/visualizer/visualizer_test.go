package visualizer

import "testing"

func testOptions() Options {
	return Options{Bars: 20, BoostSlope: 15, DisplayGain: 2.5, Smoothing: 0.7, MaxHeight: 480, BlockSize: 1024}
}

func TestVisualizerPublishesLatestBlock(t *testing.T) {
	v := New(testOptions())
	v.OnAudioBlock(sineBlock(1000, 1024, 44100))

	raw := v.RawHeights()
	if len(raw) != 20 || raw[9] == 0 {
		t.Fatalf("expected published raw bars, got %v", raw)
	}
	heights := v.CurrentDisplayHeights()
	if heights[9] <= 0 {
		t.Fatalf("expected a displayed peak in bar 9, got %v", heights)
	}
}

func TestVisualizerSmoothsAcrossRenderFrames(t *testing.T) {
	v := New(testOptions())
	v.OnAudioBlock(sineBlock(1000, 1024, 44100))
	first := v.CurrentDisplayHeights()[9]
	second := v.CurrentDisplayHeights()[9]
	if second < first {
		t.Fatalf("expected height to keep rising toward the same raw value: %g then %g", first, second)
	}
}

func TestVisualizerResetZerosImmediately(t *testing.T) {
	v := New(testOptions())
	for range 5 {
		v.OnAudioBlock(sineBlock(1000, 1024, 44100))
		v.CurrentDisplayHeights()
	}
	v.Reset()
	for i, h := range v.RawHeights() {
		if h != 0 {
			t.Fatalf("raw bar %d = %g after reset", i, h)
		}
	}
	for i, h := range v.CurrentDisplayHeights() {
		if h != 0 {
			t.Fatalf("displayed bar %d = %g after reset", i, h)
		}
	}
}

func TestVisualizerReturnsCopies(t *testing.T) {
	v := New(testOptions())
	v.OnAudioBlock(sineBlock(1000, 1024, 44100))
	h := v.CurrentDisplayHeights()
	h[9] = -1
	if v.CurrentDisplayHeights()[9] < 0 {
		t.Fatal("caller mutation leaked into the smoother")
	}
}
