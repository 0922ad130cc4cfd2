package memo

import "testing"

func TestQuantizeRoundsToNearestUnit(t *testing.T) {
	a := Quantize(1.0 / 3.0)
	b := Quantize(0.333333333333333)
	if a != b {
		t.Errorf("Quantize() not stable across nearly-equal floats: %d vs %d", a, b)
	}
}

func TestNewKeyIgnoresSubQuantumDifferences(t *testing.T) {
	p1 := QueryParams{Lat: 46.5, Lon: 7.5, GlideRatio: 0.08, TrimSpeed: 10}
	p2 := p1
	p2.Lat += 1.0 / (1 << 23) // well below one quantization unit

	if NewKey(p1) != NewKey(p2) {
		t.Error("NewKey() should collapse sub-quantum differences to the same key")
	}
}

func TestNewKeyDistinguishesStartHeightPresence(t *testing.T) {
	p1 := QueryParams{Lat: 1, Lon: 1}
	h := 100.0
	p2 := p1
	p2.StartHeight = &h

	if NewKey(p1) == NewKey(p2) {
		t.Error("NewKey() should distinguish an explicit start height from none")
	}
}
