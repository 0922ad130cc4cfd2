package reach

import (
	"math"
	"testing"

	"hikefly/pkg/gridmath"
)

func TestBearingCardinalDirections(t *testing.T) {
	origin := gridmath.Index{Row: 5, Col: 5}

	cases := []struct {
		name string
		to   gridmath.Index
		want float64
	}{
		{"east", gridmath.Index{Row: 5, Col: 8}, 0},
		{"south", gridmath.Index{Row: 8, Col: 5}, math.Pi / 2},
		{"west", gridmath.Index{Row: 5, Col: 2}, math.Pi},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Bearing(origin, c.to)
			if math.Abs(got-c.want) > 1e-9 && math.Abs(math.Abs(got-c.want)-2*math.Pi) > 1e-9 {
				t.Errorf("Bearing() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestEffectiveGlideNoWindIsRawRatio(t *testing.T) {
	q := &SearchQuery{GlideRatio: 0.05, TrimSpeed: 10, WindSpeed: 0}
	eff, ok := EffectiveGlide(q, 0)
	if !ok {
		t.Fatal("expected feasible")
	}
	if eff != q.GlideRatio {
		t.Errorf("EffectiveGlide() = %v, want %v", eff, q.GlideRatio)
	}
}

func TestEffectiveGlideTailwindImprovesRatio(t *testing.T) {
	q := &SearchQuery{GlideRatio: 0.1, TrimSpeed: 10, WindSpeed: 5, WindDirection: math.Pi}
	// Wind "from" north (direction 0 in met convention means from north);
	// bearing 0 is due east in grid frame. Use a bearing that puts the wind
	// squarely behind the glider and confirm the effective ratio drops
	// below the no-wind ratio (less height lost per metre covered on the
	// ground because groundspeed is higher for the same sink rate).
	effTail, ok := EffectiveGlide(q, math.Pi/2-q.WindDirection)
	if !ok {
		t.Fatal("expected feasible")
	}
	if effTail >= q.GlideRatio {
		t.Errorf("tailwind effective glide %v should be less than still-air %v", effTail, q.GlideRatio)
	}
}

func TestEffectiveGlideInfeasibleWhenCrosswindExceedsTrimSpeed(t *testing.T) {
	q := &SearchQuery{GlideRatio: 0.1, TrimSpeed: 5, WindSpeed: 20, WindDirection: 0}
	_, ok := EffectiveGlide(q, 0) // pure crosswind bearing
	if ok {
		t.Error("expected infeasible when crosswind component exceeds trim speed")
	}
}

func TestHeightLoss(t *testing.T) {
	got := HeightLoss(10, 30, 0.05)
	want := 10.0 * 30.0 * 0.05
	if got != want {
		t.Errorf("HeightLoss() = %v, want %v", got, want)
	}
}
