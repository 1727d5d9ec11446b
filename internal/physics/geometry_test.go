package physics

import "testing"

func TestPointInCircle(t *testing.T) {
	tests := []struct {
		name                   string
		px, py, cx, cy, radius float64
		want                   bool
	}{
		{name: "point at center", px: 0, py: 0, cx: 0, cy: 0, radius: 1, want: true},
		{name: "point on boundary", px: 1, py: 0, cx: 0, cy: 0, radius: 1, want: true},
		{name: "point outside", px: 2, py: 0, cx: 0, cy: 0, radius: 1, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PointInCircle(tt.px, tt.py, tt.cx, tt.cy, tt.radius); got != tt.want {
				t.Errorf("PointInCircle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCirclesOverlap(t *testing.T) {
	tests := []struct {
		name           string
		x1, y1, r1     float64
		x2, y2, r2     float64
		want           bool
	}{
		{name: "overlapping circles", x1: 0, y1: 0, r1: 2, x2: 3, y2: 0, r2: 2, want: true},
		{name: "touching exactly is not strictly overlapping", x1: 0, y1: 0, r1: 2, x2: 4, y2: 0, r2: 2, want: false},
		{name: "far apart circles", x1: 0, y1: 0, r1: 1, x2: 100, y2: 100, r2: 1, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CirclesOverlap(tt.x1, tt.y1, tt.r1, tt.x2, tt.y2, tt.r2); got != tt.want {
				t.Errorf("CirclesOverlap() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDistance(t *testing.T) {
	if got := Distance(0, 0, 3, 4); got != 5 {
		t.Errorf("Distance(0,0,3,4) = %v, want 5", got)
	}
}
