package entity

import "testing"

func TestAsteroidFragmentation(t *testing.T) {
	tests := []struct {
		name       string
		size       AsteroidSize
		wantCount  int
		wantChild  AsteroidSize
	}{
		{name: "large splits into two mediums", size: AsteroidLarge, wantCount: 2, wantChild: AsteroidMedium},
		{name: "medium splits into two smalls", size: AsteroidMedium, wantCount: 2, wantChild: AsteroidSmall},
		{name: "small has no fragments", size: AsteroidSmall, wantCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAsteroid(tt.size, 10, 10)
			children := a.Fragment()

			if len(children) != tt.wantCount {
				t.Fatalf("Fragment() produced %d children, want %d", len(children), tt.wantCount)
			}
			for _, c := range children {
				if c.Size != tt.wantChild {
					t.Errorf("child size = %v, want %v", c.Size, tt.wantChild)
				}
				if c.X != a.X || c.Y != a.Y {
					t.Errorf("child spawned at (%v,%v), want parent's (%v,%v)", c.X, c.Y, a.X, a.Y)
				}
				if c.VX == 0 && c.VY == 0 {
					t.Error("child should have nonzero outward velocity")
				}
			}
		})
	}
}

func TestAsteroidScoreTable(t *testing.T) {
	tests := []struct {
		size AsteroidSize
		want int
	}{
		{AsteroidLarge, 20},
		{AsteroidMedium, 50},
		{AsteroidSmall, 100},
	}

	for _, tt := range tests {
		t.Run(tt.size.String(), func(t *testing.T) {
			if got := tt.size.Score(); got != tt.want {
				t.Errorf("%v.Score() = %d, want %d", tt.size, got, tt.want)
			}
		})
	}
}

func TestAsteroidIntegrateWraps(t *testing.T) {
	w := NewWorld(120, 40)
	a := NewAsteroid(AsteroidLarge, 0, 0)
	a.VX, a.VY = -100, -100

	a.Integrate(w, 1.0)

	if a.X < 0 || a.Y < 0 {
		t.Errorf("asteroid position (%v, %v) should wrap into non-negative arena bounds", a.X, a.Y)
	}
}
