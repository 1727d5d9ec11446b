package ratelimit

import "testing"

func TestLimiterAllowsBurstThenBlocks(t *testing.T) {
	l := NewLimiter()

	allowed := 0
	for i := 0; i < 1000; i++ {
		if l.Allow() {
			allowed++
		} else {
			break
		}
	}

	if allowed == 0 {
		t.Fatal("a fresh limiter should allow at least one frame")
	}
	if allowed == 1000 {
		t.Error("limiter should eventually deny once its burst is exhausted")
	}
}
