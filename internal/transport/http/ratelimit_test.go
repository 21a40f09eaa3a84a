package http

import "testing"

func TestRateLimiterAllowsBurstThenBlocks(t *testing.T) {
	rl := newRateLimiter(3)
	for i := 0; i < 3; i++ {
		if !rl.allow() {
			t.Fatalf("frame %d rejected inside burst", i)
		}
	}
	if rl.allow() {
		t.Fatal("frame beyond burst allowed")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := newRateLimiter(0)
	if rl != nil {
		t.Fatal("expected nil limiter for zero rate")
	}
	for i := 0; i < 1000; i++ {
		if !rl.allow() {
			t.Fatal("disabled limiter rejected a frame")
		}
	}
}
