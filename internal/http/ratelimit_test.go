package http

import "testing"

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < 60; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d denied below the limit", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Error("request above the limit allowed")
	}
}

func TestRateLimiterTracksClientsIndependently(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < 61; i++ {
		rl.allow("10.0.0.1")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("unrelated client denied")
	}
}

func TestRateLimiterStopIsIdempotent(t *testing.T) {
	rl := newRateLimiter()
	rl.stop()
	rl.stop()
}
