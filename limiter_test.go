package govdesk

import (
	"testing"
	"time"
)

func TestLoginLimiterBlocksAfterMaxFailures(t *testing.T) {
	l := NewLoginLimiter(3, time.Minute)
	ip := "203.0.113.9"

	for i := 0; i < 3; i++ {
		if !l.Check(ip) {
			t.Fatalf("attempt %d blocked early", i+1)
		}
		l.Record(ip)
	}
	if l.Check(ip) {
		t.Fatal("expected block after max failures")
	}
}

func TestLoginLimiterIsPerIP(t *testing.T) {
	l := NewLoginLimiter(1, time.Minute)
	l.Record("198.51.100.1")

	if l.Check("198.51.100.1") {
		t.Fatal("expected first IP blocked")
	}
	if !l.Check("198.51.100.2") {
		t.Fatal("other IPs must be unaffected")
	}
}

func TestLoginLimiterExpiresOldFailures(t *testing.T) {
	l := NewLoginLimiter(1, 10*time.Millisecond)
	ip := "192.0.2.7"
	l.Record(ip)
	if l.Check(ip) {
		t.Fatal("expected fresh failure to block")
	}

	time.Sleep(20 * time.Millisecond)
	if !l.Check(ip) {
		t.Fatal("expected failure to expire with the window")
	}
}

func TestLoginLimiterSuccessDoesNotCount(t *testing.T) {
	l := NewLoginLimiter(2, time.Minute)
	ip := "192.0.2.8"

	// Checks without Record model successful sign-ins.
	for i := 0; i < 10; i++ {
		if !l.Check(ip) {
			t.Fatalf("check %d blocked without any recorded failure", i+1)
		}
	}
}
