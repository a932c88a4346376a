package node

import (
	"testing"
	"time"
)

func TestControlTimer(t *testing.T) {
	timer := NewRandomControlTimer()
	go timer.Run(5 * time.Millisecond)

	for i := 0; i < 3; i++ {
		select {
		case <-timer.tickCh:
		case <-time.After(time.Second):
			t.Fatalf("tick %d should have happened", i)
		}
	}

	timer.Shutdown()
}

func TestControlTimerDisabled(t *testing.T) {
	for _, period := range []time.Duration{0, -5 * time.Millisecond} {
		timer := NewRandomControlTimer()
		go timer.Run(period)

		select {
		case <-timer.tickCh:
			t.Fatalf("a period of %v should never tick", period)
		case <-time.After(50 * time.Millisecond):
		}

		timer.Shutdown()
	}
}
