package gameplay_test

import (
	"slices"
	"testing"
	"time"

	"thirdpersonmp/server/gameplay"
)

func TestTimerManager_FiresInDeadlineOrder(t *testing.T) {
	m := gameplay.NewTimerManager()
	var got []string
	m.SetTimer(300*time.Millisecond, func() { got = append(got, "c") })
	m.SetTimer(100*time.Millisecond, func() { got = append(got, "a") })
	m.SetTimer(100*time.Millisecond, func() { got = append(got, "b") })

	m.Advance(time.Second)

	if want := []string{"a", "b", "c"}; !slices.Equal(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	if m.Pending() != 0 {
		t.Fatalf("pending = %d, want 0", m.Pending())
	}
}

func TestTimerManager_NotDueNotFired(t *testing.T) {
	m := gameplay.NewTimerManager()
	fired := false
	h := m.SetTimer(time.Second, func() { fired = true })

	m.Advance(999 * time.Millisecond)
	if fired || !m.IsTimerActive(h) {
		t.Fatalf("timer fired early")
	}
	if rem, ok := m.Remaining(h); !ok || rem != time.Millisecond {
		t.Fatalf("remaining = %v ok=%v, want 1ms", rem, ok)
	}
	m.Advance(time.Millisecond)
	if !fired || m.IsTimerActive(h) {
		t.Fatalf("timer should fire exactly at its deadline")
	}
}

func TestTimerManager_ClearTimer(t *testing.T) {
	m := gameplay.NewTimerManager()
	fired := false
	h := m.SetTimer(time.Millisecond, func() { fired = true })

	m.ClearTimer(&h)
	if h.IsValid() {
		t.Fatalf("handle should be invalidated")
	}
	m.ClearTimer(&h)
	m.Advance(time.Second)
	if fired {
		t.Fatalf("cleared timer fired")
	}
}

// 先に発火したコールバックが取り消したタイマーは発火しない
func TestTimerManager_CancelFromCallback(t *testing.T) {
	m := gameplay.NewTimerManager()
	var second gameplay.TimerHandle
	fired := false
	m.SetTimer(10*time.Millisecond, func() { m.ClearTimer(&second) })
	second = m.SetTimer(10*time.Millisecond, func() { fired = true })

	m.Advance(time.Second)
	if fired {
		t.Fatalf("timer cancelled by an earlier callback fired")
	}
}

func TestTimerManager_ScheduleFromCallback(t *testing.T) {
	m := gameplay.NewTimerManager()
	count := 0
	m.SetTimer(0, func() {
		count++
		m.SetTimer(0, func() { count++ })
	})

	m.Advance(0)
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}
