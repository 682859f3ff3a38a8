package gameplay

import (
	"sort"
	"time"
)

// TimerHandle はTimerManagerに登録されたタイマーへの参照です。ゼロ値は無効です。
type TimerHandle struct {
	id uint64
}

func (h TimerHandle) IsValid() bool { return h.id != 0 }

// Invalidate はハンドルを無効化します。
func (h *TimerHandle) Invalidate() { h.id = 0 }

type timer struct {
	id       uint64
	deadline time.Duration
	fn       func()
}

// TimerManager はホストのtickで進む単発タイマーを管理します。
// コールバックはAdvanceを呼んだゴルーチン上で実行されるため、ロックは持ちません。
type TimerManager struct {
	now    time.Duration
	nextID uint64
	timers map[uint64]*timer
}

func NewTimerManager() *TimerManager {
	return &TimerManager{timers: make(map[uint64]*timer)}
}

// SetTimer はdelay経過後に一度だけfnを呼び出すタイマーを登録します。
func (m *TimerManager) SetTimer(delay time.Duration, fn func()) TimerHandle {
	if delay < 0 {
		delay = 0
	}
	m.nextID++
	t := &timer{id: m.nextID, deadline: m.now + delay, fn: fn}
	m.timers[t.id] = t
	return TimerHandle{id: t.id}
}

// ClearTimer は保留中のタイマーを取り消し、ハンドルを無効化します。
func (m *TimerManager) ClearTimer(h *TimerHandle) {
	if h == nil || !h.IsValid() {
		return
	}
	delete(m.timers, h.id)
	h.Invalidate()
}

func (m *TimerManager) IsTimerActive(h TimerHandle) bool {
	if !h.IsValid() {
		return false
	}
	_, ok := m.timers[h.id]
	return ok
}

// Remaining は発火までの残り時間を返します。
func (m *TimerManager) Remaining(h TimerHandle) (time.Duration, bool) {
	t, ok := m.timers[h.id]
	if !h.IsValid() || !ok {
		return 0, false
	}
	return t.deadline - m.now, true
}

// Pending は保留中のタイマー数を返します。
func (m *TimerManager) Pending() int { return len(m.timers) }

// Now は経過時間を返します。
func (m *TimerManager) Now() time.Duration { return m.now }

// Advance は時間をdt進め、期限を迎えたタイマーを期限順に発火します。
// コールバック内で登録された期限切れのタイマーも同じ呼び出しで発火します。
func (m *TimerManager) Advance(dt time.Duration) {
	if dt > 0 {
		m.now += dt
	}
	for {
		due := m.due()
		if len(due) == 0 {
			return
		}
		for _, t := range due {
			// 先行するコールバックに取り消されたタイマーは発火しない
			if _, ok := m.timers[t.id]; !ok {
				continue
			}
			delete(m.timers, t.id)
			t.fn()
		}
	}
}

func (m *TimerManager) due() []*timer {
	var due []*timer
	for _, t := range m.timers {
		if t.deadline <= m.now {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].deadline != due[j].deadline {
			return due[i].deadline < due[j].deadline
		}
		return due[i].id < due[j].id
	})
	return due
}
