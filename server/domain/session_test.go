package domain

import (
	"testing"
	"time"
)

// NewSession がIDとタイムスタンプを初期化することを確認します。
func TestNewSession_InitializesTimestamps(t *testing.T) {
	s := NewSession()

	if s.ID().IsZero() {
		t.Errorf("id is not initialized")
	}
	if s.lastRead.Load() == 0 {
		t.Errorf("lastRead is not initialized")
	}
	if s.lastWrite.Load() == 0 {
		t.Errorf("lastWrite is not initialized")
	}
	if s.lastPong.Load() == 0 {
		t.Errorf("lastPong is not initialized")
	}
}

func TestSession_IsIdle(t *testing.T) {
	s := NewSession()
	old := time.Now().Add(-time.Minute).UnixNano()
	s.lastRead.Store(old)
	s.lastPong.Store(old)

	idle, reason := s.IsIdle(30 * time.Second)
	if !idle {
		t.Fatalf("expected idle session")
	}
	if !reason.Has(IdleRead) || !reason.Has(IdlePong) || reason.Has(IdleWrite) {
		t.Fatalf("reason = %v, want read|pong", reason)
	}
	if reason.String() != "read|pong" {
		t.Fatalf("reason string = %q", reason.String())
	}

	if idle, reason := s.IsIdle(0); idle || reason != IdleDisabled {
		t.Fatalf("zero timeout should disable idle check, got %v %v", idle, reason)
	}
}

func TestSession_CloseOnce(t *testing.T) {
	s := NewSession()
	if !s.Close(ClosedByPeer) {
		t.Fatalf("first close should succeed")
	}
	if s.Close(ClosedByHost) {
		t.Fatalf("second close should be ignored")
	}
	if s.CloseReason() != ClosedByPeer || !s.IsClosed() {
		t.Fatalf("close reason = %v", s.CloseReason())
	}
}
