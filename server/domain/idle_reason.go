package domain

import (
	"fmt"
	"strings"
)

// IdleReason はセッションを閉じた理由のビットマスクです。
type IdleReason uint8

const (
	IdleNone     IdleReason = 0
	IdleRead     IdleReason = 1 << 0
	IdleWrite    IdleReason = 1 << 1
	IdlePong     IdleReason = 1 << 2
	ClosedByPeer IdleReason = 1 << 3
	ClosedByHost IdleReason = 1 << 4
	IdleDisabled IdleReason = 1 << 7 // timeout<=0 のとき
)

func (r IdleReason) Has(x IdleReason) bool { return r&x != 0 }

func (r IdleReason) String() string {
	switch r {
	case IdleNone:
		return "none"
	case IdleDisabled:
		return "disabled"
	}
	var parts []string
	for _, f := range []struct {
		bit  IdleReason
		name string
	}{
		{IdleRead, "read"},
		{IdleWrite, "write"},
		{IdlePong, "pong"},
		{ClosedByPeer, "peer"},
		{ClosedByHost, "host"},
	} {
		if r.Has(f.bit) {
			parts = append(parts, f.name)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("unknown(%d)", r)
	}
	return strings.Join(parts, "|")
}
