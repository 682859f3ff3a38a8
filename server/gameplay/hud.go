package gameplay

import (
	"fmt"
	"strings"
)

// DebugEntry はネットワークデバッグ表示の1キャラクター分です。
type DebugEntry struct {
	Name    string
	Roles   NetRoles
	Health  float32
	IsLocal bool
}

// DebugEntryOf はキャラクターの現在状態からデバッグ表示用の値を取り出します。
func DebugEntryOf(c *Character) DebugEntry {
	return DebugEntry{
		Name:    c.Name(),
		Roles:   c.Roles(),
		Health:  c.Health.Current(),
		IsLocal: c.Roles().IsLocallyControlled(),
	}
}

// NetworkDebugLines はキャラクターの役割とHPをテキスト行にします。
func NetworkDebugLines(entries []DebugEntry) []string {
	lines := []string{"=== Network Debug Info ==="}
	for _, e := range entries {
		if !e.IsLocal {
			continue
		}
		lines = append(lines, "--- Local Controlled Character ---", debugLine(e), healthLine(e))
		break
	}
	lines = append(lines, "--- All Characters in World ---")
	for _, e := range entries {
		lines = append(lines, debugLine(e), healthLine(e))
	}
	return lines
}

func debugLine(e DebugEntry) string {
	local := "FALSE"
	if e.IsLocal {
		local = "TRUE"
	}
	return fmt.Sprintf("[%s] LocallyControlled: %s | LocalRole: %s | RemoteRole: %s",
		e.Name, local, e.Roles.Local, e.Roles.Remote)
}

func healthLine(e DebugEntry) string {
	return fmt.Sprintf("Health: %f", e.Health)
}

// FormatNetworkDebug は NetworkDebugLines を改行でつなげます。
func FormatNetworkDebug(entries []DebugEntry) string {
	return strings.Join(NetworkDebugLines(entries), "\n") + "\n"
}
