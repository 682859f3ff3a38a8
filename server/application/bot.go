package application

import (
	"math"

	"thirdpersonmp/server/domain"
	"thirdpersonmp/server/gameplay"
)

// botMaxTurn は1回の判断で回せるyawの上限 (度) です。
const botMaxTurn float32 = 15

// BotAction はボットの行動を表します。
type BotAction struct {
	MoveDirection gameplay.Vec3 // ワールド座標の移動方向 (XY)
	AimYaw        float32       // 向きたいyaw (度)
	Aim           bool
	Fire          bool
	Jump          bool
}

// BotController はボットの意思決定インターフェースです。
type BotController interface {
	Decide(self *gameplay.Character, characters []*gameplay.Character, projectiles []*gameplay.Projectile) BotAction
}

// Input は行動をコントロール回転基準の入力メッセージに変換します。
func (a BotAction) Input(self *gameplay.Character) *domain.InputPayload {
	control := self.ControlRotation().YawOnly()
	in := &domain.InputPayload{
		MoveForward: a.MoveDirection.Dot(control.Vector()),
		MoveRight:   a.MoveDirection.Dot(control.RightVector()),
	}
	if a.Aim {
		delta := normalizeYaw(a.AimYaw - control.Yaw)
		in.LookYaw = clamp(delta, -botMaxTurn, botMaxTurn)
	}
	if a.Jump {
		in.KeyMask |= domain.KeyJump
	}
	return in
}

// yawTo はfromからtoへ向かうyaw (度) を返します。
func yawTo(from, to gameplay.Vec3) float32 {
	return float32(math.Atan2(float64(to.Y-from.Y), float64(to.X-from.X)) * 180 / math.Pi)
}

func normalizeYaw(deg float32) float32 {
	d := float32(math.Mod(float64(deg), 360))
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}
