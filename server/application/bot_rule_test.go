package application

import (
	"context"
	"math"
	"testing"

	"thirdpersonmp/server/domain"
	"thirdpersonmp/server/gameplay"
)

// ノイズも突撃も起きない固定乱数
func fixedBot() *RuleBotController {
	return &RuleBotController{
		CloseRange: 500,
		MidRange:   1500,
		StrafeSign: 1,
		rand:       func() float64 { return 0.5 },
	}
}

func placeCharacter(t *testing.T, w *World, x, y, yaw float32) *gameplay.Character {
	t.Helper()
	c, err := w.AddCharacter(context.Background(), gameplay.NewEntityID())
	if err != nil {
		t.Fatalf("AddCharacter failed: %v", err)
	}
	c.SetTransform(gameplay.Transform{
		Location: gameplay.Vec3{X: x, Y: y, Z: c.CapsuleHalfHeight()},
		Rotation: gameplay.Rotator{Yaw: yaw},
	})
	return c
}

func approxDir(a, b gameplay.Vec3) bool {
	return math.Abs(float64(a.X-b.X)) < 1e-3 && math.Abs(float64(a.Y-b.Y)) < 1e-3
}

func TestRuleBotController_Ranges(t *testing.T) {
	cases := []struct {
		name string
		dist float32
		want gameplay.Vec3
	}{
		{"close retreats", 300, gameplay.Vec3{X: -1}},
		{"mid strafes", 1000, gameplay.Vec3{Y: 1}},
		{"far approaches", 3000, gameplay.Vec3{X: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := newTestWorld()
			self := placeCharacter(t, w, 0, 0, 0)
			enemy := placeCharacter(t, w, tc.dist, 0, 180)

			action := fixedBot().Decide(self, w.Characters(), nil)
			if !approxDir(action.MoveDirection, tc.want) {
				t.Errorf("move = %+v, want %+v", action.MoveDirection, tc.want)
			}
			if !action.Aim || action.AimYaw != yawTo(self.Location(), enemy.Location()) {
				t.Errorf("aim = %v/%f", action.Aim, action.AimYaw)
			}
		})
	}
}

func TestRuleBotController_FiresWhenAimedAndInRange(t *testing.T) {
	w := newTestWorld()
	self := placeCharacter(t, w, 0, 0, 0)
	enemy := placeCharacter(t, w, 1000, 0, 180)

	if action := fixedBot().Decide(self, w.Characters(), nil); !action.Fire {
		t.Errorf("expected fire when facing enemy in range")
	}

	self.SetTransform(gameplay.Transform{Location: self.Location(), Rotation: gameplay.Rotator{Yaw: 90}})
	if action := fixedBot().Decide(self, w.Characters(), nil); action.Fire {
		t.Errorf("should not fire when facing away")
	}

	enemy.SetLocation(gameplay.Vec3{X: botFireRange + 100, Z: enemy.Location().Z})
	self.SetTransform(gameplay.Transform{Location: self.Location()})
	if action := fixedBot().Decide(self, w.Characters(), nil); action.Fire {
		t.Errorf("should not fire out of range")
	}
}

func TestRuleBotController_IgnoresDeadEnemies(t *testing.T) {
	w := newTestWorld()
	self := placeCharacter(t, w, 0, 0, 0)
	enemy := placeCharacter(t, w, 1000, 0, 180)
	enemy.TakeDamage(context.Background(), 1000, gameplay.EntityID{}, gameplay.EntityID{})

	if action := fixedBot().Decide(self, w.Characters(), nil); action != (BotAction{}) {
		t.Errorf("action = %+v, want idle", action)
	}
}

func TestRuleBotController_DeadSelfIsIdle(t *testing.T) {
	w := newTestWorld()
	self := placeCharacter(t, w, 0, 0, 0)
	placeCharacter(t, w, 1000, 0, 180)
	self.TakeDamage(context.Background(), 1000, gameplay.EntityID{}, gameplay.EntityID{})

	if action := fixedBot().Decide(self, w.Characters(), nil); action != (BotAction{}) {
		t.Errorf("action = %+v, want idle", action)
	}
}

// 自分に向かってくる弾は進行方向と垂直に避ける
func TestRuleBotController_EvadesIncomingProjectile(t *testing.T) {
	w := newTestWorld()
	self := placeCharacter(t, w, 0, 0, 0)
	other := gameplay.NewEntityID()

	incoming := gameplay.NewProjectileReplica(gameplay.NewEntityID(), other, gameplay.Vec3{X: 200}, gameplay.Vec3{X: -1500})
	action := fixedBot().Decide(self, w.Characters(), []*gameplay.Projectile{incoming})
	if !approxDir(action.MoveDirection, gameplay.Vec3{Y: -1}) {
		t.Errorf("evade = %+v, want (0,-1)", action.MoveDirection)
	}

	// 遠ざかる弾と自分の弾は無視する
	outgoing := gameplay.NewProjectileReplica(gameplay.NewEntityID(), other, gameplay.Vec3{X: 200}, gameplay.Vec3{X: 1500})
	own := gameplay.NewProjectileReplica(gameplay.NewEntityID(), self.EntityID(), gameplay.Vec3{X: 200}, gameplay.Vec3{X: -1500})
	if action := fixedBot().Decide(self, w.Characters(), []*gameplay.Projectile{outgoing, own}); action != (BotAction{}) {
		t.Errorf("action = %+v, want idle", action)
	}
}

func TestBotAction_Input(t *testing.T) {
	w := newTestWorld()
	self := placeCharacter(t, w, 0, 0, 0)
	self.DoLook(normalizeYaw(90-self.ControlRotation().Yaw), 0)

	in := BotAction{MoveDirection: gameplay.Vec3{Y: 1}, AimYaw: 180, Aim: true, Jump: true}.Input(self)
	if math.Abs(float64(in.MoveForward-1)) > 1e-3 || math.Abs(float64(in.MoveRight)) > 1e-3 {
		t.Errorf("move = right %f forward %f, want forward", in.MoveRight, in.MoveForward)
	}
	if in.LookYaw != botMaxTurn {
		t.Errorf("look yaw = %f, want clamped to %f", in.LookYaw, botMaxTurn)
	}
	if in.KeyMask&domain.KeyJump == 0 {
		t.Errorf("jump bit not set")
	}
}
