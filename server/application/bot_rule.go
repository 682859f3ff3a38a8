package application

import (
	"math"
	"math/rand/v2"

	"thirdpersonmp/server/gameplay"
)

const (
	botDangerDist   float32 = 300  // 弾回避を始める距離
	botFireRange    float32 = 2500 // 射撃を始める距離
	botAimTolerance float32 = 10   // 射撃を許すyawのずれ (度)
	botNoiseAngle   float64 = 0.52 // ±30度 (π/6 ≈ 0.52 rad)
	rushChance      float64 = 0.02 // 毎tick 2% の確率で突撃
	jumpChance      float64 = 0.01
)

// RuleBotController はルールベースのボットAIです。
// ボットごとに異なる個性パラメータを持ちます。
type RuleBotController struct {
	CloseRange float32 // 後退を始める距離
	MidRange   float32 // ストレイフを始める距離
	StrafeSign float32 // +1: 反時計回り, -1: 時計回り

	rand func() float64
}

// NewRuleBotController はランダムな個性を持つボットAIを生成します。
func NewRuleBotController() *RuleBotController {
	strafeSign := float32(1.0)
	if rand.Float64() < 0.5 {
		strafeSign = -1.0
	}
	return &RuleBotController{
		CloseRange: 300 + rand.Float32()*400,   // 300〜700
		MidRange:   1000 + rand.Float32()*1000, // 1000〜2000
		StrafeSign: strafeSign,
		rand:       rand.Float64,
	}
}

func (r *RuleBotController) Decide(self *gameplay.Character, characters []*gameplay.Character, projectiles []*gameplay.Projectile) BotAction {
	if self.Health.IsDead() {
		return BotAction{}
	}
	// 被弾回避を優先
	if dir, ok := r.evadeProjectile(self, projectiles); ok {
		return BotAction{MoveDirection: r.addNoise(dir), Jump: r.random() < jumpChance}
	}

	// 最寄り敵に対する行動
	nearest := r.findNearestEnemy(self, characters)
	if nearest == nil {
		return BotAction{}
	}

	to := nearest.Location().Sub(self.Location())
	to.Z = 0
	dist := to.Length()
	if dist < 0.001 {
		return BotAction{}
	}
	n := to.Scale(1 / dist)

	action := BotAction{AimYaw: yawTo(self.Location(), nearest.Location()), Aim: true}
	aimError := normalizeYaw(action.AimYaw - self.Rotation().Yaw)
	action.Fire = dist <= botFireRange && aimError >= -botAimTolerance && aimError <= botAimTolerance

	// ランダム突撃: 一定確率で距離に関係なく接近
	if r.random() < rushChance {
		action.MoveDirection = r.addNoise(n)
		return action
	}

	var dir gameplay.Vec3
	switch {
	case dist < r.CloseRange:
		// 近距離: 後退
		dir = gameplay.Vec3{X: -n.X, Y: -n.Y}
	case dist < r.MidRange:
		// 中距離: 横移動（ストレイフ方向はボットごとに異なる）
		dir = gameplay.Vec3{X: -n.Y * r.StrafeSign, Y: n.X * r.StrafeSign}
	default:
		// 遠距離: 接近
		dir = n
	}
	action.MoveDirection = r.addNoise(dir)
	return action
}

// evadeProjectile は自分に向かってくる弾を回避する方向を返します。
func (r *RuleBotController) evadeProjectile(self *gameplay.Character, projectiles []*gameplay.Projectile) (gameplay.Vec3, bool) {
	var closestDist float32 = math.MaxFloat32
	var closest *gameplay.Projectile

	for _, p := range projectiles {
		if p.Owner == self.EntityID() || p.IsDestroyed() {
			continue
		}
		d := self.Location().Sub(p.Location)
		d.Z = 0
		dist := d.Length()
		if dist > botDangerDist {
			continue
		}

		// 弾が自分に向かっているか確認（内積 > 0）
		if d.X*p.Velocity.X+d.Y*p.Velocity.Y <= 0 {
			continue
		}
		if dist < closestDist {
			closestDist = dist
			closest = p
		}
	}
	if closest == nil {
		return gameplay.Vec3{}, false
	}

	// 弾の進行方向に対して垂直に回避
	v := gameplay.Vec3{X: closest.Velocity.X, Y: closest.Velocity.Y}
	vLen := v.Length()
	if vLen < 0.001 {
		return gameplay.Vec3{}, false
	}
	return gameplay.Vec3{X: -v.Y / vLen, Y: v.X / vLen}, true
}

// findNearestEnemy は最寄りの生存敵を探します。
func (r *RuleBotController) findNearestEnemy(self *gameplay.Character, characters []*gameplay.Character) *gameplay.Character {
	var nearest *gameplay.Character
	var nearestDistSq float32 = math.MaxFloat32

	for _, other := range characters {
		if other.EntityID() == self.EntityID() || other.Health.IsDead() || other.IsDestroyed() {
			continue
		}
		d := other.Location().Sub(self.Location())
		distSq := d.X*d.X + d.Y*d.Y
		if distSq < nearestDistSq {
			nearestDistSq = distSq
			nearest = other
		}
	}
	return nearest
}

// addNoise は移動方向に ±30度 のランダムノイズを加えます。
func (r *RuleBotController) addNoise(dir gameplay.Vec3) gameplay.Vec3 {
	noise := (r.random()*2 - 1) * botNoiseAngle
	cos := float32(math.Cos(noise))
	sin := float32(math.Sin(noise))
	return gameplay.Vec3{
		X: dir.X*cos - dir.Y*sin,
		Y: dir.X*sin + dir.Y*cos,
	}
}

func (r *RuleBotController) random() float64 {
	if r.rand == nil {
		return rand.Float64()
	}
	return r.rand()
}
