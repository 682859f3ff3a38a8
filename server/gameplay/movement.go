package gameplay

import "math"

// MovementConfig はキャラクター移動のパラメータです。
type MovementConfig struct {
	MaxWalkSpeed        float32
	RotationRate        float32 // yaw 度/秒
	JumpZVelocity       float32
	AirControl          float32
	BrakingDeceleration float32
	Gravity             float32
	CapsuleRadius       float32
	CapsuleHalfHeight   float32
}

// DefaultMovementConfig は既定の移動パラメータを返します。
func DefaultMovementConfig() MovementConfig {
	return MovementConfig{
		MaxWalkSpeed:        500,
		RotationRate:        500,
		JumpZVelocity:       500,
		AirControl:          0.35,
		BrakingDeceleration: 2000,
		Gravity:             980,
		CapsuleRadius:       42,
		CapsuleHalfHeight:   96,
	}
}

// Movement は入力を蓄積し、tickごとに位置と向きへ反映します。
type Movement struct {
	cfg          MovementConfig
	pendingInput Vec3
	velocity     Vec3
	jumpHeld     bool
	grounded     bool
}

func newMovement(cfg MovementConfig) *Movement {
	if cfg == (MovementConfig{}) {
		cfg = DefaultMovementConfig()
	}
	return &Movement{cfg: cfg, grounded: true}
}

func (m *Movement) Config() MovementConfig { return m.cfg }

func (m *Movement) Velocity() Vec3 { return m.velocity }

func (m *Movement) IsGrounded() bool { return m.grounded }

// AddInput は移動入力を蓄積します。次のStepで消費されます。
func (m *Movement) AddInput(dir Vec3, scale float32) {
	if scale == 0 {
		return
	}
	m.pendingInput = m.pendingInput.Add(dir.Scale(scale))
}

func (m *Movement) SetJump(held bool) { m.jumpHeld = held }

// Step はdt秒分の移動を行い、新しいTransformを返します。
func (m *Movement) Step(t Transform, dt float32) Transform {
	input := Vec3{X: m.pendingInput.X, Y: m.pendingInput.Y}
	m.pendingInput = Vec3{}
	if l := input.Length(); l > 1 {
		input = input.Scale(1 / l)
	}

	horizontal := Vec3{X: m.velocity.X, Y: m.velocity.Y}
	if input.Length() > 0 {
		target := input.Scale(m.cfg.MaxWalkSpeed)
		if m.grounded {
			horizontal = target
		} else {
			horizontal = horizontal.Add(target.Sub(horizontal).Scale(m.cfg.AirControl))
		}
	} else if m.grounded {
		speed := horizontal.Length()
		next := speed - m.cfg.BrakingDeceleration*dt
		if next <= 0 {
			horizontal = Vec3{}
		} else {
			horizontal = horizontal.Scale(next / speed)
		}
	}
	m.velocity.X, m.velocity.Y = horizontal.X, horizontal.Y

	if m.jumpHeld && m.grounded {
		m.velocity.Z = m.cfg.JumpZVelocity
		m.grounded = false
	}
	if !m.grounded {
		m.velocity.Z -= m.cfg.Gravity * dt
	}

	t.Location = t.Location.Add(m.velocity.Scale(dt))
	if t.Location.Z <= m.cfg.CapsuleHalfHeight {
		t.Location.Z = m.cfg.CapsuleHalfHeight
		m.velocity.Z = 0
		m.grounded = true
	}

	// 移動方向へ向きを合わせる
	if horizontal.Length() > 1 {
		target := float32(math.Atan2(float64(horizontal.Y), float64(horizontal.X)) / degToRad)
		delta := normalizeAxis(target - t.Rotation.Yaw)
		step := m.cfg.RotationRate * dt
		t.Rotation.Yaw = normalizeAxis(t.Rotation.Yaw + clamp(delta, -step, step))
	}
	return t
}
