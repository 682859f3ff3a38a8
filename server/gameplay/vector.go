package gameplay

import "math"

const degToRad = math.Pi / 180

// Vec3 はワールド座標系のベクトル (X: 前, Y: 右, Z: 上)
type Vec3 struct {
	X, Y, Z float32
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float32) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Dot(o Vec3) float32 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Length() float32 { return float32(math.Sqrt(float64(v.Dot(v)))) }

// Normalize は単位ベクトルを返します。長さがほぼ0の場合はゼロベクトルを返します。
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l < 1e-6 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Rotator は度数法のオイラー角です。
type Rotator struct {
	Pitch, Yaw, Roll float32
}

func (r Rotator) sinCos() (sp, cp, sy, cy, sr, cr float64) {
	sp, cp = math.Sincos(float64(r.Pitch) * degToRad)
	sy, cy = math.Sincos(float64(r.Yaw) * degToRad)
	sr, cr = math.Sincos(float64(r.Roll) * degToRad)
	return
}

// Vector は回転行列のX軸（前方向）を返します。
func (r Rotator) Vector() Vec3 {
	sp, cp, sy, cy, _, _ := r.sinCos()
	return Vec3{X: float32(cp * cy), Y: float32(cp * sy), Z: float32(sp)}
}

// RightVector は回転行列のY軸を返します。
func (r Rotator) RightVector() Vec3 {
	sp, cp, sy, cy, sr, cr := r.sinCos()
	return Vec3{
		X: float32(sr*sp*cy - cr*sy),
		Y: float32(sr*sp*sy + cr*cy),
		Z: float32(-sr * cp),
	}
}

// UpVector は回転行列のZ軸を返します。
func (r Rotator) UpVector() Vec3 {
	sp, cp, sy, cy, sr, cr := r.sinCos()
	return Vec3{
		X: float32(-(cr*sp*cy + sr*sy)),
		Y: float32(cy*sr - cr*sp*sy),
		Z: float32(cr * cp),
	}
}

// YawOnly はピッチとロールを落とした回転を返します。
func (r Rotator) YawOnly() Rotator { return Rotator{Yaw: r.Yaw} }

// Transform は位置と回転の組です。
type Transform struct {
	Location Vec3
	Rotation Rotator
}

// normalizeAxis は角度を (-180, 180] に正規化します。
func normalizeAxis(deg float32) float32 {
	d := float32(math.Mod(float64(deg), 360))
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

func clamp(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
