package domain

import (
	"encoding/binary"
	"errors"
	"math"
	"time"
)

// バイトオーダー: リトルエンディアン
var byteOrder = binary.LittleEndian

const (
	ProtocolVersion   = 1
	HeaderSize        = 25
	PayloadHeaderSize = 2
	JoinPayloadSize   = 16
)

// Header はメッセージヘッダー (25バイト)
//
//	version    u8      (1)
//	sessionID  [16]byte (16)
//	seq        u16     (2)
//	length     u16     (2)  - ペイロードヘッダーを含むペイロード長
//	timestamp  u32     (4)
type Header struct {
	Version   uint8
	SessionID [16]byte
	Seq       uint16
	Length    uint16
	Timestamp uint32
}

// DataType はメッセージの種別
type DataType uint8

const (
	DataTypeInput       DataType = 1
	DataTypeControl     DataType = 4
	DataTypeReplication DataType = 6
	DataTypeRPC         DataType = 7
)

// ControlSubType はcontrolメッセージのサブタイプ
type ControlSubType uint8

const (
	ControlSubTypeJoin   ControlSubType = 1
	ControlSubTypeLeave  ControlSubType = 2
	ControlSubTypeKick   ControlSubType = 3
	ControlSubTypePing   ControlSubType = 4
	ControlSubTypePong   ControlSubType = 5
	ControlSubTypeError  ControlSubType = 6
	ControlSubTypeAssign ControlSubType = 7
)

// ReplicationSubType はreplicationメッセージのサブタイプ
type ReplicationSubType uint8

const (
	ReplicationCharacterSpawn    ReplicationSubType = 1
	ReplicationCharacterUpdate   ReplicationSubType = 2
	ReplicationCharacterDespawn  ReplicationSubType = 3
	ReplicationHealth            ReplicationSubType = 4
	ReplicationProjectileSpawn   ReplicationSubType = 5
	ReplicationProjectileUpdate  ReplicationSubType = 6
	ReplicationProjectileDespawn ReplicationSubType = 7
)

// RPCSubType はクライアントから権限側への呼び出しのサブタイプ
type RPCSubType uint8

const (
	RPCServerHandleFire RPCSubType = 1
)

// PayloadHeader はペイロードヘッダー (2バイト)
//
//	datatype  u8 (1)
//	subtype   u8 (1)
type PayloadHeader struct {
	DataType DataType
	SubType  uint8
}

var (
	ErrInvalidHeaderSize  = errors.New("invalid header size")
	ErrInvalidPayloadSize = errors.New("invalid payload size")
	ErrUnsupportedVersion = errors.New("unsupported protocol version")
)

// ParseHeader はバイト列からHeaderをパースする
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, ErrInvalidHeaderSize
	}

	var sessionID [16]byte
	copy(sessionID[:], data[1:17])

	return &Header{
		Version:   data[0],
		SessionID: sessionID,
		Seq:       byteOrder.Uint16(data[17:19]),
		Length:    byteOrder.Uint16(data[19:21]),
		Timestamp: byteOrder.Uint32(data[21:25]),
	}, nil
}

// Encode はHeaderをバイト列にエンコードする
func (h *Header) Encode() []byte {
	data := make([]byte, HeaderSize)
	data[0] = h.Version
	copy(data[1:17], h.SessionID[:])
	byteOrder.PutUint16(data[17:19], h.Seq)
	byteOrder.PutUint16(data[19:21], h.Length)
	byteOrder.PutUint32(data[21:25], h.Timestamp)
	return data
}

// ParsePayloadHeader はバイト列からPayloadHeaderをパースする
func ParsePayloadHeader(data []byte) (*PayloadHeader, error) {
	if len(data) < PayloadHeaderSize {
		return nil, ErrInvalidPayloadSize
	}

	return &PayloadHeader{
		DataType: DataType(data[0]),
		SubType:  data[1],
	}, nil
}

// Encode はPayloadHeaderをバイト列にエンコードする
func (p *PayloadHeader) Encode() []byte {
	data := make([]byte, PayloadHeaderSize)
	data[0] = byte(p.DataType)
	data[1] = p.SubType
	return data
}

// Frame はパース済みの1メッセージです。
type Frame struct {
	Header        Header
	PayloadHeader PayloadHeader
	Body          []byte
}

// ParseFrame はヘッダー、ペイロードヘッダー、ボディに分解する
func ParseFrame(data []byte) (*Frame, error) {
	header, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	if header.Version != ProtocolVersion {
		return nil, ErrUnsupportedVersion
	}
	payloadHeader, err := ParsePayloadHeader(data[HeaderSize:])
	if err != nil {
		return nil, err
	}
	end := HeaderSize + int(header.Length)
	if int(header.Length) < PayloadHeaderSize || end > len(data) {
		return nil, ErrInvalidPayloadSize
	}
	return &Frame{
		Header:        *header,
		PayloadHeader: *payloadHeader,
		Body:          data[HeaderSize+PayloadHeaderSize : end],
	}, nil
}

// EncodeMessage はヘッダーとペイロードヘッダーを付けたメッセージをエンコードする
func EncodeMessage(sessionID SessionID, dataType DataType, subType uint8, body []byte) []byte {
	header := Header{
		Version:   ProtocolVersion,
		SessionID: sessionID.Bytes(),
		Length:    uint16(PayloadHeaderSize + len(body)),
		Timestamp: uint32(time.Now().UnixMilli() & 0xFFFFFFFF),
	}
	payloadHeader := PayloadHeader{DataType: dataType, SubType: subType}

	data := make([]byte, HeaderSize+PayloadHeaderSize+len(body))
	copy(data[:HeaderSize], header.Encode())
	copy(data[HeaderSize:], payloadHeader.Encode())
	copy(data[HeaderSize+PayloadHeaderSize:], body)
	return data
}

// EncodeControlMessage はペイロードを持たないcontrolメッセージをエンコードする
func EncodeControlMessage(sessionID SessionID, subType ControlSubType) []byte {
	return EncodeMessage(sessionID, DataTypeControl, uint8(subType), nil)
}

// EncodeAssignMessage はクライアントに自分のセッションIDを通知するために使用
func EncodeAssignMessage(sessionID SessionID) []byte {
	return EncodeControlMessage(sessionID, ControlSubTypeAssign)
}

// EncodeLeaveMessage は異常切断時にRoom離脱を通知するために使用
func EncodeLeaveMessage(sessionID SessionID) []byte {
	return EncodeControlMessage(sessionID, ControlSubTypeLeave)
}

// EncodePingMessage はクライアントに死活確認のpingを送信するために使用
func EncodePingMessage(sessionID SessionID) []byte {
	return EncodeControlMessage(sessionID, ControlSubTypePing)
}

func EncodePongMessage(sessionID SessionID) []byte {
	return EncodeControlMessage(sessionID, ControlSubTypePong)
}

// EncodeJoinMessage はルーム参加メッセージをエンコードする。空のroomIDは自動割り当て。
func EncodeJoinMessage(sessionID SessionID, roomID RoomID) []byte {
	p := JoinPayload{RoomID: roomID}
	return EncodeMessage(sessionID, DataTypeControl, uint8(ControlSubTypeJoin), p.Encode())
}

// EncodeFireRPC は権限側へ発射を要求するメッセージをエンコードする
func EncodeFireRPC(sessionID SessionID) []byte {
	return EncodeMessage(sessionID, DataTypeRPC, uint8(RPCServerHandleFire), nil)
}

// JoinPayload はルーム参加メッセージのペイロード (16バイト)
//
//	roomID  [16]byte  - ルームID (UUID)
type JoinPayload struct {
	RoomID RoomID
}

var ErrInvalidJoinPayloadSize = errors.New("invalid join payload size")

// ParseJoinPayload はバイト列からJoinPayloadをパースする
func ParseJoinPayload(data []byte) (*JoinPayload, error) {
	if len(data) < JoinPayloadSize {
		return nil, ErrInvalidJoinPayloadSize
	}

	var roomID RoomID
	copy(roomID[:], data[:JoinPayloadSize])

	return &JoinPayload{
		RoomID: roomID,
	}, nil
}

// Encode はJoinPayloadをバイト列にエンコードする
func (j *JoinPayload) Encode() []byte {
	return j.RoomID[:]
}

// サイズ定数
const (
	InputPayloadSize             = 20
	Vec3Size                     = 12
	TransformSize                = 24
	EntitySize                   = 16
	CharacterPayloadSize         = EntitySize + TransformSize + 8
	CharacterDespawnPayloadSize  = EntitySize
	HealthPayloadSize            = EntitySize + 8
	ProjectilePayloadSize        = EntitySize*2 + Vec3Size*2
	ProjectileDespawnPayloadSize = EntitySize + Vec3Size
)

// キー入力ビット
const (
	KeyJump uint32 = 1 << 0
)

// エラー定義
var (
	ErrInvalidInputPayloadSize      = errors.New("invalid input payload size")
	ErrInvalidTransformSize         = errors.New("invalid transform size")
	ErrInvalidCharacterPayloadSize  = errors.New("invalid character payload size")
	ErrInvalidHealthPayloadSize     = errors.New("invalid health payload size")
	ErrInvalidProjectilePayloadSize = errors.New("invalid projectile payload size")
)

// InputPayload はユーザー入力 (20バイト)
//
//	moveRight, moveForward float32 (8) - 移動軸入力
//	lookYaw, lookPitch     float32 (8) - 視点入力 (度)
//	keyMask                uint32  (4) - キー入力ビットマスク
type InputPayload struct {
	MoveRight   float32
	MoveForward float32
	LookYaw     float32
	LookPitch   float32
	KeyMask     uint32
}

// ParseInputPayload はバイト列からInputPayloadをパースする
func ParseInputPayload(data []byte) (*InputPayload, error) {
	if len(data) < InputPayloadSize {
		return nil, ErrInvalidInputPayloadSize
	}

	return &InputPayload{
		MoveRight:   getFloat32(data[0:4]),
		MoveForward: getFloat32(data[4:8]),
		LookYaw:     getFloat32(data[8:12]),
		LookPitch:   getFloat32(data[12:16]),
		KeyMask:     byteOrder.Uint32(data[16:20]),
	}, nil
}

// Encode はInputPayloadをバイト列にエンコードする
func (i *InputPayload) Encode() []byte {
	data := make([]byte, InputPayloadSize)
	putFloat32(data[0:4], i.MoveRight)
	putFloat32(data[4:8], i.MoveForward)
	putFloat32(data[8:12], i.LookYaw)
	putFloat32(data[12:16], i.LookPitch)
	byteOrder.PutUint32(data[16:20], i.KeyMask)
	return data
}

func (i *InputPayload) Jump() bool { return i.KeyMask&KeyJump != 0 }

// Vec3 は位置・速度データ (12バイト)
type Vec3 struct {
	X, Y, Z float32
}

func parseVec3(data []byte) Vec3 {
	return Vec3{X: getFloat32(data[0:4]), Y: getFloat32(data[4:8]), Z: getFloat32(data[8:12])}
}

func (v Vec3) put(data []byte) {
	putFloat32(data[0:4], v.X)
	putFloat32(data[4:8], v.Y)
	putFloat32(data[8:12], v.Z)
}

// Transform は位置と回転 (24バイト)
//
//	x, y, z            float32 (12) - 位置
//	pitch, yaw, roll   float32 (12) - 回転 (度)
type Transform struct {
	Location         Vec3
	Pitch, Yaw, Roll float32
}

// ParseTransform はバイト列からTransformをパースする
func ParseTransform(data []byte) (*Transform, error) {
	if len(data) < TransformSize {
		return nil, ErrInvalidTransformSize
	}
	return &Transform{
		Location: parseVec3(data[0:12]),
		Pitch:    getFloat32(data[12:16]),
		Yaw:      getFloat32(data[16:20]),
		Roll:     getFloat32(data[20:24]),
	}, nil
}

// Encode はTransformをバイト列にエンコードする
func (t *Transform) Encode() []byte {
	data := make([]byte, TransformSize)
	t.Location.put(data[0:12])
	putFloat32(data[12:16], t.Pitch)
	putFloat32(data[16:20], t.Yaw)
	putFloat32(data[20:24], t.Roll)
	return data
}

// CharacterPayload はキャラクター生成・更新メッセージ (48バイト)
//
//	entity    [16]byte  (16)
//	transform Transform (24)
//	health    float32   (4)
//	maxHealth float32   (4)
type CharacterPayload struct {
	Entity    [16]byte
	Transform Transform
	Health    float32
	MaxHealth float32
}

// ParseCharacterPayload はバイト列からCharacterPayloadをパースする
func ParseCharacterPayload(data []byte) (*CharacterPayload, error) {
	if len(data) < CharacterPayloadSize {
		return nil, ErrInvalidCharacterPayloadSize
	}
	var p CharacterPayload
	copy(p.Entity[:], data[0:16])
	t, err := ParseTransform(data[16:40])
	if err != nil {
		return nil, err
	}
	p.Transform = *t
	p.Health = getFloat32(data[40:44])
	p.MaxHealth = getFloat32(data[44:48])
	return &p, nil
}

// Encode はCharacterPayloadをバイト列にエンコードする
func (p *CharacterPayload) Encode() []byte {
	data := make([]byte, CharacterPayloadSize)
	copy(data[0:16], p.Entity[:])
	copy(data[16:40], p.Transform.Encode())
	putFloat32(data[40:44], p.Health)
	putFloat32(data[44:48], p.MaxHealth)
	return data
}

// EntityPayload は対象エンティティのみを持つメッセージ (16バイト)
type EntityPayload struct {
	Entity [16]byte
}

// ParseEntityPayload はバイト列からEntityPayloadをパースする
func ParseEntityPayload(data []byte) (*EntityPayload, error) {
	if len(data) < EntitySize {
		return nil, ErrInvalidCharacterPayloadSize
	}
	var p EntityPayload
	copy(p.Entity[:], data[:EntitySize])
	return &p, nil
}

func (p *EntityPayload) Encode() []byte {
	data := make([]byte, EntitySize)
	copy(data, p.Entity[:])
	return data
}

// HealthPayload は現在HPの複製メッセージ (24バイト)
//
//	entity  [16]byte (16)
//	current float32  (4)
//	max     float32  (4)
type HealthPayload struct {
	Entity  [16]byte
	Current float32
	Max     float32
}

// ParseHealthPayload はバイト列からHealthPayloadをパースする
func ParseHealthPayload(data []byte) (*HealthPayload, error) {
	if len(data) < HealthPayloadSize {
		return nil, ErrInvalidHealthPayloadSize
	}
	var p HealthPayload
	copy(p.Entity[:], data[0:16])
	p.Current = getFloat32(data[16:20])
	p.Max = getFloat32(data[20:24])
	return &p, nil
}

// Encode はHealthPayloadをバイト列にエンコードする
func (p *HealthPayload) Encode() []byte {
	data := make([]byte, HealthPayloadSize)
	copy(data[0:16], p.Entity[:])
	putFloat32(data[16:20], p.Current)
	putFloat32(data[20:24], p.Max)
	return data
}

// ProjectilePayload は弾の生成・更新メッセージ (56バイト)
//
//	entity   [16]byte (16)
//	owner    [16]byte (16)
//	location Vec3     (12)
//	velocity Vec3     (12)
type ProjectilePayload struct {
	Entity   [16]byte
	Owner    [16]byte
	Location Vec3
	Velocity Vec3
}

// ParseProjectilePayload はバイト列からProjectilePayloadをパースする
func ParseProjectilePayload(data []byte) (*ProjectilePayload, error) {
	if len(data) < ProjectilePayloadSize {
		return nil, ErrInvalidProjectilePayloadSize
	}
	var p ProjectilePayload
	copy(p.Entity[:], data[0:16])
	copy(p.Owner[:], data[16:32])
	p.Location = parseVec3(data[32:44])
	p.Velocity = parseVec3(data[44:56])
	return &p, nil
}

// Encode はProjectilePayloadをバイト列にエンコードする
func (p *ProjectilePayload) Encode() []byte {
	data := make([]byte, ProjectilePayloadSize)
	copy(data[0:16], p.Entity[:])
	copy(data[16:32], p.Owner[:])
	p.Location.put(data[32:44])
	p.Velocity.put(data[44:56])
	return data
}

// ProjectileDespawnPayload は弾の破棄メッセージ (28バイト)
//
//	entity   [16]byte (16)
//	location Vec3     (12) - 爆発位置
type ProjectileDespawnPayload struct {
	Entity   [16]byte
	Location Vec3
}

// ParseProjectileDespawnPayload はバイト列からProjectileDespawnPayloadをパースする
func ParseProjectileDespawnPayload(data []byte) (*ProjectileDespawnPayload, error) {
	if len(data) < ProjectileDespawnPayloadSize {
		return nil, ErrInvalidProjectilePayloadSize
	}
	var p ProjectileDespawnPayload
	copy(p.Entity[:], data[0:16])
	p.Location = parseVec3(data[16:28])
	return &p, nil
}

// Encode はProjectileDespawnPayloadをバイト列にエンコードする
func (p *ProjectileDespawnPayload) Encode() []byte {
	data := make([]byte, ProjectileDespawnPayloadSize)
	copy(data[0:16], p.Entity[:])
	p.Location.put(data[16:28])
	return data
}

func getFloat32(b []byte) float32 { return math.Float32frombits(byteOrder.Uint32(b)) }

func putFloat32(b []byte, v float32) { byteOrder.PutUint32(b, math.Float32bits(v)) }
