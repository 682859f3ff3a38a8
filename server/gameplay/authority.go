package gameplay

import (
	"github.com/google/uuid"
)

//go:generate go tool mockgen -destination=./mocks/contracts_mock.go -package=mocks . AuthorityContext,ControlContext,ReplicationChannel,EntityFactory,Presenter,FireRouter

// EntityID はエンティティの識別子です。
type EntityID uuid.UUID

func NewEntityID() EntityID { return EntityID(uuid.New()) }

// ParseEntityID は文字列のUUIDをEntityIDに変換します。
func ParseEntityID(s string) (EntityID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return EntityID{}, err
	}
	return EntityID(id), nil
}

func (id EntityID) String() string { return uuid.UUID(id).String() }

func (id EntityID) IsZero() bool { return id == EntityID{} }

// Role はある実行コンテキストから見たエンティティの役割です。
type Role uint8

const (
	RoleNone Role = iota
	RoleSimulatedProxy
	RoleAutonomousProxy
	RoleAuthority
)

func (r Role) String() string {
	switch r {
	case RoleNone:
		return "ROLE_None"
	case RoleSimulatedProxy:
		return "ROLE_SimulatedProxy"
	case RoleAutonomousProxy:
		return "ROLE_AutonomousProxy"
	case RoleAuthority:
		return "ROLE_Authority"
	default:
		return "ROLE_Unknown"
	}
}

// AuthorityContext は現在の実行コンテキストが状態を確定できるかを答えます。
// 値はキャッシュせず、権限が必要な操作のたびに問い合わせます。
type AuthorityContext interface {
	IsAuthoritative() bool
}

// ControlContext はエンティティがこのコンテキストでローカル操作されているかを答えます。
type ControlContext interface {
	IsLocallyControlled() bool
}

// NetRoles はエンティティのローカル/リモートの役割です。
type NetRoles struct {
	Local             Role
	Remote            Role
	LocallyControlled bool
}

var (
	_ AuthorityContext = NetRoles{}
	_ ControlContext   = NetRoles{}
)

func (r NetRoles) IsAuthoritative() bool { return r.Local == RoleAuthority }

func (r NetRoles) IsLocallyControlled() bool { return r.LocallyControlled }

// ServerRoles は専用サーバー上のプレイヤーキャラクターの役割です。
func ServerRoles() NetRoles {
	return NetRoles{Local: RoleAuthority, Remote: RoleAutonomousProxy}
}

// OwnerRoles は自分が操作するキャラクターのクライアント側の役割です。
func OwnerRoles() NetRoles {
	return NetRoles{Local: RoleAutonomousProxy, Remote: RoleAuthority, LocallyControlled: true}
}

// ProxyRoles は他プレイヤーのキャラクターのクライアント側の役割です。
func ProxyRoles() NetRoles {
	return NetRoles{Local: RoleSimulatedProxy, Remote: RoleAuthority}
}

// ListenServerRoles はホスト自身が操作するキャラクターの役割です。
// 権限側とローカル操作側の両方の通知が同じプロセスで発生します。
func ListenServerRoles() NetRoles {
	return NetRoles{Local: RoleAuthority, Remote: RoleSimulatedProxy, LocallyControlled: true}
}
