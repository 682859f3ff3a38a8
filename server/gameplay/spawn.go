package gameplay

import (
	"context"
	"errors"
)

// ErrNoProjectileClass は発射する弾の定義が設定されていない場合のエラーです。
var ErrNoProjectileClass = errors.New("no projectile class configured")

// SpawnRequest は弾生成の要求です。
type SpawnRequest struct {
	Transform  Transform
	Owner      EntityID
	Instigator EntityID
}

// EntityFactory はエンティティ生成を担う外部コラボレーターです。
// 戻り値のIDは参照するだけで、生成されたエンティティの中身には触れません。
type EntityFactory interface {
	SpawnProjectile(ctx context.Context, req SpawnRequest) (EntityID, error)
}

// FireRouter は非権限コンテキストからの発射要求を権限側へ転送します。
// 信頼性のある配送を前提とし、確認応答や再送は行いません。
type FireRouter interface {
	ServerHandleFire(ctx context.Context, owner EntityID) error
}
