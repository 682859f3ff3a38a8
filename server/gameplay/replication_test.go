package gameplay_test

import (
	"context"
	"testing"

	"thirdpersonmp/server/gameplay"
)

func TestHub_DeliversToAllObservers(t *testing.T) {
	hub := gameplay.NewHub()
	var a, b []float32
	hub.Observer().OnRemoteUpdate(gameplay.FieldCurrentHealth, func(_ context.Context, v float32) { a = append(a, v) })
	hub.Observer().OnRemoteUpdate(gameplay.FieldCurrentHealth, func(_ context.Context, v float32) { b = append(b, v) })

	hub.Authority().Publish(context.Background(), gameplay.FieldCurrentHealth, 42)

	if len(a) != 1 || a[0] != 42 || len(b) != 1 || b[0] != 42 {
		t.Fatalf("deliveries a=%v b=%v", a, b)
	}
}

// 観測者側のPublishは他へ伝搬しない
func TestReplicaChannel_PublishIsIgnored(t *testing.T) {
	c := gameplay.NewReplicaChannel()
	called := false
	c.OnRemoteUpdate(gameplay.FieldCurrentHealth, func(context.Context, float32) { called = true })

	c.Publish(context.Background(), gameplay.FieldCurrentHealth, 1)
	if called {
		t.Fatalf("publish on observer should not deliver")
	}
	c.Deliver(context.Background(), gameplay.FieldCurrentHealth, 1)
	if !called {
		t.Fatalf("deliver should reach the handler")
	}
}
