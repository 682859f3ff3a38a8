package domain_test

import (
	"context"
	"testing"

	"thirdpersonmp/server/domain"
)

func TestSimplePubSub_PublishSubscribe(t *testing.T) {
	ps := domain.NewSimplePubSub()
	topic := domain.SessionTopic(domain.NewSessionID())
	a := ps.Subscribe(topic)
	b := ps.Subscribe(topic)

	ps.Publish(context.Background(), topic, domain.Message{Data: []byte("x")})

	for _, ch := range []<-chan domain.Message{a, b} {
		select {
		case msg := <-ch:
			if string(msg.Data) != "x" {
				t.Fatalf("data = %q", msg.Data)
			}
		default:
			t.Fatalf("subscriber did not receive message")
		}
	}
}

func TestSimplePubSub_Unsubscribe(t *testing.T) {
	ps := domain.NewSimplePubSub()
	topic := domain.RoomTopic(domain.NewRoomID())
	ch := ps.Subscribe(topic)

	ps.Unsubscribe(topic, ch)
	if _, ok := <-ch; ok {
		t.Fatalf("channel should be closed after unsubscribe")
	}
	if ps.Subscribers(topic) != 0 {
		t.Fatalf("subscribers = %d, want 0", ps.Subscribers(topic))
	}
	// 購読者がいなくてもpanicしない
	ps.Publish(context.Background(), topic, domain.Message{})
}

func TestTopics(t *testing.T) {
	roomID := domain.NewRoomID()
	if got, want := domain.RoomCtrlTopic(roomID), domain.Topic("room:"+roomID.String()+":ctrl"); got != want {
		t.Fatalf("ctrl topic = %q, want %q", got, want)
	}
}
