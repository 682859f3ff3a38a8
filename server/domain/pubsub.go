package domain

import (
	"context"
	"log/slog"
	"sync"
)

// Topic はPubSubの宛先です。
type Topic string

func SessionTopic(id SessionID) Topic { return Topic("session:" + id.String()) }

func RoomTopic(id RoomID) Topic { return Topic("room:" + id.String()) }

func RoomCtrlTopic(id RoomID) Topic { return Topic("room:" + id.String() + ":ctrl") }

// Message はトピックに流れるメッセージです。
type Message struct {
	SessionID SessionID
	Data      []byte
}

// PubSub はセッションとルームをつなぐメッセージバスです。
type PubSub interface {
	Publish(ctx context.Context, topic Topic, msg Message)
	Subscribe(topic Topic) <-chan Message
	Unsubscribe(topic Topic, ch <-chan Message)
}

const subscriberBuffer = 1024

// SimplePubSub はプロセス内で完結するPubSubです。
// 購読者のバッファが満杯の場合はメッセージを捨てます。
type SimplePubSub struct {
	mu     sync.RWMutex
	topics map[Topic][]chan Message
}

var _ PubSub = (*SimplePubSub)(nil)

func NewSimplePubSub() *SimplePubSub {
	return &SimplePubSub{topics: make(map[Topic][]chan Message)}
}

func (p *SimplePubSub) Publish(ctx context.Context, topic Topic, msg Message) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, ch := range p.topics[topic] {
		select {
		case ch <- msg:
		default:
			slog.WarnContext(ctx, "pubsub: subscriber full, message dropped", "topic", topic)
		}
	}
}

func (p *SimplePubSub) Subscribe(topic Topic) <-chan Message {
	ch := make(chan Message, subscriberBuffer)
	p.mu.Lock()
	p.topics[topic] = append(p.topics[topic], ch)
	p.mu.Unlock()
	return ch
}

// Unsubscribe は購読を解除してチャネルを閉じます。
func (p *SimplePubSub) Unsubscribe(topic Topic, ch <-chan Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	subs := p.topics[topic]
	for i, c := range subs {
		if c == ch {
			close(c)
			p.topics[topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(p.topics[topic]) == 0 {
		delete(p.topics, topic)
	}
}

// Subscribers はトピックの購読者数を返します。
func (p *SimplePubSub) Subscribers(topic Topic) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.topics[topic])
}
