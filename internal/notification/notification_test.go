package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisNotifierPublishes(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	sub := client.Subscribe(ctx, DefaultChannel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	n := NewRedisNotifier(client, "")
	if err := n.Send(ctx, Message{Kind: KindZapReceived, Destination: "u2", Body: "hi", AmountSat: 21}); err != nil {
		t.Fatalf("send: %v", err)
	}

	recvCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	msg, err := sub.ReceiveMessage(recvCtx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	var got Message
	if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Kind != KindZapReceived || got.Destination != "u2" || got.AmountSat != 21 || got.SentAt.IsZero() {
		t.Fatalf("unexpected message %+v", got)
	}
}

type failingNotifier struct{ calls int }

func (f *failingNotifier) Send(context.Context, Message) error {
	f.calls++
	return errors.New("down")
}

func TestFanoutDeliversToAll(t *testing.T) {
	a, b := &failingNotifier{}, &failingNotifier{}
	err := Fanout{a, nil, b, NewLoggerNotifier(nil)}.Send(context.Background(), Message{Kind: KindZapReceived})
	if err == nil {
		t.Fatal("expected first error to surface")
	}
	if a.calls != 1 || b.calls != 1 {
		t.Fatalf("expected both notifiers called, got %d and %d", a.calls, b.calls)
	}
}
