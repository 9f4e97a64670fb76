package ws

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Bridge fan-out qua Redis pub/sub để chạy được nhiều instance.
// Không cấu hình REDIS_ADDR thì mọi event chỉ broadcast local.

const redisChannel = "notes-ninja:ws-events"

type wsEvent struct {
	Scope   string          `json:"scope"` // "document" | "user" | "global"
	Target  string          `json:"target,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

var rdb *redis.Client

// InitRedisBridge kết nối Redis và chạy subscriber nền.
// Gọi 1 lần lúc khởi động, sau khi hub sẵn sàng.
func InitRedisBridge(ctx context.Context) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Println("REDIS_ADDR trống, websocket chạy chế độ single-instance")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	if err := client.Ping(ctx).Err(); err != nil {
		log.Println("Không kết nối được Redis, websocket chạy chế độ single-instance:", err)
		client.Close()
		return
	}

	rdb = client
	go subscribeLoop(ctx)
	log.Println("Redis bridge đã bật, channel:", redisChannel)
}

func subscribeLoop(ctx context.Context) {
	sub := rdb.Subscribe(ctx, redisChannel)
	defer sub.Close()

	for {
		msg, err := sub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if strings.Contains(err.Error(), "closed") {
				return
			}
			log.Println("Redis subscribe error:", err)
			continue
		}

		var ev wsEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			log.Println("Bỏ qua event không hợp lệ:", err)
			continue
		}
		deliverLocal(ev)
	}
}

func deliverLocal(ev wsEvent) {
	switch ev.Scope {
	case "document":
		H.Broadcast(ev.Target, ev.Payload)
	case "user":
		H.BroadcastUser(ev.Target, ev.Payload)
	case "global":
		H.BroadcastGlobal(ev.Payload)
	}
}

// publish đẩy event qua Redis nếu có, không thì broadcast local luôn.
// Khi đi qua Redis thì chính instance này cũng nhận lại qua subscribe,
// nên không broadcast local 2 lần.
func publish(ev wsEvent) {
	if rdb == nil {
		deliverLocal(ev)
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	if err := rdb.Publish(context.Background(), redisChannel, data).Err(); err != nil {
		log.Println("Redis publish error, fallback local:", err)
		deliverLocal(ev)
	}
}

func PublishDocumentEvent(docID string, payload []byte) {
	publish(wsEvent{Scope: "document", Target: docID, Payload: payload})
}

func PublishUserEvent(userID string, payload []byte) {
	publish(wsEvent{Scope: "user", Target: userID, Payload: payload})
}

func PublishGlobalEvent(payload []byte) {
	publish(wsEvent{Scope: "global", Payload: payload})
}
