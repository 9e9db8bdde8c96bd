package realtime

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubDeliversInOrderAndClosesOnDisconnect(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	userID := uuid.New()
	channel := UserChannel(userID)

	clientA := hub.NewSSEClient(userID)
	hub.AddChannel(clientA, channel)

	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventNotificationCreated, Data: map[string]any{"seq": 1}})
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventNotificationCreated, Data: map[string]any{"seq": 2}})

	first := recvMessage(t, clientA.Outbound, time.Second)
	second := recvMessage(t, clientA.Outbound, time.Second)
	if first.Data.(map[string]any)["seq"] != 1 || second.Data.(map[string]any)["seq"] != 2 {
		t.Fatalf("messages out of order: %v %v", first, second)
	}

	hub.CloseClient(clientA)
	if _, ok := <-clientA.Outbound; ok {
		t.Fatalf("outbound should be closed after disconnect")
	}
	if hub.Subscribers(channel) != 0 {
		t.Fatalf("channel should have no subscribers")
	}
}

func TestGroupChannelIsolation(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	admin := hub.NewSSEClient(uuid.New())
	student := hub.NewSSEClient(uuid.New())
	hub.AddChannel(admin, GroupChannel("admin"))
	hub.AddChannel(student, GroupChannel("student"))

	hub.Broadcast(SSEMessage{Channel: GroupChannel("Admin"), Event: SSEEventNotificationCreated})
	recvMessage(t, admin.Outbound, time.Second)
	select {
	case msg := <-student.Outbound:
		t.Fatalf("student must not receive admin broadcast: %v", msg)
	default:
	}
}

type failingRelay struct{ calls int }

func (r *failingRelay) Publish(context.Context, SSEMessage) error {
	r.calls++
	return errors.New("redis down")
}

func TestPublisherFallsBackToLocalHub(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, "group:admin")

	relay := &failingRelay{}
	NewPublisher(logger.Nop(), hub, relay).Publish(context.Background(), SSEMessage{Channel: "group:admin", Event: SSEEventNotificationCreated})
	if relay.calls != 1 {
		t.Fatalf("relay should be tried first")
	}
	recvMessage(t, client.Outbound, time.Second)
}

func TestServeHTTPStreamsEvents(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, "c")

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		hub.ServeHTTP(rec, req, client)
		close(done)
	}()

	hub.Broadcast(SSEMessage{Channel: "c", Event: SSEEventNotificationCreated, Data: "hello"})
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	if !strings.Contains(body, "event: NotificationCreated") || !strings.Contains(body, `"data":"hello"`) {
		t.Fatalf("unexpected stream body %q", body)
	}
	if rec.Header().Get("Content-Type") != "text/event-stream" {
		t.Fatalf("missing event-stream content type")
	}
}
