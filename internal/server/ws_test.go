package server

import (
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"snct-watcher/internal/model"
)

func dialSubscribe(t *testing.T, httpURL string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(httpURL, "http") + "/ws/appointments"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type wsReply struct {
	Status  int                 `json:"status"`
	Message string              `json:"message"`
	Added   []model.Appointment `json:"added"`
	Removed []model.Appointment `json:"removed"`
}

func readReply(t *testing.T, conn *websocket.Conn) wsReply {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var reply wsReply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read reply: %v", err)
	}
	return reply
}

const validCriteria = `[{
	"user_type": "PRIVATE",
	"control_type": "REGULAR",
	"vehicle_type": "car",
	"organism": "snct",
	"site": "esch_sur_alzette",
	"start": "2026-03-01T00:00:00Z",
	"end": "2026-03-08T00:00:00Z"
}]`

func TestSubscribeInitialPush(t *testing.T) {
	ts, disp := newTestServer(t)
	seedSlots(disp,
		time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC), // outside the window
	)

	conn := dialSubscribe(t, ts.URL)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(validCriteria)); err != nil {
		t.Fatalf("write criteria: %v", err)
	}

	reply := readReply(t, conn)
	if reply.Status != 200 {
		t.Fatalf("status = %d, want 200 (message %q)", reply.Status, reply.Message)
	}
	if len(reply.Added) != 1 {
		t.Fatalf("added = %v, want the one slot inside the window", reply.Added)
	}
	if reply.Added[0].Site != "esch_sur_alzette" {
		t.Errorf("added[0] = %+v", reply.Added[0])
	}
	if len(reply.Removed) != 0 {
		t.Errorf("removed = %v, want empty", reply.Removed)
	}
}

func TestSubscribeReceivesDiffs(t *testing.T) {
	ts, disp := newTestServer(t)
	seedSlots(disp, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	conn := dialSubscribe(t, ts.URL)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(validCriteria)); err != nil {
		t.Fatalf("write criteria: %v", err)
	}
	readReply(t, conn) // initial push

	// New cycle: 10:00 disappears, 11:00 appears.
	seedSlots(disp, time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC))

	reply := readReply(t, conn)
	if len(reply.Added) != 1 || !reply.Added[0].Timestamp.Equal(time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)) {
		t.Errorf("added = %v, want [11:00]", reply.Added)
	}
	if len(reply.Removed) != 1 || !reply.Removed[0].Timestamp.Equal(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("removed = %v, want [10:00]", reply.Removed)
	}
}

func TestSubscribeInvalidCriteria(t *testing.T) {
	ts, _ := newTestServer(t)

	conn := dialSubscribe(t, ts.URL)
	bad := strings.Replace(validCriteria, `"snct"`, `"dekra"`, 1)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(bad)); err != nil {
		t.Fatalf("write criteria: %v", err)
	}

	reply := readReply(t, conn)
	if reply.Status != 400 {
		t.Fatalf("status = %d, want 400", reply.Status)
	}
	if !strings.Contains(reply.Message, "organism") {
		t.Errorf("message = %q, should name the organism field", reply.Message)
	}

	// The stream stays usable after a validation error.
	if err := conn.WriteMessage(websocket.TextMessage, []byte(validCriteria)); err != nil {
		t.Fatalf("write criteria after error: %v", err)
	}
	if reply := readReply(t, conn); reply.Status != 200 {
		t.Errorf("status after recovery = %d, want 200", reply.Status)
	}
}

func TestSubscribeMalformedPayload(t *testing.T) {
	ts, _ := newTestServer(t)

	conn := dialSubscribe(t, ts.URL)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"not":"an array"`)); err != nil {
		t.Fatalf("write payload: %v", err)
	}

	reply := readReply(t, conn)
	if reply.Status != 500 {
		t.Errorf("status = %d, want 500", reply.Status)
	}
}

func TestSubscribeDisconnectUnregisters(t *testing.T) {
	ts, disp := newTestServer(t)
	seedSlots(disp, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	conn := dialSubscribe(t, ts.URL)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(validCriteria)); err != nil {
		t.Fatalf("write criteria: %v", err)
	}
	readReply(t, conn)

	if disp.SubscriberCount() != 1 {
		t.Fatalf("SubscriberCount = %d, want 1", disp.SubscriberCount())
	}

	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for disp.SubscriberCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscription was not unregistered after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
