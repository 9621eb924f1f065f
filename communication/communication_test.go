package communication

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	natsserver "github.com/nats-io/nats-server/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NethermindEth/magi/core"
)

func testSession() *core.Session {
	return core.NewSession("evacuate tokyo-3", core.ValidVerdict(core.Votes{
		Melchior:  core.Vote{Vote: true, Reason: "Scientific Validity"},
		Balthasar: core.Vote{Vote: true, Reason: "Human Safety"},
		Casper:    core.Vote{Vote: true, Reason: "Intuition"},
	}), core.SourceSimulation)
}

func TestSessionEvent(t *testing.T) {
	assert.Equal(t, EventVerdict, SessionEvent(testSession()).Type)

	invalid := core.NewSession("hi", core.InvalidVerdict("INSUFFICIENT DATA / GREETING DETECTED"), core.SourceSimulation)
	assert.Equal(t, EventInvalidProposal, SessionEvent(invalid).Type)

	s := testSession()
	ev := ReportEvent(s.ID, "FINAL DIRECTIVE")
	assert.Equal(t, EventReportReady, ev.Type)
	assert.Equal(t, map[string]string{"session_id": s.ID, "report": "FINAL DIRECTIVE"}, ev.Payload)
}

type failingPublisher struct{ err error }

func (f failingPublisher) Publish(context.Context, Event) error { return f.err }

func TestPublishersJoinErrors(t *testing.T) {
	down := errors.New("nats down")
	ps := Publishers{failingPublisher{}, failingPublisher{err: down}}
	assert.ErrorIs(t, ps.Publish(context.Background(), NewEvent(EventVerdict, nil)), down)
	assert.NoError(t, Publishers{failingPublisher{}}.Publish(context.Background(), NewEvent(EventVerdict, nil)))
}

func TestWebSocketBroadcast(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewWebSocketManager(nil)
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_ = hub.Register(r.Context(), conn)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	s := testSession()
	require.NoError(t, hub.Publish(ctx, SessionEvent(s)))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got struct {
		Type    string       `json:"type"`
		Payload core.Session `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, EventVerdict, got.Type)
	assert.Equal(t, s.ID, got.Payload.ID)
	assert.Equal(t, "UNANIMOUS APPROVAL", got.Payload.Outcome.Label)
}

func TestWebSocketStopped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewWebSocketManager(nil)

	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	// fill the buffer so Publish has to observe the stopped hub
	for i := 0; i < cap(hub.broadcast); i++ {
		hub.broadcast <- NewEvent(EventVerdict, nil)
	}
	assert.ErrorIs(t, hub.Publish(context.Background(), NewEvent(EventVerdict, nil)), ErrHubStopped)
}

func TestMessengerPublish(t *testing.T) {
	srv := natsserver.RunRandClientPortServer()
	defer srv.Shutdown()

	m, err := NewMessenger(srv.ClientURL(), "", nil)
	require.NoError(t, err)
	defer m.Close()

	nc, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	defer nc.Close()

	sub, err := nc.SubscribeSync("magi.council.>")
	require.NoError(t, err)
	require.NoError(t, nc.Flush())

	s := testSession()
	require.NoError(t, m.Publish(context.Background(), SessionEvent(s)))

	msg, err := sub.NextMsg(2 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "magi.council.VERDICT", msg.Subject)

	var ev struct {
		Type    string       `json:"type"`
		Payload core.Session `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(msg.Data, &ev))
	assert.Equal(t, s.ID, ev.Payload.ID)
}

func TestMessengerSubscribe(t *testing.T) {
	srv := natsserver.RunRandClientPortServer()
	defer srv.Shutdown()

	m, err := NewMessenger(srv.ClientURL(), "nerv", nil)
	require.NoError(t, err)
	defer m.Close()

	received := make(chan *nats.Msg, 1)
	_, err = m.Subscribe(EventReportReady, func(msg *nats.Msg) { received <- msg })
	require.NoError(t, err)
	require.NoError(t, m.NC.Flush())

	require.NoError(t, m.Publish(context.Background(), ReportEvent("id", "report")))

	select {
	case msg := <-received:
		assert.Equal(t, "nerv.REPORT_READY", msg.Subject)
	case <-time.After(2 * time.Second):
		t.Fatal("report event not delivered")
	}
}

func TestMessengerConnectFailure(t *testing.T) {
	_, err := NewMessenger("nats://127.0.0.1:1", "", nil)
	assert.Error(t, err)
}
