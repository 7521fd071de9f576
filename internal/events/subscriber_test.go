package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"

	"github.com/alfredjeanlab/switchboard/internal/idgen"
	"github.com/alfredjeanlab/switchboard/internal/model"
)

// startTestNATS starts an embedded NATS server and returns its client URL.
func startTestNATS(t *testing.T) string {
	t.Helper()
	opts := &natsserver.Options{Host: "127.0.0.1", Port: -1}
	srv, err := natsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("starting embedded NATS: %v", err)
	}
	srv.Start()
	t.Cleanup(srv.Shutdown)
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("embedded NATS not ready")
	}
	return srv.ClientURL()
}

func newPubSub(t *testing.T) (*NATSPublisher, *NATSSubscriber) {
	t.Helper()
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url, "test-publisher")
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	t.Cleanup(func() { pub.Close() })

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	t.Cleanup(func() { sub.Close() })
	return pub, sub
}

func TestPublishStateChanged(t *testing.T) {
	pub, sub := newPubSub(t)

	ch, cancel, err := sub.Subscribe(TopicAgents)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	ev := AgentStateChanged{AgentID: 4, From: model.StateAvailable, To: model.StateOnCall, EventType: model.EventCallStarted, At: at}
	if err := pub.Publish(context.Background(), TopicAgentStateChanged, ev); err != nil {
		t.Fatalf("publishing: %v", err)
	}
	pub.conn.Flush()

	select {
	case msg := <-ch:
		if msg.Topic != TopicAgentStateChanged {
			t.Errorf("topic = %q, want %q", msg.Topic, TopicAgentStateChanged)
		}
		var got AgentStateChanged
		if err := json.Unmarshal(msg.Data, &got); err != nil {
			t.Fatalf("decoding: %v", err)
		}
		if got.AgentID != 4 || got.To != model.StateOnCall || !got.At.Equal(at) {
			t.Errorf("got %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestPublish_CarriesRequestID(t *testing.T) {
	pub, sub := newPubSub(t)

	ch, cancel, err := sub.Subscribe(TopicAll)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	ctx := idgen.WithRequestID(context.Background(), "req-abc123")
	if err := pub.Publish(ctx, TopicAgentCreated, AgentCreated{Agent: &model.Agent{ID: 1}}); err != nil {
		t.Fatalf("publishing: %v", err)
	}
	if err := pub.Publish(context.Background(), TopicSkillDeleted, SkillDeleted{SkillID: 3}); err != nil {
		t.Fatalf("publishing: %v", err)
	}
	pub.conn.Flush()

	want := []string{"req-abc123", ""}
	for i, w := range want {
		select {
		case msg := <-ch:
			if msg.RequestID != w {
				t.Errorf("message %d request id = %q, want %q", i, msg.RequestID, w)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for message %d", i)
		}
	}
}

func TestSubscribe_AgentTopicsSkipSkillEvents(t *testing.T) {
	pub, sub := newPubSub(t)

	ch, cancel, err := sub.Subscribe(TopicAgents)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	ctx := context.Background()
	_ = pub.Publish(ctx, TopicSkillCreated, SkillChanged{Skill: &model.Skill{ID: 1, Name: "Sales"}})
	_ = pub.Publish(ctx, TopicAgentSkillsReplaced, AgentSkillsReplaced{AgentID: 2, Skills: []string{"1"}})
	pub.conn.Flush()

	select {
	case msg := <-ch:
		if msg.Topic != TopicAgentSkillsReplaced {
			t.Errorf("first message topic = %q, want %q", msg.Topic, TopicAgentSkillsReplaced)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestPublish_CanceledContext(t *testing.T) {
	pub, _ := newPubSub(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := pub.Publish(ctx, TopicAgentCreated, AgentCreated{}); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestNATSSubscriber_Cancel(t *testing.T) {
	_, sub := newPubSub(t)

	ch, cancel, err := sub.Subscribe(TopicAll)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}

	cancel()
	cancel() // second call must not panic

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed after cancel")
	}
}

func TestNATSSubscriber_CancelDuringMessages(t *testing.T) {
	pub, sub := newPubSub(t)

	ch, cancel, err := sub.Subscribe(TopicAll)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_ = pub.Publish(context.Background(), TopicAgentCreated, AgentCreated{})
		}
		pub.conn.Flush()
	}()

	cancel()
	<-done

	// Drain anything delivered before cancel; the channel must end closed.
	for range ch {
	}
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	if err := p.Publish(context.Background(), TopicAgentCreated, nil); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
