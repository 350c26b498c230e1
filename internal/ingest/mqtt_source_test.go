package ingest

import (
	"testing"
)

// fakeSubscriber captures the handler so tests can inject messages.
type fakeSubscriber struct {
	topic   string
	handler func(topic string, payload []byte)
}

func (f *fakeSubscriber) Subscribe(topic string, handler func(string, []byte)) error {
	f.topic = topic
	f.handler = handler
	return nil
}

func TestMQTTSource_EnqueuesPublishedEvent(t *testing.T) {
	q := NewQueue()
	src := NewMQTTSource(q, nopLogger{})

	sub := &fakeSubscriber{}
	if err := src.Start(sub); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if sub.topic != "andon/+/event" {
		t.Errorf("subscribed topic = %q, want %q", sub.topic, "andon/+/event")
	}

	sub.handler("andon/press1/event",
		[]byte(`{"device_name": "press1", "pin": 25, "state": "on", "time_diff_sec": 1.5, "timestamp": "2026-03-14 09:26:53.589"}`))

	e, ok := q.TryDequeue()
	if !ok {
		t.Fatal("no entry enqueued")
	}
	if e.Device != "press1" {
		t.Errorf("device = %q, want %q", e.Device, "press1")
	}
	if e.Event.Pin != 25 || e.Event.State != "on" {
		t.Errorf("event = %+v, want pin 25 state on", e.Event)
	}
}

func TestMQTTSource_DeviceNameFromTopic(t *testing.T) {
	q := NewQueue()
	src := NewMQTTSource(q, nopLogger{})

	sub := &fakeSubscriber{}
	if err := src.Start(sub); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Minimal payload: device name comes from the topic instead.
	sub.handler("andon/press7/event", []byte(`{"pin": 23, "state": "off"}`))

	e, ok := q.TryDequeue()
	if !ok {
		t.Fatal("no entry enqueued")
	}
	if e.Device != "press7" {
		t.Errorf("device = %q, want %q", e.Device, "press7")
	}
}

func TestMQTTSource_DropsMalformedPayload(t *testing.T) {
	q := NewQueue()
	src := NewMQTTSource(q, nopLogger{})

	sub := &fakeSubscriber{}
	if err := src.Start(sub); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	for _, payload := range []string{"", "{not json", `["array"]`, "42"} {
		sub.handler("andon/press1/event", []byte(payload))
	}

	if got := q.Len(); got != 0 {
		t.Errorf("queue length = %d after malformed payloads, want 0", got)
	}
}

func TestDeviceFromTopic(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"andon/press1/event", "press1"},
		{"andon/line-3/event", "line-3"},
		{"andon/press1/status", ""},
		{"other/press1/event", ""},
		{"andon/event", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := deviceFromTopic(tt.topic); got != tt.want {
			t.Errorf("deviceFromTopic(%q) = %q, want %q", tt.topic, got, tt.want)
		}
	}
}
