package ingest

import (
	"bytes"
	"strings"
	"time"

	"github.com/nerrad567/andon-core/internal/event"
)

// eventTopicFilter matches per-device event topics: andon/<device>/event.
const eventTopicFilter = "andon/+/event"

// Subscriber is the broker surface the MQTT source needs.
type Subscriber interface {
	Subscribe(topic string, handler func(topic string, payload []byte)) error
}

// MQTTSource feeds events published over MQTT into the queue.
//
// Payloads use the same JSON document as the TCP protocol. The device name
// is taken from the payload when present, falling back to the topic's
// device segment, so minimal publishers can omit device_name entirely.
type MQTTSource struct {
	queue  *Queue
	logger Logger
	now    func() time.Time
}

// NewMQTTSource creates a source enqueueing into queue.
func NewMQTTSource(queue *Queue, logger Logger) *MQTTSource {
	return &MQTTSource{
		queue:  queue,
		logger: logger,
		now:    time.Now,
	}
}

// Start subscribes to the event topic filter. Messages flow until the
// subscriber disconnects; there is no separate stop.
func (s *MQTTSource) Start(sub Subscriber) error {
	return sub.Subscribe(eventTopicFilter, s.handleMessage)
}

// handleMessage decodes one published event and enqueues it. Malformed
// payloads are logged and dropped; MQTT has no reply channel to report
// them on.
func (s *MQTTSource) handleMessage(topic string, payload []byte) {
	msg, err := event.DecodeMessage(bytes.NewReader(payload), s.now)
	if err != nil {
		s.logger.Error("dropping malformed mqtt event",
			"topic", topic,
			"error", err,
		)
		return
	}

	device := msg.DeviceName
	if device == event.DefaultDeviceName {
		if fromTopic := deviceFromTopic(topic); fromTopic != "" {
			device = fromTopic
		}
	}

	s.queue.Enqueue(Entry{Device: device, Event: msg.Event()})

	s.logger.Debug("mqtt event queued", "device", device, "topic", topic)
}

// deviceFromTopic extracts the device segment from andon/<device>/event.
// Returns "" when the topic does not have that shape.
func deviceFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "andon" || parts[2] != "event" {
		return ""
	}
	return parts[1]
}
