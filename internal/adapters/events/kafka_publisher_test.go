package events

import (
	"testing"

	"github.com/viralforge/view-reward-engine/internal/ports"
)

func TestKafkaPublisher_TopicRouting(t *testing.T) {
	t.Parallel()
	pub, err := NewKafkaPublisher([]string{"localhost:9092"}, Topics{
		ViewCounted:   "analytics.views",
		MilestonePaid: "analytics.rewards",
		CreatorNotify: "notifications.creators",
	})
	if err != nil {
		t.Fatalf("NewKafkaPublisher error: %v", err)
	}

	cases := []struct {
		eventType string
		want      string
	}{
		{ports.EventViewCounted, "analytics.views"},
		{ports.EventMilestonePaid, "analytics.rewards"},
		{ports.EventCreatorNotify, "notifications.creators"},
	}
	for _, tc := range cases {
		topic, err := pub.topicFor(tc.eventType)
		if err != nil {
			t.Fatalf("topicFor(%s) error: %v", tc.eventType, err)
		}
		if topic != tc.want {
			t.Fatalf("topicFor(%s) = %q, want %q", tc.eventType, topic, tc.want)
		}
	}

	if _, err := pub.topicFor("mystery_event"); err == nil {
		t.Fatalf("expected error for unknown event type")
	}

	empty, err := NewKafkaPublisher([]string{"localhost:9092"}, Topics{})
	if err != nil {
		t.Fatalf("NewKafkaPublisher error: %v", err)
	}
	if _, err := empty.topicFor(ports.EventViewCounted); err == nil {
		t.Fatalf("expected error for unconfigured topic")
	}

	if _, err := NewKafkaPublisher(nil, Topics{}); err == nil {
		t.Fatalf("expected error for missing brokers")
	}
}
