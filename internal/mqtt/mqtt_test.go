package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/sos-beacon/internal/logic"
)

func TestFormatPayload(t *testing.T) {
	event := logic.Event{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Type:      logic.EventMessageStart,
		Mode:      logic.ModeOK,
		Active:    logic.ModeOK,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"beacon":{"timestamp":"2026-02-02T22:18:12Z","event":"MESSAGE_START","mode":"OK","active":"OK"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", payload, expected)
	}
}

func TestFormatPayloadAllEventTypes(t *testing.T) {
	tests := []struct {
		eventType  logic.EventType
		mode       logic.Mode
		active     logic.Mode
		wantEvent  string
		wantMode   string
		wantActive string
	}{
		{logic.EventMessageStart, logic.ModeSOS, logic.ModeSOS, "MESSAGE_START", "SOS", "SOS"},
		{logic.EventMessageEnd, logic.ModeOK, logic.ModeOK, "MESSAGE_END", "OK", "OK"},
		{logic.EventModeChange, logic.ModeOK, logic.ModeSOS, "MODE_CHANGE", "OK", "SOS"},
	}

	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			payload, err := FormatPayload(logic.Event{
				Timestamp: time.Now(),
				Type:      tt.eventType,
				Mode:      tt.mode,
				Active:    tt.active,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var parsed Payload
			if err := json.Unmarshal(payload, &parsed); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}

			if parsed.Beacon.Event != tt.wantEvent {
				t.Errorf("event: got %s, want %s", parsed.Beacon.Event, tt.wantEvent)
			}
			if parsed.Beacon.Mode != tt.wantMode {
				t.Errorf("mode: got %s, want %s", parsed.Beacon.Mode, tt.wantMode)
			}
			if parsed.Beacon.Active != tt.wantActive {
				t.Errorf("active: got %s, want %s", parsed.Beacon.Active, tt.wantActive)
			}
		})
	}
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	payload, err := FormatPayload(logic.Event{
		Timestamp: time.Date(2026, 2, 3, 12, 0, 0, 0, loc),
		Type:      logic.EventMessageEnd,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	json.Unmarshal(payload, &parsed)
	if parsed.Beacon.Timestamp != "2026-02-03T10:00:00Z" {
		t.Errorf("timestamp not converted to UTC: %s", parsed.Beacon.Timestamp)
	}
}

func TestFormatSystemPayloadExactJSON(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 3, 10, 30, 45, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-03T10:30:45Z","event":"SHUTDOWN","reason":"SIGTERM"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", payload, expected)
	}
}

func TestFormatSystemPayloadOmitsEmptyReason(t *testing.T) {
	payload, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Date(2026, 2, 3, 19, 5, 51, 0, time.UTC),
		Event:     "RECONNECTED",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed map[string]map[string]interface{}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, exists := parsed["system"]["reason"]; exists {
		t.Error("reason field should be omitted when empty")
	}
}

func TestFormatSystemPayloadRawPassthrough(t *testing.T) {
	raw := []byte(`{"status":{"event":"STARTUP"}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: "STARTUP", RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("expected raw payload, got %s", payload)
	}
}

func TestTopics(t *testing.T) {
	if Topic != "beacon/sos/events" {
		t.Errorf("unexpected topic: %s", Topic)
	}
	if TopicSystem != "beacon/sos/system" {
		t.Errorf("unexpected system topic: %s", TopicSystem)
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()

	events := []logic.Event{
		{Timestamp: time.Now(), Type: logic.EventMessageStart},
		{Timestamp: time.Now(), Type: logic.EventModeChange, Mode: logic.ModeOK},
		{Timestamp: time.Now(), Type: logic.EventMessageEnd},
	}
	for _, e := range events {
		if err := f.Publish(e); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if len(f.Events) != 3 || len(f.Payloads) != 3 {
		t.Fatalf("expected 3 events and payloads, got %d/%d", len(f.Events), len(f.Payloads))
	}
	for i, e := range events {
		if f.Events[i].Type != e.Type {
			t.Errorf("event %d: got %s, want %s", i, f.Events[i].Type, e.Type)
		}
	}
	if got := f.EventsOfType(logic.EventModeChange); len(got) != 1 || got[0].Mode != logic.ModeOK {
		t.Errorf("EventsOfType(MODE_CHANGE): got %v", got)
	}
}

func TestFakePublisherErrors(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("simulated error")
	f.PublishSystemError = errors.New("simulated system error")

	if err := f.Publish(logic.Event{Type: logic.EventMessageStart}); err == nil {
		t.Error("expected Publish error")
	}
	if err := f.PublishSystem(SystemEvent{Event: "STARTUP"}); err == nil {
		t.Error("expected PublishSystem error")
	}
	if len(f.Events) != 0 || len(f.SystemEvents) != 0 {
		t.Error("expected nothing recorded on error")
	}
}

func TestFakePublisherPublishSystem(t *testing.T) {
	f := NewFakePublisher()

	err := f.PublishSystem(SystemEvent{
		Timestamp: time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC),
		Event:     "HEARTBEAT",
		Retained:  true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.SystemEvents) != 1 || !f.SystemEvents[0].Retained {
		t.Fatalf("unexpected system events: %+v", f.SystemEvents)
	}
	var parsed SystemPayload
	if err := json.Unmarshal(f.SystemPayloads[0], &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.System.Event != "HEARTBEAT" {
		t.Errorf("event: got %s, want HEARTBEAT", parsed.System.Event)
	}
}

func TestFakePublisherCloseAndConnected(t *testing.T) {
	f := NewFakePublisher()

	if f.IsConnected() {
		t.Error("should not be connected by default")
	}
	f.Connected = true
	if !f.IsConnected() {
		t.Error("expected IsConnected=true")
	}

	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}

	if err := p.Publish(logic.Event{}); err != nil {
		t.Errorf("Publish: %v", err)
	}
	if err := p.PublishSystem(SystemEvent{}); err != nil {
		t.Errorf("PublishSystem: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if (NopPublisher{}).IsConnected() {
		t.Error("NopPublisher should never report connected")
	}
}
