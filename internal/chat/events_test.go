package chat

import (
	"strings"
	"testing"
	"time"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want string
	}{
		{
			name: "system message",
			ev:   SystemMessage("bob joined"),
			want: `{"event":"system message","data":"bob joined"}`,
		},
		{
			name: "chat closed has no payload",
			ev:   Event{Name: EventChatClosed},
			want: `{"event":"chat closed"}`,
		},
		{
			name: "chat message record",
			ev: Event{Name: EventChatMessage, Data: Message{
				Username: "alice",
				Msg:      "hello",
				Time:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			}},
			want: `{"event":"chat message","data":{"username":"alice","msg":"hello","time":"2024-05-01T12:00:00Z"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.ev)
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Encode() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEncodeRejectsUnmarshalablePayload(t *testing.T) {
	_, err := Encode(Event{Name: "bad", Data: make(chan int)})
	if err == nil || !strings.Contains(err.Error(), `"bad"`) {
		t.Errorf("Expected an error naming the event, got %v", err)
	}
}

func TestDecode(t *testing.T) {
	f, err := Decode([]byte(`{"event":"join","data":{"code":"abc123"}}`))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if f.Event != EventJoin || string(f.Data) != `{"code":"abc123"}` {
		t.Errorf("Unexpected frame %+v", f)
	}

	if _, err := Decode([]byte("hello")); err == nil {
		t.Error("Expected an error for a non-JSON frame")
	}
}

func TestNewConnIDIsUnique(t *testing.T) {
	seen := make(map[ConnID]bool)
	for i := 0; i < 100; i++ {
		id := NewConnID()
		if id == "" || seen[id] {
			t.Fatalf("Duplicate or empty id %q", id)
		}
		seen[id] = true
	}
}
