package protocol

import (
	"strings"
	"testing"
)

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name    string
		msgType MessageType
		data    interface{}
		wantErr bool
	}{
		{
			name:    "action message",
			msgType: TypeAction,
			data:    PlannerAction{MajorID: 3, NodeName: "front_foot", ActionType: ActionStep},
		},
		{
			name:    "reached message",
			msgType: TypeReached,
			data:    ReachedData{ID: "abc", Action: "MOVE"},
		},
		{
			name:    "nil data",
			msgType: TypeStatus,
			data:    nil,
		},
		{
			name:    "unencodable data",
			msgType: TypeStatus,
			data:    make(chan int),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewMessage(tt.msgType, tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if msg.Type != tt.msgType {
				t.Errorf("NewMessage() type = %v, want %v", msg.Type, tt.msgType)
			}
			if msg.Timestamp == 0 {
				t.Error("NewMessage() timestamp should be set")
			}
		})
	}
}

func TestActionMessage_Wire(t *testing.T) {
	action := PlannerAction{MajorID: 7, NodeName: "rear_foot", ActionType: ActionStep, Theta: 0.3, X: -0.05, Y: 0.01}

	msg, err := NewActionMessage(action)
	if err != nil {
		t.Fatalf("NewActionMessage() error = %v", err)
	}
	data, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	for _, key := range []string{`"major_id":7`, `"node_name":"rear_foot"`, `"action_type":"STEP"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("encoded message %s missing %s", data, key)
		}
	}

	parsed, err := ParseMessage(data)
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}
	var got PlannerAction
	if err := parsed.ParseData(&got); err != nil {
		t.Fatalf("ParseData() error = %v", err)
	}
	if got != action {
		t.Errorf("ParseData() = %+v, want %+v", got, action)
	}
}

func TestParseMessage_Invalid(t *testing.T) {
	if _, err := ParseMessage([]byte("{not json")); err == nil {
		t.Error("ParseMessage() should fail on invalid JSON")
	}
}

func TestActionCSV(t *testing.T) {
	action := PlannerAction{MajorID: 12, NodeName: "middle_foot", ActionType: ActionStep, Theta: 1.5708, X: 0.1, Y: -0.25}

	line := EncodeActionCSV(action)
	if line != "12,middle_foot,STEP,1.5708,0.1000,-0.2500" {
		t.Fatalf("EncodeActionCSV() = %q", line)
	}

	got, err := ParseActionCSV(line + "\n")
	if err != nil {
		t.Fatalf("ParseActionCSV() error = %v", err)
	}
	if got != action {
		t.Errorf("ParseActionCSV() = %+v, want %+v", got, action)
	}
}

func TestParseActionCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"too few fields", "1,front_foot,STEP"},
		{"bad id", "x,front_foot,STEP,0,0,0"},
		{"bad type", "1,front_foot,JUMP,0,0,0"},
		{"bad float", "1,front_foot,STEP,0,abc,0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseActionCSV(tt.line); err == nil {
				t.Errorf("ParseActionCSV(%q) should fail", tt.line)
			}
		})
	}
}
