package amqp

import "testing"

func TestExpenseCreatedMessageRoundTrip(t *testing.T) {
	msg := NewExpenseCreatedMessage(42)
	if msg.ID != 42 {
		t.Errorf("id = %d, want 42", msg.ID)
	}
	if msg.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	decoded, err := ExpenseCreatedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	if decoded.ID != msg.ID {
		t.Errorf("decoded id = %d, want %d", decoded.ID, msg.ID)
	}
	if !decoded.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("decoded timestamp = %v, want %v", decoded.Timestamp, msg.Timestamp)
	}
}

func TestExpenseCreatedMessageFromInvalidJSON(t *testing.T) {
	if _, err := ExpenseCreatedMessageFromJSON([]byte("not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
