package geom

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestFeedbackMapRoundTrip(t *testing.T) {
	original := FeedbackMap{
		0: {0},
		1: UnsetFeedback,
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var restored FeedbackMap
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if !reflect.DeepEqual(original, restored) {
		t.Errorf("round-trip mismatch: got %+v, want %+v", restored, original)
	}
}

func TestFeedbackMapOverlapsTranslatesSentinel(t *testing.T) {
	m := FeedbackMap{
		0: {3, 7},
		1: UnsetFeedback,
	}

	if got := m.Overlaps(0); !reflect.DeepEqual(got, []int{3, 7}) {
		t.Errorf("Overlaps(0) = %v, want [3 7]", got)
	}
	if got := m.Overlaps(1); got != nil {
		t.Errorf("Overlaps(1) = %v, want nil", got)
	}
	if got := m.Overlaps(99); got != nil {
		t.Errorf("Overlaps(99) (absent key) = %v, want nil", got)
	}
}
