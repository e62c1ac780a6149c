package geom

import (
	"encoding/json"
	"reflect"
	"testing"
)

// A BBM serialized then deserialized must equal the original.
func TestBoundingBoxMapRoundTrip(t *testing.T) {
	original := BoundingBoxMap{
		0: box1D(0.5, 1.5),
		1: box1D(2.5, 2.9),
		2: PlaceholderSentinel(1),
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var restored BoundingBoxMap
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if !reflect.DeepEqual(original, restored) {
		t.Errorf("round-trip mismatch: got %+v, want %+v", restored, original)
	}
}

// Determinism: two maps with identical contents but different
// insertion order produce byte-identical JSON, because MarshalJSON always
// walks SortedRanks().
func TestBoundingBoxMapMarshalIsOrderIndependent(t *testing.T) {
	m1 := BoundingBoxMap{0: box1D(0, 1), 1: box1D(1, 2), 2: box1D(2, 3)}
	m2 := BoundingBoxMap{2: box1D(2, 3), 0: box1D(0, 1), 1: box1D(1, 2)}

	d1, err := json.Marshal(m1)
	if err != nil {
		t.Fatalf("Marshal m1: %v", err)
	}
	d2, err := json.Marshal(m2)
	if err != nil {
		t.Fatalf("Marshal m2: %v", err)
	}

	if string(d1) != string(d2) {
		t.Errorf("expected identical wire bytes regardless of map insertion order:\n%s\nvs\n%s", d1, d2)
	}
}

func TestSortedRanksAscending(t *testing.T) {
	m := BoundingBoxMap{5: box1D(0, 1), 1: box1D(0, 1), 3: box1D(0, 1)}
	got := m.SortedRanks()
	want := []int{1, 3, 5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortedRanks() = %v, want %v", got, want)
	}
}

func TestNewPlaceholderBoundingBoxMap(t *testing.T) {
	m := NewPlaceholderBoundingBoxMap(3, 2)
	if len(m) != 3 {
		t.Fatalf("len(m) = %d, want 3", len(m))
	}
	for rank := 0; rank < 3; rank++ {
		box, ok := m[rank]
		if !ok {
			t.Fatalf("missing rank %d", rank)
		}
		for _, iv := range box {
			if iv.Lo != -1 || iv.Hi != -1 {
				t.Errorf("rank %d: got %v, want placeholder {-1,-1}", rank, iv)
			}
		}
	}
}
