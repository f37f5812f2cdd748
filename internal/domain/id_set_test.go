package domain

import (
	"reflect"
	"testing"
)

func TestNewIDSetDropsDuplicatesAndBlanks(t *testing.T) {
	set := NewIDSet("a", "b", "", "a", "c")
	if got := set.IDs(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected ids %v", got)
	}
}

func TestIDSetIntersectKeepsReceiverOrder(t *testing.T) {
	left := NewIDSet("I3", "I1", "I2")
	right := NewIDSet("I2", "I3", "I9")

	got := left.Intersect(right).IDs()
	if !reflect.DeepEqual(got, []string{"I3", "I2"}) {
		t.Fatalf("expected [I3 I2], got %v", got)
	}
}

func TestIDSetIntersectWithEmptyIsEmpty(t *testing.T) {
	got := NewIDSet("a").Intersect(NewIDSet())
	if got.Len() != 0 {
		t.Fatalf("expected empty intersection, got %v", got.IDs())
	}
}

func TestIntersectPtrTreatsNilAsUnconstrained(t *testing.T) {
	a := NewIDSet("x", "y")
	if IntersectPtr(nil, nil) != nil {
		t.Fatalf("expected nil for two unconstrained operands")
	}
	if got := IntersectPtr(&a, nil); got == nil || !got.Equal(a) {
		t.Fatalf("expected copy of left operand, got %v", got)
	}
	b := NewIDSet("y", "z")
	got := IntersectPtr(&a, &b)
	if got == nil || !reflect.DeepEqual(got.IDs(), []string{"y"}) {
		t.Fatalf("expected [y], got %v", got)
	}
}

func TestZeroIDSetIsUsable(t *testing.T) {
	var set IDSet
	if set.Contains("a") || set.Len() != 0 {
		t.Fatalf("zero set should be empty")
	}
	if got := set.IDs(); len(got) != 0 {
		t.Fatalf("expected no ids, got %v", got)
	}
}
