package fn

import (
	"reflect"
	"strconv"
	"testing"
)

func TestMap(t *testing.T) {
	got := Map([]int{1, 2, 3}, strconv.Itoa)
	want := []string{"1", "2", "3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Map = %v, want %v", got, want)
	}
	if got := Map(nil, strconv.Itoa); len(got) != 0 {
		t.Fatalf("Map(nil) = %v, want empty", got)
	}
}

func TestFilter(t *testing.T) {
	got := Filter([]int{1, 2, 3, 4}, func(n int) bool { return n%2 == 0 })
	if !reflect.DeepEqual(got, []int{2, 4}) {
		t.Fatalf("Filter = %v", got)
	}
	if got := Filter([]int{1, 3}, func(n int) bool { return n > 10 }); got != nil {
		t.Fatalf("Filter with no matches = %v, want nil", got)
	}
}

func TestUnique(t *testing.T) {
	got := Unique([]string{"a", "b", "a", "c", "b"})
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("Unique = %v", got)
	}
}
