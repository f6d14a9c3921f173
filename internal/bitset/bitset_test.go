package bitset

import "testing"

func TestBitset(t *testing.T) {
	bs := New(10)
	for _, i := range []int{0, 3, 9} {
		bs.Set(i)
	}
	bs.Set(200)
	for i := 0; i < 256; i++ {
		want := i == 0 || i == 3 || i == 9 || i == 200
		if got := bs.Test(i); got != want {
			t.Errorf("Test(%d): got %t, want %t", i, got, want)
		}
	}
	if got := bs.Count(); got != 4 {
		t.Errorf("Count: got %d, want 4", got)
	}
	bs.Clear(3)
	bs.Clear(1000)
	if bs.Test(3) {
		t.Errorf("Test(3) after Clear: got true")
	}
	bs.Reset()
	if got := bs.Count(); got != 0 {
		t.Errorf("Count after Reset: got %d, want 0", got)
	}
}
