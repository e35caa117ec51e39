package raknet

import "testing"

func TestU24WrapsOnAdd(t *testing.T) {
	n := newU24(u24Mask)
	if got := n.add(1); got != 0 {
		t.Errorf("add() = %d, want 0", got)
	}
}

func TestU24WrapsOnSub(t *testing.T) {
	n := newU24(0)
	if got := n.sub(1); got != u24Mask {
		t.Errorf("sub() = %d, want %d", got, u24Mask)
	}
}

func TestU24Less(t *testing.T) {
	cases := []struct {
		a, b U24
		want bool
	}{
		{0, 1, true},
		{1, 0, false},
		{0, 0, false},
		{newU24(u24Mask), 0, true},
		{0, newU24(u24Mask), false},
		{newU24(100), newU24(100 + u24HalfRange - 1), true},
		{newU24(100), newU24(100 + u24HalfRange), false},
	}
	for _, c := range cases {
		if got := c.a.less(c.b); got != c.want {
			t.Errorf("U24(%d).less(U24(%d)) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestU24RoundTripBytes(t *testing.T) {
	n := newU24(0x123456)
	buf := make([]byte, 3)
	n.putUint24LE(buf)
	if buf[0] != 0x56 || buf[1] != 0x34 || buf[2] != 0x12 {
		t.Errorf("putUint24LE = % X, want 56 34 12", buf)
	}
	if got := u24FromBytesLE(buf); got != n {
		t.Errorf("u24FromBytesLE(putUint24LE(n)) = %d, want %d", got, n)
	}
}

func TestU24LessOrEqual(t *testing.T) {
	a := newU24(5)
	if !a.lessOrEqual(a) {
		t.Error("a.lessOrEqual(a) should be true")
	}
	if !a.lessOrEqual(a.add(1)) {
		t.Error("a.lessOrEqual(a+1) should be true")
	}
	if a.add(1).lessOrEqual(a) {
		t.Error("(a+1).lessOrEqual(a) should be false")
	}
}
