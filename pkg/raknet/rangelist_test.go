package raknet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func u24s(vs ...uint32) []U24 {
	out := make([]U24, len(vs))
	for i, v := range vs {
		out[i] = newU24(v)
	}
	return out
}

func TestBuildAndExpandRangesRoundTrip(t *testing.T) {
	numbers := u24s(0, 1, 2, 4, 8, 9)

	ranges := buildRanges(numbers)
	require.Equal(t, []numberRange{
		{newU24(0), newU24(2)},
		{newU24(4), newU24(4)},
		{newU24(8), newU24(9)},
	}, ranges)

	require.Equal(t, numbers, expandRanges(ranges))
}

func TestRangeListWriteReadRoundTrip(t *testing.T) {
	ranges := buildRanges(u24s(0, 1, 2, 4, 8, 9))

	var buf bytes.Buffer
	require.NoError(t, writeRangeList(&buf, ranges))

	got, err := readRangeList(&buf)
	require.NoError(t, err)
	require.Equal(t, ranges, got)
}

func TestRangeListTooManyRanges(t *testing.T) {
	ranges := make([]numberRange, maxRangeCount+1)
	for i := range ranges {
		n := newU24(uint32(i) * 2)
		ranges[i] = numberRange{n, n}
	}

	var buf bytes.Buffer
	err := writeRangeList(&buf, ranges)
	require.ErrorIs(t, err, ErrTooManyRanges)
}

func TestRangeListEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeRangeList(&buf, nil))

	got, err := readRangeList(&buf)
	require.NoError(t, err)
	require.Empty(t, got)
}
