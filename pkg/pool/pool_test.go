package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type buffer struct{ data []byte }

func TestPoolResetsObjects(t *testing.T) {
	p := New(
		func() *buffer { return &buffer{data: make([]byte, 0, 16)} },
		func(b *buffer) { b.data = b.data[:0] },
	)

	b := p.Get()
	b.data = append(b.data, "abc"...)
	_, inUse, _ := p.Stats()
	assert.EqualValues(t, 1, inUse)

	p.Put(b)
	assert.Empty(t, b.data)
	allocated, inUse, gets := p.Stats()
	assert.EqualValues(t, 1, allocated)
	assert.EqualValues(t, 0, inUse)
	assert.EqualValues(t, 1, gets)
}

func TestStringSlice(t *testing.T) {
	s := GetStringSlice(3)
	assert.Len(t, s, 3)
	s[0], s[1] = "a", "b"
	PutStringSlice(s)
	assert.Equal(t, []string{"", "", ""}, s[:3], "returned slices are cleared")

	big := GetStringSlice(100)
	assert.Len(t, big, 100)
	for _, v := range big {
		assert.Empty(t, v)
	}
	PutStringSlice(big)

	_, inUse, _ := StringSliceStats()
	assert.EqualValues(t, 0, inUse)
}
