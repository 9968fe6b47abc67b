package reparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectorMatches(t *testing.T) {
	sel := Selector{Target: 0x9000001A, Mask: 0x0000FFFF}

	tests := []struct {
		name string
		tag  Tag
		want bool
	}{
		{"exact target", 0x9000001A, true},
		{"flag bits above the mask ignored", 0xA000001A, true},
		{"all high bits set", 0xFFFF001A, true},
		{"high bits cleared entirely", 0x0000001A, true},
		{"selected low bits differ", 0x9000001B, false},
		{"variant bit inside the mask", 0x9000101A, false},
		{"zero tag", 0x00000000, false},
		{"low half inverted", 0x9000FFE5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sel.Matches(tt.tag))
		})
	}
}

// The selector law: matching depends exactly on the masked XOR, nothing else.
func TestSelectorMatchesLaw(t *testing.T) {
	sel := Selector{Target: 0x9000001A, Mask: 0x0000FFFF}

	for _, tag := range []Tag{0, 1, 0x1A, 0x9000001A, 0x5555001A, 0xFFFFFFFF, 0x8000101A} {
		want := (tag^sel.Target)&sel.Mask == 0
		assert.Equalf(t, want, sel.Matches(tag), "tag %08x", uint32(tag))
	}
}

func TestSelectorString(t *testing.T) {
	sel := Selector{Target: 0x9000001A, Mask: 0x0000FFFF}
	assert.Equal(t, "9000001a/0000ffff", sel.String())
}
