package reparse

import "fmt"

// Tag is a reparse point type tag. The low bits identify the originating
// subsystem, the high bits carry vendor-specific flags.
type Tag uint32

// Selector decides whether a tag belongs to a handler. Only the bits set in
// Mask participate in the comparison; flag bits outside the mask are ignored.
type Selector struct {
	Target Tag
	Mask   Tag
}

// Matches reports whether tag is in scope for this selector.
func (s Selector) Matches(tag Tag) bool {
	return (tag^s.Target)&s.Mask == 0
}

func (s Selector) String() string {
	return fmt.Sprintf("%08x/%08x", uint32(s.Target), uint32(s.Mask))
}
