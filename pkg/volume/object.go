package volume

// ObjectID identifies an object within one volume. IDs are never reused while
// the volume exists.
type ObjectID uint64

// Kind discriminates containers from leaves.
type Kind uint8

const (
	// KindFile is a leaf object carrying a data stream.
	KindFile Kind = iota + 1

	// KindDirectory is a container object carrying an index of named entries.
	KindDirectory
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// Object is the record a volume keeps per file-system object.
//
// Volumes hand out one stable *Object per ID for the lifetime of the volume
// handle, so fields written by one caller are visible to the next. The host
// serializes calls touching the same object; the volume does not guard
// individual records.
type Object struct {
	ID   ObjectID
	Kind Kind

	// Offline is set when the object has no locally materialized data.
	Offline bool

	// SizeKnown reports whether DataSize and AllocatedSize are filled in.
	// Always true for leaves. For containers the index size may stay unknown
	// until something resolves it; whoever resolves it sets these three
	// fields once.
	SizeKnown     bool
	DataSize      int64
	AllocatedSize int64

	// Links is the hard-link count: the number of directory entries
	// referencing this object. The object is destroyed when it reaches zero.
	Links uint32

	// SecurityID is the opaque security descriptor reference the object was
	// created with.
	SecurityID uint32
}

// IsDir reports whether the object is a container.
func (o *Object) IsDir() bool {
	return o.Kind == KindDirectory
}
