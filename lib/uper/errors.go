package uper

import (
	"github.com/zeebo/errs"

	"github.com/thebagchi/uper-go/lib/bitbuffer"
)

// Error classes. Structural decode errors (end of stream, bad choice
// indexes, extension mismatches, charset violations) can be triggered by
// untrusted input; range/size/opt-flag errors indicate a caller passing a
// value outside its declared constraint, which correctly generated
// bindings never do. None of them abort the process; all of them abort
// the current encode or decode.
var (
	// Error is the parent class for this package.
	Error = errs.Class("uper")

	// ErrEndOfStream is raised by the underlying bit buffer when input
	// runs out mid-decode.
	ErrEndOfStream = &bitbuffer.ErrEndOfStream

	// ErrValueNotInRange reports an integer outside its constraint bounds.
	ErrValueNotInRange = errs.Class("value not in range")

	// ErrSizeNotInRange reports a string, bitstring, octetstring or
	// sequence-of whose length violates its size constraint.
	ErrSizeNotInRange = errs.Class("size not in range")

	// ErrInvalidChoiceIndex reports a choice or enumerated index outside
	// the declared variant count.
	ErrInvalidChoiceIndex = errs.Class("invalid choice index")

	// ErrInvalidExtensionConstellation reports an extension-content marker
	// that contradicts the declared field layout.
	ErrInvalidExtensionConstellation = errs.Class("invalid extension constellation")

	// ErrUnsupportedOperation reports a value the runtime cannot
	// represent, such as an integer magnitude beyond 64 bits.
	ErrUnsupportedOperation = errs.Class("unsupported operation")

	// ErrOptFlagsExhausted reports a presence-bit run consumed more times
	// than its reserved size. This is a bug in the calling bindings, not
	// in the data.
	ErrOptFlagsExhausted = errs.Class("opt flags exhausted")

	// ErrInvalidCharacter reports a character outside the permitted
	// alphabet of a restricted string type, or invalid UTF-8.
	ErrInvalidCharacter = errs.Class("invalid character")
)
