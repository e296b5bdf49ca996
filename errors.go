package yamlupdate

import "github.com/cockroachdb/errors"

// Error kinds returned by the package. Every returned error wraps exactly one
// of them, so callers can branch with errors.Is.
var (
	// ErrDecode indicates the update set could not be decoded.
	ErrDecode = errors.New("malformed update set")

	// ErrParse indicates a YAML document or nested block failed to parse.
	ErrParse = errors.New("yaml parse error")

	// ErrMatch indicates a key the parser reports as present could not be
	// located in the text, or a nested block has no detectable indentation.
	ErrMatch = errors.New("key not located in text")

	// ErrUnsupportedType indicates a value or document shape the updater
	// cannot handle.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrSerialize indicates the YAML encoder rejected a value.
	ErrSerialize = errors.New("yaml serialize error")
)
