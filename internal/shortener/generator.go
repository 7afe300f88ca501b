package shortener

import (
	"regexp"

	"github.com/jaevor/go-nanoid"
)

// GeneratedCodeLength is the length of randomly generated short codes.
const GeneratedCodeLength = 7

// maxGenerateAttempts bounds collision retries for generated codes.
const maxGenerateAttempts = 3

// aliasPattern constrains custom aliases to letters, digits, hyphen, and
// underscore, 3 to 20 characters.
var aliasPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,20}$`)

// CodeFunc returns a fresh random code candidate.
type CodeFunc func() string

// NewCodeFunc returns the default nanoid-based code generator. The nanoid
// standard alphabet is URL safe (A-Za-z0-9_-).
func NewCodeFunc() (CodeFunc, error) {
	gen, err := nanoid.Standard(GeneratedCodeLength)
	if err != nil {
		return nil, err
	}

	return CodeFunc(gen), nil
}

// ValidateAlias checks a caller-chosen alias against the charset and length
// bounds. Returns ErrAliasInvalid on violation.
func ValidateAlias(alias string) error {
	if !aliasPattern.MatchString(alias) {
		return ErrAliasInvalid
	}

	return nil
}
