package errors

import (
	"strings"
	"unicode"
)

const (
	// MaxVars is the largest variable count accepted from user input. A full
	// tree over MaxVars variables has 2^(MaxVars+1)-1 nodes.
	MaxVars = 20

	// MaxSamples caps the number of truth tables an experiment may draw.
	MaxSamples = 1_000_000
)

// ValidateWidth checks that width is usable as a truth table length: a
// positive power of two no larger than 2^MaxVars.
func ValidateWidth(width int) error {
	if width <= 0 || width&(width-1) != 0 {
		return New(ErrCodeInvalidInput, "width %d is not a positive power of two", width)
	}
	if width > 1<<MaxVars {
		return New(ErrCodeInvalidInput, "width %d exceeds the limit of %d", width, 1<<MaxVars)
	}
	return nil
}

// ValidateVars checks a variable count.
func ValidateVars(vars int) error {
	if vars < 0 || vars > MaxVars {
		return New(ErrCodeInvalidInput, "variable count %d out of range [0, %d]", vars, MaxVars)
	}
	return nil
}

// ValidateSamples checks an experiment sample size.
func ValidateSamples(samples int) error {
	if samples < 1 || samples > MaxSamples {
		return New(ErrCodeInvalidInput, "sample size %d out of range [1, %d]", samples, MaxSamples)
	}
	return nil
}

// ValidatePath validates an output file path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") {
		return New(ErrCodeInvalidInput, "path must name a file, not a directory")
	}

	return nil
}
