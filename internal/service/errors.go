package service

import (
	"errors"
	"fmt"
)

// ErrMissingEmbedding is returned when similarity search is requested for a
// recipe that was stored without an embedding.
var ErrMissingEmbedding = errors.New("recipe does not have an embedding for similarity search")

// GenerationError reports that the generation service could not produce a
// usable recipe after the configured retries. It is fatal for the request;
// nothing is persisted.
type GenerationError struct {
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("recipe generation failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsGenerationError reports whether err is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}
