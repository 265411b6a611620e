package giellamorph

import (
	"errors"
	"fmt"
)

// ErrSourceUnavailable is wrapped by every error caused by a missing or
// unreadable grammar, tag, template, rule or transducer file.
var ErrSourceUnavailable = errors.New("source unavailable")

// UnmodelledPatternError reports an analysis whose ending tags match no
// classification rule. It points at a gap in the rule table and is never
// swallowed by the lemmatiser.
type UnmodelledPatternError struct {
	Analysis   string
	EndingTags string
}

func (e *UnmodelledPatternError) Error() string {
	return fmt.Sprintf("can not handle %s (ending tags %q)", e.Analysis, e.EndingTags)
}

// sourceError wraps err so that errors.Is(err, ErrSourceUnavailable) holds.
func sourceError(op, path string, err error) error {
	return fmt.Errorf("%s %s: %w: %w", op, path, ErrSourceUnavailable, err)
}
