package walker

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Option configures Reconstruct.
type Option func(*walker)

// WithStrictMarkOrder rejects mark chains that are not nested in canonical
// order, or repeat a mark, with a MarkOrderMismatch error. Without it such
// chains are normalized.
func WithStrictMarkOrder() Option {
	return func(w *walker) {
		w.strict = true
	}
}

// WithGeneratedLocalIDs fills missing localId attributes of task and
// decision lists and items with name-based UUIDs derived from their position
// and text, so the same markup always yields the same ids.
func WithGeneratedLocalIDs() Option {
	return func(w *walker) {
		w.generateIDs = true
	}
}

// WithLogger sets the logger that receives raw passthrough notices.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(w *walker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
