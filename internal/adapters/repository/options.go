package repository

import (
	"github.com/okian/ghostrun/internal/adapters/codec"
	"github.com/okian/ghostrun/internal/domain/dedupe"
	"github.com/okian/ghostrun/pkg/logger"
)

// Defaults for the shared folder.
const (
	DefaultMaxSharedFiles = 100
	DefaultMaxFileSize    = 50 << 20
	DefaultMinFileSize    = 20
)

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *FileStore) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMaxSharedFiles caps how many shared files a scan looks at.
func WithMaxSharedFiles(n int) Option {
	return func(s *FileStore) {
		if n > 0 {
			s.maxShared = n
		}
	}
}

// WithMaxFileSize caps the size of a shared file in bytes.
func WithMaxFileSize(n int64) Option {
	return func(s *FileStore) {
		if n > 0 {
			s.maxFileSize = n
		}
	}
}

// WithDecoderOptions passes options to the untrusted decoder.
func WithDecoderOptions(opts ...codec.Option) Option {
	return func(s *FileStore) {
		s.decoderOpts = append(s.decoderOpts, opts...)
	}
}

// WithDeduper sets the fingerprint set used to skip duplicate shared files.
func WithDeduper(d dedupe.Deduper) Option {
	return func(s *FileStore) {
		if d != nil {
			s.seen = d
		}
	}
}
