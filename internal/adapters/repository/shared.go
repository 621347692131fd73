package repository

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/okian/ghostrun/internal/adapters/codec"
	"github.com/okian/ghostrun/internal/domain/model"
	"github.com/okian/ghostrun/pkg/logger"
	"github.com/okian/ghostrun/pkg/metrics"
)

// ScanShared implements Store. Files are taken in name order; those beyond the
// cap are ignored with a warning. Rejected files are listed with IsValid false
// and a reason. Copies of an already listed run are dropped.
func (s *FileStore) ScanShared(ctx context.Context) ([]model.SharedGhostMetadata, error) {
	start := time.Now()
	defer func() {
		metrics.RecordSharedScanLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	entries, err := os.ReadDir(s.SharedDir())
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.SharedDir(), err)
	}
	names := lo.FilterMap(entries, func(e fs.DirEntry, _ int) (string, bool) {
		return e.Name(), !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), Extension)
	})

	if len(names) > s.maxShared {
		ignored := len(names) - s.maxShared
		s.log.Warn(ctx, "shared folder over capacity, ignoring extra files",
			logger.Int("found", len(names)),
			logger.Int("ignored", ignored),
			logger.Error(fmt.Errorf("%d files over %d: %w", len(names), s.maxShared, model.ErrTooManySharedFiles)))
		metrics.RecordSharedFilesIgnored(ignored)
		names = names[:s.maxShared]
	}

	s.seen.Reset(ctx)
	out := make([]model.SharedGhostMetadata, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		meta := s.InspectShared(ctx, filepath.Join(s.SharedDir(), name))
		if meta.IsValid && s.seen.SeenAndRecord(ctx, meta.Fingerprint) {
			metrics.RecordSharedDuplicate()
			s.log.Debug(ctx, "duplicate shared ghost skipped", logger.String("path", meta.FilePath))
			continue
		}
		out = append(out, meta)
	}

	valid := lo.CountBy(out, func(m model.SharedGhostMetadata) bool { return m.IsValid })
	metrics.UpdateSharedGhostsAvailable(valid)
	s.log.Info(ctx, "shared ghosts scanned",
		logger.Int("files", len(names)),
		logger.Int("valid", valid))
	return out, nil
}

// InspectShared implements Store. The result is never nil-like: a rejected
// file comes back with IsValid false and Reason set.
func (s *FileStore) InspectShared(ctx context.Context, path string) model.SharedGhostMetadata {
	meta := model.SharedGhostMetadata{
		FilePath:   path,
		PlayerName: codec.PlayerName(path),
	}

	f, resolved, err := s.openShared(path)
	if err != nil {
		return s.rejected(ctx, meta, err)
	}
	defer f.Close()
	meta.FilePath = resolved

	h, err := s.decoder.ScanHeader(f)
	if err != nil {
		return s.rejected(ctx, meta, err)
	}
	meta.RouteID = h.RouteID
	meta.TotalTime = h.TotalTime
	meta.FrameCount = h.FrameCount
	meta.Fingerprint = h.Fingerprint
	meta.IsValid = true
	return meta
}

func (s *FileStore) rejected(ctx context.Context, meta model.SharedGhostMetadata, err error) model.SharedGhostMetadata {
	kind := model.ErrorKind(err)
	metrics.RecordGhostRejected(kind)
	s.log.Warn(ctx, "shared ghost rejected",
		logger.String("path", meta.FilePath),
		logger.String("kind", kind),
		logger.Error(err))
	meta.IsValid = false
	meta.Reason = err.Error()
	return meta
}

// LoadShared implements Store. The path and size checks are repeated since the
// file may have changed since it was listed.
func (s *FileStore) LoadShared(ctx context.Context, meta model.SharedGhostMetadata) (*model.GhostRecording, error) {
	f, resolved, err := s.openShared(meta.FilePath)
	if err != nil {
		metrics.RecordGhostLoad("shared", model.ErrorKind(err))
		s.rejected(ctx, meta, err)
		return nil, err
	}
	defer f.Close()

	rec, err := s.decoder.Decode(f)
	if err == nil && meta.RouteID != "" && rec.RouteID != meta.RouteID {
		rec, err = nil, fmt.Errorf("listed %q, file has %q: %w: %w",
			meta.RouteID, rec.RouteID, ErrRouteChanged, model.ErrFieldOutOfRange)
	}
	if err != nil {
		metrics.RecordGhostLoad("shared", model.ErrorKind(err))
		s.rejected(ctx, meta, err)
		return nil, fmt.Errorf("load %s: %w", resolved, err)
	}

	metrics.RecordGhostLoad("shared", "ok")
	s.log.Info(ctx, "shared ghost loaded",
		logger.String("path", resolved),
		logger.String("route", rec.RouteID),
		logger.String("time", rec.TimeString()),
		logger.Int("frames", len(rec.Frames)))
	return rec, nil
}

// openShared validates path against the shared folder and the size limits.
func (s *FileStore) openShared(path string) (*os.File, string, error) {
	resolved, err := s.shared.Check(path)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(resolved)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", resolved, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, "", fmt.Errorf("stat %s: %w", resolved, err)
	}
	switch size := info.Size(); {
	case size > s.maxFileSize:
		_ = f.Close()
		return nil, "", fmt.Errorf("%s is %d bytes, limit %d: %w", resolved, size, s.maxFileSize, model.ErrFileTooLarge)
	case size < DefaultMinFileSize:
		_ = f.Close()
		return nil, "", fmt.Errorf("%s is %d bytes: %w", resolved, size, model.ErrMalformedFile)
	}
	return f, resolved, nil
}
