package repository

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/okian/ghostrun/internal/adapters/codec"
	"github.com/okian/ghostrun/internal/adapters/pathsafe"
	"github.com/okian/ghostrun/internal/domain/dedupe"
	"github.com/okian/ghostrun/internal/domain/model"
	"github.com/okian/ghostrun/pkg/logger"
	"github.com/okian/ghostrun/pkg/metrics"
)

const (
	personalDirName = "personal"
	sharedDirName   = "shared"
	dirPerm         = 0o755
)

// FileStore is the on-disk Store. Writes are serialized so that a background
// saver and the tick loop never interleave on the same route file.
type FileStore struct {
	root        string
	personalDir string
	sharedDir   string

	routes      codec.RouteLookup
	decoder     *codec.Decoder
	decoderOpts []codec.Option
	shared      *pathsafe.Validator
	seen        dedupe.Deduper
	log         logger.Logger

	maxShared   int
	maxFileSize int64

	mu sync.Mutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates the personal and shared folders under root if needed.
func NewFileStore(root string, routes codec.RouteLookup, opts ...Option) (*FileStore, error) {
	s := &FileStore{
		root:        root,
		personalDir: filepath.Join(root, personalDirName),
		sharedDir:   filepath.Join(root, sharedDirName),
		routes:      routes,
		log:         logger.For("repository"),
		maxShared:   DefaultMaxSharedFiles,
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.seen == nil {
		s.seen = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.maxShared))
	}

	for _, dir := range []string{s.personalDir, s.sharedDir} {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	v, err := pathsafe.New(s.sharedDir)
	if err != nil {
		return nil, err
	}
	s.shared = v
	s.decoder = codec.NewDecoder(routes, s.decoderOpts...)
	return s, nil
}

// Root returns the ghosts directory.
func (s *FileStore) Root() string { return s.root }

// PersonalDir returns the folder of personal bests.
func (s *FileStore) PersonalDir() string { return s.personalDir }

// SharedDir returns the canonical shared folder.
func (s *FileStore) SharedDir() string { return s.shared.Root() }

// PersonalPath returns the file that holds the personal best for routeID.
func (s *FileStore) PersonalPath(routeID string) (string, error) {
	if routeID == "" || routeID == "." || routeID == ".." ||
		strings.ContainsAny(routeID, `/\`) || strings.ContainsRune(routeID, 0) {
		return "", fmt.Errorf("%q: %w", routeID, ErrInvalidRoute)
	}
	return filepath.Join(s.personalDir, routeID+Extension), nil
}

// PersonalExists implements Store.
func (s *FileStore) PersonalExists(_ context.Context, routeID string) bool {
	path, err := s.PersonalPath(routeID)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// LoadPersonal implements Store.
func (s *FileStore) LoadPersonal(ctx context.Context, routeID string) (*model.GhostRecording, error) {
	path, err := s.PersonalPath(routeID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		metrics.RecordGhostLoad("personal", "missing")
		return nil, fmt.Errorf("load %s: %w", routeID, ErrNotFound)
	}
	if err != nil {
		metrics.RecordGhostLoad("personal", "io")
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rec, err := codec.DecodeTrusted(bufio.NewReader(f))
	if err != nil {
		metrics.RecordGhostLoad("personal", model.ErrorKind(err))
		s.log.Warn(ctx, "personal ghost unreadable",
			logger.String("path", path),
			logger.String("kind", model.ErrorKind(err)),
			logger.Error(err))
		return nil, fmt.Errorf("load %s: %w", routeID, err)
	}
	metrics.RecordGhostLoad("personal", "ok")
	s.log.Debug(ctx, "personal ghost loaded",
		logger.String("route", routeID),
		logger.String("time", rec.TimeString()),
		logger.Int("frames", len(rec.Frames)))
	return rec, nil
}

// SavePersonal implements Store. The file is written to a temporary name in
// the same folder and renamed over the old one, so a crash never leaves a
// truncated personal best.
func (s *FileStore) SavePersonal(ctx context.Context, rec *model.GhostRecording) error {
	if rec == nil {
		return codec.ErrNilRecording
	}
	path, err := s.PersonalPath(rec.RouteID)
	if err != nil {
		return err
	}

	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeAtomic(path, rec); err != nil {
		metrics.RecordGhostSaveError()
		s.log.Error(ctx, "failed to save personal ghost",
			logger.String("path", path), logger.Error(err))
		return err
	}

	metrics.RecordGhostSaved(float64(time.Since(start).Microseconds()) / 1000)
	s.log.Info(ctx, "personal ghost saved",
		logger.String("route", rec.RouteID),
		logger.String("time", rec.TimeString()),
		logger.Int("frames", len(rec.Frames)))
	return nil
}

func (s *FileStore) writeAtomic(path string, rec *model.GhostRecording) error {
	tmp, err := os.CreateTemp(s.personalDir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	ok := false
	defer func() {
		if !ok {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	w := bufio.NewWriter(tmp)
	if err := codec.Encode(w, rec); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	ok = true
	return nil
}

// DeletePersonal implements Store.
func (s *FileStore) DeletePersonal(ctx context.Context, routeID string) error {
	path, err := s.PersonalPath(routeID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("delete %s: %w", routeID, ErrNotFound)
		}
		return fmt.Errorf("delete %s: %w", routeID, err)
	}
	s.log.Info(ctx, "personal ghost deleted", logger.String("route", routeID))
	return nil
}

// ListPersonal implements Store.
func (s *FileStore) ListPersonal(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.personalDir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.personalDir, err)
	}
	ids := lo.FilterMap(entries, func(e fs.DirEntry, _ int) (string, bool) {
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), Extension) {
			return "", false
		}
		return strings.TrimSuffix(e.Name(), Extension), true
	})
	sort.Strings(ids)
	return ids, nil
}
