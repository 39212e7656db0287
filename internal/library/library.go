package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"specmix/internal/config"
	"specmix/internal/fileutil"
	"specmix/internal/ingest"
	"specmix/internal/logging"
	"specmix/internal/spectrum"
	"specmix/internal/textutil"
)

const (
	fileExtension  = ".txt"
	lockFileName   = ".specmix.lock"
	lockRetryDelay = 50 * time.Millisecond
	lockTimeout    = 30 * time.Second
)

var (
	// ErrNotFound reports a name without a canonical file.
	ErrNotFound = errors.New("spectrum not found")
	// ErrExists reports an import or rename onto an existing name.
	ErrExists = errors.New("spectrum already exists")
	// ErrInvalidName reports a name that sanitizes to nothing.
	ErrInvalidName = errors.New("invalid spectrum name")
)

// Kind selects one of the two libraries.
type Kind string

const (
	KindEndMember Kind = "endmember"
	KindMixed     Kind = "mixed"
)

// ParseKind accepts "endmember", "endmembers", "em", "mixed" and "mix".
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "endmember", "endmembers", "em", "end-member", "end-members":
		return KindEndMember, nil
	case "mixed", "mix":
		return KindMixed, nil
	default:
		return "", fmt.Errorf("unknown library %q (want endmember or mixed)", value)
	}
}

// Processor converts a raw file into a canonical spectrum file.
type Processor interface {
	Process(rawPath, outPath string) (*spectrum.Spectrum, *ingest.Report, error)
}

// Library is a directory of canonical spectra.
type Library struct {
	dir    string
	lock   *flock.Flock
	logger *slog.Logger
}

// Open creates dir if needed and returns the library rooted there.
func Open(dir string, logger *slog.Logger) (*Library, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("library directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure library directory: %w", err)
	}
	return &Library{
		dir:    dir,
		lock:   flock.New(filepath.Join(dir, lockFileName)),
		logger: logging.NewComponentLogger(logger, "library"),
	}, nil
}

// OpenKind opens the library of the given kind from configuration.
func OpenKind(cfg *config.Config, kind Kind, logger *slog.Logger) (*Library, error) {
	switch kind {
	case KindEndMember:
		return Open(cfg.Paths.EndMemberDir, logger)
	case KindMixed:
		return Open(cfg.Paths.MixedDir, logger)
	default:
		return nil, fmt.Errorf("unknown library %q", kind)
	}
}

// Dir returns the library directory.
func (l *Library) Dir() string { return l.dir }

// Names lists the spectra currently in the library, sorted.
func (l *Library) Names() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		base := entry.Name()
		if strings.HasPrefix(base, ".") || filepath.Ext(base) != fileExtension {
			continue
		}
		names = append(names, strings.TrimSuffix(base, fileExtension))
	}
	slices.Sort(names)
	return names, nil
}

// Path returns the canonical file path for name after sanitizing it.
func (l *Library) Path(name string) (string, error) {
	clean := textutil.SanitizeFileName(name)
	if clean == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(l.dir, clean+fileExtension), nil
}

// Exists reports whether name has a canonical file.
func (l *Library) Exists(name string) bool {
	path, err := l.Path(name)
	if err != nil {
		return false
	}
	return fileutil.FileExists(path)
}

// Load reads the canonical spectrum stored under name.
func (l *Library) Load(name string) (*spectrum.Spectrum, error) {
	path, err := l.Path(name)
	if err != nil {
		return nil, err
	}
	if !fileutil.FileExists(path) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return spectrum.Load(path)
}

// Import runs proc on rawPath and stores the result under name. An existing
// spectrum is replaced only when overwrite is set. The library lock is held
// for the duration.
func (l *Library) Import(ctx context.Context, rawPath, name string, proc Processor, overwrite bool) (string, *ingest.Report, error) {
	if name == "" {
		stem, _ := textutil.SplitExtension(filepath.Base(rawPath))
		name = stem
	}
	path, err := l.Path(name)
	if err != nil {
		return "", nil, err
	}
	clean := strings.TrimSuffix(filepath.Base(path), fileExtension)

	unlock, err := l.acquire(ctx)
	if err != nil {
		return "", nil, err
	}
	defer unlock()

	if !overwrite && fileutil.FileExists(path) {
		return "", nil, fmt.Errorf("%w: %s", ErrExists, clean)
	}
	_, report, err := proc.Process(rawPath, path)
	if err != nil {
		return "", report, err
	}
	l.logger.Info("spectrum imported",
		logging.Spectrum(clean),
		logging.String("source", rawPath),
		logging.String("dir", l.dir),
	)
	return clean, report, nil
}

// Remove deletes the spectrum stored under name.
func (l *Library) Remove(ctx context.Context, name string) error {
	path, err := l.Path(name)
	if err != nil {
		return err
	}
	unlock, err := l.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("remove spectrum: %w", err)
	}
	l.logger.Info("spectrum removed", logging.Spectrum(name), logging.String("dir", l.dir))
	return nil
}

// Rename moves the spectrum stored under oldName to newName. The target must
// not exist.
func (l *Library) Rename(ctx context.Context, oldName, newName string) error {
	from, err := l.Path(oldName)
	if err != nil {
		return err
	}
	to, err := l.Path(newName)
	if err != nil {
		return err
	}
	unlock, err := l.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if !fileutil.FileExists(from) {
		return fmt.Errorf("%w: %s", ErrNotFound, oldName)
	}
	if from == to {
		return nil
	}
	if fileutil.FileExists(to) {
		return fmt.Errorf("%w: %s", ErrExists, newName)
	}
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("rename spectrum: %w", err)
	}
	l.logger.Info("spectrum renamed",
		logging.Spectrum(newName),
		logging.String("previous", oldName),
		logging.String("dir", l.dir),
	)
	return nil
}

func (l *Library) acquire(ctx context.Context) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	ok, err := l.lock.TryLockContext(ctx, lockRetryDelay)
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("acquire library lock: %s is held by another process", l.lock.Path())
	}
	if err != nil {
		return nil, fmt.Errorf("acquire library lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("acquire library lock: %s is held by another process", l.lock.Path())
	}
	return func() {
		if err := l.lock.Unlock(); err != nil {
			l.logger.Warn("failed to release library lock", logging.Error(err))
		}
	}, nil
}
