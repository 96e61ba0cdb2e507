// Package samplestore keeps face images on local disk
//
// Layout under the root directory:
//
//	<class>/<id>.png                   reference images, written only by Commit
//	attempts/<class>/<id>-<uuid>.png   transient login samples, one per attempt
//	staging/<uuid>.png                 enrollment captures awaiting Commit
//
// Every write goes to a .part file first and is renamed into place.
package samplestore

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ballotgate/internal/core/capture"
	"ballotgate/internal/core/imaging"
	"ballotgate/internal/platform/config"
	perr "ballotgate/internal/platform/errors"
	"ballotgate/internal/platform/logger"

	"github.com/google/uuid"
)

const (
	attemptsDir = "attempts"
	stagingDir  = "staging"
	ext         = ".png"
)

// Store is a directory of face images
type Store struct {
	root string
	now  func() time.Time
}

// New prepares root and its staging and attempts directories
func New(root string) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, perr.Validationf("samplestore: empty root")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "samplestore: resolve %s", root)
	}
	for _, d := range []string{abs, filepath.Join(abs, stagingDir), filepath.Join(abs, attemptsDir)} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "samplestore: mkdir %s", d)
		}
	}
	return &Store{root: abs, now: time.Now}, nil
}

// FromConfig reads FACES_DIR under cfg, default ./faces
func FromConfig(cfg config.Conf) (*Store, error) {
	return New(cfg.MayString("FACES_DIR", "faces"))
}

// Root returns the absolute root directory
func (s *Store) Root() string { return s.root }

// Ping reports whether the staging directory still accepts writes
func (s *Store) Ping(_ context.Context) error {
	f, err := os.CreateTemp(filepath.Join(s.root, stagingDir), "ping-*")
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "samplestore: not writable")
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

// ReferencePath is the deterministic reference location for class and id
func (s *Store) ReferencePath(class, id string) (string, error) {
	if err := checkName(class, id); err != nil {
		return "", err
	}
	return filepath.Join(s.root, class, id+ext), nil
}

// AttemptDir is the directory holding login samples of class
func (s *Store) AttemptDir(class string) (string, error) {
	if err := checkName(class, "x"); err != nil {
		return "", err
	}
	return filepath.Join(s.root, attemptsDir, class), nil
}

// AttemptPath returns a fresh location for one login sample of class and id
// concurrent attempts for the same id never share a file
func (s *Store) AttemptPath(class, id string) (string, error) {
	if err := checkName(class, id); err != nil {
		return "", err
	}
	return filepath.Join(s.root, attemptsDir, class, id+"-"+uuid.NewString()+ext), nil
}

// Save stores img for req and returns its handle, it is the capture sink
func (s *Store) Save(ctx context.Context, req capture.Request, img *image.Gray) (string, error) {
	if imaging.Empty(img) {
		return "", perr.Validationf("samplestore: empty image")
	}
	var (
		path string
		err  error
	)
	switch req.Purpose {
	case capture.PurposeVerify:
		path, err = s.AttemptPath(req.Class, req.ParticipantID)
	default:
		path = filepath.Join(s.root, stagingDir, uuid.NewString()+ext)
	}
	if err != nil {
		return "", err
	}
	if err := writePNG(path, img); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "samplestore: write %s", filepath.Base(path))
	}
	logger.C(ctx).Debug().Str("purpose", req.Purpose.String()).Str("path", path).Msg("sample written")
	return path, nil
}

// Commit moves a staged handle to the reference path for class and id
func (s *Store) Commit(handle, class, id string) (string, error) {
	if !s.staged(handle) {
		return "", perr.Validationf("samplestore: %s is not a staged sample", filepath.Base(handle))
	}
	dst, err := s.ReferencePath(class, id)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "samplestore: mkdir %s", class)
	}
	if err := os.Rename(handle, dst); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "samplestore: commit %s", id)
	}
	return dst, nil
}

// Discard removes a staged or attempt handle; a missing file is not an error
// Reference images are never removed through Discard
func (s *Store) Discard(handle string) error {
	if handle == "" {
		return nil
	}
	if !s.staged(handle) && !s.within(handle, attemptsDir) {
		return perr.Validationf("samplestore: refusing to discard %s", filepath.Base(handle))
	}
	if err := os.Remove(handle); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "samplestore: discard %s", filepath.Base(handle))
	}
	return nil
}

// Open loads the image behind handle, it is the matcher's opener
func (s *Store) Open(handle string) (image.Image, error) {
	if !s.within(handle, "") {
		return nil, perr.Validationf("samplestore: %s is outside the store", filepath.Base(handle))
	}
	img, err := imaging.Load(handle)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, perr.NotFoundf("samplestore: %s", filepath.Base(handle))
		}
		return nil, err
	}
	return img, nil
}

// RemoveReference deletes the reference image of class and id; a missing file is not an error
func (s *Store) RemoveReference(class, id string) error {
	ref, err := s.ReferencePath(class, id)
	if err != nil {
		return err
	}
	if err := os.Remove(ref); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "samplestore: remove reference %s", id)
	}
	return nil
}

// RemoveClass deletes every reference and attempt image of class
func (s *Store) RemoveClass(class string) error {
	if err := checkName(class, "x"); err != nil {
		return err
	}
	for _, d := range []string{filepath.Join(s.root, class), filepath.Join(s.root, attemptsDir, class)} {
		if err := os.RemoveAll(d); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnavailable, "samplestore: remove %s", d)
		}
	}
	return nil
}

// Sweep removes staging and attempt files older than maxAge and returns how many went
// These are leftovers of crashed captures; references are untouched
func (s *Store) Sweep(maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-maxAge)
	removed := 0
	for _, dir := range []string{filepath.Join(s.root, stagingDir), filepath.Join(s.root, attemptsDir)} {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return err
			}
			if d.IsDir() {
				return nil
			}
			fi, err := d.Info()
			if err != nil {
				return nil
			}
			if fi.ModTime().Before(cutoff) {
				if err := os.Remove(path); err == nil {
					removed++
				}
			}
			return nil
		})
		if err != nil {
			return removed, perr.Wrapf(err, perr.ErrorCodeUnavailable, "samplestore: sweep %s", dir)
		}
	}
	return removed, nil
}

func (s *Store) staged(handle string) bool {
	return s.within(handle, stagingDir) && filepath.Dir(filepath.Clean(handle)) == filepath.Join(s.root, stagingDir)
}

func (s *Store) within(handle, sub string) bool {
	if handle == "" {
		return false
	}
	base := filepath.Join(s.root, sub)
	rel, err := filepath.Rel(base, filepath.Clean(handle))
	if err != nil {
		return false
	}
	return rel != "." && !strings.HasPrefix(rel, "..")
}

// checkName keeps class and id to a single path element
func checkName(class, id string) error {
	for _, v := range []string{class, id} {
		if v == "" || v == "." || v == ".." || strings.ContainsAny(v, `/\`) || v == attemptsDir || v == stagingDir {
			return perr.Validationf("samplestore: invalid path element %q", v)
		}
	}
	return nil
}

func writePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := imaging.EncodePNG(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
