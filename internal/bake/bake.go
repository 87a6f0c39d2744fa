package bake

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"bakematrix/internal/matrix"
	"bakematrix/internal/render"
)

// TempSuffix is appended to every temporary output root.
const TempSuffix = "data-project"

// Project is a baked project that is valid for the lifetime of its scope.
type Project struct {
	// Dir is Root/<repo_name>.
	Dir string
	// Root is the temporary output directory removed when the scope closes.
	Root   string
	Config matrix.Configuration
}

// Materializer bakes one configuration per scope into a fresh temporary
// directory. Scopes share no state, so a Materializer may be used from
// multiple goroutines if its Renderer allows it.
type Materializer struct {
	renderer     render.Renderer
	templateRoot string
	tempDir      string
	logger       zerolog.Logger

	// removeAll is a test seam; nil means os.RemoveAll with a permission retry.
	removeAll func(path string) error
}

type Option func(*Materializer)

// WithTempDir sets the parent of the temporary output roots. Empty means
// os.TempDir().
func WithTempDir(dir string) Option {
	return func(m *Materializer) { m.tempDir = dir }
}

func WithLogger(l zerolog.Logger) Option {
	return func(m *Materializer) { m.logger = l }
}

func NewMaterializer(r render.Renderer, templateRoot string, opts ...Option) *Materializer {
	m := &Materializer{
		renderer:     r,
		templateRoot: templateRoot,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Bake renders cfg into a temporary directory, calls fn with the baked
// project and removes the directory before returning, whether fn returns,
// fails or panics. Errors from fn are returned unchanged; a failed removal
// is reported as a *CleanupError alongside it.
func (m *Materializer) Bake(ctx context.Context, cfg matrix.Configuration, fn func(Project) error) (err error) {
	s, err := m.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = withCleanup(err, s.Close())
	}()
	return fn(s.Project())
}

// Open renders cfg and returns the open scope. The caller must Close it.
// If rendering fails the directory is removed before Open returns.
func (m *Materializer) Open(ctx context.Context, cfg matrix.Configuration) (_ *Scope, err error) {
	if m.renderer == nil {
		return nil, errors.New("renderer is nil")
	}
	repo := cfg.RepoName()
	if repo == "" {
		return nil, fmt.Errorf("[%s] configuration has no %s", cfg.Label(), matrix.KeyRepoName)
	}

	root, err := os.MkdirTemp(m.tempDir, "*"+TempSuffix)
	if err != nil {
		return nil, fmt.Errorf("[%s] create output root: %w", cfg.Label(), err)
	}
	if resolved, rerr := filepath.EvalSymlinks(root); rerr == nil {
		root = resolved
	}

	s := &Scope{m: m, cfg: cfg, root: root}
	opened := false
	defer func() {
		if !opened {
			err = withCleanup(err, s.Close())
		}
	}()

	log := m.logger.With().Str("config", cfg.Label()).Str("root", root).Logger()
	log.Debug().Msg("baking project")

	rerr := m.renderer.Render(ctx, render.Request{
		TemplateRoot:      m.templateRoot,
		Context:           cfg.Context(),
		OutputDir:         root,
		OverwriteIfExists: true,
		NoInput:           true,
	})
	if rerr != nil {
		log.Debug().Err(rerr).Msg("render failed")
		return nil, &RenderError{Config: cfg, Err: rerr}
	}

	dir := filepath.Join(root, repo)
	fi, serr := os.Stat(dir)
	if serr != nil {
		return nil, &RenderError{Config: cfg, Err: fmt.Errorf("%w: %v", ErrNoProject, serr)}
	}
	if !fi.IsDir() {
		return nil, &RenderError{Config: cfg, Err: fmt.Errorf("%w: %s is not a directory", ErrNoProject, dir)}
	}

	s.project = Project{Dir: dir, Root: root, Config: cfg}
	opened = true
	return s, nil
}

// Scope owns one temporary output root. It is single-use.
type Scope struct {
	m       *Materializer
	cfg     matrix.Configuration
	root    string
	project Project

	closeOnce sync.Once
	closeErr  error
}

func (s *Scope) Project() Project {
	return s.project
}

// Root is the temporary directory owned by the scope.
func (s *Scope) Root() string {
	return s.root
}

// Close removes the scope's directory tree. Repeated calls return the first
// result.
func (s *Scope) Close() error {
	s.closeOnce.Do(func() {
		remove := s.m.removeAll
		if remove == nil {
			remove = forceRemoveAll
		}
		if err := remove(s.root); err != nil {
			s.closeErr = &CleanupError{Config: s.cfg, Dir: s.root, Err: err}
			s.m.logger.Warn().Err(err).Str("config", s.cfg.Label()).Str("root", s.root).Msg("cleanup failed")
			return
		}
		s.m.logger.Debug().Str("config", s.cfg.Label()).Str("root", s.root).Msg("removed output root")
	})
	return s.closeErr
}

// forceRemoveAll retries once after making the tree writable; rendered
// projects may contain read-only files.
func forceRemoveAll(path string) error {
	err := os.RemoveAll(path)
	if err == nil {
		return nil
	}
	makeWritable(path)
	return os.RemoveAll(path)
}

// makeWritable grants the owner write access throughout the tree at path.
// Symlinks are skipped: os.Chmod follows them and their targets may live
// outside the tree.
func makeWritable(path string) {
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, werr error) error {
		if werr != nil {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		mode := os.FileMode(0o600)
		if d.IsDir() {
			mode = 0o700
		}
		_ = os.Chmod(p, mode)
		return nil
	})
}

func withCleanup(primary, cleanup error) error {
	if cleanup == nil {
		return primary
	}
	if primary == nil {
		return cleanup
	}
	return errors.Join(primary, cleanup)
}
