package bake

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"bakematrix/internal/catalog"
	"bakematrix/internal/matrix"
	"bakematrix/internal/render"
)

func condaConfig(t *testing.T) matrix.Configuration {
	t.Helper()
	cat := catalog.New(
		catalog.Axis{Name: matrix.AxisEnvironmentManager, Values: []string{"conda"}},
		catalog.Axis{Name: matrix.AxisDependencyFile, Values: []string{"environment.yml"}},
		catalog.Axis{Name: matrix.AxisPydataPackages, Values: []string{"none"}},
	)
	g, err := matrix.NewGenerator(cat, matrix.DefaultArgs(), "3.12")
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	configs := g.All(matrix.Full)
	if len(configs) != 1 {
		t.Fatalf("expected one config, got %d", len(configs))
	}
	return configs[0]
}

// projectRenderer creates <out>/<repo_name>/README.md and records each
// output root it was given.
type projectRenderer struct {
	mu    sync.Mutex
	roots []string
}

func (r *projectRenderer) Render(ctx context.Context, req render.Request) error {
	r.mu.Lock()
	r.roots = append(r.roots, req.OutputDir)
	r.mu.Unlock()

	if !req.OverwriteIfExists || !req.NoInput {
		return errors.New("expected overwrite and no-input")
	}
	dir := filepath.Join(req.OutputDir, req.Context[matrix.KeyRepoName].(string))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "README.md"), []byte("# test\n"), 0o644)
}

func assertGone(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected %s to be removed, stat err = %v", path, err)
	}
}

func TestBake_ExposesProjectAndCleansUp(t *testing.T) {
	cfg := condaConfig(t)
	r := &projectRenderer{}
	m := NewMaterializer(r, "/templates/ccds", WithTempDir(t.TempDir()))

	var seen Project
	err := m.Bake(context.Background(), cfg, func(p Project) error {
		seen = p
		fi, err := os.Stat(p.Dir)
		if err != nil {
			return err
		}
		if !fi.IsDir() {
			t.Fatalf("%s is not a directory", p.Dir)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Bake returned error: %v", err)
	}

	if filepath.Base(seen.Dir) != "my-test-repo" {
		t.Fatalf("project dir = %s, want basename my-test-repo", seen.Dir)
	}
	if seen.Dir != filepath.Join(seen.Root, "my-test-repo") {
		t.Fatalf("project dir %s is not under root %s", seen.Dir, seen.Root)
	}
	if !strings.HasSuffix(seen.Root, TempSuffix) {
		t.Fatalf("root %s lacks suffix %s", seen.Root, TempSuffix)
	}
	if seen.Config.Label() != cfg.Label() {
		t.Fatalf("project carries wrong configuration")
	}
	assertGone(t, seen.Root)
}

func TestBake_ReturnsCallerErrorAfterCleanup(t *testing.T) {
	cfg := condaConfig(t)
	m := NewMaterializer(&projectRenderer{}, "tmpl", WithTempDir(t.TempDir()))

	boom := errors.New("assertion failed")
	var root string
	err := m.Bake(context.Background(), cfg, func(p Project) error {
		root = p.Root
		return boom
	})
	if err != boom {
		t.Fatalf("expected caller error unchanged, got %v", err)
	}
	assertGone(t, root)
}

func TestBake_RenderFailureCleansPartialOutput(t *testing.T) {
	cfg := condaConfig(t)
	hookErr := &render.Error{Kind: render.KindHook, Err: errors.New("exit status 1")}

	var root string
	r := render.RendererFunc(func(ctx context.Context, req render.Request) error {
		root = req.OutputDir
		partial := filepath.Join(req.OutputDir, "my-test-repo", "data")
		if err := os.MkdirAll(partial, 0o755); err != nil {
			return err
		}
		return hookErr
	})
	m := NewMaterializer(r, "tmpl", WithTempDir(t.TempDir()))

	called := false
	err := m.Bake(context.Background(), cfg, func(Project) error {
		called = true
		return nil
	})
	if called {
		t.Fatalf("fn must not run when rendering fails")
	}

	var re *RenderError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RenderError, got %T: %v", err, err)
	}
	if !errors.Is(err, render.ErrHook) {
		t.Fatalf("renderer error should be preserved, got %v", err)
	}
	if !strings.Contains(err.Error(), "environment_manager=conda") {
		t.Fatalf("error should identify the configuration: %v", err)
	}
	assertGone(t, root)
}

func TestBake_MissingProjectDirIsRenderError(t *testing.T) {
	cfg := condaConfig(t)
	var root string
	r := render.RendererFunc(func(ctx context.Context, req render.Request) error {
		root = req.OutputDir
		return nil
	})
	m := NewMaterializer(r, "tmpl", WithTempDir(t.TempDir()))

	err := m.Bake(context.Background(), cfg, func(Project) error { return nil })
	if !errors.Is(err, ErrNoProject) {
		t.Fatalf("expected ErrNoProject, got %v", err)
	}
	assertGone(t, root)
}

func TestBake_PanicStillCleansUp(t *testing.T) {
	cfg := condaConfig(t)
	m := NewMaterializer(&projectRenderer{}, "tmpl", WithTempDir(t.TempDir()))

	var root string
	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("expected panic to propagate")
			}
		}()
		_ = m.Bake(context.Background(), cfg, func(p Project) error {
			root = p.Root
			panic("test body exploded")
		})
	}()
	assertGone(t, root)
}

func TestBake_CleanupErrorIsDistinct(t *testing.T) {
	cfg := condaConfig(t)
	m := NewMaterializer(&projectRenderer{}, "tmpl", WithTempDir(t.TempDir()))
	locked := errors.New("file locked")
	m.removeAll = func(path string) error {
		_ = os.RemoveAll(path)
		return locked
	}

	err := m.Bake(context.Background(), cfg, func(Project) error { return nil })
	var ce *CleanupError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CleanupError, got %T: %v", err, err)
	}
	if !errors.Is(err, locked) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
	var re *RenderError
	if errors.As(err, &re) {
		t.Fatalf("cleanup failure must not look like a render failure")
	}

	boom := errors.New("check failed")
	err = m.Bake(context.Background(), cfg, func(Project) error { return boom })
	if !errors.Is(err, boom) || !errors.As(err, &ce) {
		t.Fatalf("expected both caller and cleanup errors, got %v", err)
	}
}

func TestOpen_CloseIsIdempotent(t *testing.T) {
	cfg := condaConfig(t)
	m := NewMaterializer(&projectRenderer{}, "tmpl", WithTempDir(t.TempDir()))

	s, err := m.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Project().Dir, "README.md")); err != nil {
		t.Fatalf("expected rendered file: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}
	assertGone(t, s.Root())
}

func TestBake_ConcurrentScopesAreIndependent(t *testing.T) {
	cfg := condaConfig(t)
	r := &projectRenderer{}
	m := NewMaterializer(r, "tmpl", WithTempDir(t.TempDir()))

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- m.Bake(context.Background(), cfg, func(p Project) error {
				_, err := os.Stat(filepath.Join(p.Dir, "README.md"))
				return err
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Bake returned error: %v", err)
		}
	}

	seen := make(map[string]bool)
	for _, root := range r.roots {
		if seen[root] {
			t.Fatalf("output root %s reused", root)
		}
		seen[root] = true
		assertGone(t, root)
	}
}

func TestOpen_NilRenderer(t *testing.T) {
	m := NewMaterializer(nil, "tmpl")
	if _, err := m.Open(context.Background(), condaConfig(t)); err == nil {
		t.Fatalf("expected error for nil renderer")
	}
}

func TestMakeWritable_LeavesSymlinkTargetsAlone(t *testing.T) {
	outside := filepath.Join(t.TempDir(), "secret.txt")
	if err := os.WriteFile(outside, []byte("x"), 0o400); err != nil {
		t.Fatalf("write: %v", err)
	}

	root := t.TempDir()
	sub := filepath.Join(root, "my-test-repo", "data")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	inside := filepath.Join(sub, "raw.csv")
	if err := os.WriteFile(inside, []byte("a,b\n"), 0o400); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Symlink(outside, filepath.Join(sub, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	makeWritable(root)

	fi, err := os.Stat(outside)
	if err != nil {
		t.Fatalf("stat target: %v", err)
	}
	if got := fi.Mode().Perm(); got != 0o400 {
		t.Fatalf("symlink target mode = %o, want 400", got)
	}
	fi, err = os.Stat(inside)
	if err != nil {
		t.Fatalf("stat file: %v", err)
	}
	if got := fi.Mode().Perm(); got != 0o600 {
		t.Fatalf("file mode = %o, want 600", got)
	}

	if err := forceRemoveAll(root); err != nil {
		t.Fatalf("forceRemoveAll: %v", err)
	}
	if _, err := os.Stat(outside); err != nil {
		t.Fatalf("symlink target removed: %v", err)
	}
}
