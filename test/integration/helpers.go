package integration

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cartwryte/sleuth/internal/clock"
	"github.com/cartwryte/sleuth/internal/config"
	"github.com/cartwryte/sleuth/internal/engine"
	"github.com/cartwryte/sleuth/internal/fsops"
	"github.com/cartwryte/sleuth/internal/hash"
	"github.com/cartwryte/sleuth/internal/testutil"
)

// testFS wraps the real filesystem, records every mutation and fails the
// ones it is told to.
type testFS struct {
	*fsops.RealFS

	mu         sync.Mutex
	ops        []string
	failWrites map[string]bool
	failCopies map[string]bool
}

func newTestFS() *testFS {
	return &testFS{
		RealFS:     fsops.NewRealFS(),
		failWrites: make(map[string]bool),
		failCopies: make(map[string]bool),
	}
}

// failWrite makes AtomicWrite to path fail.
func (fs *testFS) failWrite(path string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.failWrites[path] = true
}

// failCopyTo makes CopyFile onto dst fail.
func (fs *testFS) failCopyTo(dst string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.failCopies[dst] = true
}

func (fs *testFS) heal() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.failWrites = make(map[string]bool)
	fs.failCopies = make(map[string]bool)
}

func (fs *testFS) record(op, path string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.ops = append(fs.ops, op+" "+path)
}

func (fs *testFS) resetOps() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	ops := fs.ops
	fs.ops = nil
	return ops
}

func (fs *testFS) AtomicWrite(path string, data []byte, perm os.FileMode) error {
	fs.mu.Lock()
	fail := fs.failWrites[path]
	fs.mu.Unlock()
	if fail {
		return fmt.Errorf("write %s: %w", path, os.ErrPermission)
	}
	fs.record("write", path)
	return fs.RealFS.AtomicWrite(path, data, perm)
}

func (fs *testFS) CopyFile(src, dst string) error {
	fs.mu.Lock()
	fail := fs.failCopies[dst]
	fs.mu.Unlock()
	if fail {
		return fmt.Errorf("copy to %s: %w", dst, os.ErrPermission)
	}
	fs.record("copy", dst)
	return fs.RealFS.CopyFile(src, dst)
}

func (fs *testFS) Remove(path string) error {
	fs.record("remove", path)
	return fs.RealFS.Remove(path)
}

var installTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func setupTestEngine(t *testing.T, version string) (*engine.Engine, *testFS, string) {
	t.Helper()
	root := testutil.NewShop(t, version)
	fs := newTestFS()

	eng := engine.New(
		fs,
		hash.NewSHA256Hasher(),
		clock.NewFakeClock(installTime),
		config.DefaultConfig(),
		zap.NewNop(),
	)
	return eng, fs, root
}

func shopPath(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}

func backupDir(root string) string {
	return filepath.Join(root, "system", "storage", "backup", "cartwryte-sleuth")
}
