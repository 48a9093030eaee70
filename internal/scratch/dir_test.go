package scratch

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestNew(t *testing.T) {
	t.Parallel()

	base := filepath.Join(t.TempDir(), "mr_tmp")

	d, err := New(base)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer d.Close()

	if d.Path() != base {
		t.Errorf("Path() = %s, want %s", d.Path(), base)
	}

	info, err := os.Stat(base)
	if err != nil {
		t.Fatalf("scratch dir not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("scratch path should be a directory")
	}
}

func TestNew_AvoidsCollisions(t *testing.T) {
	t.Parallel()

	base := filepath.Join(t.TempDir(), "mr_tmp")

	// A plain file occupies the first name.
	if err := os.WriteFile(base, nil, 0o644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	first, err := New(base)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer first.Close()

	second, err := New(base)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer second.Close()

	if first.Path() != base+"_" {
		t.Errorf("first Path() = %s, want %s", first.Path(), base+"_")
	}
	if second.Path() != base+"__" {
		t.Errorf("second Path() = %s, want %s", second.Path(), base+"__")
	}
}

func TestNew_ConcurrentCreatorsGetDistinctPaths(t *testing.T) {
	t.Parallel()

	base := filepath.Join(t.TempDir(), "mr_tmp")

	const n = 16
	dirs := make([]*Dir, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := New(base)
			if err != nil {
				t.Errorf("New failed: %v", err)
				return
			}
			dirs[i] = d
		}()
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, d := range dirs {
		if d == nil {
			continue
		}
		if seen[d.Path()] {
			t.Errorf("path %s handed out twice", d.Path())
		}
		seen[d.Path()] = true
		d.Close()
	}
}

func TestClose_RemovesTree(t *testing.T) {
	t.Parallel()

	d, err := New(filepath.Join(t.TempDir(), "work"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	sub, err := d.Sub("input_chunks")
	if err != nil {
		t.Fatalf("Sub failed: %v", err)
	}
	if err := os.WriteFile(sub.Join("0"), []byte("a\t1\n"), 0o644); err != nil {
		t.Fatalf("write chunk failed: %v", err)
	}

	path := d.Path()
	if err := d.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("scratch dir still present after Close: %v", err)
	}

	// Second Close of either scope is a no-op.
	if err := d.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if err := sub.Close(); err != nil {
		t.Errorf("Close of already removed sub dir failed: %v", err)
	}
}

func TestNew_MissingParent(t *testing.T) {
	t.Parallel()

	_, err := New(filepath.Join(t.TempDir(), "missing", "mr_tmp"))
	if err == nil {
		t.Fatal("New should fail when the parent directory does not exist")
	}
}
