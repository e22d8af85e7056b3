package storage

import (
	"errors"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"

	"foliohost/pkg/domain"
)

func testFileSet() domain.DeploymentFileSet {
	return domain.DeploymentFileSet{
		"index.html":             "<html>index</html>",
		"case-study-proj-a.html": "<html>case study</html>",
	}
}

func TestWriteSiteAndReadBack(t *testing.T) {
	store := NewLocalStoreFS(memfs.New())
	if err := store.WriteSite("alice", testFileSet()); err != nil {
		t.Fatalf("write site: %v", err)
	}
	data, err := store.ReadFile("alice", "index.html")
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "<html>index</html>" {
		t.Fatalf("unexpected content: %s", data)
	}
	if !store.SiteExists("alice") {
		t.Fatalf("site dir should exist")
	}
}

func TestWriteSiteRequiresIndex(t *testing.T) {
	store := NewLocalStoreFS(memfs.New())
	err := store.WriteSite("alice", domain.DeploymentFileSet{"about.html": "x"})
	if err == nil {
		t.Fatalf("file set without index.html must be rejected")
	}
}

func TestWriteSiteRejectsPathEscapes(t *testing.T) {
	store := NewLocalStoreFS(memfs.New())
	for _, name := range []string{"../evil.html", "a/b.html", ".hidden"} {
		files := testFileSet()
		files[name] = "x"
		if err := store.WriteSite("alice", files); !errors.Is(err, ErrBadFilename) {
			t.Fatalf("filename %q should be rejected, got %v", name, err)
		}
	}
}

func TestWriteSitePrunesStaleFiles(t *testing.T) {
	store := NewLocalStoreFS(memfs.New())
	if err := store.WriteSite("alice", testFileSet()); err != nil {
		t.Fatalf("first write: %v", err)
	}
	smaller := domain.DeploymentFileSet{"index.html": "<html>v2</html>"}
	if err := store.WriteSite("alice", smaller); err != nil {
		t.Fatalf("second write: %v", err)
	}
	if _, err := store.ReadFile("alice", "case-study-proj-a.html"); err == nil {
		t.Fatalf("removed case-study page should be pruned on republish")
	}
	data, err := store.ReadFile("alice", "index.html")
	if err != nil || string(data) != "<html>v2</html>" {
		t.Fatalf("index not updated: %s err %v", data, err)
	}
}

func TestRemoveSiteIdempotent(t *testing.T) {
	store := NewLocalStoreFS(memfs.New())
	if err := store.WriteSite("alice", testFileSet()); err != nil {
		t.Fatalf("write site: %v", err)
	}
	if err := store.RemoveSite("alice"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if store.SiteExists("alice") {
		t.Fatalf("site dir should be gone")
	}
	if err := store.RemoveSite("alice"); err != nil {
		t.Fatalf("second remove should be a no-op, got %v", err)
	}
}

func TestRenameLeavesSingleDirectory(t *testing.T) {
	store := NewLocalStoreFS(memfs.New())
	files := testFileSet()
	if err := store.WriteSite("alice", files); err != nil {
		t.Fatalf("write old: %v", err)
	}
	// Orchestrator ordering: write new, verify, then drop old.
	if err := store.WriteSite("alice-design", files); err != nil {
		t.Fatalf("write new: %v", err)
	}
	if err := store.RemoveSite("alice"); err != nil {
		t.Fatalf("remove old: %v", err)
	}
	if store.SiteExists("alice") {
		t.Fatalf("old directory must be gone after rename")
	}
	for name := range files {
		if _, err := store.ReadFile("alice-design", name); err != nil {
			t.Fatalf("new directory missing %s: %v", name, err)
		}
	}
}
