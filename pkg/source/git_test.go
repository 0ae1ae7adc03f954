package source

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentsync/agentsync/pkg/cache"
)

// requireGit skips the test if git is not available.
func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found in PATH")
	}
}

// setupBareRepo creates a bare git repo with one commit containing asset
// files under agents/ and pipelines/ci/. Returns the bare repo path, which
// is usable as a git URL.
func setupBareRepo(t *testing.T) string {
	t.Helper()

	workDir := filepath.Join(t.TempDir(), "work")

	for _, args := range [][]string{
		{"init", "--initial-branch=main", workDir},
		{"-C", workDir, "config", "user.email", "test@test.com"},
		{"-C", workDir, "config", "user.name", "Test"},
	} {
		if out, err := exec.Command("git", args...).CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}

	os.MkdirAll(filepath.Join(workDir, "agents"), 0o755)
	os.MkdirAll(filepath.Join(workDir, "pipelines", "ci"), 0o755)
	os.WriteFile(filepath.Join(workDir, "agents", "reviewer.md"),
		[]byte("---\nname: reviewer\ndescription: Reviews changes.\n---\n# Reviewer\n"), 0o644)
	os.WriteFile(filepath.Join(workDir, "pipelines", "ci", "build.md"),
		[]byte("---\nname: build\ndescription: Build pipeline.\n---\n# Build\n"), 0o644)

	for _, args := range [][]string{
		{"-C", workDir, "add", "."},
		{"-C", workDir, "commit", "-m", "initial commit"},
	} {
		if out, err := exec.Command("git", args...).CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}

	bareDir := filepath.Join(t.TempDir(), "repo.git")
	if out, err := exec.Command("git", "clone", "--bare", workDir, bareDir).CombinedOutput(); err != nil {
		t.Fatalf("git clone --bare: %v\n%s", err, out)
	}

	return bareDir
}

func TestGitSourceCloneAndReuseCache(t *testing.T) {
	requireGit(t)

	repoURL := setupBareRepo(t)
	c := cache.New(t.TempDir())
	src := &GitSource{URL: repoURL, Subdir: "agents", Cache: c}

	resolved, err := src.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resolved.Reused {
		t.Error("Reused = true on first clone")
	}
	if _, err := os.Stat(filepath.Join(resolved.Dir, "reviewer.md")); err != nil {
		t.Errorf("expected cloned asset file: %v", err)
	}
	if resolved.Dir != filepath.Join(c.Dir(cache.Key(repoURL)), "agents") {
		t.Errorf("Dir = %q, want the agents subdir of the cache checkout", resolved.Dir)
	}

	// Second resolve hits the existing cache directory and pulls.
	again, err := src.Resolve(context.Background())
	if err != nil {
		t.Fatalf("second Resolve() error = %v", err)
	}
	if again.Dir != resolved.Dir {
		t.Errorf("second Resolve() Dir = %q, want %q", again.Dir, resolved.Dir)
	}
}

func TestGitSourcePullFailureIsFatal(t *testing.T) {
	requireGit(t)

	repoURL := setupBareRepo(t)
	c := cache.New(t.TempDir())

	// A cache directory that is not a git checkout makes the update fail;
	// the resolver must report it rather than serve the stale directory.
	key := cache.Key(repoURL)
	if err := os.MkdirAll(filepath.Join(c.Dir(key), "agents"), 0o755); err != nil {
		t.Fatal(err)
	}

	src := &GitSource{URL: repoURL, Subdir: "agents", Cache: c}
	_, err := src.Resolve(context.Background())
	if err == nil {
		t.Fatal("Resolve() error = nil, want update failure")
	}
	if !strings.Contains(err.Error(), "updating cached checkout") {
		t.Errorf("Resolve() error = %v, want update failure", err)
	}
}

func TestGitSourceCloneFailureEchoesURL(t *testing.T) {
	requireGit(t)

	badURL := filepath.Join(t.TempDir(), "no-such-repo.git")
	c := cache.New(t.TempDir())

	src := &GitSource{URL: badURL, Subdir: "agents", Cache: c}
	_, err := src.Resolve(context.Background())
	if err == nil {
		t.Fatal("Resolve() error = nil, want clone failure")
	}
	if !strings.Contains(err.Error(), badURL) {
		t.Errorf("Resolve() error = %v, want the URL echoed", err)
	}

	// A failed clone must not leave a half-populated cache directory behind.
	exists, statErr := c.Exists(cache.Key(badURL))
	if statErr != nil {
		t.Fatal(statErr)
	}
	if exists {
		t.Error("cache directory left behind after failed clone")
	}
}

func TestGitSourceMissingSubdir(t *testing.T) {
	requireGit(t)

	repoURL := setupBareRepo(t)
	c := cache.New(t.TempDir())

	src := &GitSource{URL: repoURL, Subdir: "templates", Cache: c}
	if _, err := src.Resolve(context.Background()); err == nil {
		t.Error("Resolve() error = nil, want missing asset directory error")
	}
}

func TestGitSourceReusesMatchingCheckout(t *testing.T) {
	requireGit(t)

	repoURL := setupBareRepo(t)

	// A local clone of the same repository; git sets its origin to repoURL.
	checkout := filepath.Join(t.TempDir(), "checkout")
	if out, err := exec.Command("git", "clone", repoURL, checkout).CombinedOutput(); err != nil {
		t.Fatalf("git clone: %v\n%s", err, out)
	}

	cacheRoot := t.TempDir()
	src := &GitSource{URL: repoURL, Subdir: "agents", Checkout: checkout, Cache: cache.New(cacheRoot)}

	resolved, err := src.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !resolved.Reused {
		t.Error("Reused = false, want the local checkout fast path")
	}
	if resolved.Dir != filepath.Join(checkout, "agents") {
		t.Errorf("Dir = %q, want %q", resolved.Dir, filepath.Join(checkout, "agents"))
	}

	// The fast path must not have touched the cache.
	entries, err := os.ReadDir(cacheRoot)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("cache root has %d entries after fast path, want 0", len(entries))
	}
}

func TestGitSourceIgnoresMismatchedCheckout(t *testing.T) {
	requireGit(t)

	repoURL := setupBareRepo(t)
	otherURL := setupBareRepo(t)

	checkout := filepath.Join(t.TempDir(), "checkout")
	if out, err := exec.Command("git", "clone", otherURL, checkout).CombinedOutput(); err != nil {
		t.Fatalf("git clone: %v\n%s", err, out)
	}

	c := cache.New(t.TempDir())
	src := &GitSource{URL: repoURL, Subdir: "agents", Checkout: checkout, Cache: c}

	resolved, err := src.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resolved.Reused {
		t.Error("Reused = true for a checkout of a different repository")
	}
	if !strings.HasPrefix(resolved.Dir, c.Dir(cache.Key(repoURL))) {
		t.Errorf("Dir = %q, want a cache checkout", resolved.Dir)
	}
}

func TestNormalizeGitURL(t *testing.T) {
	tests := map[string]struct {
		a, b string
		same bool
	}{
		"dot git suffix": {
			a:    "https://github.com/a/b.git",
			b:    "https://github.com/a/b",
			same: true,
		},
		"trailing slash": {
			a:    "https://github.com/a/b/",
			b:    "https://github.com/a/b",
			same: true,
		},
		"different repos": {
			a:    "https://github.com/a/b.git",
			b:    "https://github.com/a/c.git",
			same: false,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := normalizeGitURL(tc.a) == normalizeGitURL(tc.b); got != tc.same {
				t.Errorf("normalize(%q) == normalize(%q) is %v, want %v", tc.a, tc.b, got, tc.same)
			}
		})
	}
}
