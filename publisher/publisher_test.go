package publisher

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestHasChanges(t *testing.T) {
	tests := []struct {
		name      string
		porcelain string
		path      string
		expected  bool
	}{
		{"clean tree", "", "index.html", false},
		{"modified output", " M index.html\n", "index.html", true},
		{"untracked output", "?? index.html\n", "index.html", true},
		{"staged output", "M  index.html\n", "index.html", true},
		{"other file changed", " M main.go\n", "index.html", false},
		{"output among others", " M main.go\n M index.html\n?? notes.txt\n", "index.html", true},
		{"quoted path", ` M "index.html"` + "\n", "index.html", true},
		{"renamed to output", "R  old.html -> index.html\n", "index.html", true},
		{"prefix does not match", " M index.html.bak\n", "index.html", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasChanges(tt.porcelain, tt.path); got != tt.expected {
				t.Errorf("HasChanges(%q, %q) = %v, want %v", tt.porcelain, tt.path, got, tt.expected)
			}
		})
	}
}

func TestIdentityString(t *testing.T) {
	id := Identity{Name: "er-capacity-bot", Email: "bot@example.com"}
	if got := id.String(); got != "er-capacity-bot <bot@example.com>" {
		t.Errorf("Identity.String() = %q", got)
	}
}

// initTestRepo creates a throwaway git repository with one tracked file
func initTestRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %s: %v: %s", strings.Join(args, " "), err, out)
		}
	}

	run("init")
	run("config", "user.name", "test")
	run("config", "user.email", "test@example.com")

	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>v1</html>"), 0644); err != nil {
		t.Fatal(err)
	}
	run("add", "index.html")
	run("commit", "-m", "initial")

	return dir
}

func TestPublishNoChanges(t *testing.T) {
	dir := initTestRepo(t)

	p := NewPublisher(dir, "index.html", Identity{Name: "er-capacity-bot", Email: "bot@example.com"}, false)
	committed, err := p.Publish("Automated: Updated ER capacity data.")
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if committed {
		t.Error("Publish() committed on a clean tree")
	}
}

func TestPublishWithChanges(t *testing.T) {
	dir := initTestRepo(t)

	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>v2</html>"), 0644); err != nil {
		t.Fatal(err)
	}
	// An unrelated change must not end up in the automated commit
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("untracked"), 0644); err != nil {
		t.Fatal(err)
	}

	p := NewPublisher(dir, "index.html", Identity{Name: "er-capacity-bot", Email: "bot@example.com"}, false)
	committed, err := p.Publish("Automated: Updated ER capacity data.")
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if !committed {
		t.Fatal("Publish() did not commit a modified output file")
	}

	show := func(format string) string {
		cmd := exec.Command("git", "show", "-s", "--format="+format, "HEAD")
		cmd.Dir = dir
		out, err := cmd.Output()
		if err != nil {
			t.Fatalf("git show: %v", err)
		}
		return strings.TrimSpace(string(out))
	}

	if got := show("%s"); got != "Automated: Updated ER capacity data." {
		t.Errorf("commit message = %q", got)
	}
	if got := show("%an <%ae>"); got != "er-capacity-bot <bot@example.com>" {
		t.Errorf("commit author = %q", got)
	}

	files := exec.Command("git", "show", "--name-only", "--format=", "HEAD")
	files.Dir = dir
	out, err := files.Output()
	if err != nil {
		t.Fatalf("git show --name-only: %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != "index.html" {
		t.Errorf("commit touches %q, want only index.html", got)
	}
}
