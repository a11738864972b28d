package publisher

import (
	"fmt"
	"log"
	"os/exec"
	"strings"
)

// Identity is the automation author/committer used for generated commits
type Identity struct {
	Name  string
	Email string
}

func (id Identity) String() string {
	return fmt.Sprintf("%s <%s>", id.Name, id.Email)
}

// Publisher commits the generated output file when it changed
type Publisher struct {
	repoDir    string
	outputPath string // relative to repoDir
	identity   Identity
	push       bool
}

// NewPublisher creates a new Publisher instance. outputPath is the path of
// the generated file relative to the repository root.
func NewPublisher(repoDir, outputPath string, identity Identity, push bool) *Publisher {
	return &Publisher{
		repoDir:    repoDir,
		outputPath: outputPath,
		identity:   identity,
		push:       push,
	}
}

// Publish commits and pushes the output file if it changed. It returns true
// when a commit was created. A clean working copy is a successful no-op.
func (p *Publisher) Publish(message string) (bool, error) {
	status, err := p.git("status", "--porcelain", "--", p.outputPath)
	if err != nil {
		return false, fmt.Errorf("failed to check working copy status: %w", err)
	}

	if !HasChanges(status, p.outputPath) {
		log.Printf("No changes to %s, skipping commit\n", p.outputPath)
		return false, nil
	}

	if _, err := p.git("add", "--", p.outputPath); err != nil {
		return false, fmt.Errorf("failed to stage %s: %w", p.outputPath, err)
	}

	// -c overrides scope the identity to this one commit; --only restricts
	// the commit to the output path
	args := []string{
		"-c", "user.name=" + p.identity.Name,
		"-c", "user.email=" + p.identity.Email,
		"commit",
		"--author", p.identity.String(),
		"-m", message,
		"--only", "--", p.outputPath,
	}
	if _, err := p.git(args...); err != nil {
		return false, fmt.Errorf("failed to commit %s: %w", p.outputPath, err)
	}
	log.Printf("Committed %s as %s\n", p.outputPath, p.identity)

	if p.push {
		if _, err := p.git("push"); err != nil {
			return false, fmt.Errorf("failed to push: %w", err)
		}
		log.Println("Pushed to remote")
	}

	return true, nil
}

// git runs a git command in the repository directory and returns its output
func (p *Publisher) git(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = p.repoDir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %v: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// HasChanges reports whether a `git status --porcelain` listing contains a
// change to the given path
func HasChanges(porcelain, path string) bool {
	for _, line := range strings.Split(porcelain, "\n") {
		if len(line) < 4 {
			continue
		}
		// Porcelain format: XY <path>, with a rename arrow for moves
		entry := strings.TrimSpace(line[3:])
		if i := strings.LastIndex(entry, " -> "); i >= 0 {
			entry = entry[i+4:]
		}
		if strings.Trim(entry, `"`) == path {
			return true
		}
	}
	return false
}
