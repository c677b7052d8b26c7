package history

import (
	"bytes"
	"os/exec"
	"strings"
	"time"

	"typecov/internal/coverage"
)

// ResolveGitMetadata reads the current commit hash and commit time from the
// project worktree. Returns zero values when git is unavailable or the
// directory is not a repository.
func ResolveGitMetadata(projectRoot string) (string, time.Time) {
	commitSHA := runGit(projectRoot, "rev-parse", "--short=12", "HEAD")
	commitTimeRaw := runGit(projectRoot, "show", "-s", "--format=%cI", "HEAD")
	if commitSHA == "" || commitTimeRaw == "" {
		return "", time.Time{}
	}

	commitTime, err := time.Parse(time.RFC3339, commitTimeRaw)
	if err != nil {
		return commitSHA, time.Time{}
	}
	return commitSHA, commitTime.UTC()
}

// StampSnapshot fills the snapshot's commit fields from the worktree when
// the measurement did not already carry them. Failure leaves them absent.
func StampSnapshot(snapshot *coverage.Snapshot, projectRoot string) {
	if snapshot.CommitSHA != "" {
		return
	}
	sha, commitTime := ResolveGitMetadata(projectRoot)
	if sha == "" {
		return
	}
	snapshot.CommitSHA = sha
	if !commitTime.IsZero() {
		snapshot.CommitTimestamp = commitTime.Unix()
	}
}

func runGit(projectRoot string, args ...string) string {
	cmd := exec.Command("git", append([]string{"-C", projectRoot}, args...)...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return ""
	}
	return strings.TrimSpace(stdout.String())
}
