package project

import (
	"github.com/go-git/go-git/v5"
)

// gitStatus reports the branch and dirtiness of the repository enclosing dir.
// Projects outside a repository, or with no commits yet, report "" and false.
func gitStatus(dir string) (branch string, dirty bool) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", false
	}

	head, err := repo.Head()
	if err != nil {
		return "", false
	}
	if head.Name().IsBranch() {
		branch = head.Name().Short()
	} else {
		branch = head.Hash().String()[:7]
	}

	wt, err := repo.Worktree()
	if err != nil {
		return branch, false
	}
	st, err := wt.Status()
	if err != nil {
		return branch, false
	}
	return branch, !st.IsClean()
}
