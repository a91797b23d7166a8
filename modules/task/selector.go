package task

import (
	"context"
	"fmt"

	domain "github.com/example/task-workflow/domain/task"
	userdomain "github.com/example/task-workflow/domain/user"
)

// Directory is the part of the user directory the task module reads.
type Directory interface {
	ListUsers(ctx context.Context) ([]userdomain.Profile, error)
	UserExists(ctx context.Context, userID string) (bool, error)
	ResolveUsers(ctx context.Context, userIDs []string) (map[string]string, error)
}

// Selector picks the assignee for smart assignment.
//
// Selection is a read followed by a separate create, with no lock spanning
// both. Two concurrent smart assignments may therefore pick the same user and
// leave the distribution temporarily uneven. Every task is still written
// exactly once with a valid assignee.
type Selector struct {
	directory Directory
	loads     LoadCounter
}

// NewSelector creates a Selector.
func NewSelector(directory Directory, loads LoadCounter) *Selector {
	return &Selector{directory: directory, loads: loads}
}

// SelectLeastLoaded returns the user with the fewest tasks in any status.
// Ties go to the user listed first by the directory.
func (s *Selector) SelectLeastLoaded(ctx context.Context) (userdomain.Profile, error) {
	users, err := s.directory.ListUsers(ctx)
	if err != nil {
		return userdomain.Profile{}, domain.StorageError("list users", err)
	}
	if len(users) == 0 {
		return userdomain.Profile{}, domain.ErrNoEligibleAssignee
	}

	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}

	counts, err := s.loads.Counts(ctx, ids)
	if err != nil {
		return userdomain.Profile{}, err
	}

	idx := pickLeastLoaded(ids, counts)
	if idx < 0 {
		return userdomain.Profile{}, fmt.Errorf("%w: empty candidate list", domain.ErrNoEligibleAssignee)
	}
	return users[idx], nil
}

// pickLeastLoaded returns the index of the first id with the minimum count,
// or -1 when ids is empty. Ids absent from counts have no tasks.
func pickLeastLoaded(ids []string, counts map[string]int64) int {
	best := -1
	var bestCount int64
	for i, id := range ids {
		n := counts[id]
		if best < 0 || n < bestCount {
			best, bestCount = i, n
		}
	}
	return best
}
