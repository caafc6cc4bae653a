package coursesync

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// SolutionSuffixConstant marks a solution branch.
	SolutionSuffixConstant           = "-solution"
	missingSolutionsTemplateConstant = "%w: %s"
	branchListSeparatorConstant      = ", "
)

// BranchPair associates an exercise branch with its solution branch.
type BranchPair struct {
	Exercise string
	Solution string
}

// BranchSet is a sorted, deduplicated collection of lesson branch names.
type BranchSet struct {
	names []string
}

// NewBranchSet deduplicates and sorts the provided names.
func NewBranchSet(names []string) BranchSet {
	unique := make(map[string]struct{}, len(names))
	sorted := make([]string, 0, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if len(trimmed) == 0 {
			continue
		}
		if _, seen := unique[trimmed]; seen {
			continue
		}
		unique[trimmed] = struct{}{}
		sorted = append(sorted, trimmed)
	}
	sort.Strings(sorted)
	return BranchSet{names: sorted}
}

// Names returns the branch names in lexicographic order.
func (set BranchSet) Names() []string {
	return append([]string{}, set.names...)
}

// Len returns the number of branches.
func (set BranchSet) Len() int {
	return len(set.names)
}

// Solutions returns the solution branches in lexicographic order.
func (set BranchSet) Solutions() []string {
	solutions := make([]string, 0, len(set.names))
	for _, name := range set.names {
		if IsSolution(name) {
			solutions = append(solutions, name)
		}
	}
	return solutions
}

// Exercises returns the exercise branches in lexicographic order.
func (set BranchSet) Exercises() []string {
	exercises := make([]string, 0, len(set.names))
	for _, name := range set.names {
		if !IsSolution(name) {
			exercises = append(exercises, name)
		}
	}
	return exercises
}

// LatestSolution returns the lexicographically greatest solution branch.
func (set BranchSet) LatestSolution() (string, bool) {
	solutions := set.Solutions()
	if len(solutions) == 0 {
		return "", false
	}
	return solutions[len(solutions)-1], true
}

// Pairs associates every exercise with its solution. ErrMissingSolution lists exercises without one.
func (set BranchSet) Pairs() ([]BranchPair, error) {
	present := make(map[string]struct{}, len(set.names))
	for _, name := range set.names {
		present[name] = struct{}{}
	}

	exercises := set.Exercises()
	pairs := make([]BranchPair, 0, len(exercises))
	missing := make([]string, 0)
	for _, exercise := range exercises {
		solution := SolutionFor(exercise)
		if _, exists := present[solution]; !exists {
			missing = append(missing, exercise)
			continue
		}
		pairs = append(pairs, BranchPair{Exercise: exercise, Solution: solution})
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf(missingSolutionsTemplateConstant, ErrMissingSolution, strings.Join(missing, branchListSeparatorConstant))
	}
	return pairs, nil
}

// IsSolution reports whether the branch name is a solution branch.
func IsSolution(branch string) bool {
	return strings.HasSuffix(branch, SolutionSuffixConstant)
}

// SolutionFor returns the solution branch name for an exercise branch.
func SolutionFor(exercise string) string {
	return exercise + SolutionSuffixConstant
}
