package coursesync

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/temirov/coursesync/internal/execshell"
	"github.com/temirov/coursesync/internal/shared"
)

const (
	gitForEachRefSubcommandConstant  = "for-each-ref"
	gitRefNameFormatConstant         = "--format=%(refname)"
	localReferenceNamespaceConstant  = "refs/heads"
	remoteReferenceNamespaceConstant = "refs/remotes"
	referenceSeparatorConstant       = "/"
	discoveryErrorTemplateConstant   = "failed to list branches: %w"
)

// lessonReferencePattern matches a two-digit lesson prefix anywhere in a full ref path.
var lessonReferencePattern = regexp.MustCompile(`/\d\d-`)

// DiscoverBranches lists local and remote-tracking lesson branches.
func DiscoverBranches(executionContext context.Context, executor shared.GitExecutor, repositoryPath string) (BranchSet, error) {
	executionResult, executionError := executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments: []string{
			gitForEachRefSubcommandConstant,
			gitRefNameFormatConstant,
			localReferenceNamespaceConstant,
			remoteReferenceNamespaceConstant,
		},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return BranchSet{}, fmt.Errorf(discoveryErrorTemplateConstant, executionError)
	}
	return NewBranchSet(ParseLessonReferences(executionResult.StandardOutput)), nil
}

// ParseLessonReferences keeps lesson refs from for-each-ref output and strips their namespace.
func ParseLessonReferences(output string) []string {
	branches := make([]string, 0)
	for _, line := range strings.Split(output, "\n") {
		reference := strings.TrimSpace(line)
		if len(reference) == 0 || !lessonReferencePattern.MatchString(reference) {
			continue
		}
		branch := stripReferenceNamespace(reference)
		if len(branch) == 0 {
			continue
		}
		branches = append(branches, branch)
	}
	return branches
}

func stripReferenceNamespace(reference string) string {
	localPrefix := localReferenceNamespaceConstant + referenceSeparatorConstant
	if strings.HasPrefix(reference, localPrefix) {
		return strings.TrimPrefix(reference, localPrefix)
	}
	remotePrefix := remoteReferenceNamespaceConstant + referenceSeparatorConstant
	if strings.HasPrefix(reference, remotePrefix) {
		remoteAndBranch := strings.TrimPrefix(reference, remotePrefix)
		separatorIndex := strings.Index(remoteAndBranch, referenceSeparatorConstant)
		if separatorIndex < 0 {
			return ""
		}
		return remoteAndBranch[separatorIndex+1:]
	}
	return reference
}
