package coursesync_test

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/temirov/coursesync/internal/checkpoint"
	"github.com/temirov/coursesync/internal/coursesync"
	"github.com/temirov/coursesync/internal/execshell"
	"github.com/temirov/coursesync/internal/gitrepo"
	"github.com/temirov/coursesync/internal/shared"
)

const (
	updateRefsMinimumMajorVersion = 2
	updateRefsMinimumMinorVersion = 38
)

var gitVersionPattern = regexp.MustCompile(`(\d+)\.(\d+)`)

// gitSupportsUpdateRefs reports whether the installed git understands rebase --update-refs.
func gitSupportsUpdateRefs() bool {
	output, runError := exec.Command("git", "version").Output()
	if runError != nil {
		return false
	}
	matches := gitVersionPattern.FindStringSubmatch(string(output))
	if len(matches) != 3 {
		return false
	}
	major, _ := strconv.Atoi(matches[1])
	minor, _ := strconv.Atoi(matches[2])
	if major != updateRefsMinimumMajorVersion {
		return major > updateRefsMinimumMajorVersion
	}
	return minor >= updateRefsMinimumMinorVersion
}

func runGit(directory string, arguments ...string) string {
	command := exec.Command("git", arguments...)
	command.Dir = directory
	command.Env = append(os.Environ(), "GIT_EDITOR=true", "GIT_CONFIG_NOSYSTEM=1", "HOME="+directory)
	output, runError := command.CombinedOutput()
	Expect(runError).NotTo(HaveOccurred(), "git %s: %s", strings.Join(arguments, " "), string(output))
	return strings.TrimSpace(string(output))
}

func writeLessonFile(directory string, name string, content string) {
	Expect(os.WriteFile(filepath.Join(directory, name), []byte(content), 0o644)).To(Succeed())
}

func commitLessonFile(directory string, name string, content string, message string) {
	writeLessonFile(directory, name, content)
	runGit(directory, "add", name)
	runGit(directory, "commit", "-m", message)
}

// seedCourse builds main -> 01-intro-solution -> 02-loops-solution with one exercise commit on top of each solution,
// and publishes every branch to a bare origin.
func seedCourse(root string) string {
	repository := filepath.Join(root, "course")
	origin := filepath.Join(root, "origin.git")
	Expect(os.MkdirAll(repository, 0o755)).To(Succeed())

	runGit(root, "init", "--bare", "-b", "main", origin)
	runGit(repository, "init", "-b", "main")
	runGit(repository, "config", "user.name", "Course Author")
	runGit(repository, "config", "user.email", "author@example.com")
	runGit(repository, "config", "commit.gpgsign", "false")
	commitLessonFile(repository, "README.md", "course\n", "initial commit")

	runGit(repository, "checkout", "-b", "01-intro-solution")
	commitLessonFile(repository, "intro.txt", "print('hello')\n", "intro solution")
	runGit(repository, "checkout", "-b", "01-intro")
	commitLessonFile(repository, "intro.txt", "# TODO: print a greeting\n", "intro exercise")

	runGit(repository, "checkout", "01-intro-solution")
	runGit(repository, "checkout", "-b", "02-loops-solution")
	commitLessonFile(repository, "loops.txt", "for i in range(3): print(i)\n", "loops solution")
	runGit(repository, "checkout", "-b", "02-loops")
	commitLessonFile(repository, "loops.txt", "# TODO: print three numbers\n", "loops exercise")

	runGit(repository, "checkout", "main")
	runGit(repository, "remote", "add", "origin", origin)
	runGit(repository, "push", "-u", "origin", "main", "01-intro", "01-intro-solution", "02-loops", "02-loops-solution")
	return repository
}

func newShellService(output *bytes.Buffer) *coursesync.Service {
	gitExecutor, executorError := execshell.NewShellExecutor(zap.NewNop(), execshell.NewOSCommandRunner())
	Expect(executorError).NotTo(HaveOccurred())
	service, serviceError := coursesync.NewService(coursesync.ServiceDependencies{
		GitExecutor: gitExecutor,
		Output:      output,
	})
	Expect(serviceError).NotTo(HaveOccurred())
	return service
}

func shellOptions(repository string) coursesync.Options {
	return coursesync.Options{
		RepositoryPath: repository,
		Remote:         "origin",
		MainBranch:     "main",
	}
}

func expectRegenerated(repository string) {
	Expect(runGit(repository, "rev-parse", "02-loops-solution~1")).To(Equal(runGit(repository, "rev-parse", "01-intro-solution")))
	Expect(runGit(repository, "rev-parse", "01-intro-solution~1")).To(Equal(runGit(repository, "rev-parse", "main")))
	Expect(runGit(repository, "rev-parse", "01-intro~1")).To(Equal(runGit(repository, "rev-parse", "01-intro-solution")))
	Expect(runGit(repository, "rev-parse", "02-loops~1")).To(Equal(runGit(repository, "rev-parse", "02-loops-solution")))
	Expect(runGit(repository, "show", "01-intro:intro.txt")).To(Equal("# TODO: print a greeting"))
	Expect(runGit(repository, "show", "02-loops:loops.txt")).To(Equal("# TODO: print three numbers"))
	Expect(runGit(repository, "log", "-1", "--format=%s", "02-loops")).To(Equal("loops exercise"))
	Expect(runGit(repository, "rev-parse", "--abbrev-ref", "HEAD")).To(Equal("main"))
}

var _ = Describe("Lesson branch synchronization", func() {
	var (
		root       string
		repository string
		output     *bytes.Buffer
		service    *coursesync.Service
	)

	BeforeEach(func() {
		if !gitSupportsUpdateRefs() {
			Skip("git 2.38 or newer is required for rebase --update-refs")
		}
		var tempError error
		root, tempError = os.MkdirTemp("", "coursesync-e2e-")
		Expect(tempError).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, root)

		repository = seedCourse(root)
		output = &bytes.Buffer{}
		service = newShellService(output)
	})

	It("discovers local and remote-tracking lesson branches once each", func() {
		branchSet, discoveryError := service.Discover(context.Background(), shellOptions(repository))
		Expect(discoveryError).NotTo(HaveOccurred())
		Expect(branchSet.Names()).To(Equal([]string{"01-intro", "01-intro-solution", "02-loops", "02-loops-solution"}))
	})

	It("rebases the solution chain onto main and regenerates every exercise", func() {
		commitLessonFile(repository, "README.md", "course\nupdated setup notes\n", "update setup notes")

		Expect(service.Run(context.Background(), coursesync.ModeRebase, shellOptions(repository))).To(Succeed())

		expectRegenerated(repository)
		Expect(runGit(repository, "show", "01-intro:README.md")).To(ContainSubstring("updated setup notes"))
		Expect(output.String()).To(ContainSubstring("Lesson branches regenerated"))

		gitDirectory := runGit(repository, "rev-parse", "--absolute-git-dir")
		_, statError := os.Stat(filepath.Join(checkpoint.StateDirectory(gitDirectory), "checkpoint.yaml"))
		Expect(os.IsNotExist(statError)).To(BeTrue())
	})

	It("force-pushes every lesson branch after regeneration", func() {
		commitLessonFile(repository, "README.md", "course\nupdated setup notes\n", "update setup notes")
		Expect(service.Run(context.Background(), coursesync.ModeRebase, shellOptions(repository))).To(Succeed())

		Expect(service.Run(context.Background(), coursesync.ModeForce, shellOptions(repository))).To(Succeed())

		origin := filepath.Join(root, "origin.git")
		for _, branch := range []string{"01-intro", "01-intro-solution", "02-loops", "02-loops-solution"} {
			Expect(runGit(origin, "rev-parse", branch)).To(Equal(runGit(repository, "rev-parse", branch)), branch)
		}
		Expect(runGit(repository, "rev-parse", "--abbrev-ref", "HEAD")).To(Equal("main"))
		Expect(output.String()).To(ContainSubstring("Lesson branches force-pushed"))
	})

	It("pauses on a rebase conflict and resumes after the operator continues", func() {
		commitLessonFile(repository, "intro.txt", "print('draft')\n", "draft intro on main")

		runError := service.Run(context.Background(), coursesync.ModeRebase, shellOptions(repository))
		Expect(runError).To(HaveOccurred())
		Expect(output.String()).To(ContainSubstring("Run paused"))

		manager, managerError := gitrepo.NewRepositoryManager(newRealGitExecutor(), shared.OSFileSystem{})
		Expect(managerError).NotTo(HaveOccurred())
		inProgress, inProgressError := manager.OperationInProgress(context.Background(), repository)
		Expect(inProgressError).NotTo(HaveOccurred())
		Expect(inProgress).To(Equal(gitrepo.OperationRebase))
		Expect(service.Resume(context.Background(), shellOptions(repository))).To(MatchError(coursesync.ErrOperationStillInProgress))

		writeLessonFile(repository, "intro.txt", "print('hello')\n")
		runGit(repository, "add", "intro.txt")
		runGit(repository, "rebase", "--continue")

		output.Reset()
		Expect(service.Resume(context.Background(), shellOptions(repository))).To(Succeed())
		expectRegenerated(repository)
		Expect(runGit(repository, "show", "01-intro-solution:intro.txt")).To(Equal("print('hello')"))
	})

	It("refuses to force-push while a regeneration is paused", func() {
		commitLessonFile(repository, "intro.txt", "print('draft')\n", "draft intro on main")
		Expect(service.Run(context.Background(), coursesync.ModeRebase, shellOptions(repository))).To(HaveOccurred())

		origin := filepath.Join(root, "origin.git")
		before := runGit(origin, "for-each-ref", "--format=%(refname) %(objectname)", "refs/heads")
		Expect(service.Run(context.Background(), coursesync.ModeForce, shellOptions(repository))).To(MatchError(coursesync.ErrPendingCheckpoint))
		Expect(runGit(origin, "for-each-ref", "--format=%(refname) %(objectname)", "refs/heads")).To(Equal(before))
	})

	It("plans a dry run without changing any branch", func() {
		before := runGit(repository, "for-each-ref", "--format=%(refname) %(objectname)", "refs/heads")
		options := shellOptions(repository)
		options.DryRun = true

		Expect(service.Run(context.Background(), coursesync.ModeRebase, options)).To(Succeed())

		Expect(runGit(repository, "for-each-ref", "--format=%(refname) %(objectname)", "refs/heads")).To(Equal(before))
		Expect(output.String()).To(ContainSubstring("PLAN: git rebase --update-refs main"))
		Expect(output.String()).To(ContainSubstring("PLAN: git branch -D 01-intro"))
	})
})

func newRealGitExecutor() shared.GitExecutor {
	gitExecutor, executorError := execshell.NewShellExecutor(zap.NewNop(), execshell.NewOSCommandRunner())
	Expect(executorError).NotTo(HaveOccurred())
	return gitExecutor
}
