package coursesync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/coursesync/internal/checkpoint"
	"github.com/temirov/coursesync/internal/execshell"
	"github.com/temirov/coursesync/internal/gitrepo"
	"github.com/temirov/coursesync/internal/shared"
	"github.com/temirov/coursesync/internal/ui"
	"github.com/temirov/coursesync/internal/workflow"
)

const (
	gitPushSubcommandConstant         = "push"
	gitForceWithLeaseFlagConstant     = "--force-with-lease"
	pendingCheckpointTemplateConstant = "%w (%s, started %s): run \"coursesync resume\" or \"coursesync reset\""
	operationInProgressTemplate       = "%w: finish it with \"git %s --continue\" before resuming"
	protectedBranchesTemplateConstant = "%w: %s"
	remoteLookupErrorTemplateConstant = "failed to resolve %s for protection check: %w"
	summaryRenderErrorTemplate        = "failed to print summary: %w"
	checkpointTimestampLayoutConstant = "2006-01-02 15:04:05 MST"
	forcePushStartedLogMessage        = "force-pushing lesson branches"
	protectionSkippedLogMessage       = "branch protection check skipped"
	checkpointDiscardedLogMessage     = "checkpoint discarded"
	runResumedLogMessage              = "resuming unfinished run"
	remoteLogFieldConstant            = "remote"
	branchCountLogFieldConstant       = "branch_count"
	reasonLogFieldConstant            = "reason"
	phaseLogFieldConstant             = "phase"
	noCheckerReasonConstant           = "no GitHub token available"
)

// ProtectionChecker reports which branches a hosting service protects against force pushes.
type ProtectionChecker interface {
	ProtectedBranches(executionContext context.Context, repository gitrepo.RemoteURL, branches []string) ([]string, error)
}

// ServiceDependencies enumerates collaborators required by Service.
type ServiceDependencies struct {
	GitExecutor       shared.GitExecutor
	RepositoryManager *gitrepo.RepositoryManager
	FileSystem        shared.FileSystem
	Clock             shared.Clock
	ProtectionChecker ProtectionChecker
	Logger            *zap.Logger
	Output            io.Writer
	ColorEnabled      bool
}

// Options configures a single invocation.
type Options struct {
	RepositoryPath  string
	Remote          string
	MainBranch      string
	Interactive     bool
	DryRun          bool
	RequireClean    bool
	CheckProtection bool
}

// Service synchronizes lesson branches.
type Service struct {
	gitExecutor       shared.GitExecutor
	repositoryManager *gitrepo.RepositoryManager
	fileSystem        shared.FileSystem
	clock             shared.Clock
	protectionChecker ProtectionChecker
	logger            *zap.Logger
	output            io.Writer
	printer           *ui.SummaryPrinter
}

// NewService validates dependencies and fills defaults for optional ones.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrServiceDependenciesMissing
	}
	fileSystem := dependencies.FileSystem
	if fileSystem == nil {
		fileSystem = shared.OSFileSystem{}
	}
	repositoryManager := dependencies.RepositoryManager
	if repositoryManager == nil {
		manager, managerError := gitrepo.NewRepositoryManager(dependencies.GitExecutor, fileSystem)
		if managerError != nil {
			return nil, managerError
		}
		repositoryManager = manager
	}
	clock := dependencies.Clock
	if clock == nil {
		clock = shared.SystemClock{}
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	output := dependencies.Output
	if output == nil {
		output = io.Discard
	}

	return &Service{
		gitExecutor:       dependencies.GitExecutor,
		repositoryManager: repositoryManager,
		fileSystem:        fileSystem,
		clock:             clock,
		protectionChecker: dependencies.ProtectionChecker,
		logger:            logger,
		output:            output,
		printer:           ui.NewSummaryPrinter(output, dependencies.ColorEnabled),
	}, nil
}

// Run dispatches to the selected mode.
func (service *Service) Run(executionContext context.Context, mode Mode, options Options) error {
	if mode == ModeForce {
		return service.ForcePush(executionContext, options)
	}
	return service.RebaseAndRegenerate(executionContext, options)
}

// Discover lists the lesson branches of the repository.
func (service *Service) Discover(executionContext context.Context, options Options) (BranchSet, error) {
	return DiscoverBranches(executionContext, service.gitExecutor, options.RepositoryPath)
}

// PrintBranches discovers and prints the lesson branches.
func (service *Service) PrintBranches(executionContext context.Context, options Options) error {
	branchSet, discoveryError := service.Discover(executionContext, options)
	if discoveryError != nil {
		return discoveryError
	}
	return service.printer.PrintBranches(branchSet.Names())
}

// ForcePush pushes every lesson branch with a lease-protected force push. The first failure stops the run.
// It holds the run lock and refuses to start while an unfinished regeneration is recorded.
func (service *Service) ForcePush(executionContext context.Context, options Options) error {
	branchSet, discoveryError := service.Discover(executionContext, options)
	if discoveryError != nil {
		return discoveryError
	}
	branches := branchSet.Names()

	session, sessionError := service.openSession(executionContext, options)
	if sessionError != nil {
		return sessionError
	}
	defer session.release()

	if pendingError := session.refusePending(); pendingError != nil {
		return pendingError
	}

	if options.CheckProtection {
		if protectionError := service.checkProtection(executionContext, options, branches); protectionError != nil {
			return protectionError
		}
	}

	environment := service.newEnvironment(options, nil)
	service.logger.Info(forcePushStartedLogMessage, zap.String(remoteLogFieldConstant, options.Remote), zap.Int(branchCountLogFieldConstant, len(branches)))

	outcomes := make([]ui.BranchOutcome, 0, len(branches))
	var pushFailure error
	for _, branch := range branches {
		if pushFailure != nil {
			outcomes = append(outcomes, ui.BranchOutcome{Branch: branch, Outcome: ui.OutcomePending})
			continue
		}
		pushError := environment.Mutate(executionContext, execshell.CommandDetails{
			Arguments: []string{gitPushSubcommandConstant, gitForceWithLeaseFlagConstant, options.Remote, branch},
		})
		switch {
		case pushError != nil:
			pushFailure = pushError
			outcomes = append(outcomes, ui.BranchOutcome{Branch: branch, Outcome: ui.OutcomeFailed, Detail: failureDetail(pushError)})
		case options.DryRun:
			outcomes = append(outcomes, ui.BranchOutcome{Branch: branch, Outcome: ui.OutcomePlanned})
		default:
			outcomes = append(outcomes, ui.BranchOutcome{Branch: branch, Outcome: ui.OutcomeCompleted})
		}
	}

	summaryError := service.printer.PrintSummary(ui.RunSummary{
		Heading:  forcePushHeading(options.DryRun),
		Fields:   []ui.SummaryField{{Label: summaryRemoteLabelConstant, Value: options.Remote}},
		Outcomes: outcomes,
	})
	if pushFailure != nil {
		return pushFailure
	}
	if summaryError != nil {
		return fmt.Errorf(summaryRenderErrorTemplate, summaryError)
	}
	return nil
}

func (service *Service) checkProtection(executionContext context.Context, options Options, branches []string) error {
	if service.protectionChecker == nil {
		service.logger.Warn(protectionSkippedLogMessage, zap.String(reasonLogFieldConstant, noCheckerReasonConstant))
		return nil
	}
	remoteAddress, remoteError := service.repositoryManager.RemoteURL(executionContext, options.RepositoryPath, options.Remote)
	if remoteError != nil {
		return fmt.Errorf(remoteLookupErrorTemplateConstant, options.Remote, remoteError)
	}
	remoteURL, parseError := gitrepo.ParseRemoteURL(remoteAddress)
	if parseError != nil {
		return fmt.Errorf(remoteLookupErrorTemplateConstant, options.Remote, parseError)
	}
	protected, checkError := service.protectionChecker.ProtectedBranches(executionContext, remoteURL, branches)
	if checkError != nil {
		return checkError
	}
	if len(protected) > 0 {
		return fmt.Errorf(protectedBranchesTemplateConstant, ErrProtectedBranch, strings.Join(protected, branchListSeparatorConstant))
	}
	return nil
}

// RebaseAndRegenerate rebases the latest solution onto main and rebuilds every exercise branch.
func (service *Service) RebaseAndRegenerate(executionContext context.Context, options Options) error {
	branchSet, discoveryError := service.Discover(executionContext, options)
	if discoveryError != nil {
		return discoveryError
	}

	session, sessionError := service.openSession(executionContext, options)
	if sessionError != nil {
		return sessionError
	}
	defer session.release()

	if pendingError := session.refusePending(); pendingError != nil {
		return pendingError
	}

	if options.RequireClean {
		clean, cleanError := service.repositoryManager.CheckCleanWorktree(executionContext, options.RepositoryPath)
		if cleanError != nil {
			return cleanError
		}
		if !clean {
			return ErrWorktreeNotClean
		}
	}

	runCheckpoint := &checkpoint.Checkpoint{
		Repository:  options.RepositoryPath,
		Remote:      options.Remote,
		MainBranch:  options.MainBranch,
		Interactive: options.Interactive,
		Branches:    branchSet.Names(),
	}
	return service.execute(executionContext, session, options, workflow.NewState(runCheckpoint))
}

// Resume continues the unfinished run recorded in the checkpoint.
func (service *Service) Resume(executionContext context.Context, options Options) error {
	session, sessionError := service.openSession(executionContext, options)
	if sessionError != nil {
		return sessionError
	}
	defer session.release()

	storedCheckpoint, exists, loadError := session.store.Load()
	if loadError != nil {
		return loadError
	}
	if !exists {
		return ErrNoCheckpoint
	}

	inProgress, probeError := service.repositoryManager.OperationInProgress(executionContext, options.RepositoryPath)
	if probeError != nil {
		return probeError
	}
	if inProgress != gitrepo.OperationNone {
		return fmt.Errorf(operationInProgressTemplate, ErrOperationStillInProgress, inProgress)
	}

	AcknowledgeOperatorCompletion(&storedCheckpoint)
	service.logger.Info(runResumedLogMessage, zap.String(phaseLogFieldConstant, string(storedCheckpoint.Phase())))

	resumedOptions := options
	resumedOptions.MainBranch = storedCheckpoint.MainBranch
	resumedOptions.Remote = storedCheckpoint.Remote
	resumedOptions.Interactive = storedCheckpoint.Interactive
	return service.execute(executionContext, session, resumedOptions, workflow.ResumeState(&storedCheckpoint))
}

// AcknowledgeOperatorCompletion marks a paused rebase or cherry-pick as finished by the operator
// and clears the recorded failure so the failed stage runs again.
func AcknowledgeOperatorCompletion(runCheckpoint *checkpoint.Checkpoint) {
	switch runCheckpoint.PausedOperation {
	case checkpoint.PausedOperationRebase:
		if runCheckpoint.RebaseStage == checkpoint.RebaseStageCheckedOut {
			runCheckpoint.RebaseStage = checkpoint.RebaseStageRebased
			runCheckpoint.Cursor = runCheckpoint.LatestSolution
		}
	case checkpoint.PausedOperationCherryPick:
		for index := range runCheckpoint.Regenerations {
			regeneration := &runCheckpoint.Regenerations[index]
			if regeneration.Stage == checkpoint.RegenerationStageRecreated {
				regeneration.Stage = checkpoint.RegenerationStageReplayed
				runCheckpoint.Cursor = regeneration.Exercise
				break
			}
		}
	}
	runCheckpoint.ClearFailure()
}

// Status prints the recorded checkpoint.
func (service *Service) Status(executionContext context.Context, options Options) error {
	store, storeError := service.openStore(executionContext, options)
	if storeError != nil {
		return storeError
	}
	storedCheckpoint, exists, loadError := store.Load()
	if loadError != nil {
		return loadError
	}
	if !exists {
		return service.printer.PrintSummary(ui.RunSummary{Heading: statusIdleHeadingConstant})
	}

	summary := BuildCheckpointSummary(statusHeadingConstant, storedCheckpoint, false)
	inProgress, probeError := service.repositoryManager.OperationInProgress(executionContext, options.RepositoryPath)
	if probeError != nil {
		return probeError
	}
	if inProgress != gitrepo.OperationNone {
		summary.Fields = append(summary.Fields, ui.SummaryField{Label: summaryGitOperationLabelConstant, Value: string(inProgress)})
	}
	return service.printer.PrintSummary(summary)
}

// Reset discards the recorded checkpoint without touching branches.
func (service *Service) Reset(executionContext context.Context, options Options) error {
	session, sessionError := service.openSession(executionContext, options)
	if sessionError != nil {
		return sessionError
	}
	defer session.release()

	_, exists, loadError := session.store.Load()
	if loadError != nil {
		return loadError
	}
	if !exists {
		return service.printer.PrintSummary(ui.RunSummary{Heading: statusIdleHeadingConstant})
	}
	if options.DryRun {
		return service.printer.PrintSummary(ui.RunSummary{Heading: resetPlannedHeadingConstant, Fields: []ui.SummaryField{{Label: summaryCheckpointLabelConstant, Value: session.store.Path()}}})
	}
	if deleteError := session.store.Delete(); deleteError != nil {
		return deleteError
	}
	service.logger.Info(checkpointDiscardedLogMessage)
	return service.printer.PrintSummary(ui.RunSummary{Heading: resetHeadingConstant, Fields: []ui.SummaryField{{Label: summaryCheckpointLabelConstant, Value: session.store.Path()}}})
}

func (service *Service) execute(executionContext context.Context, session *runSession, options Options, state *workflow.State) error {
	environment := service.newEnvironment(options, session.store)
	executor, executorError := workflow.NewExecutor(DefaultOperations(), environment)
	if executorError != nil {
		return executorError
	}

	executionError := executor.Execute(executionContext, state)
	if executionError == nil && !options.DryRun {
		if deleteError := session.store.Delete(); deleteError != nil {
			return deleteError
		}
	}

	if state.Started() {
		if summaryError := service.printer.PrintSummary(BuildCheckpointSummary(runHeading(options.DryRun, executionError), *state.Checkpoint, options.DryRun)); summaryError != nil && executionError == nil {
			return fmt.Errorf(summaryRenderErrorTemplate, summaryError)
		}
	}
	return executionError
}

func (service *Service) newEnvironment(options Options, persister workflow.CheckpointPersister) *workflow.Environment {
	environment := &workflow.Environment{
		GitExecutor:       service.gitExecutor,
		RepositoryManager: service.repositoryManager,
		Logger:            service.logger,
		Output:            service.output,
		RepositoryPath:    options.RepositoryPath,
		DryRun:            options.DryRun,
	}
	if persister != nil {
		environment.Checkpoints = persister
	}
	return environment
}

func pendingCheckpointError(storedCheckpoint checkpoint.Checkpoint) error {
	return fmt.Errorf(pendingCheckpointTemplateConstant, ErrPendingCheckpoint, storedCheckpoint.Phase(), storedCheckpoint.StartedAt.Local().Format(checkpointTimestampLayoutConstant))
}

type runSession struct {
	store *checkpoint.Store
	lock  *checkpoint.RunLock
}

// refusePending fails with ErrPendingCheckpoint when a checkpoint is stored.
func (session *runSession) refusePending() error {
	storedCheckpoint, exists, loadError := session.store.Load()
	if loadError != nil {
		return loadError
	}
	if exists {
		return pendingCheckpointError(storedCheckpoint)
	}
	return nil
}

func (session *runSession) release() {
	if session.lock != nil {
		_ = session.lock.Release()
	}
}

// openSession locates the checkpoint and takes the run lock. Dry runs read the checkpoint without locking.
func (service *Service) openSession(executionContext context.Context, options Options) (*runSession, error) {
	store, storeError := service.openStore(executionContext, options)
	if storeError != nil {
		return nil, storeError
	}
	session := &runSession{store: store}
	if options.DryRun {
		return session, nil
	}
	lock, lockError := checkpoint.AcquireRunLock(service.fileSystem, store.Directory())
	if lockError != nil {
		return nil, lockError
	}
	session.lock = lock
	return session, nil
}

func (service *Service) openStore(executionContext context.Context, options Options) (*checkpoint.Store, error) {
	gitDirectory, gitDirectoryError := service.repositoryManager.GitDirectory(executionContext, options.RepositoryPath)
	if gitDirectoryError != nil {
		return nil, gitDirectoryError
	}
	return checkpoint.NewStore(checkpoint.StateDirectory(gitDirectory), service.fileSystem, service.clock)
}

func failureDetail(failure error) string {
	var commandFailure execshell.CommandFailedError
	if errors.As(failure, &commandFailure) {
		return fmt.Sprintf(exitCodeDetailTemplateConstant, commandFailure.ExitCode())
	}
	return failure.Error()
}
