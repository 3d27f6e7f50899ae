package dispatch

import (
	"context"

	"go.uber.org/zap"

	"github.com/temirov/gitfleet/internal/registry"
)

// Dependencies wires a Dispatcher.
type Dependencies struct {
	Registry *registry.Registry
	Guard    Guard
	Reporter Reporter
	Logger   *zap.Logger
	// FailOnGuard turns a guarded repository into a returned MainBranchGuardError.
	FailOnGuard bool
}

// Dispatcher resolves targets against a registry and applies actions sequentially.
type Dispatcher struct {
	registry    *registry.Registry
	guard       Guard
	reporter    Reporter
	logger      *zap.Logger
	failOnGuard bool
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(dependencies Dependencies) *Dispatcher {
	reporter := dependencies.Reporter
	if reporter == nil {
		reporter = discardReporter{}
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	guard := dependencies.Guard
	if guard.protectedBranches == nil {
		guard = NewGuard(nil)
	}
	return &Dispatcher{
		registry:    dependencies.Registry,
		guard:       guard,
		reporter:    reporter,
		logger:      logger,
		failOnGuard: dependencies.FailOnGuard,
	}
}

// Apply runs action against target, which is a registered name or registry.AllTarget.
// Results are returned in registry order; the first failure stops the fan-out and
// is returned unchanged together with the results gathered so far.
//
// An unknown target is reported before missing action inputs.
func (dispatcher *Dispatcher) Apply(executionContext context.Context, target string, action Action) ([]Result, error) {
	if target == registry.AllTarget && action.Name() == ActionStatus {
		dispatcher.logger.Debug(statusAllSkippedLogMessage, zap.String(logFieldTargetConstant, target))
		result := Result{Repository: registry.AllTarget, Action: ActionStatus, Notice: allStatusNoticeConstant}
		dispatcher.reporter.Report(result)
		return []Result{result}, nil
	}

	records, resolveError := dispatcher.registry.Resolve(target)
	if resolveError != nil {
		return nil, resolveError
	}
	if validationError := action.Validate(); validationError != nil {
		return nil, validationError
	}
	if target == registry.AllTarget {
		dispatcher.reporter.Progress(allTargetProgressMessageConstant)
	}

	results := make([]Result, 0, len(records))
	for _, record := range records {
		actionFields := []zap.Field{
			zap.String(logFieldActionConstant, string(action.Name())),
			zap.String(logFieldRepositoryConstant, record.Name),
		}
		dispatcher.logger.Debug(actionStartedLogMessage, actionFields...)

		result, executionError := action.Execute(executionContext, dispatcher.guard, record)
		if executionError != nil {
			dispatcher.logger.Error(actionFailedLogMessage, append(actionFields, zap.Error(executionError))...)
			return results, executionError
		}

		results = append(results, result)
		dispatcher.reporter.Report(result)

		if result.Guard != nil {
			dispatcher.logger.Warn(guardedRepositoryLogMessage, append(actionFields, zap.String(logFieldBranchConstant, result.Guard.Branch))...)
			if dispatcher.failOnGuard {
				return results, *result.Guard
			}
			continue
		}
		dispatcher.logger.Info(actionCompletedLogMessage, actionFields...)
	}

	return results, nil
}
