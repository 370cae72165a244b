// Package asyncx is the execution engine behind the reactors: a small set
// of concurrency primitives with explicit ordering, concurrency-limit and
// cancellation guarantees.
//
// # Outcomes
//
// An [Outcome] captures how one operation settled, fulfilled with a value
// or rejected with a reason, without propagating the failure. [ToOutcome]
// never panics: errors and recovered panics both become rejections.
//
//	o := asyncx.ToOutcome(ctx, func(ctx context.Context) (*github.Issue, error) {
//	    return gh.GetIssue(ctx, repo, number)
//	})
//	if o.Rejected() {
//	    logx.WithError(o.Reason()).Warn("lookup failed")
//	}
//
// [SettleAll] runs a fixed set of operations concurrently and returns one
// Outcome per operation, in input order regardless of completion order.
//
// # Sequences
//
// A [Sequence] is a pull-based producer, finite or not. [FromSlice] and
// [Paginate] cover the common sources; producers holding resources
// implement io.Closer. [Cancellable] wraps a Sequence so that iteration
// stops promptly when its context is cancelled, returning an
// [ErrCancelled] error and closing the producer exactly once.
//
// # Bounded concurrency
//
// [Run] drains a Sequence through a transform with at most n transforms in
// flight and returns results in pull order:
//
//	labels, err := asyncx.Run(ctx, gh.OpenIssues(repo, 100), apply,
//	    asyncx.WithConcurrency(4),
//	    asyncx.WithLimit(500),
//	)
//
// Run is fail-fast: the first error stops pulling, waits for transforms
// already in flight and is returned. [Settle] captures every result as an
// Outcome instead. [Collect] and [OnlyFailures] are built on the two.
//
// # Retry
//
// [Retry] re-invokes an operation while a caller-supplied [Classifier]
// reports its error as transient, waiting with exponential backoff and
// jitter between attempts. [Retrying] adapts a transform so it composes
// with Run.
//
//	pr, err := asyncx.Retry(ctx, githubx.IsTransient, 3,
//	    func(ctx context.Context, attempt int) (*github.PullRequest, error) {
//	        return gh.GetPullRequest(ctx, repo, number)
//	    })
//
// # Cancellation
//
// Cancellation is cooperative. Stopping a run, because ctx was cancelled,
// the limit was reached or a transform failed, stops new work but never
// interrupts work already started. Every helper waits for the goroutines
// it launched before returning.
package asyncx
