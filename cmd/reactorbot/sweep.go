package main

import (
	"fmt"

	"github.com/Abraxas-365/reactorbot/pkg/asyncx"
	"github.com/Abraxas-365/reactorbot/pkg/kernel"
	"github.com/Abraxas-365/reactorbot/pkg/logx"
	"github.com/Abraxas-365/reactorbot/pkg/reactors"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	var (
		concurrency int
		limit       int
		perPage     int
	)

	cmd := &cobra.Command{
		Use:   "sweep owner/name [owner/name...]",
		Short: "Run the reactors over every open issue and pull request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repos := make([]kernel.RepoRef, len(args))
			for i, arg := range args {
				repo, err := kernel.ParseRepoRef(arg)
				if err != nil {
					return err
				}
				repos[i] = repo
			}

			ctx, c, cleanup, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if !cmd.Flags().Changed("concurrency") {
				concurrency = c.Config.Engine.SweepConcurrency
			}
			if !cmd.Flags().Changed("per-page") {
				perPage = c.Config.Engine.SweepPerPage
			}
			opts := []asyncx.RunOption{asyncx.WithConcurrency(concurrency)}
			if limit > 0 {
				opts = append(opts, asyncx.WithLimit(limit))
			}

			var failures *multierror.Error
			for _, repo := range repos {
				log := logx.Component("sweep").With(logx.Fields{"repo": repo.String()})

				report, err := reactors.Sweep(ctx, repo, c.GitHub.OpenIssues(repo, perPage), c.Dispatcher, opts...)
				if err != nil {
					return err
				}
				for _, item := range report.Items {
					if item.Err != nil {
						log.WithError(item.Err).WithField("number", item.Number).Warn("sweep item failed")
					}
				}
				log.WithFields(logx.Fields{"items": len(report.Items), "failed": report.Failed}).Info("sweep finished")
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d items, %d failed\n", repo, len(report.Items), report.Failed)

				if report.Failed > 0 {
					failures = multierror.Append(failures, fmt.Errorf("%s: %d of %d items failed", repo, report.Failed, len(report.Items)))
				}
			}
			return failures.ErrorOrNil()
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "dispatches in flight (defaults to REACTORBOT_SWEEP_CONCURRENCY)")
	cmd.Flags().IntVar(&limit, "limit", 0, "stop after this many items per repository; 0 sweeps everything")
	cmd.Flags().IntVar(&perPage, "per-page", 50, "issues fetched per page (defaults to REACTORBOT_SWEEP_PER_PAGE)")
	return cmd
}
