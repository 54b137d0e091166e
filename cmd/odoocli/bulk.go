package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/username/odoocli/internal/bulk"
	"github.com/username/odoocli/internal/runner"
	"github.com/username/odoocli/internal/worktime"
)

func bulkCmd() *cobra.Command {
	var flags reportFlags
	var emails []string

	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Run the report for several users with an administrator login",
		Long:  "Run the report for every --email given, or for every active user when none is",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer logger.Sync() //nolint:errcheck

			req, err := flags.request(time.Now())
			if err != nil {
				return err
			}

			session, err := connect(flags.user)
			if err != nil {
				return err
			}

			opts, err := reporterOptions(req)
			if err != nil {
				return err
			}

			factory := func(email string) *runner.Reporter {
				login := session.Impersonate(email)
				engine := worktime.NewEngine(login, time.Now, logger.With(zap.String("email", email)))
				return runner.New(login, engine, opts)
			}

			stats, err := bulk.NewDriver(session, factory, os.Stdout, logger).Run(emails, req)
			if err != nil {
				return explain(err)
			}

			logger.Info("Bulk run finished",
				zap.Strings("processed", stats.Processed),
				zap.Strings("skipped", stats.Skipped))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringSliceVarP(&emails, "email", "e", nil, "User e-mail (repeatable, default all active users)")

	return cmd
}
