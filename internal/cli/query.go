package cli

import (
	"github.com/spf13/cobra"
)

// QueryOptions, query komutunun flag'leridir.
type QueryOptions struct {
	*RootOptions
	FilterOptions
	Count bool
}

// NewQueryCommand, query komutunu oluşturur.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run the model's read statement and print the decoded records",
		Long: `Run the compiled read statement against the configured MySQL database and
print the decoded records as JSON. Blacklisted fields are never printed.

Connection settings are read from the environment (DB_*, REDIS_*, CACHE_*),
optionally loaded from --env-file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, opts)
		},
	}

	addFilterFlags(cmd, &opts.FilterOptions)
	cmd.Flags().BoolVar(&opts.Count, "count", false, "print the matching row count")

	return cmd
}

func runQuery(cmd *cobra.Command, opts *QueryOptions) error {
	ctx := cmd.Context()
	logger := opts.logger(cmd)

	store, session, err := openStore(ctx, opts.RootOptions, opts.connect, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	filters, err := opts.Filters()
	if err != nil {
		return err
	}
	p := opts.printer(cmd)

	switch {
	case opts.Count:
		n, err := store.Count(ctx, filters)
		if err != nil {
			return err
		}
		return p.Value("count", n)

	case opts.ID != "":
		rec, err := store.Get(ctx, parseValue(opts.ID))
		if err != nil {
			return err
		}
		return p.JSON(rec.ToPublicRecord())

	case opts.Search != "":
		rows, err := store.Search(ctx, opts.Search, opts.LimitArgs()...)
		if err != nil {
			return err
		}
		return p.JSON(rows.Public())

	default:
		rows, err := store.GetRows(ctx, filters, opts.LimitArgs()...)
		if err != nil {
			return err
		}
		return p.JSON(rows.Public())
	}
}
