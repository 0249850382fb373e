package cli

import (
	"context"
	"database/sql"
	"errors"

	"github.com/spf13/cobra"

	"github.com/biyonik/datamapper/pkg/database"
	"github.com/biyonik/datamapper/pkg/storage"
)

// errDryRun, compile/ddl komutlarının veritabanına dokunmadığını garanti eder.
var errDryRun = errors.New("mapperctl: dry run adapter does not execute statements")

// dryRunAdapter, statement'ları çalıştırmayı reddeden adapter'dır.
type dryRunAdapter struct{}

func (dryRunAdapter) Fetch(context.Context, string, ...any) ([]database.RawRow, error) {
	return nil, errDryRun
}

func (dryRunAdapter) Execute(context.Context, string, ...any) (sql.Result, error) {
	return nil, errDryRun
}

// CompileOptions, compile komutunun flag'leridir.
type CompileOptions struct {
	*RootOptions
	FilterOptions
	Count bool
}

// NewCompileCommand, compile komutunu oluşturur.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile the model's read statement to SQL",
		Long: `Compile the SELECT statement GetRows would run for the model, including
inline joins, aggregate subqueries, soft-delete scoping and the given filters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, opts)
		},
	}

	addFilterFlags(cmd, &opts.FilterOptions)
	cmd.Flags().BoolVar(&opts.Count, "count", false, "compile the COUNT(*) statement instead")

	return cmd
}

func addFilterFlags(cmd *cobra.Command, opts *FilterOptions) {
	cmd.Flags().StringArrayVarP(&opts.Where, "where", "w", nil, `filter "<field><op><value>" (repeatable)`)
	cmd.Flags().StringArrayVar(&opts.Raw, "raw", nil, "raw SQL condition without placeholders (repeatable)")
	cmd.Flags().StringVar(&opts.ID, "id", "", "primary key lookup")
	cmd.Flags().StringVar(&opts.Search, "search", "", "LIKE search over searchable fields")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "row limit")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "row offset (with --limit)")
}

func runCompile(cmd *cobra.Command, opts *CompileOptions) error {
	model, err := opts.loadModel()
	if err != nil {
		return err
	}

	store := storage.New(dryRunAdapter{}, model, storage.WithLogger(opts.logger(cmd)))
	if err := store.LastError(); err != nil {
		return err
	}

	qb, err := readQuery(store, &opts.FilterOptions, opts.Count)
	if err != nil {
		return err
	}

	sqlStr, params, err := qb.ToSQL()
	if err != nil {
		return err
	}
	return opts.printer(cmd).Statement(sqlStr, params)
}

// readQuery, filtre flag'lerine göre uygun okuma sorgusunu seçer.
func readQuery(store *storage.Storage, opts *FilterOptions, count bool) (*database.QueryBuilder, error) {
	filters, err := opts.Filters()
	if err != nil {
		return nil, err
	}

	switch {
	case count:
		return store.CountQuery(filters), nil
	case opts.ID != "":
		pk := store.Model().PrimaryKey
		return store.RowsQuery([]database.Filter{database.Equals(pk, parseValue(opts.ID))}, 1), nil
	case opts.Search != "":
		return store.SearchQuery(opts.Search, opts.LimitArgs()...), nil
	default:
		return store.RowsQuery(filters, opts.LimitArgs()...), nil
	}
}
