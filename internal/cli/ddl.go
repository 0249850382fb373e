package cli

import (
	"github.com/spf13/cobra"

	"github.com/biyonik/datamapper/pkg/storage"
)

// DDLOptions, ddl komutunun flag'leridir.
type DDLOptions struct {
	*RootOptions
	Apply bool
}

// NewDDLCommand, ddl komutunu oluşturur.
func NewDDLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DDLOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ddl",
		Short: "Print the CREATE TABLE statement for the model",
		Long: `Print the CREATE TABLE statement derived from the model's fields, primary
key strategy, timestamps and searchable indexes. With --apply the statement
is executed against the configured database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDDL(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Apply, "apply", false, "execute the statement on the configured database")

	return cmd
}

func runDDL(cmd *cobra.Command, opts *DDLOptions) error {
	logger := opts.logger(cmd)

	if !opts.Apply {
		model, err := opts.loadModel()
		if err != nil {
			return err
		}
		store := storage.New(dryRunAdapter{}, model, storage.WithLogger(logger))
		if err := store.LastError(); err != nil {
			return err
		}
		sqlStr, params, err := store.TableBuilder().ToSQL()
		if err != nil {
			return err
		}
		return opts.printer(cmd).Statement(sqlStr, params)
	}

	store, session, err := openStore(cmd.Context(), opts.RootOptions, opts.connect, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	if err := store.CreateTable(cmd.Context()); err != nil {
		return err
	}
	return opts.printer(cmd).Value("created", store.Model().Table)
}
