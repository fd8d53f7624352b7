package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create the frame tables in the configured database",
		Long: `Create the tables the transaction frames read and write.

The schema uses IF NOT EXISTS, so running it against an existing database
is a no-op.

Examples:
  dbt5 schema --dsn ./dbt5.db
  dbt5 schema --driver pgx --dsn postgres://localhost/dbt5`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := rootOpts.openStore(ctx, false)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.ApplySchema(ctx); err != nil {
				return WrapExitError(ExitCommandError, "apply schema", err)
			}
			rootOpts.Logger.Info("schema applied", "driver", rootOpts.Config.Driver)
			return rootOpts.formatter(cmd).Success(fmt.Sprintf("schema applied (%s)", st.Dialect()))
		},
	}
}
