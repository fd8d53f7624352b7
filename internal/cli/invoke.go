package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/osdldbt/dbt5-sub001/internal/engine"
	"github.com/osdldbt/dbt5-sub001/internal/frame"
	"github.com/osdldbt/dbt5-sub001/internal/store"
)

// InvokeOptions holds flags for the invoke command.
type InvokeOptions struct {
	*RootOptions
	Args []string // name=value pairs
}

// InvokeResult is the payload of a successful invocation.
type InvokeResult struct {
	Frame      string            `json:"frame"`
	Seq        int64             `json:"seq"`
	DurationMS float64           `json:"duration_ms"`
	Output     map[string]string `json:"output"`

	columns []string
}

// WriteText prints one "column = value" line per output column.
func (r InvokeResult) WriteText(w io.Writer) error {
	for _, c := range r.columns {
		if _, err := fmt.Fprintf(w, "%s = %s\n", c, r.Output[c]); err != nil {
			return err
		}
	}
	return nil
}

// NewInvokeCommand creates the invoke command.
func NewInvokeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvokeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "invoke <frame>",
		Short: "Invoke one transaction frame",
		Long: `Invoke one transaction frame in its own transaction.

The transaction commits when the frame succeeds and rolls back when it fails.
Arguments are passed as repeated --arg name=value flags; repeat a string
array argument once per element. Run "dbt5 frames" to list parameters.

Exit codes:
  0 - Frame succeeded
  1 - Frame failed
  2 - Command error (bad arguments, unreachable database, etc.)

Examples:
  dbt5 invoke TradeCleanupFrame1 --arg canceled_status_id=CNCL \
    --arg pending_status_id=PNDG --arg submitted_status_id=SBMT \
    --arg trade_id_floor=0
  dbt5 invoke BrokerVolumeFrame1 --arg broker_names=Alice \
    --arg broker_names=Bob --arg sector_name=Technology --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return invokeFrame(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Args, "arg", nil, "frame argument as name=value (repeatable)")

	return cmd
}

func invokeFrame(opts *InvokeOptions, frameID string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := opts.formatter(cmd)

	params, ok := engine.Params(frameID)
	if !ok {
		return out.FrameError(frame.NewUnknownFrameError(frameID), "")
	}
	args, err := parseArgs(params, opts.Args)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid arguments", err)
	}

	st, err := opts.openStore(ctx, false)
	if err != nil {
		return err
	}
	defer st.Close()

	eng := engine.New(engine.WithLogger(opts.Logger))

	var inv engine.Invocation
	err = st.RunInTx(ctx, func(tx *store.Tx) error {
		var err error
		inv, err = eng.Call(ctx, tx, frameID, args)
		return err
	})
	if err != nil {
		return out.FrameError(err, inv.ID)
	}

	return out.SuccessWithTrace(InvokeResult{
		Frame:      inv.Frame,
		Seq:        inv.Seq,
		DurationMS: float64(inv.Duration.Microseconds()) / 1000,
		Output:     inv.Output.Map(),
		columns:    inv.Output.Columns,
	}, inv.ID)
}
