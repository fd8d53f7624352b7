package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/osdldbt/dbt5-sub001/internal/engine"
)

// ParamInfo describes one positional frame parameter.
type ParamInfo struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// FrameListing describes one registered frame.
type FrameListing struct {
	Name   string      `json:"name"`
	Params []ParamInfo `json:"params"`
}

// FramesResult lists every registered frame.
type FramesResult struct {
	Frames []FrameListing `json:"frames"`
}

// WriteText prints one signature line per frame.
func (r FramesResult) WriteText(w io.Writer) error {
	for _, f := range r.Frames {
		params := make([]string, len(f.Params))
		for i, p := range f.Params {
			params[i] = p.Name + " " + p.Kind
		}
		if _, err := fmt.Fprintf(w, "%s(%s)\n", f.Name, strings.Join(params, ", ")); err != nil {
			return err
		}
	}
	return nil
}

// NewFramesCommand creates the frames command.
func NewFramesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "frames",
		Short: "List transaction frames and their parameters",
		Long: `List every transaction frame with its positional parameters.

Examples:
  dbt5 frames
  dbt5 frames --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.formatter(cmd).Success(listFrames())
		},
	}
}

func listFrames() FramesResult {
	infos := engine.Frames()
	result := FramesResult{Frames: make([]FrameListing, 0, len(infos))}
	for _, info := range infos {
		listing := FrameListing{Name: info.Name, Params: make([]ParamInfo, 0, len(info.Params))}
		for _, p := range info.Params {
			listing.Params = append(listing.Params, ParamInfo{Name: p.Name, Kind: p.Kind.String()})
		}
		result.Frames = append(result.Frames, listing)
	}
	return result
}
