// Package convert rewrites songs in the native format.
package convert

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/noteblock/cmd/common"
	"github.com/gigurra/noteblock/cmd/jukebox/catalog"
	"github.com/gigurra/noteblock/cmd/jukebox/timeline"
	"github.com/spf13/cobra"
)

var ErrExists = errors.New("destination exists (use --force to overwrite)")

type Params struct {
	In    string `pos:"true" required:"true" help:"Song to convert (.nbs or .song)."`
	Out   string `pos:"true" required:"true" help:"Destination .song file."`
	Title string `short:"t" optional:"true" help:"Title to store instead of the source title."`
	Force bool   `short:"f" help:"Overwrite an existing destination."`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "convert",
		Short:       "Convert a Note Block Studio song to the native format",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			if err := Run(params, os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "convert: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

func Run(params *Params, stdout io.Writer) error {
	data, err := os.ReadFile(params.In)
	if err != nil {
		return err
	}
	tl, err := catalog.Decode(filepath.Base(params.In), data)
	if err != nil {
		return err
	}
	if params.Title != "" {
		tl.Title = params.Title
	}

	out, err := timeline.Encode(tl)
	if err != nil {
		return fmt.Errorf("cannot encode %s: %w", params.In, err)
	}

	if !params.Force {
		if _, err := os.Stat(params.Out); err == nil {
			return fmt.Errorf("%s: %w", params.Out, ErrExists)
		}
	}
	if err := os.WriteFile(params.Out, out, 0644); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s -> %s: %q, %d notes over %d ticks\n",
		params.In, params.Out, tl.Title, tl.NoteCount(), tl.LastTick()+1)
	return nil
}
