// Package inspect prints what is inside a song file.
package inspect

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/noteblock/cmd/common"
	"github.com/gigurra/noteblock/cmd/jukebox/catalog"
	"github.com/gigurra/noteblock/cmd/jukebox/sound"
	"github.com/gigurra/noteblock/cmd/jukebox/timeline"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type Params struct {
	File  string `pos:"true" required:"true" help:"Song file (.song or .nbs)."`
	Notes bool   `short:"n" help:"List every note."`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "inspect",
		Short:       "Show the contents of a song file",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			if err := Run(params, os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "inspect: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

func Run(params *Params, stdout io.Writer) error {
	data, err := os.ReadFile(params.File)
	if err != nil {
		return err
	}
	tl, err := catalog.Decode(filepath.Base(params.File), data)
	if err != nil {
		return err
	}

	summary := table.NewWriter()
	summary.SetOutputMirror(stdout)
	summary.SetStyle(table.StyleLight)
	summary.AppendRow(table.Row{"Title", tl.Title})
	if strings.EqualFold(filepath.Ext(params.File), ".nbs") {
		h, err := timeline.DecodeNBSHeader(data)
		if err != nil {
			return err
		}
		summary.AppendRow(table.Row{"Format", fmt.Sprintf("Note Block Studio v%d", h.Version)})
		for _, field := range []struct{ name, value string }{
			{"Author", h.Author},
			{"Original author", h.OriginalAuthor},
			{"Description", h.Description},
		} {
			if field.value != "" {
				summary.AppendRow(table.Row{field.name, common.Truncate(field.value, 60)})
			}
		}
	} else {
		summary.AppendRow(table.Row{"Format", "native"})
	}
	summary.AppendRow(table.Row{"Tempo", fmt.Sprintf("%g ticks/s", tl.Tempo)})
	summary.AppendRow(table.Row{"Ticks", tl.LastTick() + 1})
	summary.AppendRow(table.Row{"Chords", len(tl.Chords)})
	summary.AppendRow(table.Row{"Notes", tl.NoteCount()})
	summary.AppendRow(table.Row{"Length", tl.Length().Round(time.Millisecond).String()})
	summary.Render()

	renderInstruments(stdout, tl)
	if params.Notes {
		renderNotes(stdout, tl)
	}
	return nil
}

type instrumentUsage struct {
	instrument          timeline.Instrument
	notes               int
	lowest, highest     int
	firstTick, lastTick int
}

func usage(tl *timeline.Timeline) []instrumentUsage {
	byInst := make(map[timeline.Instrument]*instrumentUsage)
	for _, tick := range tl.Ticks() {
		for _, n := range tl.Chord(tick) {
			u, ok := byInst[n.Instrument]
			if !ok {
				u = &instrumentUsage{instrument: n.Instrument, lowest: n.Pitch, highest: n.Pitch, firstTick: tick}
				byInst[n.Instrument] = u
			}
			u.notes++
			u.lowest = min(u.lowest, n.Pitch)
			u.highest = max(u.highest, n.Pitch)
			u.lastTick = tick
		}
	}
	out := lo.Map(lo.Values(byInst), func(u *instrumentUsage, _ int) instrumentUsage { return *u })
	sort.Slice(out, func(i, j int) bool { return out[i].instrument < out[j].instrument })
	return out
}

func renderInstruments(w io.Writer, tl *timeline.Timeline) {
	sounds := sound.DefaultTable()
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Instrument", "Sound", "Notes", "Pitch range", "Ticks"})
	for _, u := range usage(tl) {
		snd := string(sounds.Resolve(u.instrument))
		if snd == "" {
			snd = "(silent)"
		}
		t.AppendRow(table.Row{
			u.instrument.String(),
			snd,
			u.notes,
			fmt.Sprintf("%d-%d", u.lowest, u.highest),
			fmt.Sprintf("%d-%d", u.firstTick, u.lastTick),
		})
	}
	t.Render()
}

func renderNotes(w io.Writer, tl *timeline.Timeline) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Tick", "Time", "Instrument", "Pitch", "Multiplier"})
	for _, tick := range tl.Ticks() {
		at := tl.At(tick)
		for _, n := range tl.Chord(tick) {
			t.AppendRow(table.Row{tick, at.String(), n.Instrument.String(), n.Pitch, fmt.Sprintf("%.3f", sound.PitchMultiplier(n.Pitch))})
		}
	}
	t.Render()
}
