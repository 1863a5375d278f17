package main

import (
	"runtime/debug"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/noteblock/cmd/convert"
	"github.com/gigurra/noteblock/cmd/inspect"
	"github.com/gigurra/noteblock/cmd/play"
	"github.com/spf13/cobra"
)

func main() {
	boa.CmdT[boa.NoParams]{
		Use:     "noteblock",
		Short:   "Note block song player",
		Version: appVersion(),
		SubCmds: []*cobra.Command{
			play.Cmd(),
			inspect.Cmd(),
			convert.Cmd(),
		},
	}.Run()
}

func appVersion() string {
	bi, hasBuildInfo := debug.ReadBuildInfo()
	if !hasBuildInfo {
		return "unknown-(no build info)"
	}

	versionString := bi.Main.Version
	if versionString == "" {
		versionString = "unknown-(no version)"
	}

	return versionString
}
