package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/padbreak/internal/cli/output"
	"github.com/yndnr/padbreak/internal/infra/buildinfo"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print build information",
		Action: func(c *cli.Context) error {
			rt, err := loadRuntime(c)
			if err != nil {
				return err
			}
			return rt.Print(versionInfo(buildinfo.Get()))
		},
	}
}

type versionInfo buildinfo.Info

// Tables implements output.Tabler.
func (v versionInfo) Tables() []*output.Table {
	t := &output.Table{Headers: []string{"VERSION", "COMMIT", "BUILT", "GO", "PLATFORM"}}
	t.AddRow(v.Version, v.Commit, v.BuildTime, v.GoVersion, v.Platform)
	return []*output.Table{t}
}
