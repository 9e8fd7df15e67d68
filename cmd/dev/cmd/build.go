package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/gophertribe/devtool/build"
)

// boards maps a --board preset to the platform its cli binary runs on.
var boards = map[string]target{
	"nanopi": {OS: "linux", Arch: "arm"},
	"rpi":    {OS: "linux", Arch: "arm64"},
}

type target struct {
	OS   string
	Arch string
}

func (t target) native() bool {
	return t.OS == runtime.GOOS && t.Arch == runtime.GOARCH
}

// resolveTarget picks the build platform: a board preset wins over the
// cross-os/cross-arch pair, which wins over os/arch.
func resolveTarget(board, os, arch, crossOS, crossArch string) (target, error) {
	if board != "" {
		t, ok := boards[board]
		if !ok {
			return target{}, fmt.Errorf("unknown board %q", board)
		}
		return t, nil
	}
	if crossOS != "" && crossArch != "" {
		return target{OS: crossOS, Arch: crossArch}, nil
	}
	return target{OS: os, Arch: arch}, nil
}

func BuildCmd() *cobra.Command {
	var board, version, goos, goarch, crossOS, crossArch string
	var noCache bool
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the lumen cli",
		RunE: func(cmd *cobra.Command, args []string) error {
			host := target{OS: goos, Arch: goarch}
			t, err := resolveTarget(board, goos, goarch, crossOS, crossArch)
			if err != nil {
				return err
			}
			// the cgo toolchain for hid is only available natively or inside the build image
			if host.native() {
				return build.GoBuild(fmt.Sprintf("dist/lumen-%s-%s", t.OS, t.Arch), "./cmd/lumen", build.GoBuildOpts{
					Version:       version,
					InjectVersion: true,
					ConfigPackage: "github.com/mklimuk/lumen/pkg/config",
					EnableCgo:     true,
					Arch:          t.Arch,
					OS:            t.OS,
				})
			}
			return build.Docker(cmd.Context(), fmt.Sprintf("./dev-%s-%s", host.OS, host.Arch), []string{"build", "--version", version, "--cross-os", t.OS, "--cross-arch", t.Arch}, build.DockerBuildOpts{
				NoCache: noCache,
				Image:   "gophertribe/gobuild:1.25-bookworm",
			})
		},
	}
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "do not use cache when building the app")
	cmd.Flags().StringVar(&version, "version", "latest", "version of the cli")
	cmd.Flags().StringVar(&board, "board", "", "board preset: nanopi or rpi")
	cmd.Flags().StringVar(&goos, "os", runtime.GOOS, "os to build for")
	cmd.Flags().StringVar(&goarch, "arch", runtime.GOARCH, "arch to build for")
	cmd.Flags().StringVar(&crossOS, "cross-os", "", "os to cross-compile for")
	cmd.Flags().StringVar(&crossArch, "cross-arch", "", "arch to cross-compile for")
	return cmd
}
