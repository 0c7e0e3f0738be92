package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/worksheet/internal/selfupdate"
)

// version is stamped by the release build (-ldflags "-X .../cmd.version=v1.2.3").
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version, optionally checking for a newer release",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "worksheet", version)

		if check, _ := cmd.Flags().GetBool("check"); !check {
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()
		res, err := selfupdate.NewChecker().Check(ctx, &selfupdate.CheckInput{Version: version})
		if err != nil {
			return err
		}
		if res.UpdateAvailable {
			fmt.Fprintf(out, "%s is available: %s\nRun 'worksheet update' to install it.\n", res.LatestVersion, res.ReleaseURL)
		} else {
			fmt.Fprintln(out, "No newer release.")
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("check", false, "Check GitHub for a newer release")
}
