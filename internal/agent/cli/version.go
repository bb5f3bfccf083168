package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// NewVersionCmd печатает версию клиента, дату сборки и версию Go.
//
//	usersctl version
func NewVersionCmd(buildVersion, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Показать версию и дату сборки",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "version=%s\n", buildVersion)
			fmt.Fprintf(out, "build_date=%s\n", buildDate)
			fmt.Fprintf(out, "go=%s\n", runtime.Version())
		},
	}
}
