package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"axegrind.dev/pkg/axegrind/internal/domain"
)

// checkCmd represents the check command.
var checkCmd = newCheckCmd()

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the payload loads and a browser is reachable",
		Long: `Run the preflight checks an injection depends on: load the payload from
its configured source and round-trip a trivial script through the browser
behind the control URL. No target page is touched.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := workflow.Check(cmd.Context(), domain.CheckArgs{
				ControlURL: viper.GetString(controlURLConfigKey),
			})
			if err != nil {
				return err
			}

			cmd.Printf("payload:\t%d bytes\n", result.PayloadBytes)
			cmd.Printf("browser:\tok\n")

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
