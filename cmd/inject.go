package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"axegrind.dev/pkg/axegrind/internal/domain"
	m "axegrind.dev/pkg/axegrind/internal/model"
)

var injectAsyncFlag bool
var injectSkipPayloadFlag bool
var injectDisableFramesFlag bool
var injectParallelFlag int
var injectScriptFileFlag string
var injectScriptURLFlag string
var injectInlineFlag string

// injectCmd represents the inject command.
var injectCmd = newInjectCmd()

func newInjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inject [urls...]",
		Short: "Inject the payload into pages and their frames",
		Long:  injectLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := m.ModeSync
			if injectAsyncFlag {
				mode = m.ModeAsync
			}

			return workflow.Scan(cmd.Context(), domain.ScanArgs{
				Targets:       args,
				ControlURL:    viper.GetString(controlURLConfigKey),
				Mode:          mode,
				DisableFrames: viper.GetBool(disableFramesConfigKey),
				SkipPayload:   injectSkipPayloadFlag,
				Threads:       viper.GetInt(parallelConfigKey),
				Reports:       m.Path(viper.GetString(outputFlagName)),
			})
		},
	}

	configureInjectFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(injectCmd)
}

func configureInjectFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&injectParallelFlag, parallelFlagName, "p", viper.GetInt(parallelConfigKey), "number of targets scanned in parallel (one session each)")
	bindFlagToConfig(cmd.Flags().Lookup(parallelFlagName), parallelConfigKey)

	cmd.Flags().BoolVar(&injectDisableFramesFlag, disableFramesFlagName, viper.GetBool(disableFramesConfigKey), "inject only into the top-level document")
	bindFlagToConfig(cmd.Flags().Lookup(disableFramesFlagName), disableFramesConfigKey)

	cmd.Flags().StringVar(&injectScriptFileFlag, scriptFileFlagName, viper.GetString(scriptFileConfigKey), "path to a local payload, e.g. axe.min.js")
	bindFlagToConfig(cmd.Flags().Lookup(scriptFileFlagName), scriptFileConfigKey)

	cmd.Flags().StringVar(&injectScriptURLFlag, scriptURLFlagName, viper.GetString(scriptURLConfigKey), "URL to download the payload from")
	bindFlagToConfig(cmd.Flags().Lookup(scriptURLFlagName), scriptURLConfigKey)

	cmd.Flags().StringVar(&injectInlineFlag, scriptInlineFlagName, viper.GetString(scriptInlineConfigKey), "payload source given inline")
	bindFlagToConfig(cmd.Flags().Lookup(scriptInlineFlagName), scriptInlineConfigKey)

	cmd.Flags().BoolVar(&injectAsyncFlag, "async", false, "run the payload asynchronously, awaiting its completion callback in each frame")
	cmd.Flags().BoolVar(&injectSkipPayloadFlag, "skip-payload", false, "walk frames and record visits without running the payload (sync mode only)")
}
