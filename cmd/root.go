// Package cmd provides the root command and CLI setup for axegrind.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"axegrind.dev/pkg/axegrind/internal/adapter"
	"axegrind.dev/pkg/axegrind/internal/controller"
	"axegrind.dev/pkg/axegrind/internal/domain"
)

var sessionFactory adapter.SessionFactory
var reportStore adapter.ReportStore
var injector domain.Injector
var workflow domain.Workflow
var ui controller.UI

// reportsOutputDirFlag is a root-level flag shared by commands that write reports.
var reportsOutputDirFlag string

// controlURLFlag points at the DevTools endpoint of a running browser.
var controlURLFlag string

// verboseFlag raises file logging to debug level.
var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	sessionFactory = adapter.NewRodSessionFactory()
	reportStore = adapter.NewReportStore()
	injector = domain.NewInjector()
	workflow = domain.NewWorkflow(
		newConfigScriptProvider(),
		sessionFactory,
		reportStore,
		ui,
		injector,
	)
}

const rootLongDescription = `Axegrind injects the axe-core accessibility scanner into a web page driven
through a browser-automation session, recursing into every nested frame and
iframe so later scan commands can run inside each frame's own JavaScript
context.

It connects to an already-running browser over its DevTools control URL; it
never launches or terminates the browser itself.`

const injectLongDescription = `Inject the payload into each target page and, unless disabled, into every
nested frame and iframe, depth-first. Frames that cannot be entered (hidden,
detached, cross-origin-restricted) are skipped silently; an error raised by
the payload itself aborts the scan for that target.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "axegrind",
		Short: "axe-core frame injection tool",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger("", viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for scan reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().
		StringVarP(
			&controlURLFlag, controlURLFlagName, "c",
			viper.GetString(controlURLConfigKey),
			"DevTools control URL of a running browser (host:port or ws://...)",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(controlURLFlagName), controlURLConfigKey)

	cmd.PersistentFlags().
		BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "enable debug logging")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
