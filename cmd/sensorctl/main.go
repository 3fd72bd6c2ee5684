package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "sensorctl",
		Short: "Manage Sensor assets on the lowcarbon REST backend",
		Long: `sensorctl lists, creates, updates and deletes Sensor assets through the same
form controller used by the web interface.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.baseURL, "base-url", "", "REST base URL (default from LOWCARBON_REST_BASE_URL or config)")
	rootCmd.PersistentFlags().StringVar(&flags.accessToken, "access-token", "", "REST access token")
	rootCmd.PersistentFlags().Uint32Var(&flags.timeoutMillis, "timeout-millis", 0, "REST timeout in milliseconds")
	rootCmd.PersistentFlags().BoolVar(&flags.verbose, "verbose", false, "Log REST calls")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newListCmd(flags))
	rootCmd.AddCommand(newGetCmd(flags))
	rootCmd.AddCommand(newAddCmd(flags))
	rootCmd.AddCommand(newUpdateCmd(flags))
	rootCmd.AddCommand(newDeleteCmd(flags))

	return rootCmd
}
