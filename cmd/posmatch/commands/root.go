package commands

import (
	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every subcommand
type globalOptions struct {
	cfgFile string
	offline bool
	verbose bool
}

// NewRootCommand builds the posmatch command tree
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "posmatch",
		Short: "POSMatch - find the right point-of-sale setup for a business",
		Long: `POSMatch resolves a free-text description of a business into point-of-sale
product recommendations, using the remote recommender when available and the
local catalog matcher otherwise.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&opts.offline, "offline", false, "disable the remote recommender")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")

	rootCmd.AddCommand(
		newRecommendCommand(opts),
		newCatalogCommand(opts),
		newInteractiveCommand(opts),
	)

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}
