package main

import (
	"github.com/spf13/cobra"
)

type prOptions struct {
	draft  bool
	master bool
	push   bool
	to     string
}

func newPrCmd() *cobra.Command {
	var opts prOptions

	cmd := &cobra.Command{
		Use:     "pull-request",
		Short:   "Create a pull request for the current issue",
		Aliases: []string{"pr"},
		GroupID: GroupCore,
		Args:    cobra.NoArgs,
		Long: `Create a pull request from the current issue branch.

The pull request is titled after the issue, closes it on merge, carries the
issue's labels and is assigned to you. It targets the base branch unless
--to names another issue whose branch to merge into.`,
		Example: `  itg pr            # Pull request into the base branch
  itg pr -d -p      # Push first, open as draft
  itg pr --to 41    # Merge into issue #41's branch
  itg pr -m         # Switch back to the base branch afterwards`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreatePullRequest(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.draft, "draft", "d", false, "Open the pull request as a draft")
	cmd.Flags().BoolVarP(&opts.master, "master", "m", false, "Check out and pull the base branch afterwards")
	cmd.Flags().BoolVarP(&opts.push, "push", "p", false, "Push the current branch first")
	cmd.Flags().StringVar(&opts.to, "to", "", "Merge into the branch of this `issue` number")

	cmd.AddCommand(newPrOpenCmd())
	cmd.AddCommand(newPrReadyCmd())

	return cmd
}

func newPrOpenCmd() *cobra.Command {
	var copyURL bool

	cmd := &cobra.Command{
		Use:   "open [issue]",
		Short: "Open the pull request of the current (or given) issue",
		Args:  cobra.MaximumNArgs(1),
		Long: `Open the pull request of the current (or given) issue in the browser.

When stdout is not a terminal the URL is printed instead.`,
		Example: `  itg pr open           # Current branch
  itg pr open 42        # Issue #42's branch
  itg pr open --copy    # Also copy the URL`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var number string
			if len(args) == 1 {
				number = args[0]
			}
			return runOpenPullRequest(cmd.Context(), number, copyURL)
		},
	}

	cmd.Flags().BoolVar(&copyURL, "copy", false, "Copy the pull request URL to the clipboard")

	return cmd
}

func newPrReadyCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "ready [issue]",
		Short: "Mark the draft pull request of the current (or given) issue ready for review",
		Args:  cobra.MaximumNArgs(1),
		Example: `  itg pr ready          # Current branch, asks for confirmation
  itg pr ready 42 -y    # Issue #42's branch, no confirmation`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var number string
			if len(args) == 1 {
				number = args[0]
			}
			return runReadyPullRequest(cmd.Context(), number, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
