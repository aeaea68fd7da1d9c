package main

import (
	"github.com/spf13/cobra"
)

// issueOptions holds the flags of issue creation, shared by `itg issue`
// and the bare `itg <title>` form.
type issueOptions struct {
	title    string
	bug      bool
	custom   string
	from     string
	detached bool
	copy     bool
}

func addIssueFlags(cmd *cobra.Command, opts *issueOptions) {
	cmd.Flags().BoolVarP(&opts.bug, "bug", "b", false, "Label the issue as a bug")
	cmd.Flags().StringVarP(&opts.custom, "custom", "c", "", "Label the issue with an existing `label`")
	cmd.Flags().StringVar(&opts.from, "from", "", "Base the branch on another issue's branch (`issue` number) or the base branch")
	cmd.Flags().BoolVarP(&opts.detached, "detached", "d", false, "Create the issue without assigning it or switching branches")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "Copy the branch name to the clipboard")
	cmd.MarkFlagsMutuallyExclusive("bug", "custom")
}

func newIssueCmd() *cobra.Command {
	var opts issueOptions

	cmd := &cobra.Command{
		Use:     "issue <title>",
		Short:   "Create an issue with its branch",
		Aliases: []string{"i"},
		GroupID: GroupCore,
		Args:    cobra.MaximumNArgs(1),
		Long: `Create an issue, assign it to you and create its branch.

The issue is labeled with the feature label unless --bug or --custom is
given. Its branch is named after the title and number (fix-login-page-i42),
created on origin from the current branch (or --from) and checked out.
Uncommitted changes are stashed and restored around the checkout.

The issue description links to the branch.`,
		Example: `  itg issue "Fix login page"             # Feature issue based on the current branch
  itg issue "Crash on start" -b          # Bug issue
  itg issue "Update docs" -c docs        # Custom label
  itg issue "Follow-up" --from 42        # Branch off issue #42's branch
  itg issue "Later" -d                   # Don't assign or switch branches`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.title = args[0]
			}
			return runCreateIssue(cmd.Context(), opts)
		},
	}

	addIssueFlags(cmd, &opts)

	cmd.AddCommand(newIssueOpenCmd())
	cmd.AddCommand(newIssueCloseCmd())

	return cmd
}

func newIssueOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <issue>",
		Short: "Switch to an issue's branch and assign the issue to you",
		Args:  cobra.ExactArgs(1),
		Long: `Switch to the branch associated with an issue and assign the issue to you.

An existing local branch is checked out and pulled; otherwise the remote
branch is checked out as a new tracking branch. Closed issues are reopened.`,
		Example: `  itg issue open 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOpenIssue(cmd.Context(), args[0])
		},
	}
}

func newIssueCloseCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "close [issue]",
		Short: "Close an issue",
		Args:  cobra.MaximumNArgs(1),
		Long: `Close an issue, by default the one of the current branch.

With --reason the reason is left as a comment on the issue.`,
		Example: `  itg issue close                    # Close the current branch's issue
  itg issue close 42 -r "Duplicate of #41"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var number string
			if len(args) == 1 {
				number = args[0]
			}
			return runCloseIssue(cmd.Context(), number, reason)
		},
	}

	cmd.Flags().StringVarP(&reason, "reason", "r", "", "Comment left on the closed issue")

	return cmd
}
