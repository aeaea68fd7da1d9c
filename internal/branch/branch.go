// Package branch derives issue branch names and parses issue numbers back
// out of branch names and links.
//
// An issue branch is named after the issue title and number, e.g. issue #42
// "Fix login page" lives on fix-login-page-i42.
package branch

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jmgilman/go/errors"
)

var (
	numberRe   = regexp.MustCompile(`^\d+$`)
	lineBreaks = regexp.MustCompile(`\r\n|\r|\n`)
	nonSlug    = regexp.MustCompile(`[^a-zA-Z0-9-]+`)
	dashes     = regexp.MustCompile(`-+`)
)

// ErrNoIssue is returned when a branch name carries no issue number.
var ErrNoIssue = errors.New(errors.CodeNotFound, "branch has no associated issue")

// Slugify lowercases s and reduces it to ASCII letters, digits and single dashes.
// Line breaks and apostrophes are dropped rather than replaced.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = lineBreaks.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "'", "")
	s = nonSlug.ReplaceAllString(s, "-")
	s = dashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ValidateNumber reports whether s is a plain issue number (digits only).
func ValidateNumber(s string) bool {
	return numberRe.MatchString(s)
}

// Name returns the branch name for an issue.
func Name(title string, number int) string {
	return fmt.Sprintf("%s-i%d", Slugify(title), number)
}

// IssueNumber extracts the issue number from a branch created by [Name].
func IssueNumber(branch string) (string, error) {
	i := strings.LastIndex(branch, "i")
	if i == -1 || !ValidateNumber(branch[i+1:]) {
		return "", fmt.Errorf("%w: %q", ErrNoIssue, branch)
	}
	return branch[i+1:], nil
}

// NumberFromLink returns the trailing number of an issue or pull request URL.
func NumberFromLink(link string) (string, error) {
	n := link[strings.LastIndex(link, "/")+1:]
	if !ValidateNumber(n) {
		return "", errors.Newf(errors.CodeInvalidInput, "no issue number in %q", link)
	}
	return n, nil
}

// Link returns the web URL of branch within a repository.
func Link(repoURL, branch string) string {
	return strings.TrimSuffix(repoURL, "/") + "/tree/" + branch
}

// Description is the issue body that links an issue to its branch.
func Description(repoURL, branch string) string {
	return fmt.Sprintf("Associated branch: [%s](%s)", branch, Link(repoURL, branch))
}
