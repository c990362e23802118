package sim

import (
	"fmt"
	"sort"
	"strings"
)

// Summarize renders the counter as a short plain-text report.
func Summarize(c Counter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "actions: %d (applied %d, rejected %d)\n", c.Actions, c.Applied, c.RejectedTotal())
	fmt.Fprintf(&b, "logins: %d\n", c.Logins)
	fmt.Fprintf(&b, "transferred: %s\n", c.Transferred.StringFixed(2))
	fmt.Fprintf(&b, "loans approved: %d (%s)\n", c.LoansApproved, c.ApprovedVolume.StringFixed(0))
	fmt.Fprintf(&b, "loans posted: %d (%s)\n", c.LoansPosted, c.PostedVolume.StringFixed(0))
	fmt.Fprintf(&b, "loans discarded: %d\n", c.LoansDiscarded)
	fmt.Fprintf(&b, "idle ticks: %d\n", c.Waited)

	reasons := make([]string, 0, len(c.Rejected))
	for r := range c.Rejected {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		fmt.Fprintf(&b, "  rejected %q: %d\n", r, c.Rejected[r])
	}
	return b.String()
}
