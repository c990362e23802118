package sim

import "github.com/shopspring/decimal"

type Counter struct {
	Actions     int
	Applied     int
	Rejected    map[string]int // by reason
	Logins      int
	Transferred decimal.Decimal
	Waited      int // ticks

	// A loan is approved when the controller schedules it. It is then either
	// posted or discarded because its session ended first.
	LoansApproved  int
	ApprovedVolume decimal.Decimal
	LoansPosted    int
	LoansDiscarded int
	PostedVolume   decimal.Decimal
}

func (c *Counter) Add(a Action, err error) {
	c.Actions++
	if err != nil {
		if c.Rejected == nil {
			c.Rejected = make(map[string]int)
		}
		c.Rejected[err.Error()]++
		return
	}
	c.Applied++
	switch a.Kind {
	case KindTransfer:
		c.Transferred = c.Transferred.Add(a.Amount)
	case KindLoan:
		c.LoansApproved++
		c.ApprovedVolume = c.ApprovedVolume.Add(a.Amount.Floor())
	case KindWait:
		c.Waited += a.Ticks
	}
}

func (c Counter) RejectedTotal() int {
	n := 0
	for _, v := range c.Rejected {
		n += v
	}
	return n
}
