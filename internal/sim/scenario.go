// Package sim generates random customer traffic against a session controller.
package sim

import (
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

// Customer is someone the simulation can log in as.
type Customer struct {
	UserName string
	PIN      int
}

type Kind string

const (
	KindTransfer Kind = "transfer"
	KindLoan     Kind = "loan"
	KindSort     Kind = "sort"
	KindWait     Kind = "wait"
)

// Action is one simulated UI trigger performed by Actor.
type Action struct {
	Kind   Kind
	Actor  string
	To     string
	Amount decimal.Decimal
	Ticks  int
}

// Mix weights the action kinds. A zero Mix means DefaultMix.
type Mix struct {
	Transfer int
	Loan     int
	Sort     int
	Wait     int
}

var DefaultMix = Mix{Transfer: 6, Loan: 2, Sort: 1, Wait: 1}

func (m Mix) total() int { return m.Transfer + m.Loan + m.Sort + m.Wait }

type Generator struct {
	customers []Customer
	mix       Mix
	maxWait   int
	rnd       *rand.Rand
}

// NewGenerator needs at least two customers; seed 0 picks a time-based seed.
// maxWait bounds the idle ticks of a wait action.
func NewGenerator(seed int64, customers []Customer, mix Mix, maxWait int) Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if mix.total() <= 0 {
		mix = DefaultMix
	}
	if maxWait <= 0 {
		maxWait = 1
	}
	return Generator{
		customers: append([]Customer(nil), customers...),
		mix:       mix,
		maxWait:   maxWait,
		rnd:       rand.New(rand.NewSource(seed)),
	}
}

func (g Generator) Next() Action {
	cs := g.customers
	if len(cs) < 2 {
		panic("scenario requires >=2 customers")
	}
	fromIdx := g.rnd.Intn(len(cs))
	act := Action{Actor: cs[fromIdx].UserName}

	switch n := g.rnd.Intn(g.mix.total()); {
	case n < g.mix.Transfer:
		toIdx := g.rnd.Intn(len(cs) - 1)
		if toIdx >= fromIdx {
			toIdx++
		}
		act.Kind = KindTransfer
		act.To = cs[toIdx].UserName
		act.Amount = decimal.New(int64(g.rnd.Intn(50_000)+1), -2) // 0.01 - 500.00
	case n < g.mix.Transfer+g.mix.Loan:
		act.Kind = KindLoan
		act.Amount = decimal.NewFromInt(int64(g.rnd.Intn(50)+1) * 100)
	case n < g.mix.Transfer+g.mix.Loan+g.mix.Sort:
		act.Kind = KindSort
	default:
		act.Kind = KindWait
		act.Ticks = g.rnd.Intn(g.maxWait) + 1
	}
	return act
}

func (g Generator) pin(userName string) (int, bool) {
	for _, c := range g.customers {
		if c.UserName == userName {
			return c.PIN, true
		}
	}
	return 0, false
}
