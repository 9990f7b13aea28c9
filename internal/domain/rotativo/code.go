package rotativo

import (
	"fmt"
	"math/rand/v2"
	"time"
)

const DefaultCodePrefix = "rotativo_"

const dateLayout = "2006-01-02"

// CodeGenerator stamps new cyclic-count batches with a code and a date in a
// fixed time zone. Codes are not checked for uniqueness.
type CodeGenerator struct {
	prefix string
	loc    *time.Location
	now    func() time.Time
	intn   func(int) int
}

func NewCodeGenerator(prefix string, loc *time.Location) *CodeGenerator {
	if loc == nil {
		loc = time.UTC
	}
	return &CodeGenerator{prefix: prefix, loc: loc, now: time.Now, intn: rand.IntN}
}

// Next returns a code like rotativo_ROTATIVO20240501_4821 and the matching ISO date.
func (g *CodeGenerator) Next() (code, date string) {
	t := g.now().In(g.loc)
	suffix := 1000 + g.intn(9000)
	return fmt.Sprintf("%sROTATIVO%s_%d", g.prefix, t.Format("20060102"), suffix), t.Format(dateLayout)
}
