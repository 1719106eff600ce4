package syncer

type direction int

const (
	inbound direction = iota
	outbound
)

// gate records which entity ids each half is applying right now
type gate struct {
	applying [2]map[string]int
}

func newGate() *gate {
	return &gate{applying: [2]map[string]int{make(map[string]int), make(map[string]int)}}
}

// enter marks id as being applied by d and returns the matching exit
func (g *gate) enter(d direction, id string) func() {
	g.applying[d][id]++
	return func() {
		if g.applying[d][id]--; g.applying[d][id] <= 0 {
			delete(g.applying[d], id)
		}
	}
}

// echo reports whether a notification about id was caused by the opposite half of d
func (g *gate) echo(d direction, id string) bool {
	other := outbound
	if d == outbound {
		other = inbound
	}
	return g.applying[other][id] > 0
}
