package domain

// ValueDecision is one resolved parameter value: a mean derived from the
// query vector, a role-dependent jitter sigma, and the final value mapped
// into [Min,Max].
type ValueDecision struct {
	Parameter string
	Mean      float64 // [0,1] before jitter
	Sigma     float64
	Min       float64
	Max       float64
	Value     float64
}

// RoutingDecision is one enabled modulation routing from a virtual bus to a
// target parameter.
type RoutingDecision struct {
	Source  string
	Target  string
	Amount  float64 // [0,1]
	Enabled bool
}

// Decisions is the full output of the decision engine for one query.
// Identical inputs always produce identical Decisions, bit for bit.
type Decisions struct {
	Values   []ValueDecision
	Routings []RoutingDecision
	Seed     uint32
}

// RoutingMap buckets enabled routings by source bus.
func (d *Decisions) RoutingMap() map[string][]RoutingDecision {
	m := make(map[string][]RoutingDecision)
	for _, r := range d.Routings {
		if r.Enabled {
			m[r.Source] = append(m[r.Source], r)
		}
	}
	return m
}
