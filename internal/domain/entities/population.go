package entities

// WorldPopulation is the live content a world accumulates after creation.
// Templates never carry a populated one.
type WorldPopulation struct {
	Nodes        []*ContentInstance
	Interactions []*ContentInstance
	Characters   []*ContentInstance

	// NodePopulations maps a node id to the ids of characters placed there.
	NodePopulations map[string][]string
}

// NewWorldPopulation returns a population with every collection empty
// (not nil), so encoders emit [] and {}.
func NewWorldPopulation() *WorldPopulation {
	return &WorldPopulation{
		Nodes:           []*ContentInstance{},
		Interactions:    []*ContentInstance{},
		Characters:      []*ContentInstance{},
		NodePopulations: map[string][]string{},
	}
}

// IsEmpty reports whether the population holds nothing.
func (p *WorldPopulation) IsEmpty() bool {
	if p == nil {
		return true
	}
	return len(p.Nodes) == 0 && len(p.Interactions) == 0 &&
		len(p.Characters) == 0 && len(p.NodePopulations) == 0
}

// Clone returns a deep copy of p.
func (p *WorldPopulation) Clone() *WorldPopulation {
	if p == nil {
		return nil
	}
	return &WorldPopulation{
		Nodes:           cloneInstances(p.Nodes),
		Interactions:    cloneInstances(p.Interactions),
		Characters:      cloneInstances(p.Characters),
		NodePopulations: cloneStringSliceMap(p.NodePopulations),
	}
}

// Members returns the population grouped by content type in a fixed order.
func (p *WorldPopulation) Members() Groups[*ContentInstance] {
	if p == nil {
		return nil
	}
	return Groups[*ContentInstance]{
		{Type: ContentNode, Items: p.Nodes},
		{Type: ContentInteraction, Items: p.Interactions},
		{Type: ContentCharacter, Items: p.Characters},
	}
}

func (p *WorldPopulation) putInto(m map[string]any) {
	m[KeyNodes] = nonNilInstances(p.Nodes)
	m[KeyInteractions] = nonNilInstances(p.Interactions)
	m[KeyCharacters] = nonNilInstances(p.Characters)
	if p.NodePopulations == nil {
		m[KeyNodePopulations] = map[string][]string{}
	} else {
		m[KeyNodePopulations] = p.NodePopulations
	}
}

func (p *WorldPopulation) setField(key string, decode func(any) error) error {
	switch key {
	case KeyNodes:
		return decode(&p.Nodes)
	case KeyInteractions:
		return decode(&p.Interactions)
	case KeyCharacters:
		return decode(&p.Characters)
	default:
		return decode(&p.NodePopulations)
	}
}

func nonNilInstances(in []*ContentInstance) []*ContentInstance {
	if in == nil {
		return []*ContentInstance{}
	}
	return in
}
