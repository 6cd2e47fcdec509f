package script

// Merged is the value slot of a block field. The first occurrence of a key
// produces Single; the second converts the slot to Multiple holding both
// values in encounter order, and each later occurrence appends.
type Merged interface {
	// Values returns the slot's values in encounter order.
	Values() []Node
	// Last returns the most recently added value.
	Last() Node
	merged()
}

// Single is a slot whose key occurred once.
type Single struct {
	Node Node
}

func (Single) merged()          {}
func (s Single) Values() []Node { return []Node{s.Node} }
func (s Single) Last() Node     { return s.Node }

// Multiple is a slot whose key occurred more than once.
type Multiple struct {
	Nodes []Node
}

func (Multiple) merged()          {}
func (m Multiple) Values() []Node { return m.Nodes }
func (m Multiple) Last() Node     { return m.Nodes[len(m.Nodes)-1] }

// Field is one key of a block together with its merged value.
type Field struct {
	Key   Key
	Value Merged
	// Line and Column locate the first occurrence of the key.
	Line   int
	Column int
}

// Block is an insertion-ordered multimap from Key to Merged.
type Block struct {
	fields []*Field
	index  map[Key]int

	// Directives are the override directives found in the block body,
	// in source order. They are not applied by the parser.
	Directives []Directive
}

func (*Block) node() {}

// NewBlock returns an empty block.
func NewBlock() *Block {
	return &Block{index: make(map[Key]int)}
}

// Len returns the number of distinct keys.
func (b *Block) Len() int {
	return len(b.fields)
}

// Fields returns the fields in first-occurrence order.
// The returned slice must not be modified.
func (b *Block) Fields() []*Field {
	return b.fields
}

// Lookup returns the field for key.
func (b *Block) Lookup(key Key) (*Field, bool) {
	i, ok := b.index[key]
	if !ok {
		return nil, false
	}
	return b.fields[i], true
}

// Get returns the merged value of the identifier key name.
func (b *Block) Get(name string) (Merged, bool) {
	f, ok := b.Lookup(Ident(name))
	if !ok {
		return nil, false
	}
	return f.Value, true
}

// Has reports whether the identifier key name is present.
func (b *Block) Has(name string) bool {
	_, ok := b.index[Ident(name)]
	return ok
}

// Add appends v under key following the duplicate-key merge rule.
func (b *Block) Add(key Key, v Node) {
	b.AddAt(key, v, 0, 0)
}

// AddAt is Add with a source position recorded for new keys.
func (b *Block) AddAt(key Key, v Node, line, column int) {
	if b.index == nil {
		b.index = make(map[Key]int)
	}
	i, ok := b.index[key]
	if !ok {
		b.index[key] = len(b.fields)
		b.fields = append(b.fields, &Field{Key: key, Value: Single{Node: v}, Line: line, Column: column})
		return
	}
	f := b.fields[i]
	switch m := f.Value.(type) {
	case Single:
		f.Value = Multiple{Nodes: []Node{m.Node, v}}
	case Multiple:
		f.Value = Multiple{Nodes: append(m.Nodes, v)}
	}
}

// Set replaces the value of key with v. An existing key keeps its position.
func (b *Block) Set(key Key, v Node) {
	b.SetMerged(key, Single{Node: v})
}

// SetMerged replaces the slot of key with m.
func (b *Block) SetMerged(key Key, m Merged) {
	if b.index == nil {
		b.index = make(map[Key]int)
	}
	if i, ok := b.index[key]; ok {
		b.fields[i].Value = m
		return
	}
	b.index[key] = len(b.fields)
	b.fields = append(b.fields, &Field{Key: key, Value: m})
}

// Merge adds every value of other into b in order, as if the statements
// of other had been written at the end of b.
func (b *Block) Merge(other *Block) {
	if other == nil {
		return
	}
	for _, f := range other.fields {
		for _, v := range f.Value.Values() {
			b.AddAt(f.Key, v, f.Line, f.Column)
		}
	}
}

// Clone returns a deep copy of b.
func (b *Block) Clone() *Block {
	c := &Block{
		fields: make([]*Field, len(b.fields)),
		index:  make(map[Key]int, len(b.fields)),
	}
	for i, f := range b.fields {
		nf := *f
		switch m := f.Value.(type) {
		case Single:
			nf.Value = Single{Node: Clone(m.Node)}
		case Multiple:
			nodes := make([]Node, len(m.Nodes))
			for j, n := range m.Nodes {
				nodes[j] = Clone(n)
			}
			nf.Value = Multiple{Nodes: nodes}
		}
		c.fields[i] = &nf
		c.index[f.Key] = i
	}
	if len(b.Directives) > 0 {
		c.Directives = make([]Directive, len(b.Directives))
		for i, d := range b.Directives {
			c.Directives[i] = d
			if d.Body != nil {
				c.Directives[i].Body = d.Body.Clone()
			}
		}
	}
	return c
}

// Scalar returns the value of name when it is a single scalar.
func (b *Block) Scalar(name string) (Scalar, bool) {
	m, ok := b.Get(name)
	if !ok {
		return Scalar{}, false
	}
	s, ok := m.(Single)
	if !ok {
		return Scalar{}, false
	}
	v, ok := s.Node.(Scalar)
	return v, ok
}

// Text returns the source text of the scalar name, or "" when name is
// absent or not a single scalar.
func (b *Block) Text(name string) string {
	s, _ := b.Scalar(name)
	return s.Text
}

// Block returns the value of name when it is a single block.
func (b *Block) Block(name string) (*Block, bool) {
	m, ok := b.Get(name)
	if !ok {
		return nil, false
	}
	s, ok := m.(Single)
	if !ok {
		return nil, false
	}
	v, ok := s.Node.(*Block)
	return v, ok
}
