package main

const (
	symtableCapacity = 16383
	probeStep        = 1
)

// SymbolKind distinguishes functions from mutable and immutable variables.
type SymbolKind int

const (
	SymFunc SymbolKind = iota
	SymVar
	SymConst
)

func (k SymbolKind) String() string {
	switch k {
	case SymFunc:
		return "function"
	case SymVar:
		return "variable"
	case SymConst:
		return "constant"
	}
	return "unknown"
}

// Param is one declared function parameter.
type Param struct {
	Name string
	Type DataType
}

// Symbol is a symbol table entry. Variable fields are meaningful for SymVar
// and SymConst; function fields for SymFunc.
type Symbol struct {
	Name string
	Kind SymbolKind

	// Variables and constants.
	Type     DataType
	Depth    int  // scopes entered since declaration
	Used     bool // read at least once
	Modified bool // assigned after declaration; always true for constants
	Known    bool // constant whose value is known at compile time

	// Functions.
	ReturnType DataType
	Params     []Param
	Locals     []string // every local name declared in the body, first-seen order
	Returned   bool     // all control paths return (always true for void)
}

// IsVariable reports whether s is a variable or a constant.
func (s *Symbol) IsVariable() bool {
	return s.Kind == SymVar || s.Kind == SymConst
}

// AddLocal records a local variable name for frame allocation. Names declared
// more than once in sibling blocks share one slot.
func (s *Symbol) AddLocal(name string) {
	for _, existing := range s.Locals {
		if existing == name {
			return
		}
	}
	s.Locals = append(s.Locals, name)
}

type slotState uint8

const (
	slotEmpty slotState = iota
	slotBusy
	slotDeleted
)

type slot struct {
	state slotState
	sym   *Symbol
}

// SymbolTable is a fixed-capacity open-addressed hash table of every live
// function and variable. Variable lifetime is tracked by per-symbol scope
// depth instead of nested tables.
type SymbolTable struct {
	slots []slot
	count int
	// live lists every variable currently in the table, in declaration order.
	live []*Symbol
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{slots: make([]slot, symtableCapacity)}
}

// Reset empties the table for another compilation.
func (st *SymbolTable) Reset() {
	clear(st.slots)
	st.count = 0
	st.live = st.live[:0]
}

// hashName is the DJB string hash reduced to the table capacity.
func hashName(name string) int {
	var h uint32 = 5381
	for i := 0; i < len(name); i++ {
		h = h*33 + uint32(name[i])
	}
	return int(h % symtableCapacity)
}

func (st *SymbolTable) findSlot(name string) int {
	index := hashName(name)
	for i := 0; i < symtableCapacity; i++ {
		s := &st.slots[index]
		switch s.state {
		case slotEmpty:
			return -1
		case slotBusy:
			if s.sym.Name == name {
				return index
			}
		}
		index = (index + probeStep) % symtableCapacity
	}
	return -1
}

// Add inserts a new symbol. Callers check for an existing name first.
// Constants start out modified, so only reads are required of them.
func (st *SymbolTable) Add(name string, kind SymbolKind) (*Symbol, error) {
	if st.count == symtableCapacity {
		return nil, newError(ErrInternal, Position{}, "symbol table full")
	}
	sym := &Symbol{
		Name:       name,
		Kind:       kind,
		Type:       TypeUndefined,
		ReturnType: TypeUndefined,
		Modified:   kind == SymConst,
	}
	index := hashName(name)
	for st.slots[index].state == slotBusy {
		index = (index + probeStep) % symtableCapacity
	}
	st.slots[index] = slot{state: slotBusy, sym: sym}
	st.count++
	if sym.IsVariable() {
		st.live = append(st.live, sym)
	}
	return sym, nil
}

// Find returns the symbol called name, or nil.
func (st *SymbolTable) Find(name string) *Symbol {
	index := st.findSlot(name)
	if index < 0 {
		return nil
	}
	return st.slots[index].sym
}

// Remove deletes the symbol called name. The slot becomes a tombstone so
// later entries on the same probe chain stay reachable.
func (st *SymbolTable) Remove(name string) {
	index := st.findSlot(name)
	if index < 0 {
		return
	}
	sym := st.slots[index].sym
	st.slots[index] = slot{state: slotDeleted}
	st.count--
	for i, v := range st.live {
		if v == sym {
			st.live = append(st.live[:i], st.live[i+1:]...)
			break
		}
	}
}

// EnterScope makes every live variable one scope deeper.
func (st *SymbolTable) EnterScope() {
	for _, v := range st.live {
		v.Depth++
	}
}

// LeaveScope closes the innermost scope. Variables declared in it must have
// been read, and mutable ones written, before they are removed. Variables from
// enclosing scopes move one scope up.
func (st *SymbolTable) LeaveScope() error {
	var dying []*Symbol
	for _, v := range st.live {
		if v.Depth > 0 {
			v.Depth--
			continue
		}
		if !v.Used {
			return newError(ErrUnusedVariable, Position{}, "%s '%s' is never used", v.Kind, v.Name)
		}
		if !v.Modified {
			return newError(ErrUnusedVariable, Position{}, "variable '%s' is never modified; declare it const", v.Name)
		}
		dying = append(dying, v)
	}
	for _, v := range dying {
		st.Remove(v.Name)
	}
	return nil
}

// AssertFunction returns the function called name.
func (st *SymbolTable) AssertFunction(name string) (*Symbol, error) {
	sym := st.Find(name)
	if sym == nil || sym.Kind != SymFunc {
		return nil, newError(ErrDefinition, Position{}, "undefined function '%s'", name)
	}
	return sym, nil
}

// AssertVariable returns the variable or constant called name.
func (st *SymbolTable) AssertVariable(name string) (*Symbol, error) {
	sym := st.Find(name)
	if sym == nil || !sym.IsVariable() {
		return nil, newError(ErrDefinition, Position{}, "undefined variable '%s'", name)
	}
	return sym, nil
}

// MarkUsed records a read of the variable called name.
func (st *SymbolTable) MarkUsed(name string) (*Symbol, error) {
	sym, err := st.AssertVariable(name)
	if err != nil {
		return nil, err
	}
	sym.Used = true
	return sym, nil
}

// MarkModified records an assignment to the variable called name.
// Assigning to a constant is a redefinition.
func (st *SymbolTable) MarkModified(name string) (*Symbol, error) {
	sym, err := st.AssertVariable(name)
	if err != nil {
		return nil, err
	}
	if sym.Kind == SymConst {
		return nil, newError(ErrRedefinition, Position{}, "cannot assign to constant '%s'", name)
	}
	sym.Modified = true
	return sym, nil
}

// AssertAllFunctionsReturned fails if any function can finish without
// returning a value.
func (st *SymbolTable) AssertAllFunctionsReturned() error {
	for i := range st.slots {
		s := &st.slots[i]
		if s.state == slotBusy && s.sym.Kind == SymFunc && !s.sym.Returned {
			return newError(ErrReturn, Position{}, "function '%s' does not return a value on every path", s.sym.Name)
		}
	}
	return nil
}
