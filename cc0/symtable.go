package cc0

// VariableKind tells constants apart from variables and tracks whether a
// variable has been assigned.
type VariableKind int

const (
	KindConstant VariableKind = iota
	KindUninitialized
	KindInitialized
)

func (k VariableKind) String() string {
	switch k {
	case KindConstant:
		return "constant"
	case KindUninitialized:
		return "uninitialized"
	case KindInitialized:
		return "initialized"
	}
	return ""
}

// Variable is a declared variable or constant.
type Variable struct {
	Name    string
	Kind    VariableKind
	Level   int // 0 global, 1 function-local
	Address int
}

// Function is a declared function. Its index in the function table is both
// its call target and its constant pool slot.
type Function struct {
	Name    string
	Params  int
	Level   int
	Returns bool
}

// Context identifies the instruction stream code is emitted into: the global
// start stream or the body of one function.
type Context struct {
	function int
	inside   bool
}

// Global is the context of top-level declarations.
var Global = Context{}

// InFunction returns the context of the body of the function at index.
func InFunction(index int) Context {
	return Context{function: index, inside: true}
}

// Function returns the index of the function being compiled, if any.
func (c Context) Function() (int, bool) {
	return c.function, c.inside
}

// Level returns the scope level code in this context runs at.
func (c Context) Level() int {
	if c.inside {
		return 1
	}
	return 0
}

// SymbolTable records variables in declaration order and functions in
// definition order. Entering a function opens a scope whose base is the next
// free address; leaving it drops every variable at or above that base.
type SymbolTable struct {
	vars  []Variable
	funcs []Function
	bases []int
	next  int
}

// NewSymbolTable returns a table holding only the global scope.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{bases: []int{0}}
}

// Declare adds a variable at the next free address and returns its index.
func (t *SymbolTable) Declare(name string, kind VariableKind, level int) int {
	t.vars = append(t.vars, Variable{
		Name:    name,
		Kind:    kind,
		Level:   level,
		Address: t.next,
	})
	t.next++
	return len(t.vars) - 1
}

// IsDeclared reports whether name is already taken at level. A function name
// counts only while that function's own body is being compiled.
func (t *SymbolTable) IsDeclared(name string, level int, ctx Context) bool {
	for i := len(t.vars) - 1; i >= 0; i-- {
		if t.vars[i].Level == level && t.vars[i].Name == name {
			return true
		}
	}
	if index, ok := ctx.Function(); ok && t.funcs[index].Name == name {
		return true
	}
	return false
}

// Lookup finds the innermost visible variable named name.
func (t *SymbolTable) Lookup(name string) (int, bool) {
	for i := len(t.vars) - 1; i >= 0; i-- {
		if t.vars[i].Name == name {
			return i, true
		}
	}
	return -1, false
}

// Variable returns the variable at index.
func (t *SymbolTable) Variable(index int) Variable {
	return t.vars[index]
}

// MarkInitialized records that the variable at index has been assigned.
func (t *SymbolTable) MarkInitialized(index int) {
	if t.vars[index].Kind == KindUninitialized {
		t.vars[index].Kind = KindInitialized
	}
}

// SetKind replaces the kind of the variable at index.
func (t *SymbolTable) SetKind(index int, kind VariableKind) {
	t.vars[index].Kind = kind
}

// DeclareFunction appends a function and returns its index.
func (t *SymbolTable) DeclareFunction(name string, returns bool) int {
	t.funcs = append(t.funcs, Function{Name: name, Level: 1, Returns: returns})
	return len(t.funcs) - 1
}

// SetParams records the parameter count of the function at index.
func (t *SymbolTable) SetParams(index, params int) {
	t.funcs[index].Params = params
}

// LookupFunction finds a function defined so far, including the one being
// compiled.
func (t *SymbolTable) LookupFunction(name string) (int, Function, bool) {
	for i := len(t.funcs) - 1; i >= 0; i-- {
		if t.funcs[i].Name == name {
			return i, t.funcs[i], true
		}
	}
	return -1, Function{}, false
}

// Function returns the function at index.
func (t *SymbolTable) Function(index int) Function {
	return t.funcs[index]
}

// Functions returns the function table in definition order.
func (t *SymbolTable) Functions() []Function {
	return append([]Function(nil), t.funcs...)
}

// Base returns the first address of the scope at level.
func (t *SymbolTable) Base(level int) int {
	return t.bases[level]
}

// Next returns the address the next declaration will receive.
func (t *SymbolTable) Next() int {
	return t.next
}

// EnterScope opens a scope one level deeper, based at the next free address.
func (t *SymbolTable) EnterScope() {
	t.bases = append(t.bases, t.next)
}

// LeaveScope closes the innermost scope, dropping its variables and handing
// their addresses back.
func (t *SymbolTable) LeaveScope() {
	if len(t.bases) == 1 {
		panic("cc0: leaving the global scope")
	}
	base := t.bases[len(t.bases)-1]
	t.bases = t.bases[:len(t.bases)-1]

	cut := len(t.vars)
	for cut > 0 && t.vars[cut-1].Address >= base {
		cut--
	}
	t.vars = t.vars[:cut]
	t.next = base
}

// Resolve returns the level difference and scope offset used to address v
// from code running in ctx.
func (t *SymbolTable) Resolve(v Variable, ctx Context) (int, int) {
	return ctx.Level() - v.Level, v.Address - t.bases[v.Level]
}
