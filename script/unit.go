package script

import (
	"errors"
	"fmt"
	"sort"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/parser"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("gravityhelper.script")

var (
	ErrNotLoaded      = errors.New("script: unit not loaded")
	ErrUnknownRoutine = errors.New("script: unknown routine")
	ErrUnknownGlobal  = errors.New("script: unknown global")
)

// resultGlobal receives the return value of host-initiated calls.
const resultGlobal = "__result"

// Env is the set of host values a unit is compiled against. Each entry
// becomes a global of the unit.
type Env map[string]tengo.Object

// Unit is one compiled script file. Its top-level function globals are the
// routines the host calls each frame.
type Unit struct {
	Name string

	bytecode    *tengo.Bytecode
	globals     []tengo.Object
	globalIndex map[string]int
	globalNames map[int]string
	resultIdx   int
	interned    map[tengo.Object]int

	decls   map[string]*Decl
	byFn    map[*tengo.CompiledFunction]*Decl
	ordered []*Decl
	loaded  bool
}

// Load compiles src and runs its top level once so the routines it declares
// become callable.
func Load(name string, src []byte, env Env) (*Unit, error) {
	u, err := Compile(name, src, env)
	if err != nil {
		return nil, err
	}
	if err := u.Run(); err != nil {
		return nil, err
	}
	return u, nil
}

// Compile parses and compiles src without running it.
func Compile(name string, src []byte, env Env) (*Unit, error) {
	names := make([]string, 0, len(env)+1)
	for n := range env {
		names = append(names, n)
	}
	sort.Strings(names)
	names = append(names, resultGlobal)

	symbols := tengo.NewSymbolTable()
	globals := make([]tengo.Object, tengo.GlobalsSize)
	for _, n := range names {
		sym := symbols.Define(n)
		if v, ok := env[n]; ok && v != nil {
			globals[sym.Index] = v
		} else {
			globals[sym.Index] = tengo.UndefinedValue
		}
	}

	fileSet := parser.NewFileSet()
	srcFile := fileSet.AddFile(name, -1, len(src))
	file, err := parser.NewParser(srcFile, src, nil).ParseFile()
	if err != nil {
		return nil, fmt.Errorf("script: parse %s: %w", name, err)
	}

	modules := stdlib.GetModuleMap(stdlib.AllModuleNames()...)
	c := tengo.NewCompiler(srcFile, symbols, nil, modules, nil)
	if err := c.Compile(file); err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", name, err)
	}
	bytecode := c.Bytecode()
	bytecode.RemoveDuplicates()

	u := &Unit{
		Name:        name,
		bytecode:    bytecode,
		globals:     globals,
		globalIndex: make(map[string]int),
		globalNames: make(map[int]string),
		interned:    make(map[tengo.Object]int),
	}
	for _, n := range symbols.Names() {
		sym, _, ok := symbols.Resolve(n, false)
		if !ok || sym.Scope != tengo.ScopeGlobal {
			continue
		}
		u.globalIndex[n] = sym.Index
		u.globalNames[sym.Index] = n
	}
	u.resultIdx = u.globalIndex[resultGlobal]
	return u, nil
}

// Run executes the unit's top level and indexes its declarations.
func (u *Unit) Run() error {
	vm := tengo.NewVM(u.bytecode, u.globals, -1)
	if err := vm.Run(); err != nil {
		return fmt.Errorf("script: run %s: %w", u.Name, err)
	}
	u.index()
	u.loaded = true
	log.Debugf("script: unit=%s loaded %d declarations", u.Name, len(u.ordered))
	return nil
}

// Call invokes fn with args on the unit's globals and returns its result.
// The unit's bytecode is left untouched: a short main that calls fn is
// built around a copy of the constant table.
func (u *Unit) Call(fn tengo.Object, args ...tengo.Object) (tengo.Object, error) {
	if !u.loaded {
		return nil, ErrNotLoaded
	}
	base := len(u.bytecode.Constants)
	constants := make([]tengo.Object, base, base+1+len(args))
	copy(constants, u.bytecode.Constants)
	constants = append(constants, fn)
	constants = append(constants, args...)

	ins := tengo.MakeInstruction(parser.OpConstant, base)
	for i := range args {
		ins = append(ins, tengo.MakeInstruction(parser.OpConstant, base+1+i)...)
	}
	ins = append(ins, tengo.MakeInstruction(parser.OpCall, len(args), 0)...)
	ins = append(ins, tengo.MakeInstruction(parser.OpSetGlobal, u.resultIdx)...)
	ins = append(ins, parser.OpSuspend)

	shim := &tengo.Bytecode{
		FileSet:      u.bytecode.FileSet,
		MainFunction: &tengo.CompiledFunction{Instructions: ins},
		Constants:    constants,
	}
	vm := tengo.NewVM(shim, u.globals, -1)
	if err := vm.Run(); err != nil {
		return nil, fmt.Errorf("script: %s: %w", u.Name, err)
	}
	res := u.globals[u.resultIdx]
	u.globals[u.resultIdx] = tengo.UndefinedValue
	if res == nil {
		res = tengo.UndefinedValue
	}
	return res, nil
}

// Invoke calls the routine name.
func (u *Unit) Invoke(name string, args ...tengo.Object) (tengo.Object, error) {
	d, ok := u.Routine(name)
	if !ok {
		return nil, fmt.Errorf("script: %s.%s: %w", u.Name, name, ErrUnknownRoutine)
	}
	return u.Call(d.Fn, args...)
}

// Get returns the current value of a global.
func (u *Unit) Get(name string) (tengo.Object, bool) {
	idx, ok := u.globalIndex[name]
	if !ok {
		return nil, false
	}
	return u.globals[idx], true
}

// Set replaces a global declared by the environment or the script.
func (u *Unit) Set(name string, v tengo.Object) error {
	idx, ok := u.globalIndex[name]
	if !ok {
		return fmt.Errorf("script: %s.%s: %w", u.Name, name, ErrUnknownGlobal)
	}
	if v == nil {
		v = tengo.UndefinedValue
	}
	u.globals[idx] = v
	return nil
}

// Constant returns constant idx of the unit.
func (u *Unit) Constant(idx int) tengo.Object {
	if idx < 0 || idx >= len(u.bytecode.Constants) {
		return nil
	}
	return u.bytecode.Constants[idx]
}

// AddConstant appends obj to the unit's constants once and returns its
// index. Routines rewritten to call host functions load them from here.
func (u *Unit) AddConstant(obj tengo.Object) int {
	if idx, ok := u.interned[obj]; ok {
		return idx
	}
	for i, c := range u.bytecode.Constants {
		if c == obj {
			u.interned[obj] = i
			return i
		}
	}
	u.bytecode.Constants = append(u.bytecode.Constants, obj)
	idx := len(u.bytecode.Constants) - 1
	u.interned[obj] = idx
	return idx
}

// GlobalName returns the name of global slot idx.
func (u *Unit) GlobalName(idx int) (string, bool) {
	n, ok := u.globalNames[idx]
	return n, ok
}

// FileSet returns the source positions of the unit.
func (u *Unit) FileSet() *parser.SourceFileSet {
	return u.bytecode.FileSet
}
