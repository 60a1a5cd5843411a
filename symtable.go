package main

import "fmt"

const (
	wordSize   = 8
	frameAlign = 16
)

// SymbolTable holds the variables of one function. Scope is flat: a
// declaration is visible for the rest of the function regardless of braces.
type SymbolTable struct {
	variables []*Variable
	byName    map[string]*Variable
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{byName: make(map[string]*Variable)}
}

// DeclareVariable binds name to a new stack slot. Slots are assigned in
// declaration order, one word each.
func (st *SymbolTable) DeclareVariable(name string) (*Variable, error) {
	if _, exists := st.byName[name]; exists {
		return nil, fmt.Errorf("variable '%s' already declared", name)
	}
	v := &Variable{
		Name:   name,
		Offset: (len(st.variables) + 1) * wordSize,
	}
	st.variables = append(st.variables, v)
	st.byName[name] = v
	return v, nil
}

// LookupVariable returns the variable bound to name, or nil.
func (st *SymbolTable) LookupVariable(name string) *Variable {
	return st.byName[name]
}

// Variables returns all variables in declaration order.
func (st *SymbolTable) Variables() []*Variable {
	return st.variables
}

// StackSize is the frame size needed for every variable, aligned to 16.
func (st *SymbolTable) StackSize() int {
	return alignTo(len(st.variables)*wordSize, frameAlign)
}

func alignTo(n, align int) int {
	return (n + align - 1) / align * align
}
