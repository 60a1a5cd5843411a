package main

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestNewSymbolTable(t *testing.T) {
	st := NewSymbolTable()
	be.True(t, st != nil)
	be.Equal(t, len(st.Variables()), 0)
	be.Equal(t, st.StackSize(), 0)
}

func TestDeclareVariable(t *testing.T) {
	st := NewSymbolTable()

	v, err := st.DeclareVariable("x")
	be.Err(t, err, nil)
	be.Equal(t, v.Name, "x")
	be.Equal(t, v.Offset, 8)

	w, err := st.DeclareVariable("y")
	be.Err(t, err, nil)
	be.Equal(t, w.Offset, 16)

	be.Equal(t, len(st.Variables()), 2)
	be.Equal(t, st.Variables()[0].Name, "x")
	be.Equal(t, st.Variables()[1].Name, "y")
}

func TestDeclareVariableDuplicate(t *testing.T) {
	st := NewSymbolTable()

	_, err := st.DeclareVariable("x")
	be.Err(t, err, nil)

	v, err := st.DeclareVariable("x")
	be.True(t, v == nil)
	be.Equal(t, err.Error(), "variable 'x' already declared")
	be.Equal(t, len(st.Variables()), 1)
}

func TestLookupVariable(t *testing.T) {
	st := NewSymbolTable()
	be.True(t, st.LookupVariable("x") == nil)

	declared, err := st.DeclareVariable("x")
	be.Err(t, err, nil)

	found := st.LookupVariable("x")
	be.True(t, found == declared)
	be.True(t, st.LookupVariable("X") == nil)
}

func TestStackSizeAlignment(t *testing.T) {
	tests := []struct {
		count    int
		expected int
	}{
		{0, 0},
		{1, 16},
		{2, 16},
		{3, 32},
		{4, 32},
		{5, 48},
	}

	for _, test := range tests {
		st := NewSymbolTable()
		for i := 0; i < test.count; i++ {
			_, err := st.DeclareVariable(string(rune('a' + i)))
			be.Err(t, err, nil)
		}
		be.Equal(t, st.StackSize(), test.expected)
	}
}

func TestOffsetsAreDistinct(t *testing.T) {
	st := NewSymbolTable()
	seen := map[int]bool{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		v, err := st.DeclareVariable(name)
		be.Err(t, err, nil)
		be.True(t, !seen[v.Offset])
		be.True(t, v.Offset <= st.StackSize())
		seen[v.Offset] = true
	}
}
