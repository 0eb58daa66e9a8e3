package main

import (
	"fmt"
	"testing"

	"github.com/nalgeon/be"
)

func TestNewSymbolTable(t *testing.T) {
	st := NewSymbolTable()
	be.Equal(t, len(st.slots), symtableCapacity)
	be.Equal(t, st.count, 0)
	be.True(t, st.Find("x") == nil)
}

func TestAddAndFind(t *testing.T) {
	st := NewSymbolTable()

	sym, err := st.Add("x", SymVar)
	be.Err(t, err, nil)
	be.Equal(t, sym.Name, "x")
	be.Equal(t, sym.Type, TypeUndefined)
	be.Equal(t, sym.Modified, false)
	be.Equal(t, sym.Used, false)

	be.True(t, st.Find("x") == sym)
	be.True(t, st.Find("y") == nil)
	be.Equal(t, st.count, 1)
}

func TestConstantStartsModified(t *testing.T) {
	st := NewSymbolTable()
	sym, err := st.Add("c", SymConst)
	be.Err(t, err, nil)
	be.True(t, sym.Modified)
}

// Names that hash to the same slot must stay reachable after one of them is
// removed from the middle of the probe chain.
func TestRemoveKeepsProbeChain(t *testing.T) {
	st := NewSymbolTable()
	names := collidingNames(3)

	for _, name := range names {
		_, err := st.Add(name, SymVar)
		be.Err(t, err, nil)
	}
	st.Remove(names[1])

	be.True(t, st.Find(names[0]) != nil)
	be.True(t, st.Find(names[1]) == nil)
	be.True(t, st.Find(names[2]) != nil)
	be.Equal(t, st.count, 2)

	// The tombstone is reused by a later insertion.
	_, err := st.Add(names[1], SymVar)
	be.Err(t, err, nil)
	be.True(t, st.Find(names[1]) != nil)
	be.True(t, st.Find(names[2]) != nil)
}

// collidingNames returns n distinct names with the same hash.
func collidingNames(n int) []string {
	byHash := map[int][]string{}
	for i := 0; ; i++ {
		name := fmt.Sprintf("v%d", i)
		h := hashName(name)
		byHash[h] = append(byHash[h], name)
		if len(byHash[h]) == n {
			return byHash[h]
		}
	}
}

func TestTableFull(t *testing.T) {
	st := NewSymbolTable()
	for i := 0; i < symtableCapacity; i++ {
		_, err := st.Add(fmt.Sprintf("f%d", i), SymFunc)
		be.Err(t, err, nil)
	}
	_, err := st.Add("one_more", SymFunc)
	be.Equal(t, KindOf(err), ErrInternal)
}

func TestReset(t *testing.T) {
	st := NewSymbolTable()
	_, err := st.Add("x", SymVar)
	be.Err(t, err, nil)
	st.Reset()
	be.True(t, st.Find("x") == nil)
	be.Equal(t, st.count, 0)
	be.Equal(t, len(st.live), 0)
}

func TestAssertFunction(t *testing.T) {
	st := NewSymbolTable()
	_, err := st.Add("f", SymFunc)
	be.Err(t, err, nil)
	_, err = st.Add("x", SymVar)
	be.Err(t, err, nil)

	fn, err := st.AssertFunction("f")
	be.Err(t, err, nil)
	be.Equal(t, fn.Name, "f")

	_, err = st.AssertFunction("x")
	be.Equal(t, KindOf(err), ErrDefinition)
	_, err = st.AssertFunction("missing")
	be.Equal(t, KindOf(err), ErrDefinition)
}

func TestAssertVariable(t *testing.T) {
	st := NewSymbolTable()
	_, err := st.Add("f", SymFunc)
	be.Err(t, err, nil)
	_, err = st.Add("c", SymConst)
	be.Err(t, err, nil)

	_, err = st.AssertVariable("c")
	be.Err(t, err, nil)
	_, err = st.AssertVariable("f")
	be.Equal(t, KindOf(err), ErrDefinition)
	_, err = st.AssertVariable("missing")
	be.Equal(t, KindOf(err), ErrDefinition)
}

func TestMarkUsedAndModified(t *testing.T) {
	st := NewSymbolTable()
	v, _ := st.Add("v", SymVar)
	_, _ = st.Add("c", SymConst)

	_, err := st.MarkUsed("v")
	be.Err(t, err, nil)
	be.True(t, v.Used)
	be.True(t, !v.Modified)

	_, err = st.MarkModified("v")
	be.Err(t, err, nil)
	be.True(t, v.Modified)

	_, err = st.MarkModified("c")
	be.Equal(t, KindOf(err), ErrRedefinition)

	_, err = st.MarkUsed("nope")
	be.Equal(t, KindOf(err), ErrDefinition)
	_, err = st.MarkModified("nope")
	be.Equal(t, KindOf(err), ErrDefinition)
}

func TestScopes(t *testing.T) {
	st := NewSymbolTable()
	st.EnterScope()
	outer, _ := st.Add("outer", SymConst)

	st.EnterScope()
	inner, _ := st.Add("inner", SymConst)
	be.Equal(t, outer.Depth, 1)
	be.Equal(t, inner.Depth, 0)

	inner.Used = true
	be.Err(t, st.LeaveScope(), nil)
	be.True(t, st.Find("inner") == nil)
	be.True(t, st.Find("outer") != nil)
	be.Equal(t, outer.Depth, 0)

	outer.Used = true
	be.Err(t, st.LeaveScope(), nil)
	be.True(t, st.Find("outer") == nil)
}

func TestLeaveScopeUnused(t *testing.T) {
	st := NewSymbolTable()
	st.EnterScope()
	_, _ = st.Add("x", SymConst)
	err := st.LeaveScope()
	be.Equal(t, KindOf(err), ErrUnusedVariable)
	be.Err(t, err, "never used")
}

func TestLeaveScopeNeverModified(t *testing.T) {
	st := NewSymbolTable()
	st.EnterScope()
	v, _ := st.Add("x", SymVar)
	v.Used = true
	err := st.LeaveScope()
	be.Equal(t, KindOf(err), ErrUnusedVariable)
	be.Err(t, err, "never modified")
}

func TestFunctionsSurviveScopes(t *testing.T) {
	st := NewSymbolTable()
	_, _ = st.Add("f", SymFunc)
	st.EnterScope()
	be.Err(t, st.LeaveScope(), nil)
	be.True(t, st.Find("f") != nil)
}

func TestAssertAllFunctionsReturned(t *testing.T) {
	st := NewSymbolTable()
	f, _ := st.Add("f", SymFunc)
	f.Returned = true
	be.Err(t, st.AssertAllFunctionsReturned(), nil)

	g, _ := st.Add("g", SymFunc)
	g.Returned = false
	err := st.AssertAllFunctionsReturned()
	be.Equal(t, KindOf(err), ErrReturn)
	be.Err(t, err, "'g'")
}

func TestAddLocalDeduplicates(t *testing.T) {
	fn := &Symbol{Name: "main", Kind: SymFunc}
	fn.AddLocal("a")
	fn.AddLocal("b")
	fn.AddLocal("a")
	be.Equal(t, fn.Locals, []string{"a", "b"})
}

func TestHashNameInRange(t *testing.T) {
	for _, name := range []string{"", "main", "a_very_long_identifier_name_0123456789"} {
		h := hashName(name)
		be.True(t, h >= 0 && h < symtableCapacity)
	}
	be.Equal(t, hashName(""), 5381)
}
