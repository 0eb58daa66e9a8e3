package main

import (
	"testing"
)

const addProgram = prolog + `
pub fn add(a: i32, b: i32) i32 {
    return a + b;
}

pub fn main() void {
    const s = add(1, 2);
    ifj.write(s);
}
`

func TestFunctionPrologue(t *testing.T) {
	code := compileSource(t, addProgram)
	assertCodeContains(t, code, `
LABEL $$add
PUSHFRAME
MOVE GF@%retval nil@nil
DEFVAR LF@a
MOVE LF@a LF@%1
DEFVAR LF@b
MOVE LF@b LF@%2
PUSHS LF@a
PUSHS LF@b
ADDS
POPS GF@%retval
POPFRAME
RETURN
POPFRAME
RETURN
`)
}

func TestCallPassesArgumentsThroughTemporaryFrame(t *testing.T) {
	code := compileSource(t, addProgram)
	assertCodeContains(t, code, `
LABEL $$main
CREATEFRAME
PUSHFRAME
DEFVAR LF@s
PUSHS int@1
PUSHS int@2
CREATEFRAME
DEFVAR TF@%1
DEFVAR TF@%2
POPS TF@%2
POPS TF@%1
CALL $$add
PUSHS GF@%retval
POPS LF@s
`)
}

// Every argument is on the stack before the callee's frame is created, so a
// call nested in an argument list cannot replace a half-filled frame.
func TestNestedCallArguments(t *testing.T) {
	code := compileSource(t, prolog+`
pub fn add(a: i32, b: i32) i32 {
    return a + b;
}

pub fn main() void {
    const s = add(add(1, 2), 3);
    ifj.write(s);
}
`)
	assertCodeContains(t, code, `
PUSHS int@1
PUSHS int@2
CREATEFRAME
DEFVAR TF@%1
DEFVAR TF@%2
POPS TF@%2
POPS TF@%1
CALL $$add
PUSHS GF@%retval
PUSHS int@3
CREATEFRAME
DEFVAR TF@%1
DEFVAR TF@%2
POPS TF@%2
POPS TF@%1
CALL $$add
PUSHS GF@%retval
POPS LF@s
`)
}

func TestVoidCallStatement(t *testing.T) {
	code := compileSource(t, prolog+`
pub fn main() void {
    greet();
}

pub fn greet() void {
    ifj.write("hi");
}
`)
	assertCodeContains(t, code, "CREATEFRAME\nCALL $$greet\nPOPFRAME\nRETURN")
	assertCodeContains(t, code, "LABEL $$greet\nPUSHFRAME\nMOVE GF@%retval nil@nil\nPUSHS string@hi")
}

func TestCallInsideExpression(t *testing.T) {
	code := compileSource(t, prolog+`
pub fn two() i32 {
    return 2;
}

pub fn main() void {
    const x = 1 + two() * 3;
    ifj.write(x);
}
`)
	assertCodeContains(t, code, `
PUSHS int@1
CREATEFRAME
CALL $$two
PUSHS GF@%retval
PUSHS int@3
MULS
ADDS
POPS LF@x
`)
}

func TestRecursion(t *testing.T) {
	code := compileSource(t, prolog+`
pub fn main() void {
    const r = fact(5);
    ifj.write(r);
}

pub fn fact(n: i32) i32 {
    if (n < 2) {
        return 1;
    } else {
        const m = n - 1;
        const f = fact(m);
        return n * f;
    }
}
`)
	assertCodeContains(t, code, `
LABEL $$fact
PUSHFRAME
MOVE GF@%retval nil@nil
DEFVAR LF@n
MOVE LF@n LF@%1
DEFVAR LF@m
DEFVAR LF@f
`)
	assertCodeContains(t, code, `
PUSHS int@1
POPS GF@%retval
POPFRAME
RETURN
JUMP $skip1
LABEL $else1
`)
}

func TestFunctionsEmittedInSourceOrder(t *testing.T) {
	code := compileSource(t, prolog+`
pub fn b() void {
}

pub fn main() void {
}

pub fn a() void {
}
`)
	assertCodeContains(t, code, `
LABEL $$b
PUSHFRAME
MOVE GF@%retval nil@nil
POPFRAME
RETURN
LABEL $$main
CREATEFRAME
PUSHFRAME
POPFRAME
RETURN
LABEL $$a
`)
}
