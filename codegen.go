package main

import (
	"fmt"
	"strconv"
	"strings"
)

// scratchGlobals are the global helper variables every program declares.
var scratchGlobals = []string{
	"lefttrue", "righttrue", "inputread",
	"str1", "str2",
	"cnt", "length1", "length2",
	"notnullable",
	"sym1", "sym2",
	"$iftrue", "%retval",
}

// CodeGen walks a checked Program and emits IFJcode24 text.
type CodeGen struct {
	out strings.Builder
	// nextLabel numbers both control-flow constructs and built-in
	// sub-machines, so every label in the output is unique.
	nextLabel int
}

// Generate emits the program text for prog.
func Generate(prog *Program) (code string, err error) {
	cg := &CodeGen{nextLabel: 1}
	defer recoverBailout(&err)

	cg.line(".IFJcode24")
	for _, name := range scratchGlobals {
		cg.line("DEFVAR GF@%s", name)
	}
	cg.line("CALL $$main")
	cg.line("EXIT int@0")
	cg.line("")
	for _, fn := range prog.Funcs {
		cg.genFunc(fn)
		cg.line("")
	}
	return cg.out.String(), nil
}

func (cg *CodeGen) line(format string, args ...any) {
	fmt.Fprintf(&cg.out, format+"\n", args...)
}

func (cg *CodeGen) newLabel() int {
	l := cg.nextLabel
	cg.nextLabel++
	return l
}

func (cg *CodeGen) internal(format string, args ...any) {
	panic(bailout{newError(ErrInternal, Position{}, format, args...)})
}

func (cg *CodeGen) genFunc(fn *FuncDecl) {
	cg.line("LABEL $$%s", fn.Name)
	if fn.Name == "main" {
		cg.line("CREATEFRAME")
	}
	cg.line("PUSHFRAME")
	if fn.Name != "main" {
		cg.line("MOVE GF@%%retval nil@nil")
	}
	for i, param := range fn.Params {
		cg.line("DEFVAR LF@%s", param.Name)
		cg.line("MOVE LF@%s LF@%%%d", param.Name, i+1)
	}
	for _, local := range fn.Locals {
		cg.line("DEFVAR LF@%s", local)
	}
	cg.genBody(fn.Body)
	cg.line("POPFRAME")
	cg.line("RETURN")
}

func (cg *CodeGen) genBody(body *Body) {
	for _, stmt := range body.Stmts {
		cg.genStmt(stmt)
	}
}

func (cg *CodeGen) genStmt(stmt Stmt) {
	switch s := stmt.(type) {
	case *CallStmt:
		cg.genCall(s.Call, false)

	case *VarStmt:
		cg.genExpr(s.Expr)
		if s.Kind == VarDiscard {
			cg.line("POPS GF@inputread")
		} else {
			cg.line("POPS LF@%s", s.Name)
		}

	case *ReturnStmt:
		if s.Expr != nil {
			cg.genExpr(s.Expr)
			cg.line("POPS GF@%%retval")
		}
		cg.line("POPFRAME")
		cg.line("RETURN")

	case *IfStmt:
		id := cg.newLabel()
		cg.genCondition(s.Cond, s.Unwrap, s.Binding, id)
		cg.line("LABEL $if%d", id)
		cg.genBody(s.Then)
		cg.line("JUMP $skip%d", id)
		cg.line("LABEL $else%d", id)
		cg.genBody(s.Else)
		cg.line("LABEL $skip%d", id)

	case *WhileStmt:
		id := cg.newLabel()
		cg.line("LABEL $while%d", id)
		cg.genCondition(s.Cond, s.Unwrap, s.Binding, id)
		cg.line("LABEL $if%d", id)
		cg.genBody(s.Body)
		cg.line("JUMP $while%d", id)
		cg.line("LABEL $else%d", id)

	default:
		cg.internal("unknown statement %T", stmt)
	}
}

// genCondition evaluates cond and jumps to $else<id> when it does not hold.
// For an unwrap condition the non-null value is moved into the binding.
func (cg *CodeGen) genCondition(cond *Expression, unwrap bool, binding string, id int) {
	if !unwrap {
		last, ok := cond.Items[len(cond.Items)-1].(*OperatorItem)
		if !ok || last.Type != TypeBool {
			cg.internal("condition is not a comparison")
		}
		cg.genItems(cond.Items[:len(cond.Items)-1])
		cg.genCompare(last.Op, id)
		return
	}
	cg.genExpr(cond)
	cg.line("POPS GF@notnullable")
	cg.line("PUSHS GF@notnullable")
	cg.line("PUSHS nil@nil")
	cg.line("JUMPIFEQS $else%d", id)
	if binding != "" {
		cg.line("PUSHS GF@notnullable")
		cg.line("POPS LF@%s", binding)
	}
}

// genCompare consumes the two topmost values and falls through when op holds.
func (cg *CodeGen) genCompare(op TokenType, id int) {
	switch op {
	case LT, GT, EQ, NOT_EQ:
		instr := map[TokenType]string{LT: "LTS", GT: "GTS", EQ: "EQS", NOT_EQ: "EQS"}[op]
		want := "true"
		if op == NOT_EQ {
			want = "false"
		}
		cg.line("%s", instr)
		cg.line("PUSHS bool@%s", want)
		cg.line("JUMPIFNEQS $else%d", id)
	case LE, GE:
		strict := "LT"
		if op == GE {
			strict = "GT"
		}
		cg.line("POPS GF@righttrue")
		cg.line("POPS GF@lefttrue")
		cg.line("%s GF@$iftrue GF@lefttrue GF@righttrue", strict)
		cg.line("JUMPIFEQ $if%d GF@$iftrue bool@true", id)
		cg.line("EQ GF@$iftrue GF@lefttrue GF@righttrue")
		cg.line("JUMPIFEQ $if%d GF@$iftrue bool@true", id)
		cg.line("JUMP $else%d", id)
	default:
		cg.internal("unknown comparison %s", op)
	}
}

// genExpr leaves the value of expr on the data stack.
func (cg *CodeGen) genExpr(expr *Expression) {
	if expr.Type == TypeBool {
		cg.internal("comparison outside a condition")
	}
	cg.genItems(expr.Items)
}

func (cg *CodeGen) genItems(items []ExprItem) {
	for _, item := range items {
		switch it := item.(type) {
		case *ValueItem:
			cg.genValue(it)
		case *CallItem:
			cg.genCall(it.Call, true)
		case *OperatorItem:
			cg.genOperator(it)
		default:
			cg.internal("unknown expression item %T", item)
		}
	}
}

func (cg *CodeGen) genValue(v *ValueItem) {
	switch v.Token.Type {
	case INT:
		cg.line("PUSHS int@%d", v.Token.Int)
	case FLOAT:
		cg.line("PUSHS float@%s", formatFloat(v.Token.Float))
	case STRING:
		cg.line("PUSHS string@%s", escapeString(v.Token.Literal))
	case NULL:
		cg.line("PUSHS nil@nil")
	case IDENT:
		cg.line("PUSHS LF@%s", v.Token.Literal)
	default:
		cg.internal("unexpected operand %s", v.Token)
	}
	if v.IntToFloat {
		cg.line("INT2FLOATS")
	}
}

func (cg *CodeGen) genOperator(op *OperatorItem) {
	switch op.Op {
	case PLUS:
		cg.line("ADDS")
	case MINUS:
		cg.line("SUBS")
	case ASTERISK:
		cg.line("MULS")
	case SLASH:
		if op.Type == TypeI32 && !op.Promoted {
			cg.line("IDIVS")
		} else {
			cg.line("DIVS")
		}
	default:
		cg.internal("comparison %s outside a condition", op.Op)
	}
}

// genCall emits a call. Arguments are pushed left to right before anything
// is popped, so nested calls cannot clobber a frame or scratch global that
// is still being filled. With push set the result is left on the stack.
func (cg *CodeGen) genCall(call *FuncCall, push bool) {
	for _, arg := range call.Args {
		cg.genExpr(arg)
	}
	if call.Builtin {
		cg.genBuiltin(call)
		return
	}
	cg.line("CREATEFRAME")
	for i := range call.Args {
		cg.line("DEFVAR TF@%%%d", i+1)
	}
	for i := len(call.Args); i >= 1; i-- {
		cg.line("POPS TF@%%%d", i)
	}
	cg.line("CALL $$%s", call.Name)
	if push {
		cg.line("PUSHS GF@%%retval")
	}
}

// popArgs moves the evaluated arguments into scratch globals, first
// argument into the first name.
func (cg *CodeGen) popArgs(names ...string) {
	for i := len(names) - 1; i >= 0; i-- {
		cg.line("POPS GF@%s", names[i])
	}
}

// genBuiltin expects the arguments on the stack and leaves the result there,
// except for write.
func (cg *CodeGen) genBuiltin(call *FuncCall) {
	switch call.Name {
	case "write":
		cg.popArgs("inputread")
		if !call.Args[0].Type.IsNullable() {
			cg.line("WRITE GF@inputread")
			return
		}
		id := cg.newLabel()
		cg.line("TYPE GF@sym1 GF@inputread")
		cg.line("JUMPIFNEQ $$write%d$$ GF@sym1 string@nil", id)
		cg.line("WRITE string@null")
		cg.line("JUMP $$skip%d$$", id)
		cg.line("LABEL $$write%d$$", id)
		cg.line("WRITE GF@inputread")
		cg.line("LABEL $$skip%d$$", id)

	case "readi32", "readf64", "readstr":
		kind := map[string]string{"readi32": "int", "readf64": "float", "readstr": "string"}[call.Name]
		cg.line("READ GF@inputread %s", kind)
		cg.line("PUSHS GF@inputread")

	case "string":
		// The argument is already a string value.

	case "i2f", "f2i", "length":
		instr := map[string]string{"i2f": "INT2FLOAT", "f2i": "FLOAT2INT", "length": "STRLEN"}[call.Name]
		cg.popArgs("sym1")
		cg.line("%s GF@inputread GF@sym1", instr)
		cg.line("PUSHS GF@inputread")

	case "chr":
		cg.popArgs("cnt")
		cg.line("INT2CHAR GF@inputread GF@cnt")
		cg.line("PUSHS GF@inputread")

	case "concat":
		cg.popArgs("sym1", "sym2")
		cg.line("CONCAT GF@inputread GF@sym1 GF@sym2")
		cg.line("PUSHS GF@inputread")

	case "ord":
		cg.genOrd()
	case "strcmp":
		cg.genStrcmp()
	case "substring":
		cg.genSubstring()

	default:
		cg.internal("unknown built-in ifj.%s", call.Name)
	}
}

// genOrd pushes the code of s[i], or 0 when i is outside s.
func (cg *CodeGen) genOrd() {
	id := cg.newLabel()
	cg.popArgs("str1", "cnt")
	cg.line("STRLEN GF@length1 GF@str1")
	cg.line("LT GF@inputread GF@cnt int@0")
	cg.line("JUMPIFEQ $$zero%d$$ GF@inputread bool@true", id)
	cg.line("LT GF@inputread GF@cnt GF@length1")
	cg.line("JUMPIFNEQ $$zero%d$$ GF@inputread bool@true", id)
	cg.line("STRI2INT GF@inputread GF@str1 GF@cnt")
	cg.line("PUSHS GF@inputread")
	cg.line("JUMP $$skip%d$$", id)
	cg.line("LABEL $$zero%d$$", id)
	cg.line("PUSHS int@0")
	cg.line("LABEL $$skip%d$$", id)
}

// genStrcmp pushes -1, 0 or 1.
func (cg *CodeGen) genStrcmp() {
	id := cg.newLabel()
	cg.popArgs("str1", "str2")
	cg.line("LT GF@inputread GF@str1 GF@str2")
	cg.line("JUMPIFEQ $$minus%d$$ GF@inputread bool@true", id)
	cg.line("EQ GF@inputread GF@str1 GF@str2")
	cg.line("JUMPIFEQ $$zero%d$$ GF@inputread bool@true", id)
	cg.line("LABEL $$plus%d$$", id)
	cg.line("PUSHS int@1")
	cg.line("JUMP $$skip%d$$", id)
	cg.line("LABEL $$minus%d$$", id)
	cg.line("PUSHS int@-1")
	cg.line("JUMP $$skip%d$$", id)
	cg.line("LABEL $$zero%d$$", id)
	cg.line("PUSHS int@0")
	cg.line("LABEL $$skip%d$$", id)
}

// genSubstring pushes s[i:j], or nil when i < 0, j < 0, i > j, j > len(s)
// or i >= len(s).
func (cg *CodeGen) genSubstring() {
	id := cg.newLabel()
	cg.popArgs("str1", "cnt", "length2")
	cg.line("STRLEN GF@length1 GF@str1")
	for _, check := range []struct{ test, fail string }{
		{"LT GF@inputread GF@cnt int@0", "true"},
		{"LT GF@inputread GF@length2 int@0", "true"},
		{"GT GF@inputread GF@cnt GF@length2", "true"},
		{"GT GF@inputread GF@length2 GF@length1", "true"},
		{"LT GF@inputread GF@cnt GF@length1", "false"},
	} {
		cg.line("%s", check.test)
		cg.line("JUMPIFEQ $$null%d$$ GF@inputread bool@%s", id, check.fail)
	}
	cg.line("MOVE GF@str2 string@")
	cg.line("LABEL $$substring%d$$", id)
	cg.line("JUMPIFEQ $$end%d$$ GF@cnt GF@length2", id)
	cg.line("GETCHAR GF@sym1 GF@str1 GF@cnt")
	cg.line("CONCAT GF@str2 GF@str2 GF@sym1")
	cg.line("ADD GF@cnt GF@cnt int@1")
	cg.line("JUMP $$substring%d$$", id)
	cg.line("LABEL $$end%d$$", id)
	cg.line("PUSHS GF@str2")
	cg.line("JUMP $$skip%d$$", id)
	cg.line("LABEL $$null%d$$", id)
	cg.line("PUSHS nil@nil")
	cg.line("LABEL $$skip%d$$", id)
}

// formatFloat renders f the way C's %a does: 0x1.8p+1, not 0x1.8p+01.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'x', -1, 64)
	p := strings.IndexByte(s, 'p')
	if p < 0 || p+2 >= len(s) {
		return s
	}
	mantissa, sign, exp := s[:p+1], s[p+1:p+2], strings.TrimLeft(s[p+2:], "0")
	if exp == "" {
		exp = "0"
	}
	return mantissa + sign + exp
}

// escapeString writes bytes 0-32, '#' and '\' as \ddd.
func escapeString(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= 32 || c == '#' || c == '\\' {
			fmt.Fprintf(&sb, "\\%03d", c)
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
