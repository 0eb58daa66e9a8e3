package main

import (
	"strconv"
	"strings"
)

// Program is the root of the tree: every function in declaration order.
type Program struct {
	Funcs []*FuncDecl
}

// FuncDecl is one function definition.
type FuncDecl struct {
	Name       string
	Params     []Param
	ReturnType DataType
	// Locals holds every variable the body declares, including unwrap
	// bindings, so the frame can be allocated before the body runs.
	Locals []string
	Body   *Body
	Pos    Position
}

// Body is a braced statement list.
type Body struct {
	Stmts []Stmt
}

// Stmt is one of *CallStmt, *VarStmt, *IfStmt, *WhileStmt, *ReturnStmt.
type Stmt interface {
	stmtNode()
}

// CallStmt is a call whose result is void.
type CallStmt struct {
	Call *FuncCall
}

// VarStmtKind says how a VarStmt binds its value.
type VarStmtKind int

const (
	VarDeclare VarStmtKind = iota
	VarAssign
	VarDiscard // _ = expr;
)

// VarStmt is a declaration, an assignment, or a discarded value.
type VarStmt struct {
	Kind VarStmtKind
	Name string // empty for VarDiscard
	Expr *Expression
}

// IfStmt is a two-branch conditional. When Unwrap is set the condition is a
// nullable value and the then-branch runs with it bound to Binding (empty for
// |_|).
type IfStmt struct {
	Cond    *Expression
	Unwrap  bool
	Binding string
	Then    *Body
	Else    *Body
}

// WhileStmt loops while Cond holds, or while the nullable Cond is not null.
type WhileStmt struct {
	Cond    *Expression
	Unwrap  bool
	Binding string
	Body    *Body
}

// ReturnStmt leaves the function, with a value unless Expr is nil.
type ReturnStmt struct {
	Expr *Expression
}

func (*CallStmt) stmtNode()   {}
func (*VarStmt) stmtNode()    {}
func (*IfStmt) stmtNode()     {}
func (*WhileStmt) stmtNode()  {}
func (*ReturnStmt) stmtNode() {}

// FuncCall is a call to a user function or to an ifj built-in.
type FuncCall struct {
	Name       string // without the "ifj." prefix for built-ins
	Builtin    bool
	Args       []*Expression
	ReturnType DataType
}

// QualifiedName is the name as written in source.
func (c *FuncCall) QualifiedName() string {
	if c.Builtin {
		return "ifj." + c.Name
	}
	return c.Name
}

// Expression is a type-checked expression in postfix order.
type Expression struct {
	Items []ExprItem
	Type  DataType
	Known bool
}

// ExprItem is one of *ValueItem, *OperatorItem, *CallItem.
type ExprItem interface {
	exprItem()
}

// ValueItem pushes a literal or a variable.
type ValueItem struct {
	Token      Token
	Type       DataType
	IntToFloat bool
}

// OperatorItem applies a binary operator to the two topmost values.
type OperatorItem struct {
	Op   TokenType
	Type DataType
	// Promoted marks integer arithmetic carried out on converted floats.
	Promoted bool
}

// CallItem pushes the result of a call.
type CallItem struct {
	Call *FuncCall
}

func (*ValueItem) exprItem()    {}
func (*OperatorItem) exprItem() {}
func (*CallItem) exprItem()     {}

// terminates reports whether every path through body ends in a return.
func terminates(body *Body) bool {
	for _, stmt := range body.Stmts {
		switch s := stmt.(type) {
		case *ReturnStmt:
			return true
		case *IfStmt:
			if terminates(s.Then) && terminates(s.Else) {
				return true
			}
		}
	}
	return false
}

// ToSExpr renders a program as an s-expression for tests and the ast command.
func ToSExpr(prog *Program) string {
	var sb strings.Builder
	sb.WriteString("(program")
	for _, fn := range prog.Funcs {
		sb.WriteString(" ")
		sb.WriteString(funcToSExpr(fn))
	}
	sb.WriteString(")")
	return sb.String()
}

func funcToSExpr(fn *FuncDecl) string {
	var params []string
	for _, p := range fn.Params {
		params = append(params, "(param "+strconv.Quote(p.Name)+" "+p.Type.String()+")")
	}
	var locals []string
	for _, name := range fn.Locals {
		locals = append(locals, strconv.Quote(name))
	}
	return "(func " + strconv.Quote(fn.Name) +
		" (params" + joinPrefixed(params) + ")" +
		" " + fn.ReturnType.String() +
		" (locals" + joinPrefixed(locals) + ") " +
		bodyToSExpr(fn.Body) + ")"
}

func joinPrefixed(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

func bodyToSExpr(body *Body) string {
	var stmts []string
	for _, stmt := range body.Stmts {
		stmts = append(stmts, stmtToSExpr(stmt))
	}
	return "(block" + joinPrefixed(stmts) + ")"
}

func bindingToSExpr(unwrap bool, binding string) string {
	if !unwrap {
		return ""
	}
	if binding == "" {
		return " (unwrap _)"
	}
	return " (unwrap " + strconv.Quote(binding) + ")"
}

func stmtToSExpr(stmt Stmt) string {
	switch s := stmt.(type) {
	case *CallStmt:
		return callToSExpr(s.Call)
	case *VarStmt:
		switch s.Kind {
		case VarDeclare:
			return "(var " + strconv.Quote(s.Name) + " " + ExprToSExpr(s.Expr) + ")"
		case VarAssign:
			return "(assign " + strconv.Quote(s.Name) + " " + ExprToSExpr(s.Expr) + ")"
		default:
			return "(discard " + ExprToSExpr(s.Expr) + ")"
		}
	case *IfStmt:
		return "(if " + ExprToSExpr(s.Cond) + bindingToSExpr(s.Unwrap, s.Binding) +
			" " + bodyToSExpr(s.Then) + " " + bodyToSExpr(s.Else) + ")"
	case *WhileStmt:
		return "(while " + ExprToSExpr(s.Cond) + bindingToSExpr(s.Unwrap, s.Binding) +
			" " + bodyToSExpr(s.Body) + ")"
	case *ReturnStmt:
		if s.Expr == nil {
			return "(return)"
		}
		return "(return " + ExprToSExpr(s.Expr) + ")"
	default:
		panic("unknown statement type")
	}
}

func callToSExpr(call *FuncCall) string {
	var args []string
	for _, arg := range call.Args {
		args = append(args, ExprToSExpr(arg))
	}
	return "(call " + strconv.Quote(call.QualifiedName()) + joinPrefixed(args) + ")"
}

// ExprToSExpr renders an expression as (expr TYPE item...), items in postfix
// order.
func ExprToSExpr(expr *Expression) string {
	var items []string
	for _, item := range expr.Items {
		items = append(items, itemToSExpr(item))
	}
	return "(expr " + expr.Type.String() + joinPrefixed(items) + ")"
}

func itemToSExpr(item ExprItem) string {
	switch it := item.(type) {
	case *ValueItem:
		var s string
		switch it.Token.Type {
		case INT, FLOAT:
			s = it.Token.Literal
		case STRING:
			s = strconv.Quote(it.Token.Literal)
		case NULL:
			s = "null"
		default:
			s = "(var " + strconv.Quote(it.Token.Literal) + ")"
		}
		if it.IntToFloat {
			return "(i2f " + s + ")"
		}
		return s
	case *OperatorItem:
		return "(op " + strconv.Quote(string(it.Op)) + ")"
	case *CallItem:
		return callToSExpr(it.Call)
	default:
		panic("unknown expression item")
	}
}
