package main

// builtin describes one ifj.* function: one acceptance check per parameter
// and the result type.
type builtin struct {
	params     []func(DataType) bool
	returnType DataType
}

func only(t DataType) func(DataType) bool {
	return func(v DataType) bool { return t.Accepts(v) }
}

func anyValue(v DataType) bool {
	return v != TypeVoid && v != TypeBool
}

func stringOrSlice(v DataType) bool {
	return v == TypeString || v == TypeU8
}

var builtins = map[string]builtin{
	"write":     {[]func(DataType) bool{anyValue}, TypeVoid},
	"readstr":   {nil, TypeNullU8},
	"readi32":   {nil, TypeNullI32},
	"readf64":   {nil, TypeNullF64},
	"i2f":       {[]func(DataType) bool{only(TypeI32)}, TypeF64},
	"f2i":       {[]func(DataType) bool{only(TypeF64)}, TypeI32},
	"string":    {[]func(DataType) bool{stringOrSlice}, TypeU8},
	"length":    {[]func(DataType) bool{only(TypeU8)}, TypeI32},
	"concat":    {[]func(DataType) bool{only(TypeU8), only(TypeU8)}, TypeU8},
	"substring": {[]func(DataType) bool{only(TypeU8), only(TypeI32), only(TypeI32)}, TypeNullU8},
	"strcmp":    {[]func(DataType) bool{only(TypeU8), only(TypeU8)}, TypeI32},
	"ord":       {[]func(DataType) bool{only(TypeU8), only(TypeI32)}, TypeI32},
	"chr":       {[]func(DataType) bool{only(TypeI32)}, TypeU8},
}

// parseCall parses `name(args)` or `ifj.name(args)` starting at the name and
// consumes the closing ')'.
func (p *parser) parseCall() *FuncCall {
	call := &FuncCall{}
	var accepts []func(DataType) bool

	if p.tok().Type == IFJ {
		p.next()
		p.skip(DOT)
		if p.tok().Type != IDENT {
			p.fail(ErrSyntax, "expected built-in name but got %s", p.tok())
		}
		call.Name = p.tok().Literal
		call.Builtin = true
		b, ok := builtins[call.Name]
		if !ok {
			p.fail(ErrDefinition, "undefined built-in 'ifj.%s'", call.Name)
		}
		accepts = b.params
		call.ReturnType = b.returnType
		p.next()
	} else {
		call.Name = p.tok().Literal
		fn, err := p.syms.AssertFunction(call.Name)
		p.check(err)
		for _, param := range fn.Params {
			accepts = append(accepts, only(param.Type))
		}
		call.ReturnType = fn.ReturnType
		p.next()
	}

	p.skip(LPAREN)
	call.Args = p.parseArgs(call, accepts)
	p.skip(RPAREN)
	return call
}

// parseArgs parses a comma-separated argument list up to the closing ')'.
// Each argument is checked against its parameter as soon as it is parsed.
func (p *parser) parseArgs(call *FuncCall, accepts []func(DataType) bool) []*Expression {
	var args []*Expression
	if p.tok().Type == RPAREN {
		if len(accepts) > 0 {
			p.fail(ErrParamReturn, "%s expects %d arguments but got 0", call.QualifiedName(), len(accepts))
		}
		return args
	}
	for {
		argPos := p.tok().Pos
		arg := p.parseExpression(endArg)
		if arg.Type == TypeUndefined {
			p.fail(ErrSyntax, "expected argument but got %s", p.tok())
		}
		i := len(args)
		args = append(args, arg)
		if i < len(accepts) && !accepts[i](arg.Type) {
			panic(bailout{newError(ErrParamReturn, argPos, "argument %d of %s cannot be %s", i+1, call.QualifiedName(), arg.Type)})
		}

		switch p.tok().Type {
		case COMMA:
			p.next()
			if p.tok().Type == RPAREN {
				p.fail(ErrParamReturn, "%s expects %d arguments but got %d", call.QualifiedName(), len(accepts), len(args))
			}
		case RPAREN:
			if len(args) != len(accepts) {
				p.fail(ErrParamReturn, "%s expects %d arguments but got %d", call.QualifiedName(), len(accepts), len(args))
			}
			return args
		default:
			p.fail(ErrSyntax, "expected ',' or ')' but got %s", p.tok())
		}
	}
}
