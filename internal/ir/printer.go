package ir

import (
	"fmt"
	"strings"
)

// String renders b as indented text, one binding per line.
func (b *Block) String() string {
	var sb strings.Builder
	b.write(&sb, 0)
	return strings.TrimRight(sb.String(), "\n")
}

func (b *Block) write(sb *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	sb.WriteString("{\n")
	for _, l := range b.Lets {
		sb.WriteString(indent + "  ")
		sb.WriteString(l.Var.String())
		sb.WriteString(" = ")
		if c, ok := l.Expr.(*CondExpr); ok {
			sb.WriteString("if " + c.Cond.String() + " ")
			c.Then.write(sb, depth+1)
			sb.WriteString(" else ")
			c.Else.write(sb, depth+1)
		} else {
			sb.WriteString(l.Expr.String())
		}
		sb.WriteString("\n")
	}
	if ret, ok := b.Return(); ok {
		sb.WriteString(indent + "  return " + ret.String() + "\n")
	}
	sb.WriteString(indent + "}")
}

func (f *Function) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		s := p.Var.String() + ": " + p.Type
		if !p.Diff {
			s = "const " + s
		}
		params[i] = s
	}
	return fmt.Sprintf("fn %s(%s) -> %s %s", f.Name, strings.Join(params, ", "), f.ReturnType, f.Body.String())
}

func (m *Module) String() string {
	parts := make([]string, len(m.Functions))
	for i, f := range m.Functions {
		parts[i] = f.String()
	}
	return strings.Join(parts, "\n\n") + "\n"
}
