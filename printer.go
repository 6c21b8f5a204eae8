package bamboo

import (
	"fmt"
	"strconv"
	"strings"
)

// Sprint renders v in read-back form, per spec §4.7: the form the
// reader would need to see to reproduce an equal value (modulo gensym-
// style identity for closures/macros/builtins, which print as opaque
// handles). This mirrors original_source/src/bamboo.c's
// bamboo_print_expr, walking the cdr chain and only switching to `. `
// notation when the chain's tail turns out to be genuinely improper.
func Sprint(v Value) string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

func writeValue(b *strings.Builder, v Value) {
	switch v.Kind() {
	case KindNil:
		b.WriteString("nil")
	case KindBoolean:
		if bv, _ := v.AsBool(); bv {
			b.WriteString("#t")
		} else {
			b.WriteString("#f")
		}
	case KindInteger:
		iv, _ := v.AsInt()
		b.WriteString(strconv.FormatInt(iv, 10))
	case KindFloat:
		fv, _ := v.AsFloat()
		s := formatFloat(fv)
		if !strings.ContainsAny(s, ".eEIN") {
			s += ".0" // keep an integral float from reading back as an Integer
		}
		b.WriteString(s)
	case KindSymbol:
		sym, _ := v.AsSymbol()
		b.WriteString(sym.Name())
	case KindString:
		sv, _ := v.AsString()
		b.WriteByte('"')
		b.WriteString(sv)
		b.WriteByte('"')
	case KindPair:
		writeList(b, v)
	case KindClosure:
		writeFunction(b, "FUNCTION", v)
	case KindMacro:
		writeFunction(b, "MACRO", v)
	case KindBuiltin:
		fmt.Fprintf(b, "#<BUILTIN:%p>", v.bi)
	case KindPointer:
		fmt.Fprintf(b, "#<POINTER:%p>", v.ptr)
	default:
		b.WriteString("#<UNKNOWN>")
	}
}

func writeList(b *strings.Builder, v Value) {
	b.WriteByte('(')
	writeValue(b, v.Head())
	rest := v.Tail()
	for {
		if rest.IsNil() {
			break
		}
		if rest.IsPair() {
			b.WriteByte(' ')
			writeValue(b, rest.Head())
			rest = rest.Tail()
			continue
		}
		b.WriteString(" . ")
		writeValue(b, rest)
		break
	}
	b.WriteByte(')')
}

func writeFunction(b *strings.Builder, tag string, v Value) {
	fmt.Fprintf(b, "#<%s:", tag)
	writeValue(b, closureParams(v))
	b.WriteByte(' ')
	writeValue(b, closureBody(v))
	b.WriteByte('>')
}

// formatFloat gives a canonical, minimal round-trip textual form for a
// float — no library in the retrieval pack offers a different notion of
// "canonical" float formatting, so this is strconv's own shortest
// representation.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// displayText renders v the way DISPLAY/CONCAT do (spec §4.6): unquoted
// strings, upper-case TRUE/FALSE distinct from the #t/#f the read-back
// printer uses, and Nil contributing nothing at all to the output. This
// is deliberately a different rendering from Sprint for the same value —
// one for the reader to read back, one for a human to read — the same
// split the teacher keeps between Value's Text() and PrettyString().
func displayText(v Value) string {
	switch v.Kind() {
	case KindNil:
		return ""
	case KindBoolean:
		if bv, _ := v.AsBool(); bv {
			return "TRUE"
		}
		return "FALSE"
	case KindInteger:
		iv, _ := v.AsInt()
		return strconv.FormatInt(iv, 10)
	case KindFloat:
		fv, _ := v.AsFloat()
		return formatFloat(fv)
	case KindSymbol:
		sym, _ := v.AsSymbol()
		return sym.Name()
	case KindString:
		sv, _ := v.AsString()
		return sv
	default:
		return Sprint(v)
	}
}
