package expr

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// token is a lexed piece of a formula.
type token struct {
	typ  hclsyntax.TokenType
	text string
}

// item is a token or a parenthesized group at one nesting level.
type item struct {
	text    string
	operand bool
	ident   bool
	caret   bool
}

// normalize rewrites a bore formula into HCL expression syntax. A minus
// directly after a name is subtraction, a leading plus is dropped, and
// a^b (or a**b) becomes pow(a, b). Power binds tighter than unary minus
// and groups from the right, so -2^2 is -4 and 2^3^2 is 512.
func normalize(src string) (string, error) {
	toks, err := lex(src)
	if err != nil {
		return "", err
	}
	return render(toks)
}

// lex tokenizes src with the HCL scanner. Diagnostics are ignored here
// since the operators HCL rejects are handled by render, and anything
// left over fails when the rewritten source is parsed.
func lex(src string) ([]token, error) {
	raw, _ := hclsyntax.LexExpression([]byte(src), "expression", hcl.InitialPos)
	var out []token
	for _, t := range raw {
		switch t.Type {
		case hclsyntax.TokenEOF, hclsyntax.TokenNewline, hclsyntax.TokenComment:
			continue
		case hclsyntax.TokenInvalid, hclsyntax.TokenBadUTF8:
			return nil, fmt.Errorf("%w: invalid character %q", ErrMalformed, t.Bytes)
		case hclsyntax.TokenIdent:
			// HCL names may contain dashes; variable names never do.
			name, rest, found := strings.Cut(string(t.Bytes), "-")
			out = append(out, token{typ: hclsyntax.TokenIdent, text: name})
			if !found {
				continue
			}
			out = append(out, token{typ: hclsyntax.TokenMinus, text: "-"})
			if rest == "" {
				continue
			}
			tail, err := lex(rest)
			if err != nil {
				return nil, err
			}
			out = append(out, tail...)
		case hclsyntax.TokenStarStar:
			out = append(out, token{typ: hclsyntax.TokenBitwiseXor, text: "^"})
		default:
			out = append(out, token{typ: t.Type, text: string(t.Bytes)})
		}
	}
	return out, nil
}

func render(toks []token) (string, error) {
	items, err := group(toks)
	if err != nil {
		return "", err
	}

	var out []string
	for i := 0; i < len(items); i++ {
		it := items[i]
		if it.caret {
			return "", fmt.Errorf("%w: ^ without a left operand", ErrMalformed)
		}
		if !it.operand || i+1 >= len(items) || !items[i+1].caret {
			out = append(out, it.text)
			continue
		}

		var signs, operands []string
		j := i + 1
		for j < len(items) && items[j].caret {
			k := j + 1
			sign := ""
			for k < len(items) && items[k].text == "-" && !items[k].operand {
				sign += "-"
				k++
			}
			if k >= len(items) || !items[k].operand {
				return "", fmt.Errorf("%w: ^ without a right operand", ErrMalformed)
			}
			signs = append(signs, sign)
			operands = append(operands, items[k].text)
			j = k + 1
		}

		n := len(operands) - 1
		exp := signs[n] + operands[n]
		for m := n - 1; m >= 0; m-- {
			exp = signs[m] + "pow(" + operands[m] + ", " + exp + ")"
		}
		out = append(out, "pow("+it.text+", "+exp+")")
		i = j - 1
	}
	return strings.Join(out, " "), nil
}

// group folds parenthesized runs, rendered recursively, into single
// operands. A group directly after a name is a call and joins it.
func group(toks []token) ([]item, error) {
	var items []item
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.typ {
		case hclsyntax.TokenOParen:
			end, err := closing(toks, i)
			if err != nil {
				return nil, err
			}
			inner, err := render(toks[i+1 : end])
			if err != nil {
				return nil, err
			}
			text := "(" + inner + ")"
			if n := len(items); n > 0 && items[n-1].ident {
				items[n-1].text += text
				items[n-1].ident = false
			} else {
				items = append(items, item{text: text, operand: true})
			}
			i = end
		case hclsyntax.TokenCParen:
			return nil, fmt.Errorf("%w: unbalanced )", ErrMalformed)
		case hclsyntax.TokenBitwiseXor:
			items = append(items, item{text: "^", caret: true})
		case hclsyntax.TokenIdent:
			items = append(items, item{text: t.text, operand: true, ident: true})
		case hclsyntax.TokenNumberLit:
			items = append(items, item{text: t.text, operand: true})
		case hclsyntax.TokenPlus:
			if n := len(items); n == 0 || !items[n-1].operand {
				continue
			}
			items = append(items, item{text: t.text})
		default:
			items = append(items, item{text: t.text})
		}
	}
	return items, nil
}

func closing(toks []token, open int) (int, error) {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i].typ {
		case hclsyntax.TokenOParen:
			depth++
		case hclsyntax.TokenCParen:
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: unbalanced (", ErrMalformed)
}
