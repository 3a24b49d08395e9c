package compiler

import "github.com/mna/wisp/lang/token"

// precedence levels, low to high, per spec.md §4.1.1.
type precedence uint8

const (
	precNone precedence = iota
	precAssignment
	precOr
	precAnd
	precEquality
	precComparison
	precTerm
	precFactor
	precUnary
	precCall
	precPrimary
)

// parseFn is a prefix or infix parsing rule. canAssign threads the
// assignment-target context described in spec.md §4.1.1 through both
// prefix and infix positions.
type parseFn func(c *Compiler, canAssign bool)

type rule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

var rules map[token.Kind]rule

func init() {
	rules = map[token.Kind]rule{
		token.LPAREN:   {prefix: (*Compiler).grouping, infix: (*Compiler).call, precedence: precCall},
		token.LBRACK:   {infix: (*Compiler).indexOf, precedence: precCall},
		token.DOT:      {infix: (*Compiler).dot, precedence: precCall},
		token.MINUS:    {prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: precTerm},
		token.PLUS:     {infix: (*Compiler).binary, precedence: precTerm},
		token.SLASH:    {infix: (*Compiler).binary, precedence: precFactor},
		token.STAR:     {infix: (*Compiler).binary, precedence: precFactor},
		token.PERCENT:  {infix: (*Compiler).binary, precedence: precFactor},
		token.STARSTAR: {infix: (*Compiler).binary, precedence: precFactor},
		token.BANG:     {prefix: (*Compiler).unary},
		token.BANG_EQ:  {infix: (*Compiler).binary, precedence: precEquality},
		token.EQ_EQ:    {infix: (*Compiler).binary, precedence: precEquality},
		token.GT:       {infix: (*Compiler).binary, precedence: precComparison},
		token.GT_EQ:    {infix: (*Compiler).binary, precedence: precComparison},
		token.LT:       {infix: (*Compiler).binary, precedence: precComparison},
		token.LT_EQ:    {infix: (*Compiler).binary, precedence: precComparison},
		token.IDENT:    {prefix: (*Compiler).variable},
		token.STRING:   {prefix: (*Compiler).stringLit},
		token.NUMBER:   {prefix: (*Compiler).number},
		token.AND:      {infix: (*Compiler).and, precedence: precAnd},
		token.OR:       {infix: (*Compiler).or, precedence: precOr},
		token.FALSE:    {prefix: (*Compiler).literal},
		token.TRUE:     {prefix: (*Compiler).literal},
		token.NULL:     {prefix: (*Compiler).literal},
		token.THIS:     {prefix: (*Compiler).this},
		token.SUPER:    {prefix: (*Compiler).super},
		token.LBRACE:   {prefix: (*Compiler).arrayLiteral},
	}
}

func getRule(k token.Kind) rule {
	return rules[k]
}
