package compiler

import (
	"strconv"

	"github.com/CabooseLang/Caboose/lang/chunk"
	"github.com/CabooseLang/Caboose/lang/object"
	"github.com/CabooseLang/Caboose/lang/token"
)

// precedence follows the ladder in spec.md §4.3: None < Assignment < Or <
// And < Equality < Comparison < Term < Factor < Unary < Call < Primary.
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

type (
	prefixFn func(c *Compiler, canAssign bool)
	infixFn  func(c *Compiler, canAssign bool)
)

type parseRule struct {
	prefix     prefixFn
	infix      infixFn
	precedence precedence
}

var rules map[token.Kind]parseRule

func init() {
	rules = map[token.Kind]parseRule{
		token.LPAREN:      {prefix: (*Compiler).grouping, infix: (*Compiler).call, precedence: precCall},
		token.DOT:         {infix: (*Compiler).dot, precedence: precCall},
		token.MINUS:       {prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: precTerm},
		token.PLUS:        {infix: (*Compiler).binary, precedence: precTerm},
		token.SLASH:       {infix: (*Compiler).binary, precedence: precFactor},
		token.STAR:        {infix: (*Compiler).binary, precedence: precFactor},
		token.BANG:        {prefix: (*Compiler).unary},
		token.BANG_EQ:     {infix: (*Compiler).binary, precedence: precEquality},
		token.EQ_EQ:       {infix: (*Compiler).binary, precedence: precEquality},
		token.GT:          {infix: (*Compiler).binary, precedence: precComparison},
		token.GT_EQ:       {infix: (*Compiler).binary, precedence: precComparison},
		token.LT:          {infix: (*Compiler).binary, precedence: precComparison},
		token.LT_EQ:       {infix: (*Compiler).binary, precedence: precComparison},
		token.IDENT:       {prefix: (*Compiler).variable},
		token.STRING:      {prefix: (*Compiler).stringLiteral},
		token.NUMBER:      {prefix: (*Compiler).number},
		token.AND:         {infix: (*Compiler).and_, precedence: precAnd},
		token.OR:          {infix: (*Compiler).or_, precedence: precOr},
		token.FALSE:       {prefix: (*Compiler).literal},
		token.TRUE:        {prefix: (*Compiler).literal},
		token.NIL:         {prefix: (*Compiler).literal},
		token.THIS:        {prefix: (*Compiler).this},
		token.SUPER:       {prefix: (*Compiler).super},
	}
}

func (c *Compiler) getRule(k token.Kind) parseRule { return rules[k] }

func (c *Compiler) expression() { c.parsePrecedence(precAssignment) }

func (c *Compiler) parsePrecedence(prec precedence) {
	c.advance()
	rule := c.getRule(c.previous.Kind)
	if rule.prefix == nil {
		c.error("Expect expression.")
		return
	}
	canAssign := prec <= precAssignment
	rule.prefix(c, canAssign)

	for prec <= c.getRule(c.current.Kind).precedence {
		c.advance()
		infix := c.getRule(c.previous.Kind).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.EQ) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) number(_ bool) {
	v, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(object.Number(v))
}

func (c *Compiler) stringLiteral(_ bool) {
	c.emitConstant(object.FromObj(c.heap.CopyString(c.previous.Lexeme)))
}

func (c *Compiler) literal(_ bool) {
	switch c.previous.Kind {
	case token.FALSE:
		c.emitOp(chunk.OpFalse)
	case token.TRUE:
		c.emitOp(chunk.OpTrue)
	case token.NIL:
		c.emitOp(chunk.OpNil)
	}
}

func (c *Compiler) grouping(_ bool) {
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after expression.")
}

func (c *Compiler) unary(_ bool) {
	opType := c.previous.Kind
	c.parsePrecedence(precUnary)
	switch opType {
	case token.BANG:
		c.emitOp(chunk.OpNot)
	case token.MINUS:
		c.emitOp(chunk.OpNegate)
	}
}

func (c *Compiler) binary(_ bool) {
	opType := c.previous.Kind
	rule := c.getRule(opType)
	c.parsePrecedence(rule.precedence + 1)

	switch opType {
	case token.BANG_EQ:
		c.emitOps(chunk.OpEqual, chunk.OpNot)
	case token.EQ_EQ:
		c.emitOp(chunk.OpEqual)
	case token.GT:
		c.emitOp(chunk.OpGreater)
	case token.GT_EQ:
		c.emitOps(chunk.OpLess, chunk.OpNot)
	case token.LT:
		c.emitOp(chunk.OpLess)
	case token.LT_EQ:
		c.emitOps(chunk.OpGreater, chunk.OpNot)
	case token.PLUS:
		c.emitOp(chunk.OpAdd)
	case token.MINUS:
		c.emitOp(chunk.OpSubtract)
	case token.STAR:
		c.emitOp(chunk.OpMultiply)
	case token.SLASH:
		c.emitOp(chunk.OpDivide)
	}
}

func (c *Compiler) and_(_ bool) {
	endJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitOp(chunk.OpPop)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or_(_ bool) {
	elseJump := c.emitJump(chunk.OpJumpIfFalse)
	endJump := c.emitJump(chunk.OpJump)

	c.patchJump(elseJump)
	c.emitOp(chunk.OpPop)

	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func (c *Compiler) call(_ bool) {
	argc := c.argumentList(token.RPAREN)
	c.emitOp(chunk.OpCall)
	c.emitByte(argc)
}

func (c *Compiler) argumentList(closing token.Kind) byte {
	var argc int
	if !c.check(closing) {
		for {
			c.expression()
			if argc == 255 {
				c.error("Can't have more than 255 arguments.")
			}
			argc++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(closing, "Expect ')' after arguments.")
	return byte(argc)
}

func (c *Compiler) dot(canAssign bool) {
	c.consumeIdent("Expect property name after '.'.")
	name := c.identifierConstant(c.previous.Lexeme)

	switch {
	case canAssign && c.match(token.EQ):
		c.expression()
		c.emitOp(chunk.OpSetProperty)
		c.emitByte(name)
	case c.match(token.LPAREN):
		argc := c.argumentList(token.RPAREN)
		c.emitOp(chunk.OpInvoke)
		c.emitByte(name)
		c.emitByte(argc)
	default:
		c.emitOp(chunk.OpGetProperty)
		c.emitByte(name)
	}
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous.Lexeme, canAssign)
}

func (c *Compiler) this(_ bool) {
	if c.class == nil {
		c.error("Can't use 'this' outside of a class.")
		return
	}
	c.variable(false)
}

func (c *Compiler) super(_ bool) {
	if c.class == nil {
		c.error("Can't use 'super' outside of a class.")
	} else if !c.class.hasSuperclass {
		c.error("Can't use 'super' in a class with no superclass.")
	}

	c.consume(token.DOT, "Expect '.' after 'super'.")
	c.consumeIdent("Expect superclass method name.")
	name := c.identifierConstant(c.previous.Lexeme)

	c.namedVariable("this", false)
	if c.match(token.LPAREN) {
		argc := c.argumentList(token.RPAREN)
		c.namedVariable("super", false)
		c.emitOp(chunk.OpSuper)
		c.emitByte(name)
		c.emitByte(argc)
	} else {
		c.namedVariable("super", false)
		c.emitOp(chunk.OpGetSuper)
		c.emitByte(name)
	}
}
