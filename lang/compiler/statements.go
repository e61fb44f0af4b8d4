package compiler

import (
	"github.com/CabooseLang/Caboose/lang/chunk"
	"github.com/CabooseLang/Caboose/lang/object"
	"github.com/CabooseLang/Caboose/lang/token"
)

func (c *Compiler) declaration() {
	switch {
	case c.match(token.CLASS):
		c.classDeclaration()
	case c.match(token.FUN):
		c.funDeclaration()
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStatement()
	case c.match(token.IMPORT):
		c.importStatement()
	case c.match(token.IF):
		c.ifStatement()
	case c.match(token.WHILE):
		c.whileStatement()
	case c.match(token.FOR):
		c.forStatement()
	case c.match(token.RETURN):
		c.returnStatement()
	case c.match(token.LBRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RBRACE, "Expect '}' after block.")
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.SEMI, "Expect ';' after value.")
	c.emitOp(chunk.OpPrint)
}

func (c *Compiler) importStatement() {
	c.consume(token.STRING, "Expect module path string after 'import'.")
	c.emitConstant(object.FromObj(c.heap.CopyString(c.previous.Lexeme)))
	c.consume(token.SEMI, "Expect ';' after import path.")
	c.emitOp(chunk.OpImport)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.SEMI, "Expect ';' after expression.")
	c.emitOp(chunk.OpPop)
}

func (c *Compiler) ifStatement() {
	c.consume(token.LPAREN, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	thenJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitOp(chunk.OpPop)
	c.statement()

	elseJump := c.emitJump(chunk.OpJump)
	c.patchJump(thenJump)
	c.emitOp(chunk.OpPop)

	if c.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.currentChunk().Code)
	c.consume(token.LPAREN, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	exitJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitOp(chunk.OpPop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(chunk.OpPop)
}

// forStatement desugars `for (init; cond; step) body` into a while loop: the
// step, if present, is emitted right after the condition, in source order,
// behind a jump that skips it on the way into the body; the body then loops
// back to the step, and the step loops back to the condition. This matches
// the C compiler's single-pass bytecode-splicing technique (no AST to
// reorder, so the step runs after the body without being emitted there).
func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LPAREN, "Expect '(' after 'for'.")

	switch {
	case c.match(token.SEMI):
		// no initializer
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.currentChunk().Code)
	exitJump := -1
	if !c.match(token.SEMI) {
		c.expression()
		c.consume(token.SEMI, "Expect ';' after loop condition.")
		exitJump = c.emitJump(chunk.OpJumpIfFalse)
		c.emitOp(chunk.OpPop)
	}

	if !c.check(token.RPAREN) {
		bodyJump := c.emitJump(chunk.OpJump)
		incrementStart := len(c.currentChunk().Code)
		c.expression()
		c.emitOp(chunk.OpPop)
		c.consume(token.RPAREN, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	} else {
		c.consume(token.RPAREN, "Expect ')' after for clauses.")
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(chunk.OpPop)
	}
	c.endScope()
}

func (c *Compiler) returnStatement() {
	if c.cs.fnType == TypeScript {
		c.error("Can't return from top-level code.")
	}
	if c.match(token.SEMI) {
		c.emitReturn()
		return
	}
	if c.cs.fnType == TypeInitializer {
		c.error("Can't return a value from an initializer.")
	}
	c.expression()
	c.consume(token.SEMI, "Expect ';' after return value.")
	c.emitOp(chunk.OpReturn)
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")
	if c.match(token.EQ) {
		c.expression()
	} else {
		c.emitOp(chunk.OpNil)
	}
	c.consume(token.SEMI, "Expect ';' after variable declaration.")
	c.defineVariable(global)
}

func (c *Compiler) funDeclaration() {
	global := c.parseVariable("Expect function name.")
	c.markInitialized()
	c.function(TypeFunction)
	c.defineVariable(global)
}

// function compiles a function body into a fresh nested Compiler, emitting
// OP_CLOSURE with its trailing (isLocal, index) upvalue pairs in the
// enclosing chunk once the body is done.
func (c *Compiler) function(fnType FuncType) {
	enclosing := c.cs
	c.cs = &compilerState{enclosing: enclosing, fnType: fnType}
	c.cs.fn = c.heap.NewFunction()
	if fnType != TypeScript {
		c.cs.fn.Name = c.heap.CopyString(c.previous.Lexeme)
	}
	c.cs.locals[0] = local{name: receiverSlotName(fnType), depth: 0}
	c.cs.localCnt = 1

	c.beginScope()
	c.consume(token.LPAREN, "Expect '(' after function name.")
	if !c.check(token.RPAREN) {
		for {
			c.cs.fn.Arity++
			if c.cs.fn.Arity > 255 {
				c.errorAtCurrent("Can't have more than 255 parameters.")
			}
			constant := c.parseVariable("Expect parameter name.")
			c.defineVariable(constant)
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after parameters.")
	c.consume(token.LBRACE, "Expect '{' before function body.")
	c.block()

	fn := c.endCompiler()

	c.emitOp(chunk.OpClosure)
	c.emitByte(c.makeConstant(object.FromObj(fn)))
	for i := 0; i < fn.UpvalueCount; i++ {
		if enclosing.upvalueSlotIsLocal(i) {
			c.emitByte(1)
		} else {
			c.emitByte(0)
		}
		c.emitByte(enclosing.upvalueSlotIndex(i))
	}
}

func receiverSlotName(fnType FuncType) string {
	if fnType == TypeMethod || fnType == TypeInitializer {
		return "this"
	}
	return ""
}

func (cs *compilerState) upvalueSlotIsLocal(i int) bool { return cs.upvalues[i].isLocal }
func (cs *compilerState) upvalueSlotIndex(i int) byte   { return cs.upvalues[i].index }

func (c *Compiler) classDeclaration() {
	c.consumeIdent("Expect class name.")
	className := c.previous.Lexeme
	nameConstant := c.identifierConstant(className)
	c.declareVariable(className)

	c.emitOp(chunk.OpClass)
	c.emitByte(nameConstant)
	c.defineVariable(nameConstant)

	cls := &classState{enclosing: c.class}
	c.class = cls

	if c.match(token.LT) {
		c.consumeIdent("Expect superclass name.")
		superName := c.previous.Lexeme
		c.namedVariable(superName, false)
		if superName == className {
			c.error("A class can't inherit from itself.")
		}

		c.beginScope()
		c.addLocal("super")
		c.defineVariable(0)

		c.namedVariable(className, false)
		c.emitOp(chunk.OpInherit)
		cls.hasSuperclass = true
	}

	c.namedVariable(className, false)
	c.consume(token.LBRACE, "Expect '{' before class body.")
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.method()
	}
	c.consume(token.RBRACE, "Expect '}' after class body.")
	c.emitOp(chunk.OpPop)

	if cls.hasSuperclass {
		c.endScope()
	}
	c.class = cls.enclosing
}

func (c *Compiler) method() {
	c.consumeIdent("Expect method name.")
	name := c.previous.Lexeme
	constant := c.identifierConstant(name)

	fnType := TypeMethod
	if name == "init" {
		fnType = TypeInitializer
	}
	c.function(fnType)
	c.emitOp(chunk.OpMethod)
	c.emitByte(constant)
}
