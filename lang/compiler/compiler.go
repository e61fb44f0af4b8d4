// Package compiler implements Caboose's single-pass Pratt compiler: it
// consumes tokens from lang/scanner and writes bytecode directly into a
// lang/object.Chunk, with no intermediate AST.
package compiler

import (
	"fmt"

	"github.com/CabooseLang/Caboose/lang/chunk"
	"github.com/CabooseLang/Caboose/lang/object"
	"github.com/CabooseLang/Caboose/lang/scanner"
	"github.com/CabooseLang/Caboose/lang/token"
)

const (
	maxLocals   = 256
	maxUpvalues = 256
)

// FuncType discriminates the kind of function body a Compiler is building,
// since Script/Method/Initializer each change what a bare `return` means.
type FuncType uint8

const (
	TypeScript FuncType = iota
	TypeFunction
	TypeMethod
	TypeInitializer
)

type local struct {
	name       string
	depth      int
	isCaptured bool
}

type upvalue struct {
	index   uint8
	isLocal bool
}

// compilerState is one record per function currently being compiled; the
// records form a stack via enclosing, mirroring the C Compiler's parent
// chain so nested `fun` definitions resolve locals and upvalues correctly.
type compilerState struct {
	enclosing *compilerState

	fn       *object.FunctionObj
	fnType   FuncType
	locals   [maxLocals]local
	localCnt int
	upvalues [maxUpvalues]upvalue

	scopeDepth int
}

type classState struct {
	enclosing     *classState
	hasSuperclass bool
}

// Compiler drives the Pratt parser over a Scanner's token stream. Compile
// creates one Compiler and the top-level compilerState for a full source
// string; each nested function body pushes a fresh compilerState onto the
// same Compiler (see function()).
type Compiler struct {
	heap *object.Heap
	scan *scanner.Scanner

	current   token.Token
	previous  token.Token
	hadError  bool
	panicMode bool
	errWriter errWriter

	cs    *compilerState
	class *classState
}

type errWriter interface {
	Errorf(line int, format string, args ...any)
}

// CompileError reports a single compile-time diagnostic, with the source
// line it was detected at, matching how the teacher's scanner.Error and
// ErrorList carry position information instead of a bare string.
type CompileError struct {
	Line    int
	Message string
}

func (e *CompileError) Error() string { return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message) }

// errorList collects every CompileError produced during a run; panicMode
// suppresses cascading reports until synchronize() finds a statement
// boundary, so the returned list tends to have one entry per genuine fault.
type errorList struct {
	errs []*CompileError
}

func (l *errorList) Errorf(line int, format string, args ...any) {
	l.errs = append(l.errs, &CompileError{Line: line, Message: fmt.Sprintf(format, args...)})
}

// Compile compiles source into a top-level FunctionObj ready to be wrapped
// in a Closure and run, following the teacher's pattern of a package-level
// entry point that owns construction of the internal compiler state.
func Compile(heap *object.Heap, source string) (*object.FunctionObj, []*CompileError) {
	el := &errorList{}
	c := &Compiler{heap: heap, scan: scanner.New(source), errWriter: el}

	c.cs = &compilerState{fnType: TypeScript}
	c.cs.fn = heap.NewFunction()
	c.cs.locals[0] = local{name: "", depth: 0}
	c.cs.localCnt = 1

	prevMarkObjRoots := heap.MarkObjRoots
	heap.MarkObjRoots = func(mark func(object.Obj)) {
		if prevMarkObjRoots != nil {
			prevMarkObjRoots(mark)
		}
		c.markRoots(mark)
	}
	defer func() { heap.MarkObjRoots = prevMarkObjRoots }()

	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	fn := c.endCompiler()

	if c.hadError {
		return nil, el.errs
	}
	return fn, nil
}

// markRoots marks the function currently being built at every nesting level
// of c's compilerState chain, so a GC cycle triggered mid-compile (via
// StressGC or the bytesAllocated threshold in Heap.register) cannot collect
// a FunctionObj or constant that no VM root yet references, since the VM
// has no frame for a program that hasn't finished compiling (spec.md §4.6's
// markCompilerRoots hook).
func (c *Compiler) markRoots(mark func(object.Obj)) {
	for cs := c.cs; cs != nil; cs = cs.enclosing {
		if cs.fn != nil {
			mark(cs.fn)
		}
	}
}

// --- token stream helpers ------------------------------------------------

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scan.ScanToken()
		if c.current.Kind != token.ILLEGAL {
			break
		}
		c.errorAtCurrent(c.current.Message)
	}
}

func (c *Compiler) check(k token.Kind) bool { return c.current.Kind == k }

func (c *Compiler) match(k token.Kind) bool {
	if !c.check(k) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(k token.Kind, msg string) {
	if c.current.Kind == k {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

func (c *Compiler) errorAtCurrent(msg string) { c.errorAt(c.current, msg) }
func (c *Compiler) error(msg string)          { c.errorAt(c.previous, msg) }

func (c *Compiler) errorAt(tok token.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true
	if tok.Kind == token.EOF {
		c.errWriter.Errorf(tok.Line, "at end: %s", msg)
	} else if tok.Kind == token.ILLEGAL {
		c.errWriter.Errorf(tok.Line, "%s", msg)
	} else {
		c.errWriter.Errorf(tok.Line, "at '%s': %s", tok.Lexeme, msg)
	}
}

// synchronize skips tokens until it reaches what looks like a statement
// boundary, so one mistake does not cascade into a wall of errors.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Kind != token.EOF {
		if c.previous.Kind == token.SEMI {
			return
		}
		switch c.current.Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		c.advance()
	}
}

// --- emission --------------------------------------------------------

func (c *Compiler) currentChunk() *object.Chunk { return c.cs.fn.Chunk }

func (c *Compiler) emitByte(b byte) { c.currentChunk().Write(b, c.previous.Line) }
func (c *Compiler) emitOp(op chunk.OpCode) {
	c.currentChunk().WriteOp(op, c.previous.Line)
}
func (c *Compiler) emitOps(op1, op2 chunk.OpCode) {
	c.emitOp(op1)
	c.emitOp(op2)
}

func (c *Compiler) emitConstant(v object.Value) {
	c.emitOp(chunk.OpConstant)
	c.emitByte(c.makeConstant(v))
}

func (c *Compiler) makeConstant(v object.Value) byte {
	idx := c.currentChunk().AddConstant(v)
	if idx > 255 {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

// emitJump writes a two-byte placeholder operand after op and returns its
// offset, to be patched once the jump target is known.
func (c *Compiler) emitJump(op chunk.OpCode) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.currentChunk().Code) - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := len(c.currentChunk().Code) - offset - 2
	if jump > 0xffff {
		c.error("Too much code to jump over.")
	}
	c.currentChunk().Code[offset] = byte(jump>>8) & 0xff
	c.currentChunk().Code[offset+1] = byte(jump) & 0xff
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(chunk.OpLoop)
	offset := len(c.currentChunk().Code) - loopStart + 2
	if offset > 0xffff {
		c.error("Loop body too large.")
	}
	c.emitByte(byte(offset>>8) & 0xff)
	c.emitByte(byte(offset) & 0xff)
}

func (c *Compiler) emitReturn() {
	if c.cs.fnType == TypeInitializer {
		c.emitOp(chunk.OpGetLocal)
		c.emitByte(0)
	} else {
		c.emitOp(chunk.OpNil)
	}
	c.emitOp(chunk.OpReturn)
}

func (c *Compiler) endCompiler() *object.FunctionObj {
	c.emitReturn()
	fn := c.cs.fn
	c.cs = c.cs.enclosing
	return fn
}

// --- scopes ------------------------------------------------------------

func (c *Compiler) beginScope() { c.cs.scopeDepth++ }

func (c *Compiler) endScope() {
	c.cs.scopeDepth--
	for c.cs.localCnt > 0 && c.cs.locals[c.cs.localCnt-1].depth > c.cs.scopeDepth {
		if c.cs.locals[c.cs.localCnt-1].isCaptured {
			c.emitOp(chunk.OpCloseUpvalue)
		} else {
			c.emitOp(chunk.OpPop)
		}
		c.cs.localCnt--
	}
}
