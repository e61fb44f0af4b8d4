package compiler

import (
	"github.com/CabooseLang/Caboose/lang/chunk"
	"github.com/CabooseLang/Caboose/lang/object"
	"github.com/CabooseLang/Caboose/lang/token"
)

func (c *Compiler) identifierConstant(name string) byte {
	return c.makeConstant(object.FromObj(c.heap.CopyString(name)))
}

func (c *Compiler) consumeIdent(msg string) { c.consume(token.IDENT, msg) }

func assignToken() token.Kind { return token.EQ }

func identifiersEqual(a, b string) bool { return a == b }

// resolveLocal walks cs.locals from the top down, matching the "walk locals
// from localCount-1 down to 0" resolution rule; a depth of -1 means the
// local's own initializer is still being compiled, which is an error to
// reference.
func resolveLocal(c *Compiler, cs *compilerState, name string) (slot int, ok bool) {
	for i := cs.localCnt - 1; i >= 0; i-- {
		if identifiersEqual(cs.locals[i].name, name) {
			if cs.locals[i].depth == -1 {
				c.error("Can't read local variable in its own initializer.")
			}
			return i, true
		}
	}
	return -1, false
}

// resolveUpvalue recursively asks the enclosing compiler for name: if it is
// one of its locals, mark it captured and allocate a local-backed upvalue;
// if the enclosing compiler itself resolves it as an upvalue, allocate a
// chained (non-local) upvalue referencing that index.
func resolveUpvalue(c *Compiler, cs *compilerState, name string) (idx int, ok bool) {
	if cs.enclosing == nil {
		return -1, false
	}
	if slot, found := resolveLocal(c, cs.enclosing, name); found {
		cs.enclosing.locals[slot].isCaptured = true
		return addUpvalue(c, cs, uint8(slot), true), true
	}
	if slot, found := resolveUpvalue(c, cs.enclosing, name); found {
		return addUpvalue(c, cs, uint8(slot), false), true
	}
	return -1, false
}

func addUpvalue(c *Compiler, cs *compilerState, index uint8, isLocal bool) int {
	count := cs.fn.UpvalueCount
	for i := 0; i < count; i++ {
		uv := cs.upvalues[i]
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if count == maxUpvalues {
		c.error("Too many closure variables in function.")
		return 0
	}
	cs.upvalues[count] = upvalue{index: index, isLocal: isLocal}
	cs.fn.UpvalueCount++
	return count
}

func (c *Compiler) addLocal(name string) {
	if c.cs.localCnt == maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	c.cs.locals[c.cs.localCnt] = local{name: name, depth: -1}
	c.cs.localCnt++
}

func (c *Compiler) declareVariable(name string) {
	if c.cs.scopeDepth == 0 {
		return
	}
	for i := c.cs.localCnt - 1; i >= 0; i-- {
		l := c.cs.locals[i]
		if l.depth != -1 && l.depth < c.cs.scopeDepth {
			break
		}
		if identifiersEqual(l.name, name) {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) parseVariable(errMsg string) byte {
	c.consumeIdent(errMsg)
	name := c.previous.Lexeme
	c.declareVariable(name)
	if c.cs.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(name)
}

func (c *Compiler) markInitialized() {
	if c.cs.scopeDepth == 0 {
		return
	}
	c.cs.locals[c.cs.localCnt-1].depth = c.cs.scopeDepth
}

func (c *Compiler) defineVariable(global byte) {
	if c.cs.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOp(chunk.OpDefineGlobal)
	c.emitByte(global)
}

func (c *Compiler) namedVariable(name string, canAssign bool) {
	var getOp, setOp chunk.OpCode
	slot, found := resolveLocal(c, c.cs, name)
	if found {
		getOp, setOp = chunk.OpGetLocal, chunk.OpSetLocal
	} else if idx, ok := resolveUpvalue(c, c.cs, name); ok {
		slot = idx
		getOp, setOp = chunk.OpGetUpvalue, chunk.OpSetUpvalue
	} else {
		slot = int(c.identifierConstant(name))
		getOp, setOp = chunk.OpGetGlobal, chunk.OpSetGlobal
	}

	if canAssign && c.match(assignToken()) {
		c.expression()
		c.emitOp(setOp)
		c.emitByte(byte(slot))
		return
	}
	c.emitOp(getOp)
	c.emitByte(byte(slot))
}
