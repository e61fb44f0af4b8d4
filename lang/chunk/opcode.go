// Package chunk defines the bytecode instruction set shared by the compiler
// and the VM. It intentionally carries no dependency on the value/object
// model (lang/object) or the compiler: it is pure naming and operand-width
// metadata over a byte stream, the same separation the teacher keeps between
// its opcode tables and its Funcode/Value types.
package chunk

// OpCode identifies a single bytecode instruction. Operand widths are fixed
// per opcode: zero, one or two bytes, a u16 for jumps, or (for closures) one
// byte plus an inline trailer. See spec.md §4.4 for the full operand-width
// table.
type OpCode byte

//nolint:revive
const (
	OpConstant OpCode = iota // [u8 idx]   push constants[idx]
	OpNil                    //            push Nil
	OpTrue                   //            push Bool(true)
	OpFalse                  //            push Bool(false)
	OpPop                    //            drop top

	OpGetLocal  // [u8 slot]
	OpSetLocal  // [u8 slot]
	OpGetGlobal // [u8 name]
	OpSetGlobal // [u8 name]
	OpDefineGlobal // [u8 name]
	OpGetUpvalue   // [u8 slot]
	OpSetUpvalue   // [u8 slot]
	OpGetProperty  // [u8 name]
	OpSetProperty  // [u8 name]
	OpGetSuper     // [u8 name]

	OpEqual
	OpGreater
	OpLess
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNot
	OpNegate

	OpPrint

	OpJump        // [u16 offset]
	OpJumpIfFalse // [u16 offset]
	OpLoop        // [u16 offset]

	OpCall   // [u8 argCount]
	OpInvoke // [u8 name][u8 argCount]
	OpSuper  // [u8 name][u8 argCount]

	OpClosure      // [u8 fn] + {u8 isLocal, u8 index} * upvalueCount
	OpCloseUpvalue //
	OpReturn       //

	OpClass   // [u8 name]
	OpInherit //
	OpMethod  // [u8 name]

	OpImport // no operand; pops the path string. Reserved, see spec.md §4.3/§9 open question

	numOpCodes
)

var names = [...]string{
	OpConstant:     "OP_CONSTANT",
	OpNil:          "OP_NIL",
	OpTrue:         "OP_TRUE",
	OpFalse:        "OP_FALSE",
	OpPop:          "OP_POP",
	OpGetLocal:     "OP_GET_LOCAL",
	OpSetLocal:     "OP_SET_LOCAL",
	OpGetGlobal:    "OP_GET_GLOBAL",
	OpSetGlobal:    "OP_SET_GLOBAL",
	OpDefineGlobal: "OP_DEFINE_GLOBAL",
	OpGetUpvalue:   "OP_GET_UPVALUE",
	OpSetUpvalue:   "OP_SET_UPVALUE",
	OpGetProperty:  "OP_GET_PROPERTY",
	OpSetProperty:  "OP_SET_PROPERTY",
	OpGetSuper:     "OP_GET_SUPER",
	OpEqual:        "OP_EQUAL",
	OpGreater:      "OP_GREATER",
	OpLess:         "OP_LESS",
	OpAdd:          "OP_ADD",
	OpSubtract:     "OP_SUBTRACT",
	OpMultiply:     "OP_MULTIPLY",
	OpDivide:       "OP_DIVIDE",
	OpNot:          "OP_NOT",
	OpNegate:       "OP_NEGATE",
	OpPrint:        "OP_PRINT",
	OpJump:         "OP_JUMP",
	OpJumpIfFalse:  "OP_JUMP_IF_FALSE",
	OpLoop:         "OP_LOOP",
	OpCall:         "OP_CALL",
	OpInvoke:       "OP_INVOKE",
	OpSuper:        "OP_SUPER_INVOKE",
	OpClosure:      "OP_CLOSURE",
	OpCloseUpvalue: "OP_CLOSE_UPVALUE",
	OpReturn:       "OP_RETURN",
	OpClass:        "OP_CLASS",
	OpInherit:      "OP_INHERIT",
	OpMethod:       "OP_METHOD",
	OpImport:       "OP_IMPORT",
}

func (op OpCode) String() string {
	if int(op) >= len(names) || names[op] == "" {
		return "OP_UNKNOWN"
	}
	return names[op]
}
