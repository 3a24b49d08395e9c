// Package opcode defines the instruction set of the wisp bytecode virtual
// machine: the Op enumeration and the fixed operand widths each instruction
// uses (constant-pool/name/local/upvalue indices are one byte, jump offsets
// are two bytes big-endian). It has no dependency on the value or chunk
// representation so both lang/value (disassembly) and lang/compiler
// (emission) and lang/vm (dispatch) can import it without a cycle.
package opcode

import "fmt"

// Op identifies a single bytecode instruction. "x OP y" in the comments below
// is a stack picture describing the operand stack before and after execution
// of the instruction.
type Op uint8

//nolint:revive
const (
	CONSTANT Op = iota //          - CONSTANT<idx>           v
	NULL               //          - NULL                   null
	TRUE               //          - TRUE                   true
	FALSE              //          - FALSE                   false
	POP                //          v POP                    -

	GET_LOCAL  //          - GET_LOCAL<slot>        v
	SET_LOCAL  //          v SET_LOCAL<slot>         v
	GET_GLOBAL //          - GET_GLOBAL<name>       v
	DEFINE_GLOBAL //       v DEFINE_GLOBAL<name>     -
	SET_GLOBAL //          v SET_GLOBAL<name>        v
	GET_UPVALUE //         - GET_UPVALUE<idx>        v
	SET_UPVALUE //         v SET_UPVALUE<idx>        v
	GET_PROPERTY //        inst GET_PROPERTY<name>   v
	SET_PROPERTY //   inst v SET_PROPERTY<name>      v
	GET_SUPER  //    inst super GET_SUPER<name>      bound-method

	EQUAL    // a b EQUAL    bool
	GREATER  // a b GREATER  bool
	LESS     // a b LESS     bool
	ADD      // a b ADD      v
	SUBTRACT // a b SUBTRACT v
	MULTIPLY // a b MULTIPLY v
	DIVIDE   // a b DIVIDE   v
	MODULO   // a b MODULO   v
	EXPONENT // a b EXPONENT v
	NOT      //   a NOT      bool
	NEGATE   //   a NEGATE   v

	PRINT // v PRINT -

	JUMP          //          - JUMP<ofs>           -
	JUMP_IF_FALSE //       cond JUMP_IF_FALSE<ofs>   cond
	LOOP          //          - LOOP<ofs>            -

	CALL          //   fn a1..aN CALL<argc>          ret
	INVOKE        // inst a1..aN INVOKE<name,argc>    ret
	SUPER_INVOKE  // inst a1..aN super SUPER_INVOKE<name,argc> ret

	CLOSURE       //  - CLOSURE<fnIdx>[,isLocal,idx]* closure
	CLOSE_UPVALUE //  v CLOSE_UPVALUE                 -
	RETURN        //  v RETURN                        -

	CLASS   // - CLASS<name>  class
	INHERIT // super sub INHERIT super
	METHOD  // class closure METHOD<name> class

	ARRAY    // v1..vN ARRAY<count> array
	INDEX_OF // arr idx INDEX_OF   v
	SET_INDEX // arr idx v SET_INDEX v

	maxOp
)

var opNames = [...]string{
	CONSTANT: "CONSTANT", NULL: "NULL", TRUE: "TRUE", FALSE: "FALSE", POP: "POP",
	GET_LOCAL: "GET_LOCAL", SET_LOCAL: "SET_LOCAL",
	GET_GLOBAL: "GET_GLOBAL", DEFINE_GLOBAL: "DEFINE_GLOBAL", SET_GLOBAL: "SET_GLOBAL",
	GET_UPVALUE: "GET_UPVALUE", SET_UPVALUE: "SET_UPVALUE",
	GET_PROPERTY: "GET_PROPERTY", SET_PROPERTY: "SET_PROPERTY", GET_SUPER: "GET_SUPER",
	EQUAL: "EQUAL", GREATER: "GREATER", LESS: "LESS",
	ADD: "ADD", SUBTRACT: "SUBTRACT", MULTIPLY: "MULTIPLY", DIVIDE: "DIVIDE",
	MODULO: "MODULO", EXPONENT: "EXPONENT", NOT: "NOT", NEGATE: "NEGATE",
	PRINT: "PRINT",
	JUMP: "JUMP", JUMP_IF_FALSE: "JUMP_IF_FALSE", LOOP: "LOOP",
	CALL: "CALL", INVOKE: "INVOKE", SUPER_INVOKE: "SUPER_INVOKE",
	CLOSURE: "CLOSURE", CLOSE_UPVALUE: "CLOSE_UPVALUE", RETURN: "RETURN",
	CLASS: "CLASS", INHERIT: "INHERIT", METHOD: "METHOD",
	ARRAY: "ARRAY", INDEX_OF: "INDEX_OF", SET_INDEX: "SET_INDEX",
}

func (op Op) String() string {
	if op < maxOp {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", uint8(op))
}
