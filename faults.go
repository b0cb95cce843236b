package vtx

import "fmt"

// Vector is an x86 exception vector number.
type Vector uint8

const (
	VectorDE  Vector = 0  // divide error
	VectorDB  Vector = 1  // debug
	VectorNMI Vector = 2  // non-maskable interrupt
	VectorBP  Vector = 3  // breakpoint
	VectorOF  Vector = 4  // overflow
	VectorBR  Vector = 5  // BOUND range exceeded
	VectorUD  Vector = 6  // invalid opcode
	VectorNM  Vector = 7  // device not available
	VectorDF  Vector = 8  // double fault
	VectorCSO Vector = 9  // coprocessor segment overrun
	VectorTS  Vector = 10 // invalid TSS
	VectorNP  Vector = 11 // segment not present
	VectorSS  Vector = 12 // stack-segment fault
	VectorGP  Vector = 13 // general protection
	VectorPF  Vector = 14 // page fault
	VectorMF  Vector = 16 // x87 floating-point error
	VectorAC  Vector = 17 // alignment check
	VectorMC  Vector = 18 // machine check
	VectorXM  Vector = 19 // SIMD floating-point exception
	VectorXF         = VectorXM
	VectorVE  Vector = 20 // virtualization exception
	VectorSX  Vector = 30 // security exception
)

var vectorNames = map[Vector]string{
	VectorDE:  "#DE",
	VectorDB:  "#DB",
	VectorNMI: "NMI",
	VectorBP:  "#BP",
	VectorOF:  "#OF",
	VectorBR:  "#BR",
	VectorUD:  "#UD",
	VectorNM:  "#NM",
	VectorDF:  "#DF",
	VectorCSO: "CSO",
	VectorTS:  "#TS",
	VectorNP:  "#NP",
	VectorSS:  "#SS",
	VectorGP:  "#GP",
	VectorPF:  "#PF",
	VectorMF:  "#MF",
	VectorAC:  "#AC",
	VectorMC:  "#MC",
	VectorXM:  "#XM",
	VectorVE:  "#VE",
	VectorSX:  "#SX",
}

func (v Vector) String() string {
	if s, ok := vectorNames[v]; ok {
		return s
	}
	return fmt.Sprintf("vector(%d)", uint8(v))
}

// Defined reports whether v is an architecturally defined exception rather
// than a reserved slot (15, 21-29, 31).
func (v Vector) Defined() bool {
	_, ok := vectorNames[v]
	return ok
}

// HasErrorCode reports whether the CPU pushes an error code for v.
func (v Vector) HasErrorCode() bool {
	switch v {
	case VectorDF, VectorTS, VectorNP, VectorSS, VectorGP, VectorPF, VectorAC, VectorSX:
		return true
	}
	return false
}
