// Kernel side CAN id allowlist, attached to the capture socket as an eBPF socket filter
package ebpf

import (
	"cand/internal/global"
	"fmt"

	"github.com/cilium/ebpf/asm"
)

const (
	acceptLabel string = "accept"
	idOffset    int16  = -4 // stack slot holding the loaded can_id
)

// Assembles the filter. A frame is kept when any rule matches
// ((can_id & mask) == (id & mask)) or when its can_id cannot be read.
func BuildFilter(rules []global.CANFilter) (insns asm.Instructions, err error) {
	if len(rules) == 0 {
		err = fmt.Errorf("no filter rules")
		return
	}
	if len(rules) > global.MaxCANFilters {
		err = fmt.Errorf("too many filter rules: %d (max %d)", len(rules), global.MaxCANFilters)
		return
	}

	insns = asm.Instructions{
		// R6 = skb, kept across the helper call
		asm.Mov.Reg(asm.R6, asm.R1),

		// skb_load_bytes(skb, 0, fp-4, 4)
		asm.Mov.Reg(asm.R1, asm.R6),
		asm.Mov.Imm(asm.R2, 0),
		asm.Mov.Reg(asm.R3, asm.RFP),
		asm.Add.Imm(asm.R3, int32(idOffset)),
		asm.Mov.Imm(asm.R4, 4),
		asm.FnSkbLoadBytes.Call(),
		asm.JNE.Imm(asm.R0, 0, acceptLabel),

		asm.LoadMem(asm.R2, asm.RFP, idOffset, asm.Word),
	}

	// 32 bit ALU and jumps so ids with the EFF flag (bit 31) are not sign extended
	for _, rule := range rules {
		insns = append(insns,
			asm.Mov.Reg32(asm.R3, asm.R2),
			asm.And.Imm32(asm.R3, int32(rule.Mask)),
			asm.JEq.Imm32(asm.R3, int32(rule.ID&rule.Mask), acceptLabel),
		)
	}

	insns = append(insns,
		// Drop
		asm.Mov.Imm(asm.R0, 0),
		asm.Return(),

		// Keep the whole frame
		asm.LoadMem(asm.R0, asm.R6, 0, asm.Word).WithSymbol(acceptLabel), // skb->len
		asm.Return(),
	)
	return
}
