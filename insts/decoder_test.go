package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32sim/insts"
)

var _ = Describe("Decode", func() {
	Describe("U-type", func() {
		It("decodes LUI x5, 0xDEADB", func() {
			inst, err := insts.Decode(0xDEADB2B7)
			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpLUI))
			Expect(inst.Rd).To(Equal(uint8(5)))
			Expect(inst.Imm).To(Equal(uint32(0xDEADB000)))
		})

		It("decodes AUIPC x6, 0x12345", func() {
			inst, err := insts.Decode(0x12345317)
			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpAUIPC))
			Expect(inst.Rd).To(Equal(uint8(6)))
			Expect(inst.Imm).To(Equal(uint32(0x12345000)))
		})
	})

	Describe("I-type arithmetic", func() {
		It("decodes ADDI x1, x0, -1 with a fully sign-extended immediate", func() {
			inst, err := insts.Decode(0xFFF00093)
			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpADDI))
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Rs1).To(Equal(uint8(0)))
			Expect(int32(inst.Imm)).To(Equal(int32(-1)))
		})
	})

	Describe("I-type shift", func() {
		It("decodes SRAI x18, x18, 3", func() {
			inst, err := insts.Decode(0x40395913)
			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpSRAI))
			Expect(inst.Rd).To(Equal(uint8(18)))
			Expect(inst.Rs1).To(Equal(uint8(18)))
			Expect(inst.Shamt).To(Equal(uint8(3)))
		})

		It("rejects SLLI with a nonzero upper funct7", func() {
			_, err := insts.Decode(0x40511093) // SLLI x1,x2,5 with funct7 forced to 0100000
			Expect(err).To(MatchError(insts.ErrIllegalInstruction))
		})
	})

	Describe("S-type", func() {
		It("decodes SW x5, 12(x6)", func() {
			inst, err := insts.Decode(0x00532623)
			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpSW))
			Expect(inst.Rs1).To(Equal(uint8(6)))
			Expect(inst.Rs2).To(Equal(uint8(5)))
			Expect(int32(inst.Imm)).To(Equal(int32(12)))
		})
	})

	Describe("B-type", func() {
		It("decodes a negative branch immediate with the low bit forced to zero", func() {
			// BEQ x1, x2, -8
			inst, err := insts.Decode(0xFE208CE3)
			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpBEQ))
			Expect(int32(inst.Imm)).To(Equal(int32(-8)))
			Expect(inst.Imm & 1).To(Equal(uint32(0)))
		})
	})

	Describe("J-type", func() {
		It("decodes JAL with a 21-bit signed, 2-byte-aligned immediate", func() {
			// JAL x1, 0x100
			inst, err := insts.Decode(0x100000ef)
			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpJAL))
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(int32(inst.Imm)).To(Equal(int32(0x100)))
		})
	})

	Describe("R-type", func() {
		It("requires funct7=0100000 for SUB", func() {
			inst, err := insts.Decode(0x40110133) // SUB x2, x2, x1
			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpSUB))
		})

		It("rejects ADD/SUB with any other funct7", func() {
			_, err := insts.Decode(0x00210133 | (1 << 25)) // garbage funct7
			Expect(err).To(HaveOccurred())
		})

		It("decodes AND with funct7=0", func() {
			inst, err := insts.Decode(0x0020f0b3) // AND x1, x1, x2
			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpAND))
		})
	})

	Describe("illegal cases", func() {
		It("rejects an unknown opcode", func() {
			_, err := insts.Decode(0x0000007F)
			Expect(err).To(MatchError(insts.ErrIllegalInstruction))
		})

		It("rejects JALR with a nonzero funct3", func() {
			_, err := insts.Decode(0x000010e7) // JALR with funct3=1
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("immediate round-trip", func() {
		// Re-encoding the decoded immediate back into the field layout it
		// came from must reproduce the original word's immediate bits.
		It("round-trips an I-type immediate", func() {
			w := uint32(0xFFF00093) // ADDI x1, x0, -1
			inst, err := insts.Decode(w)
			Expect(err).NotTo(HaveOccurred())
			reencoded := (inst.Imm & 0xFFF) << 20
			Expect(reencoded & 0xFFF00000).To(Equal(w & 0xFFF00000))
		})

		It("round-trips a B-type immediate", func() {
			w := uint32(0xFE208CE3)
			inst, err := insts.Decode(w)
			Expect(err).NotTo(HaveOccurred())
			imm := inst.Imm
			bit12 := (imm >> 12) & 1
			bit11 := (imm >> 11) & 1
			bits10_5 := (imm >> 5) & 0x3F
			bits4_1 := (imm >> 1) & 0xF
			reencoded := (bit12 << 31) | (bits10_5 << 25) | (bits4_1 << 8) | (bit11 << 7)
			Expect(reencoded).To(Equal(w & 0xFE000F80))
		})

		It("round-trips a J-type immediate", func() {
			w := uint32(0x100000ef)
			inst, err := insts.Decode(w)
			Expect(err).NotTo(HaveOccurred())
			imm := inst.Imm
			bit20 := (imm >> 20) & 1
			bits19_12 := (imm >> 12) & 0xFF
			bit11 := (imm >> 11) & 1
			bits10_1 := (imm >> 1) & 0x3FF
			reencoded := (bit20 << 31) | (bits10_1 << 21) | (bit11 << 20) | (bits19_12 << 12)
			Expect(reencoded).To(Equal(w & 0xFFFFF000))
		})

		It("round-trips a U-type immediate", func() {
			w := uint32(0xDEADB2B7)
			inst, err := insts.Decode(w)
			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Imm & 0xFFFFF000).To(Equal(w & 0xFFFFF000))
		})

		It("round-trips an S-type immediate", func() {
			w := uint32(0x00532623) // SW x5, 12(x6)
			inst, err := insts.Decode(w)
			Expect(err).NotTo(HaveOccurred())
			imm := inst.Imm
			hi := (imm >> 5) & 0x7F
			lo := imm & 0x1F
			reencoded := (hi << 25) | (lo << 7)
			Expect(reencoded).To(Equal(w & 0xFE000F80))
		})
	})
})
