package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32sim/emu"
)

var _ = Describe("BranchCond", func() {
	DescribeTable("Taken",
		func(cond emu.BranchCond, a, b uint32, want bool) {
			Expect(cond.Taken(a, b)).To(Equal(want))
		},
		Entry("EQ, equal", emu.CondEQ, uint32(5), uint32(5), true),
		Entry("EQ, unequal", emu.CondEQ, uint32(5), uint32(6), false),
		Entry("NE, unequal", emu.CondNE, uint32(5), uint32(6), true),
		Entry("NE, equal", emu.CondNE, uint32(5), uint32(5), false),
		Entry("LT, signed, negative less than positive", emu.CondLT, uint32(0xFFFFFFFF), uint32(1), true),
		Entry("LT, signed, positive not less than negative", emu.CondLT, uint32(1), uint32(0xFFFFFFFF), false),
		Entry("GE, signed, equal counts as GE", emu.CondGE, uint32(3), uint32(3), true),
		Entry("LTU, unsigned, treats 0xFFFFFFFF as huge", emu.CondLTU, uint32(0xFFFFFFFF), uint32(1), false),
		Entry("GEU, unsigned, 0xFFFFFFFF is GE 1", emu.CondGEU, uint32(0xFFFFFFFF), uint32(1), true),
	)
})

var _ = Describe("BranchUnit", func() {
	var bu *emu.BranchUnit

	BeforeEach(func() {
		bu = emu.NewBranchUnit()
	})

	Describe("Branch", func() {
		It("returns pc+imm when the condition is taken", func() {
			next := bu.Branch(emu.CondEQ, 0x1000, 5, 5, 100)
			Expect(next).To(Equal(uint32(0x1000 + 100)))
		})

		It("returns pc+4 when the condition is not taken", func() {
			next := bu.Branch(emu.CondEQ, 0x1000, 5, 6, 100)
			Expect(next).To(Equal(uint32(0x1000 + 4)))
		})

		It("supports backward offsets via two's-complement imm", func() {
			next := bu.Branch(emu.CondNE, 0x1000, 5, 6, uint32(int32(-100)))
			Expect(next).To(Equal(uint32(0x1000 - 100)))
		})
	})

	Describe("JAL", func() {
		It("returns the link address and the jump target", func() {
			link, next := bu.JAL(0x1000, 0x100)
			Expect(link).To(Equal(uint32(0x1004)))
			Expect(next).To(Equal(uint32(0x1100)))
		})

		It("supports a negative offset", func() {
			link, next := bu.JAL(0x1000, uint32(int32(-0x100)))
			Expect(link).To(Equal(uint32(0x1004)))
			Expect(next).To(Equal(uint32(0xF00)))
		})
	})

	Describe("JALR", func() {
		It("computes the target from rs1+imm with bit 0 cleared", func() {
			link, next := bu.JALR(0x1000, 0x2001, 4)
			Expect(link).To(Equal(uint32(0x1004)))
			Expect(next).To(Equal(uint32(0x2004)))
		})

		It("masks off the low bit when an odd imm makes rs1+imm odd", func() {
			_, next := bu.JALR(0x1000, 0x2000, 3)
			Expect(next).To(Equal(uint32(0x2002)))
		})
	})
})
