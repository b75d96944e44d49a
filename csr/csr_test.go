package csr_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/udbcsr/csr"
)

var _ = Describe("BitRange", func() {
	It("should derive width as high - low + 1", func() {
		Expect(csr.BitRange{High: 7, Low: 7}.Width()).To(Equal(1))
		Expect(csr.BitRange{High: 6, Low: 5}.Width()).To(Equal(2))
		Expect(csr.BitRange{High: 63, Low: 0}.Width()).To(Equal(64))
	})

	It("should build a contiguous mask positioned at the low bit", func() {
		Expect(csr.BitRange{High: 7, Low: 7}.Mask()).To(Equal(uint64(0x80)))
		Expect(csr.BitRange{High: 6, Low: 5}.Mask()).To(Equal(uint64(0x60)))
		Expect(csr.BitRange{High: 4, Low: 0}.Mask()).To(Equal(uint64(0x1F)))
	})

	It("should saturate a full-width mask without overflow", func() {
		Expect(csr.BitRange{High: 63, Low: 0}.Mask()).To(Equal(^uint64(0)))
	})

	It("should hold the width/mask invariant for arbitrary ranges", func() {
		for high := 0; high < 64; high += 7 {
			for low := 0; low <= high; low += 5 {
				r := csr.BitRange{High: high, Low: low}
				mask := r.Mask()

				// The mask has exactly Width contiguous one-bits and its
				// lowest set bit is at position Low.
				Expect(mask >> uint(low) << uint(low)).To(Equal(mask))
				ones := 0
				for m := mask >> uint(low); m != 0; m >>= 1 {
					Expect(m & 1).To(Equal(uint64(1)))
					ones++
				}
				Expect(ones).To(Equal(r.Width()))
			}
		}
	})
})

var _ = Describe("Field", func() {
	var field *csr.Field

	BeforeEach(func() {
		field = &csr.Field{
			Name: "MODE",
			Bits: csr.BitRange{High: 6, Low: 5},
		}
	})

	It("should report mask intersections", func() {
		Expect(field.ContainsAny(0x20)).To(BeTrue())
		Expect(field.ContainsAny(0x80)).To(BeFalse())
	})

	It("should restrict an XOR mask to its own bits", func() {
		Expect(field.ChangedBits(0xFF)).To(Equal(uint64(0x60)))
		Expect(field.ChangedBits(0x9F)).To(Equal(uint64(0)))
	})

	Describe("SetAccessIfUnset", func() {
		It("should set the access type on the first write", func() {
			wrote := field.SetAccessIfUnset(csr.AccessWARL, []int{0, 1})

			Expect(wrote).To(BeTrue())
			Expect(field.Access).To(Equal(csr.AccessWARL))
			Expect(field.Legal).To(Equal([]int{0, 1}))
		})

		It("should never overwrite an already-set access type", func() {
			field.SetAccessIfUnset(csr.AccessWARL, []int{0, 1})
			wrote := field.SetAccessIfUnset(csr.AccessWPRI, nil)

			Expect(wrote).To(BeFalse())
			Expect(field.Access).To(Equal(csr.AccessWARL))
			Expect(field.Legal).To(Equal([]int{0, 1}))
		})
	})
})

var _ = Describe("AccessType", func() {
	It("should render the lowercase schema tokens", func() {
		Expect(csr.AccessWARL.String()).To(Equal("warl"))
		Expect(csr.AccessWLRL.String()).To(Equal("wlrl"))
		Expect(csr.AccessWPRI.String()).To(Equal("wpri"))
		Expect(csr.AccessWIRI.String()).To(Equal("wiri"))
		Expect(csr.AccessROConstant.String()).To(Equal("ro_constant"))
		Expect(csr.AccessROVariable.String()).To(Equal("ro_variable"))
		Expect(csr.AccessUnset.String()).To(Equal(""))
	})
})

var _ = Describe("Definition", func() {
	It("should default to 64-bit length", func() {
		def := csr.NewDefinition("mstatus")
		Expect(def.Length).To(Equal(64))
	})

	It("should keep fields in insertion order", func() {
		def := csr.NewDefinition("demo")
		def.AddField(&csr.Field{Name: "CNT", Bits: csr.BitRange{High: 4, Low: 0}})
		def.AddField(&csr.Field{Name: "EN", Bits: csr.BitRange{High: 7, Low: 7}})

		Expect(def.Fields).To(HaveLen(2))
		Expect(def.Fields[0].Name).To(Equal("CNT"))
		Expect(def.Fields[1].Name).To(Equal("EN"))
	})

	It("should look up fields case-insensitively", func() {
		def := csr.NewDefinition("demo")
		def.AddField(&csr.Field{Name: "MODE", Bits: csr.BitRange{High: 6, Low: 5}})

		Expect(def.Field("MODE")).ToNot(BeNil())
		Expect(def.Field("mode")).ToNot(BeNil())
		Expect(def.Field("missing")).To(BeNil())
	})
})

var _ = Describe("Table", func() {
	var table *csr.Table

	BeforeEach(func() {
		table = csr.NewTable()
		table.Put(csr.NewDefinition("mstatus"))
		table.Put(csr.NewDefinition("SSTATUS"))
	})

	It("should prefer exact-case matches", func() {
		def, ok := table.Get("mstatus")
		Expect(ok).To(BeTrue())
		Expect(def.Name).To(Equal("mstatus"))
	})

	It("should fall back to case-insensitive matches", func() {
		def, ok := table.Get("sstatus")
		Expect(ok).To(BeTrue())
		Expect(def.Name).To(Equal("SSTATUS"))
	})

	It("should report missing registers as an absent result", func() {
		_, ok := table.Get("nosuchcsr")
		Expect(ok).To(BeFalse())
	})

	It("should let the last write win on a name collision", func() {
		replacement := csr.NewDefinition("mstatus")
		replacement.LongName = "Machine Status (v2)"
		table.Put(replacement)

		def, _ := table.Get("mstatus")
		Expect(def.LongName).To(Equal("Machine Status (v2)"))
		Expect(table.Len()).To(Equal(2))
	})

	It("should list names in sorted order", func() {
		Expect(table.Names()).To(Equal([]string{"SSTATUS", "mstatus"}))
	})
})
