package csr_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/udbcsr/csr"
)

var _ = Describe("ParseRange", func() {
	Describe("scalar encodings", func() {
		It("should normalize a single integer to a one-bit range", func() {
			r, err := csr.ParseRange(7)
			Expect(err).ToNot(HaveOccurred())
			Expect(r).To(Equal(csr.BitRange{High: 7, Low: 7}))
		})

		It("should accept the integer types the decoders produce", func() {
			for _, raw := range []any{int64(7), uint64(7), float64(7)} {
				r, err := csr.ParseRange(raw)
				Expect(err).ToNot(HaveOccurred())
				Expect(r).To(Equal(csr.BitRange{High: 7, Low: 7}))
			}
		})

		It("should reject a non-integral float", func() {
			_, err := csr.ParseRange(7.5)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("sequence encodings", func() {
		It("should order a descending pair", func() {
			r, err := csr.ParseRange([]any{31, 12})
			Expect(err).ToNot(HaveOccurred())
			Expect(r).To(Equal(csr.BitRange{High: 31, Low: 12}))
		})

		It("should order an ascending pair", func() {
			r, err := csr.ParseRange([]any{5, 7})
			Expect(err).ToNot(HaveOccurred())
			Expect(r).To(Equal(csr.BitRange{High: 7, Low: 5}))
		})

		It("should use the first two elements of a longer sequence", func() {
			r, err := csr.ParseRange([]any{3, 9, 100})
			Expect(err).ToNot(HaveOccurred())
			Expect(r).To(Equal(csr.BitRange{High: 9, Low: 3}))
		})

		It("should reject a sequence with non-integer elements", func() {
			_, err := csr.ParseRange([]any{"a", "b"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("keyed-pair encodings", func() {
		It("should accept msb/lsb keys", func() {
			r, err := csr.ParseRange(map[string]any{"msb": 31, "lsb": 12})
			Expect(err).ToNot(HaveOccurred())
			Expect(r).To(Equal(csr.BitRange{High: 31, Low: 12}))
		})

		It("should accept hi/lo keys", func() {
			r, err := csr.ParseRange(map[string]any{"hi": 7, "lo": 5})
			Expect(err).ToNot(HaveOccurred())
			Expect(r).To(Equal(csr.BitRange{High: 7, Low: 5}))
		})

		It("should accept from/to keys and reorder them", func() {
			r, err := csr.ParseRange(map[string]any{"from": 12, "to": 31})
			Expect(err).ToNot(HaveOccurred())
			Expect(r).To(Equal(csr.BitRange{High: 31, Low: 12}))
		})

		It("should prefer msb over later high keys", func() {
			r, err := csr.ParseRange(map[string]any{"msb": 9, "high": 3, "lsb": 1})
			Expect(err).ToNot(HaveOccurred())
			Expect(r).To(Equal(csr.BitRange{High: 9, Low: 1}))
		})

		It("should fail when only one side is present", func() {
			_, err := csr.ParseRange(map[string]any{"msb": 9})
			Expect(err).To(HaveOccurred())
		})

		It("should accept interface-keyed mappings", func() {
			r, err := csr.ParseRange(map[any]any{"hi": 7, "lo": 5})
			Expect(err).ToNot(HaveOccurred())
			Expect(r).To(Equal(csr.BitRange{High: 7, Low: 5}))
		})
	})

	Describe("text encodings", func() {
		It("should parse dot-dot delimited text", func() {
			r, err := csr.ParseRange("31..12")
			Expect(err).ToNot(HaveOccurred())
			Expect(r).To(Equal(csr.BitRange{High: 31, Low: 12}))
		})

		It("should parse colon delimited text", func() {
			r, err := csr.ParseRange("31:12")
			Expect(err).ToNot(HaveOccurred())
			Expect(r).To(Equal(csr.BitRange{High: 31, Low: 12}))
		})

		It("should parse dash delimited text", func() {
			r, err := csr.ParseRange("33-32")
			Expect(err).ToNot(HaveOccurred())
			Expect(r).To(Equal(csr.BitRange{High: 33, Low: 32}))
		})

		It("should tolerate whitespace around the delimiter", func() {
			r, err := csr.ParseRange(" 31 .. 12 ")
			Expect(err).ToNot(HaveOccurred())
			Expect(r).To(Equal(csr.BitRange{High: 31, Low: 12}))
		})

		It("should reorder ascending delimited text", func() {
			r, err := csr.ParseRange("12..31")
			Expect(err).ToNot(HaveOccurred())
			Expect(r).To(Equal(csr.BitRange{High: 31, Low: 12}))
		})

		It("should parse single-integer text", func() {
			r, err := csr.ParseRange("7")
			Expect(err).ToNot(HaveOccurred())
			Expect(r).To(Equal(csr.BitRange{High: 7, Low: 7}))
		})
	})

	Describe("equivalent encodings", func() {
		It("should normalize string, mapping and sequence forms identically", func() {
			want := csr.BitRange{High: 7, Low: 5}
			for _, raw := range []any{
				"7..5",
				map[string]any{"hi": 7, "lo": 5},
				[]any{5, 7},
			} {
				r, err := csr.ParseRange(raw)
				Expect(err).ToNot(HaveOccurred())
				Expect(r).To(Equal(want))
			}
		})
	})

	Describe("idempotence", func() {
		It("should return an already-canonical range unchanged", func() {
			r1, err := csr.ParseRange("31..12")
			Expect(err).ToNot(HaveOccurred())

			r2, err := csr.ParseRange(r1)
			Expect(err).ToNot(HaveOccurred())
			Expect(r2).To(Equal(r1))
		})

		It("should return stable results across repeated calls", func() {
			for i := 0; i < 3; i++ {
				r, err := csr.ParseRange([]any{31, 12})
				Expect(err).ToNot(HaveOccurred())
				Expect(r).To(Equal(csr.BitRange{High: 31, Low: 12}))
			}
		})
	})

	Describe("malformed specs", func() {
		It("should fail on arbitrary text with the raw value attached", func() {
			_, err := csr.ParseRange("abc")
			Expect(err).To(HaveOccurred())

			var malformed *csr.MalformedRangeError
			Expect(err).To(BeAssignableToTypeOf(malformed))
			Expect(err.(*csr.MalformedRangeError).Raw).To(Equal("abc"))
		})

		It("should fail on nil", func() {
			_, err := csr.ParseRange(nil)
			Expect(err).To(HaveOccurred())
		})

		It("should fail on an unrecognized mapping", func() {
			_, err := csr.ParseRange(map[string]any{"start": 1, "end": 2})
			Expect(err).To(HaveOccurred())
		})
	})
})
