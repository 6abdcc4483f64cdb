package format

type (
	Strategy        uint8
	CompressionType uint8
)

const (
	StrategyInvalid  Strategy = 0x0  // StrategyInvalid marks an unresolved type.
	StrategyCustom   Strategy = 0x1  // StrategyCustom represents a registered per-type codec.
	StrategyTrivial  Strategy = 0x2  // StrategyTrivial represents fixed-width scalars.
	StrategyRecord   Strategy = 0x3  // StrategyRecord represents field-by-field struct encoding.
	StrategySequence Strategy = 0x4  // StrategySequence represents slices and arrays.
	StrategyMap      Strategy = 0x5  // StrategyMap represents maps and sets.
	StrategyText     Strategy = 0x6  // StrategyText represents length-prefixed strings and byte slices.
	StrategyBits     Strategy = 0x7  // StrategyBits represents bit-packed boolean collections.
	StrategyOptional Strategy = 0x8  // StrategyOptional represents pointers and Optional values.
	StrategyUnion    Strategy = 0x9  // StrategyUnion represents registered tagged unions.
	StrategyTemporal Strategy = 0xA  // StrategyTemporal represents durations and instants.
	StrategyPath     Strategy = 0xB  // StrategyPath represents filesystem paths encoded as text.
	StrategyBinary   Strategy = 0xC  // StrategyBinary represents encoding.BinaryMarshaler adapters.
	StrategyTextual  Strategy = 0xD  // StrategyTextual represents encoding.TextMarshaler adapters.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (s Strategy) String() string {
	switch s {
	case StrategyCustom:
		return "Custom"
	case StrategyTrivial:
		return "Trivial"
	case StrategyRecord:
		return "Record"
	case StrategySequence:
		return "Sequence"
	case StrategyMap:
		return "Map"
	case StrategyText:
		return "Text"
	case StrategyBits:
		return "Bits"
	case StrategyOptional:
		return "Optional"
	case StrategyUnion:
		return "Union"
	case StrategyTemporal:
		return "Temporal"
	case StrategyPath:
		return "Path"
	case StrategyBinary:
		return "BinaryMarshaler"
	case StrategyTextual:
		return "TextMarshaler"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
