package j1939

// LampStatus is the four active-fault lamps carried in the first two
// bytes of a DM1 payload (spec.md §3, §4.3).
type LampStatus struct {
	Protect    bool
	AmberWarn  bool
	RedStop    bool
	Malfunction bool
}

// DTC is a single diagnostic trouble code record (spec.md §3).
type DTC struct {
	SPN              uint32
	FMI              byte
	OccurrenceCount  byte
	ConversionMethod byte
	SourceAddr       byte
}

// ParseDM1 unpacks lamp status and a variable-length sequence of DTC
// records from a DM1 payload into dst, returning the slice actually
// written (len(dst) bounds the number of records extracted). A record
// with spn==0 && fmi==0 encodes "no active faults" and is skipped, not
// emitted.
func ParseDM1(data []byte, sa byte, dst []DTC) (LampStatus, []DTC) {
	var lamps LampStatus
	if len(data) < 2 {
		return lamps, dst[:0]
	}

	lamps = LampStatus{
		Protect:     data[0]&(1<<2) != 0,
		AmberWarn:   data[0]&(1<<4) != 0,
		RedStop:     data[1]&(1<<2) != 0,
		Malfunction: data[1]&(1<<4) != 0,
	}

	n := 0
	for offset := 2; offset+4 <= len(data) && n < len(dst); offset += 4 {
		b0, b1, b2, b3 := data[offset], data[offset+1], data[offset+2], data[offset+3]
		spn := uint32(b0) | uint32(b1)<<8 | uint32(b2&0xE0)<<11
		fmi := b2 & 0x1F
		if spn == 0 && fmi == 0 {
			continue
		}
		dst[n] = DTC{
			SPN:              spn,
			FMI:              fmi,
			OccurrenceCount:  b3 & 0x7F,
			ConversionMethod: (b3 >> 7) & 1,
			SourceAddr:       sa,
		}
		n++
	}
	return lamps, dst[:n]
}

// EncodeDTC packs a single DTC record into its 4-byte wire form, the
// inverse of the per-record decode in ParseDM1.
func EncodeDTC(d DTC) [4]byte {
	var b [4]byte
	b[0] = byte(d.SPN)
	b[1] = byte(d.SPN >> 8)
	b[2] = byte((d.SPN>>16)&0x7)<<5 | d.FMI&0x1F
	b[3] = (d.ConversionMethod&1)<<7 | d.OccurrenceCount&0x7F
	return b
}
