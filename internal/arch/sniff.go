package arch

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
)

const (
	efCrisVariantAnyV0V10     = 0x0000_0000
	efCrisVariantV32          = 0x0000_0002
	efCrisVariantCommonV10V32 = 0x0000_0004

	efMipsArch     = 0xf000_0000
	efMipsArch32R2 = 0x7000_0000

	efArmABIFloatHard = 0x0000_0400

	armAttributesSection = ".ARM.attributes"
	tagFile              = 1
	tagCPUArch           = 6
)

// Tag_CPU_arch values we map.
const (
	cpuArchV5T   = 3
	cpuArchV5TE  = 4
	cpuArchV5TEJ = 5
	cpuArchV6    = 6
	cpuArchV7    = 10
)

// Sniff inspects an ELF executable and reports the architecture it was built
// for. Anything that is not a recognizable ELF file for a known architecture
// yields ("", false); malformed input never panics.
func Sniff(executable []byte) (a Architecture, ok bool) {
	// debug/elf is not hardened against every crafted input.
	defer func() {
		if r := recover(); r != nil {
			a, ok = "", false
		}
	}()

	f, err := elf.NewFile(bytes.NewReader(executable))
	if err != nil {
		return "", false
	}
	defer f.Close()

	flags, found := headerFlags(f, executable)
	if !found {
		return "", false
	}

	switch f.Machine {
	case elf.EM_AARCH64:
		return Aarch64, true

	case elf.EM_CRIS:
		switch flags {
		case efCrisVariantV32:
			return CrisV32, true
		case efCrisVariantAnyV0V10, efCrisVariantCommonV10V32:
			return CrisV0, true
		}
		return "", false

	case elf.EM_MIPS:
		if f.Data == elf.ELFDATA2LSB && flags&efMipsArch == efMipsArch32R2 {
			return Mips, true
		}
		return "", false

	case elf.EM_ARM:
		if f.Data != elf.ELFDATA2LSB {
			return "", false
		}
		// Only ARMv7-HF ships hard-float userspace.
		if flags&efArmABIFloatHard != 0 {
			return Armv7hf, true
		}
		return sniffARMAttributes(f)
	}

	return "", false
}

// headerFlags reads e_flags, which debug/elf does not expose.
func headerFlags(f *elf.File, raw []byte) (uint32, bool) {
	off := 36
	if f.Class == elf.ELFCLASS64 {
		off = 48
	}
	if len(raw) < off+4 {
		return 0, false
	}
	return f.ByteOrder.Uint32(raw[off : off+4]), true
}

func sniffARMAttributes(f *elf.File) (Architecture, bool) {
	sec := f.Section(armAttributesSection)
	if sec == nil {
		return "", false
	}
	data, err := sec.Data()
	if err != nil {
		return "", false
	}

	cpuArch, ok := armCPUArch(data, f.ByteOrder)
	if !ok {
		return "", false
	}
	switch cpuArch {
	case cpuArchV5T, cpuArchV5TE, cpuArchV5TEJ:
		return Armv5tej, true
	case cpuArchV6:
		return Armv6, true
	case cpuArchV7:
		return Armv7, true
	}
	return "", false
}

// armCPUArch extracts Tag_CPU_arch from the file-scope attributes of the
// "aeabi" vendor subsection of a .ARM.attributes section.
func armCPUArch(data []byte, order binary.ByteOrder) (uint64, bool) {
	if len(data) < 1 || data[0] != 'A' {
		return 0, false
	}
	data = data[1:]

	for len(data) >= 4 {
		length := int(order.Uint32(data))
		if length < 4 || length > len(data) {
			return 0, false
		}
		sub := data[4:length]
		data = data[length:]

		vendor, rest, ok := readNTBS(sub)
		if !ok {
			return 0, false
		}
		if vendor != "aeabi" {
			continue
		}

		for len(rest) > 0 {
			tag, n := binary.Uvarint(rest)
			if n <= 0 || len(rest) < n+4 {
				return 0, false
			}
			size := int(order.Uint32(rest[n:]))
			if size < n+4 || size > len(rest) {
				return 0, false
			}
			attrs := rest[n+4 : size]
			rest = rest[size:]

			if tag != tagFile {
				continue
			}
			if v, ok := findULEBAttribute(attrs, tagCPUArch); ok {
				return v, true
			}
		}
	}
	return 0, false
}

// findULEBAttribute walks a tag/value list and returns the value of want.
func findULEBAttribute(attrs []byte, want uint64) (uint64, bool) {
	for len(attrs) > 0 {
		tag, n := binary.Uvarint(attrs)
		if n <= 0 {
			return 0, false
		}
		attrs = attrs[n:]

		var ok bool
		switch {
		case tag == 4 || tag == 5 || tag == 67:
			_, attrs, ok = readNTBS(attrs)
		case tag == 32:
			if _, n := binary.Uvarint(attrs); n > 0 {
				_, attrs, ok = readNTBS(attrs[n:])
			}
		case tag > 32 && tag%2 == 1:
			_, attrs, ok = readNTBS(attrs)
		default:
			var v uint64
			v, n = binary.Uvarint(attrs)
			if n <= 0 {
				return 0, false
			}
			attrs = attrs[n:]
			if tag == want {
				return v, true
			}
			ok = true
		}
		if !ok {
			return 0, false
		}
	}
	return 0, false
}

func readNTBS(b []byte) (string, []byte, bool) {
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		return "", nil, false
	}
	return string(b[:i]), b[i+1:], true
}
