package models

const (
	KiB = 1024
	MiB = KiB * KiB
)

// RomType identifies the ECU processor family, derived from image size.
type RomType int

const (
	RomUnknown RomType = iota
	// SH7055 images are 512 KiB.
	SH7055
	// SH7058 images are 1 MiB.
	SH7058
	// SH7059 images are 1.5 MiB.
	SH7059
	// SH72531 images are 1.25 MiB.
	SH72531
	// SH72543R images are 2 MiB.
	SH72543R
)

// DetectRomType guesses the processor family from the image size only.
func DetectRomType(size int) RomType {
	switch size {
	case 512 * KiB:
		return SH7055
	case 1 * MiB:
		return SH7058
	case (1024 + 512) * KiB:
		return SH7059
	case 1280 * KiB:
		return SH72531
	case 2 * MiB:
		return SH72543R
	default:
		return RomUnknown
	}
}

func (r RomType) String() string {
	switch r {
	case SH7055:
		return "SH7055"
	case SH7058:
		return "SH7058"
	case SH7059:
		return "SH7059"
	case SH72531:
		return "SH72531"
	case SH72543R:
		return "SH72543R"
	default:
		return "Unknown"
	}
}
