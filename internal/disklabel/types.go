package disklabel

import (
	"fmt"

	"github.com/diskfs/go-diskfs/partition/gpt"
)

// PartType is a GPT partition type: its gdisk-style hex code, type GUID and
// descriptive name.
type PartType struct {
	Code uint16
	GUID gpt.Type
	Name string
}

func (p PartType) String() string {
	return fmt.Sprintf("%04X %s", p.Code, p.Name)
}

var (
	TypeBasicData     = PartType{0x0700, gpt.MicrosoftBasicData, "Microsoft basic data"}
	TypeFreeBSDBoot   = PartType{0xa501, gpt.Type("83BD6B9D-7F41-11DC-BE0B-001560B84F0F"), "FreeBSD boot"}
	TypeFreeBSDSwap   = PartType{0xa502, gpt.Type("516E7CB5-6ECF-11D6-8FF8-00022D09712B"), "FreeBSD swap"}
	TypeFreeBSDUFS    = PartType{0xa503, gpt.Type("516E7CB6-6ECF-11D6-8FF8-00022D09712B"), "FreeBSD UFS"}
	TypeFreeBSDZFS    = PartType{0xa504, gpt.Type("516E7CBA-6ECF-11D6-8FF8-00022D09712B"), "FreeBSD ZFS"}
	TypeFreeBSDVinum  = PartType{0xa505, gpt.Type("516E7CB8-6ECF-11D6-8FF8-00022D09712B"), "FreeBSD Vinum/RAID"}
	TypeNetBSDLFS     = PartType{0xa903, gpt.Type("49F48D82-B10E-11DC-B99B-0019D1879648"), "NetBSD LFS"}
	TypeLinuxFS       = PartType{0x8300, gpt.LinuxFilesystem, "Linux filesystem"}
	TypeLinuxSwap     = PartType{0x8200, gpt.LinuxSwap, "Linux swap"}
	TypeFreeBSDLabel  = PartType{0xa500, gpt.Type("516E7CB4-6ECF-11D6-8FF8-00022D09712B"), "FreeBSD disklabel"}
	TypeNetBSDSwap    = PartType{0xa901, gpt.Type("49F48D32-B10E-11DC-B99B-0019D1879648"), "NetBSD swap"}
	TypeNetBSDFFS     = PartType{0xa902, gpt.Type("49F48D5A-B10E-11DC-B99B-0019D1879648"), "NetBSD FFS"}
	TypeNetBSDRAID    = PartType{0xa906, gpt.Type("49F48DAA-B10E-11DC-B99B-0019D1879648"), "NetBSD RAID"}
	TypeOpenBSDLabel  = PartType{0xa600, gpt.Type("824CC7A0-36A8-11E3-890A-952519AD3F61"), "OpenBSD disklabel"}
	TypeEFISystem     = PartType{0xef00, gpt.EFISystemPartition, "EFI system partition"}
	TypeMicrosoftResv = PartType{0x0c01, gpt.MicrosoftReserved, "Microsoft reserved"}
)

// legacyTypes maps disklabel fs types to GPT types. Order matters: the
// first entry listing a code wins; codes not listed get TypeBasicData.
var legacyTypes = []struct {
	codes []uint8
	typ   PartType
}{
	{[]uint8{1}, TypeFreeBSDSwap},
	{[]uint8{7}, TypeFreeBSDUFS},
	{[]uint8{8, 11}, TypeBasicData},
	{[]uint8{9}, TypeNetBSDLFS},
	{[]uint8{13}, TypeFreeBSDBoot},
	{[]uint8{14}, TypeFreeBSDVinum},
	{[]uint8{15}, TypeNetBSDLFS},
	{[]uint8{27}, TypeFreeBSDZFS},
}

// MapType returns the GPT type for a disklabel fs type code.
func MapType(code uint8) PartType {
	for _, m := range legacyTypes {
		for _, c := range m.codes {
			if c == code {
				return m.typ
			}
		}
	}
	return TypeBasicData
}

var knownTypes = []PartType{
	TypeBasicData, TypeMicrosoftResv, TypeLinuxSwap, TypeLinuxFS,
	TypeFreeBSDLabel, TypeFreeBSDBoot, TypeFreeBSDSwap, TypeFreeBSDUFS,
	TypeFreeBSDZFS, TypeFreeBSDVinum, TypeOpenBSDLabel,
	TypeNetBSDSwap, TypeNetBSDFFS, TypeNetBSDLFS, TypeNetBSDRAID,
	TypeEFISystem,
}

// TypeByCode looks up a GPT type by its hex code.
func TypeByCode(code uint16) (PartType, bool) {
	for _, t := range knownTypes {
		if t.Code == code {
			return t, true
		}
	}
	return PartType{}, false
}

// KnownTypes returns the GPT types TypeByCode resolves, in code order as listed.
func KnownTypes() []PartType {
	out := make([]PartType, len(knownTypes))
	copy(out, knownTypes)
	return out
}

// fs type names from BSD <sys/disklabel.h> / dtype.h
var fsTypeNames = map[uint8]string{
	0:  "unused",
	1:  "swap",
	2:  "Version 6",
	3:  "Version 7",
	4:  "System V",
	5:  "4.1BSD",
	6:  "Eighth Edition",
	7:  "4.2BSD",
	8:  "MSDOS",
	9:  "4.4LFS",
	10: "unknown",
	11: "HPFS",
	12: "ISO9660",
	13: "boot",
	14: "vinum",
	15: "raid",
	16: "Filecore",
	17: "EXT2FS",
	18: "NTFS",
	20: "ccd",
	21: "jfs2",
	22: "Apple UFS",
	23: "hammer",
	24: "hammer2",
	25: "UDF",
	27: "ZFS",
}

// FSTypeName names a disklabel fs type code.
func FSTypeName(code uint8) string {
	if n, ok := fsTypeNames[code]; ok {
		return n
	}
	return fmt.Sprintf("type %d", code)
}
