// Package biff frames BIFF8 records and decodes the record types needed to
// rebuild worksheet cells.
package biff

import "fmt"

// BIFF record type constants
const (
	XL_FORMULA               = 0x0006
	XL_EOF                   = 0x000A
	XL_CALCCOUNT             = 0x000C
	XL_CALCMODE              = 0x000D
	XL_PRECISION             = 0x000E
	XL_REFMODE               = 0x000F
	XL_DELTA                 = 0x0010
	XL_ITERATION             = 0x0011
	XL_PROTECT               = 0x0012
	XL_PASSWORD              = 0x0013
	XL_HEADER                = 0x0014
	XL_FOOTER                = 0x0015
	XL_EXTERNSHEET           = 0x0017
	XL_NAME                  = 0x0018
	XL_WINDOWPROTECT         = 0x0019
	XL_VERTICALPAGEBREAKS    = 0x001A
	XL_HORIZONTALPAGEBREAKS  = 0x001B
	XL_NOTE                  = 0x001C
	XL_SELECTION             = 0x001D
	XL_DATEMODE              = 0x0022
	XL_EXTERNNAME            = 0x0023
	XL_LEFTMARGIN            = 0x0026
	XL_RIGHTMARGIN           = 0x0027
	XL_TOPMARGIN             = 0x0028
	XL_BOTTOMMARGIN          = 0x0029
	XL_PRINTHEADERS          = 0x002A
	XL_PRINTGRIDLINES        = 0x002B
	XL_FILEPASS              = 0x002F
	XL_FONT                  = 0x0031
	XL_CONTINUE              = 0x003C
	XL_WINDOW1               = 0x003D
	XL_BACKUP                = 0x0040
	XL_PANE                  = 0x0041
	XL_CODEPAGE              = 0x0042
	XL_DEFCOLWIDTH           = 0x0055
	XL_WRITEACCESS           = 0x005C
	XL_OBJ                   = 0x005D
	XL_UNCALCED              = 0x005E
	XL_SAVERECALC            = 0x005F
	XL_TEMPLATE              = 0x0060
	XL_OBJPROTECT            = 0x0063
	XL_COLINFO               = 0x007D
	XL_RK                    = 0x007E
	XL_GUTS                  = 0x0080
	XL_SHEETPR               = 0x0081
	XL_GRIDSET               = 0x0082
	XL_HCENTER               = 0x0083
	XL_VCENTER               = 0x0084
	XL_BOUNDSHEET            = 0x0085
	XL_WRITEPROT             = 0x0086
	XL_COUNTRY               = 0x008C
	XL_HIDEOBJ               = 0x008D
	XL_PALETTE               = 0x0092
	XL_FNGROUPCOUNT          = 0x009C
	XL_AUTOFILTERINFO        = 0x009D
	XL_SCL                   = 0x00A0
	XL_PAGESETUP             = 0x00A1
	XL_GCW                   = 0x00AB
	XL_MULRK                 = 0x00BD
	XL_MULBLANK              = 0x00BE
	XL_MMS                   = 0x00C1
	XL_RSTRING               = 0x00D6
	XL_DBCELL                = 0x00D7
	XL_BOOKBOOL              = 0x00DA
	XL_XF                    = 0x00E0
	XL_INTERFACEHDR          = 0x00E1
	XL_INTERFACEEND          = 0x00E2
	XL_MERGEDCELLS           = 0x00E5
	XL_MSO_DRAWING_GROUP     = 0x00EB
	XL_MSO_DRAWING           = 0x00EC
	XL_MSO_DRAWING_SELECTION = 0x00ED
	XL_PHONETIC              = 0x00EF
	XL_SST                   = 0x00FC
	XL_LABELSST              = 0x00FD
	XL_EXTSST                = 0x00FF
	XL_TABID                 = 0x013D
	XL_LABELRANGES           = 0x015F
	XL_USESELFS              = 0x0160
	XL_DSF                   = 0x0161
	XL_SUPBOOK               = 0x01AE
	XL_PROT4REV              = 0x01AF
	XL_CONDFMT               = 0x01B0
	XL_CF                    = 0x01B1
	XL_DVAL                  = 0x01B2
	XL_TXO                   = 0x01B6
	XL_REFRESHALL            = 0x01B7
	XL_HLINK                 = 0x01B8
	XL_PROT4REVPASS          = 0x01BC
	XL_DV                    = 0x01BE
	XL_EXCEL9FILE            = 0x01C0
	XL_RECALCID              = 0x01C1
	XL_DIMENSION             = 0x0200
	XL_BLANK                 = 0x0201
	XL_NUMBER                = 0x0203
	XL_LABEL                 = 0x0204
	XL_BOOLERR               = 0x0205
	XL_STRING                = 0x0207
	XL_ROW                   = 0x0208
	XL_INDEX                 = 0x020B
	XL_ARRAY                 = 0x0221
	XL_DEFAULTROWHEIGHT      = 0x0225
	XL_TABLEOP               = 0x0236
	XL_WINDOW2               = 0x023E
	XL_RK2                   = 0x027E
	XL_STYLE                 = 0x0293
	XL_FORMAT                = 0x041E
	XL_SHRFMLA               = 0x04BC
	XL_QUICKTIP              = 0x0800
	XL_BOF                   = 0x0809
	XL_SHEETLAYOUT           = 0x0862
	XL_SHEETPROTECTION       = 0x0867
	XL_RANGEPROTECTION       = 0x0868
	XL_FEAT11                = 0x0872
	XL_UNKNOWN               = 0xFFFF
)

var recordNames = map[uint16]string{
	XL_FORMULA:               "FORMULA",
	XL_EOF:                   "EOF",
	XL_CALCCOUNT:             "CALCCOUNT",
	XL_CALCMODE:              "CALCMODE",
	XL_PRECISION:             "PRECISION",
	XL_REFMODE:               "REFMODE",
	XL_DELTA:                 "DELTA",
	XL_ITERATION:             "ITERATION",
	XL_PROTECT:               "PROTECT",
	XL_PASSWORD:              "PASSWORD",
	XL_HEADER:                "HEADER",
	XL_FOOTER:                "FOOTER",
	XL_EXTERNSHEET:           "EXTERNSHEET",
	XL_NAME:                  "NAME",
	XL_WINDOWPROTECT:         "WINDOWPROTECT",
	XL_VERTICALPAGEBREAKS:    "VERTICALPAGEBREAKS",
	XL_HORIZONTALPAGEBREAKS:  "HORIZONTALPAGEBREAKS",
	XL_NOTE:                  "NOTE",
	XL_SELECTION:             "SELECTION",
	XL_DATEMODE:              "DATEMODE",
	XL_EXTERNNAME:            "EXTERNNAME",
	XL_LEFTMARGIN:            "LEFTMARGIN",
	XL_RIGHTMARGIN:           "RIGHTMARGIN",
	XL_TOPMARGIN:             "TOPMARGIN",
	XL_BOTTOMMARGIN:          "BOTTOMMARGIN",
	XL_PRINTHEADERS:          "PRINTHEADERS",
	XL_PRINTGRIDLINES:        "PRINTGRIDLINES",
	XL_FILEPASS:              "FILEPASS",
	XL_FONT:                  "FONT",
	XL_CONTINUE:              "CONTINUE",
	XL_WINDOW1:               "WINDOW1",
	XL_BACKUP:                "BACKUP",
	XL_PANE:                  "PANE",
	XL_CODEPAGE:              "CODEPAGE",
	XL_DEFCOLWIDTH:           "DEFCOLWIDTH",
	XL_WRITEACCESS:           "WRITEACCESS",
	XL_OBJ:                   "OBJ",
	XL_UNCALCED:              "UNCALCED",
	XL_SAVERECALC:            "SAVERECALC",
	XL_TEMPLATE:              "TEMPLATE",
	XL_OBJPROTECT:            "OBJPROTECT",
	XL_COLINFO:               "COLINFO",
	XL_RK:                    "RK",
	XL_GUTS:                  "GUTS",
	XL_SHEETPR:               "SHEETPR",
	XL_GRIDSET:               "GRIDSET",
	XL_HCENTER:               "HCENTER",
	XL_VCENTER:               "VCENTER",
	XL_BOUNDSHEET:            "BOUNDSHEET",
	XL_WRITEPROT:             "WRITEPROT",
	XL_COUNTRY:               "COUNTRY",
	XL_HIDEOBJ:               "HIDEOBJ",
	XL_PALETTE:               "PALETTE",
	XL_FNGROUPCOUNT:          "FNGROUPCOUNT",
	XL_AUTOFILTERINFO:        "AUTOFILTERINFO",
	XL_SCL:                   "SCL",
	XL_PAGESETUP:             "PAGESETUP",
	XL_GCW:                   "GCW",
	XL_MULRK:                 "MULRK",
	XL_MULBLANK:              "MULBLANK",
	XL_MMS:                   "MMS",
	XL_RSTRING:               "RSTRING",
	XL_DBCELL:                "DBCELL",
	XL_BOOKBOOL:              "BOOKBOOL",
	XL_XF:                    "XF",
	XL_INTERFACEHDR:          "INTERFACEHDR",
	XL_INTERFACEEND:          "INTERFACEEND",
	XL_MERGEDCELLS:           "MERGEDCELLS",
	XL_MSO_DRAWING_GROUP:     "MSODRAWINGGROUP",
	XL_MSO_DRAWING:           "MSODRAWING",
	XL_MSO_DRAWING_SELECTION: "MSODRAWINGSELECTION",
	XL_PHONETIC:              "PHONETIC",
	XL_SST:                   "SST",
	XL_LABELSST:              "LABELSST",
	XL_EXTSST:                "EXTSST",
	XL_TABID:                 "TABID",
	XL_LABELRANGES:           "LABELRANGES",
	XL_USESELFS:              "USESELFS",
	XL_DSF:                   "DSF",
	XL_SUPBOOK:               "SUPBOOK",
	XL_PROT4REV:              "PROT4REV",
	XL_CONDFMT:               "CONDFMT",
	XL_CF:                    "CF",
	XL_DVAL:                  "DVAL",
	XL_TXO:                   "TXO",
	XL_REFRESHALL:            "REFRESHALL",
	XL_HLINK:                 "HLINK",
	XL_PROT4REVPASS:          "PROT4REVPASS",
	XL_DV:                    "DV",
	XL_EXCEL9FILE:            "EXCEL9FILE",
	XL_RECALCID:              "RECALCID",
	XL_DIMENSION:             "DIMENSION",
	XL_BLANK:                 "BLANK",
	XL_NUMBER:                "NUMBER",
	XL_LABEL:                 "LABEL",
	XL_BOOLERR:               "BOOLERR",
	XL_STRING:                "STRING",
	XL_ROW:                   "ROW",
	XL_INDEX:                 "INDEX",
	XL_ARRAY:                 "ARRAY",
	XL_DEFAULTROWHEIGHT:      "DEFAULTROWHEIGHT",
	XL_TABLEOP:               "TABLEOP",
	XL_WINDOW2:               "WINDOW2",
	XL_RK2:                   "RK",
	XL_STYLE:                 "STYLE",
	XL_FORMAT:                "FORMAT",
	XL_SHRFMLA:               "SHRFMLA",
	XL_QUICKTIP:              "QUICKTIP",
	XL_BOF:                   "BOF",
	XL_SHEETLAYOUT:           "SHEETLAYOUT",
	XL_SHEETPROTECTION:       "SHEETPROTECTION",
	XL_RANGEPROTECTION:       "RANGEPROTECTION",
	XL_FEAT11:                "FEAT11",
}

// Name returns the record name for code, or UNKNOWN(0xNNNN).
func Name(code uint16) string {
	if name, ok := recordNames[code]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(0x%04X)", code)
}

var cellCodes = map[uint16]bool{
	XL_BOOLERR:  true,
	XL_FORMULA:  true,
	XL_LABEL:    true,
	XL_LABELSST: true,
	XL_MULRK:    true,
	XL_NUMBER:   true,
	XL_RK:       true,
	XL_RK2:      true,
	XL_RSTRING:  true,
}

// IsCellCode reports whether code is a record type that carries a cell value.
func IsCellCode(code uint16) bool {
	return cellCodes[code]
}
