// Package xls reads the cell data of Excel 97-2003 workbooks.
//
// An xls file is an OLE2 compound file whose "Workbook" stream holds BIFF8
// records. OpenWorkbook loads every worksheet into a Book:
//
//	book, err := xls.OpenWorkbook("report.xls", nil)
//	if err != nil {
//		return err
//	}
//	sheet, err := book.Sheet(0)
//
// Callers that do not want the whole table in memory can implement Storage
// and call Parse directly. Only cached formula results are read; formulas
// are never evaluated.
package xls
