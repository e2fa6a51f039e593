package testkit

import (
	"github.com/xuri/excelize/v2"
)

// TemplateSheet is the sheet name used for generated quotation templates
const TemplateSheet = "상품정보"

// WriteTemplateWorkbook saves a two-sheet workbook shaped like a supplier
// quotation template: a notice sheet first, then TemplateSheet with headers
// on headerRow starting at column A.
func WriteTemplateWorkbook(path string, headerRow int, headers ...string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "안내"); err != nil {
		return err
	}
	if err := f.SetCellValue("안내", "A1", "작성 전 안내사항을 확인하세요"); err != nil {
		return err
	}
	if _, err := f.NewSheet(TemplateSheet); err != nil {
		return err
	}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(TemplateSheet, cell, h); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

// ReadCell returns the displayed value of sheet!cell in the workbook at path
func ReadCell(path, sheet, cell string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return f.GetCellValue(sheet, cell)
}

// WriteSingleSheetWorkbook saves an empty workbook with only its default sheet
func WriteSingleSheetWorkbook(path string) error {
	f := excelize.NewFile()
	defer f.Close()
	return f.SaveAs(path)
}
