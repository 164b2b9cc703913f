// Package export renders product listings into a downloadable spreadsheet.
package export

import (
	"fmt"
	"time"

	apperrors "github.com/warehall/stockroom/internal/errors"
	"github.com/warehall/stockroom/internal/service"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Products"

var headers = []string{"Id", "Name", "Brand", "Price", "Quantity"}

// XlsGenerator renders an ordered product sequence into a single-sheet
// workbook. It holds no state and is safe for concurrent use.
type XlsGenerator struct{}

// NewXlsGenerator creates a new spreadsheet generator.
func NewXlsGenerator() *XlsGenerator {
	return &XlsGenerator{}
}

// FileName produces the download filename, timestamped with the current
// local date-time.
func FileName() string {
	return "Products_" + time.Now().Format("2006_01_02_15:04") + ".xls"
}

// Create renders the products into a workbook and returns the serialized
// document. Any construction or serialization failure wraps ErrExportFailed.
func (g *XlsGenerator) Create(products []service.ProductDto) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	content, err := g.build(f, products)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrExportFailed, err)
	}
	return content, nil
}

func (g *XlsGenerator) build(f *excelize.File, products []service.ProductDto) ([]byte, error) {
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}
	if err := g.writeHeaderRow(f); err != nil {
		return nil, err
	}
	if err := g.writeDataRows(f, products); err != nil {
		return nil, err
	}
	if err := g.fitColumns(f, products); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *XlsGenerator) writeHeaderRow(f *excelize.File) error {
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}

func (g *XlsGenerator) writeDataRows(f *excelize.File, products []service.ProductDto) error {
	style, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	for i, product := range products {
		row := i + 2
		brand := ""
		if product.Brand != nil {
			brand = *product.Brand
		}
		values := []any{product.ID, product.Name, brand, product.Price, product.Quantity}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return err
			}
		}
		first, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(len(values), row)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, first, last, style); err != nil {
			return err
		}
	}
	return nil
}

// fitColumns sizes each column to its widest cell.
func (g *XlsGenerator) fitColumns(f *excelize.File, products []service.ProductDto) error {
	for col := range headers {
		width := float64(len(headers[col]))
		for _, product := range products {
			if l := float64(len(cellText(product, col))); l > width {
				width = l
			}
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetName, name, name, width+2); err != nil {
			return err
		}
	}
	return nil
}

func cellText(product service.ProductDto, col int) string {
	switch col {
	case 0:
		return fmt.Sprintf("%d", product.ID)
	case 1:
		return product.Name
	case 2:
		if product.Brand != nil {
			return *product.Brand
		}
		return ""
	case 3:
		return fmt.Sprintf("%g", product.Price)
	default:
		return fmt.Sprintf("%d", product.Quantity)
	}
}
