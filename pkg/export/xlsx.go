package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Table - данные для выгрузки в один лист.
type Table struct {
	Sheet   string
	Headers []string
	Rows    [][]interface{}
}

// WriteXLSX пишет таблицу с жирной шапкой и автофильтром.
func WriteXLSX(w io.Writer, table Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := table.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	if err := f.SetSheetRow(sheet, "A1", &table.Headers); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(max(len(table.Headers), 1))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", style); err != nil {
		return err
	}

	for i := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &table.Rows[i]); err != nil {
			return fmt.Errorf("ошибка записи строки %d: %w", i+2, err)
		}
	}

	if len(table.Rows) > 0 {
		ref := fmt.Sprintf("A1:%s%d", lastCol, len(table.Rows)+1)
		if err := f.AutoFilter(sheet, ref, nil); err != nil {
			return err
		}
	}

	return f.Write(w)
}

// ReadRows читает первый лист и возвращает строки вместе с заголовком.
func ReadRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("файл не содержит листов")
	}
	return f.GetRows(sheets[0])
}

// HeaderIndex сопоставляет имена колонок (без учёта регистра) их позициям.
// Отсутствующая колонка получает -1.
func HeaderIndex(header []string, names ...string) map[string]int {
	idx := make(map[string]int, len(names))
	for _, n := range names {
		idx[n] = -1
	}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		for _, n := range names {
			if strings.ToLower(n) == key {
				idx[n] = i
			}
		}
	}
	return idx
}

// Cell безопасно достаёт значение колонки из строки.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
