package bulk

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000/tabular"
)

type Format string

const (
	FormatZip  Format = "zip"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatZip, "csv":
		return FormatZip, nil
	case FormatXLSX, "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown bulk format %q", s)
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/zip"
}

func Write(w io.Writer, format Format, tables []*tabular.Table) error {
	if format == FormatXLSX {
		return WriteXLSX(w, tables)
	}
	return WriteZip(w, tables)
}

func Read(b []byte, format Format) ([]*tabular.Table, error) {
	if format == FormatXLSX {
		return ReadXLSX(bytes.NewReader(b))
	}
	return ReadZip(bytes.NewReader(b), int64(len(b)))
}

// WriteZip stores each table as <name>.csv.
func WriteZip(w io.Writer, tables []*tabular.Table) error {
	zw := zip.NewWriter(w)
	for _, t := range tables {
		f, err := zw.Create(t.Name + ".csv")
		if err != nil {
			return err
		}
		if err := t.WriteCSV(f); err != nil {
			return err
		}
	}
	return zw.Close()
}

// ReadZip reads every .csv entry; the table name is the file name without
// directory or extension.
func ReadZip(r io.ReaderAt, size int64) ([]*tabular.Table, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	var tables []*tabular.Table
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.EqualFold(path.Ext(f.Name), ".csv") {
			continue
		}
		name := strings.TrimSuffix(path.Base(f.Name), path.Ext(f.Name))
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		t, err := tabular.ReadCSV(name, rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// WriteXLSX writes one sheet per table.
func WriteXLSX(w io.Writer, tables []*tabular.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", t.Name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return err
		}
		if err := setRow(f, t.Name, 1, t.Columns); err != nil {
			return err
		}
		for j, row := range t.Rows {
			if err := setRow(f, t.Name, j+2, row); err != nil {
				return err
			}
		}
	}
	return f.Write(w)
}

func setRow(f *excelize.File, sheet string, rowNo int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return f.SetSheetRow(sheet, cell, &row)
}

func ReadXLSX(r io.Reader) ([]*tabular.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var tables []*tabular.Table
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			continue
		}
		header := make([]string, len(rows[0]))
		for i, h := range rows[0] {
			header[i] = strings.TrimSpace(h)
		}
		t := tabular.New(sheet, header...)
		for _, row := range rows[1:] {
			if len(row) > len(header) {
				row = row[:len(header)]
			}
			padded := make([]string, len(header))
			copy(padded, row)
			t.Rows = append(t.Rows, padded)
		}
		tables = append(tables, t)
	}
	return tables, nil
}
