package ingest

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"specmix/internal/faults"
)

// Format classifies a raw input file.
type Format string

const (
	FormatExcel               Format = "excel"
	FormatCSV                 Format = "csv"
	FormatText                Format = "txt"
	FormatCSVDisguisedAsExcel Format = "csv_disguised_as_excel"
	FormatUnknown             Format = "unknown"
)

const (
	oleMagicLength        = 8
	workbookProbeRows     = 5
	legacyWorkbookCharset = "utf-8"
)

var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Messages produced by workbook readers when the file is not a workbook
// container at all. Any of them means the content is most likely delimited
// text saved under a spreadsheet extension.
var containerSignatures = []string{
	"not a valid zip file",
	"unsupported workbook file format",
	"not a valid ole",
	"compdoc is not a recognised ole file",
}

// Detect classifies path. Spreadsheet extensions are probe-parsed; a probe
// failure that matches a container signature yields FormatCSVDisguisedAsExcel,
// any other probe failure is a format error. Extensions are matched
// case-insensitively. Detect never modifies the file.
func Detect(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		err := probeXLSX(path)
		return classifyProbe(path, err)
	case ".xls":
		err := probeXLS(path)
		return classifyProbe(path, err)
	case ".csv":
		return FormatCSV, nil
	case ".txt":
		return FormatText, nil
	default:
		return FormatUnknown, nil
	}
}

func classifyProbe(path string, err error) (Format, error) {
	if err == nil {
		return FormatExcel, nil
	}
	if isContainerError(err) {
		return FormatCSVDisguisedAsExcel, nil
	}
	return FormatUnknown, faults.Wrap(faults.ErrFormat, "detect", "probe workbook", filepath.Base(path), err)
}

func isContainerError(err error) bool {
	if errors.Is(err, zip.ErrFormat) || errors.Is(err, excelize.ErrWorkbookFileFormat) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, signature := range containerSignatures {
		if strings.Contains(msg, signature) {
			return true
		}
	}
	return false
}

func probeXLSX(path string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return errors.New("workbook has no sheets")
	}
	rows, err := f.Rows(sheets[0])
	if err != nil {
		return err
	}
	defer rows.Close()
	for i := 0; i < workbookProbeRows && rows.Next(); i++ {
		if _, err := rows.Columns(); err != nil {
			return err
		}
	}
	return rows.Error()
}

// errNotOLE is returned for .xls files whose header lacks the compound
// document magic. extrame/xls does not report this case distinctly, so the
// header is sniffed before handing the file over.
var errNotOLE = errors.New("not a valid OLE compound document")

func probeXLS(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	head := make([]byte, oleMagicLength)
	_, err = io.ReadFull(f, head)
	_ = f.Close()
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return err
	}
	if !bytes.Equal(head, oleMagic) {
		return errNotOLE
	}
	wb, err := xls.Open(path, legacyWorkbookCharset)
	if err != nil {
		return err
	}
	if wb.NumSheets() == 0 || wb.GetSheet(0) == nil {
		return errors.New("workbook has no sheets")
	}
	return nil
}

// String implements fmt.Stringer.
func (f Format) String() string { return string(f) }

func unsupportedFormat(path string) error {
	return fmt.Errorf("%w: unsupported file type %q (use .csv, .txt, .xlsx or .xls)",
		faults.ErrFormat, filepath.Ext(path))
}
