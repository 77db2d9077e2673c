package mps

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"go.lp/highs/lp"
	"go.lp/highs/logging"
	"go.lp/highs/status"
)

// WriteMPS writes m to filename, mirroring Read: in either format, row
// and column names that are empty or exceed 8 characters are replaced
// with generated "R<i>"/"C<j>" names. Under fixed format a name that is
// too long is also reported as an Error-level log entry; the write
// still succeeds.
func WriteMPS(filename string, m *lp.LP, fixed bool, logger *logging.Logger) (status.FileReaderCode, error) {
	if logger == nil {
		logger = logging.Default()
	}
	f, err := os.Create(filename)
	if err != nil {
		return status.ParserError, err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	defer w.Flush()

	rowNames := names(m.RowNames, m.NumRow, "R", fixed, logger)
	colNames := names(m.ColNames, m.NumCol, "C", fixed, logger)

	name := m.ModelName
	if name == "" {
		name = "PROBLEM"
	}
	fmt.Fprintf(w, "NAME          %s\n", name)
	if m.Sense == lp.Maximize {
		fmt.Fprintln(w, "OBJSENSE")
		fmt.Fprintln(w, "    MAX")
	}

	fmt.Fprintln(w, "ROWS")
	fmt.Fprintf(w, " N  %s\n", "COST")
	for i := 0; i < m.NumRow; i++ {
		fmt.Fprintf(w, " %s  %s\n", rowLetter(m.RowLower[i], m.RowUpper[i]), rowNames[i])
	}

	fmt.Fprintln(w, "COLUMNS")
	inInt := false
	markerN := 0
	for j := 0; j < m.NumCol; j++ {
		isInt := m.Integrality[j] == lp.Integer
		if isInt && !inInt {
			fmt.Fprintf(w, "    MARKER                 %d  'MARKER'                 'INTORG'\n", markerN)
			markerN++
			inInt = true
		} else if !isInt && inInt {
			fmt.Fprintf(w, "    MARKER                 %d  'MARKER'                 'INTEND'\n", markerN)
			markerN++
			inInt = false
		}
		if m.ColCost[j] != 0 {
			fmt.Fprintf(w, "    %s  %s  %s\n", colNames[j], "COST", fnum(m.ColCost[j]))
		}
		for k := m.Astart[j]; k < m.Astart[j+1]; k++ {
			fmt.Fprintf(w, "    %s  %s  %s\n", colNames[j], rowNames[m.Aindex[k]], fnum(m.Avalue[k]))
		}
	}
	if inInt {
		fmt.Fprintf(w, "    MARKER                 %d  'MARKER'                 'INTEND'\n", markerN)
	}

	fmt.Fprintln(w, "RHS")
	for i := 0; i < m.NumRow; i++ {
		rhs := rhsValue(m.RowLower[i], m.RowUpper[i])
		if rhs == 0 {
			continue
		}
		fmt.Fprintf(w, "    RHS  %s  %s\n", rowNames[i], fnum(rhs))
	}

	fmt.Fprintln(w, "RANGES")
	for i := 0; i < m.NumRow; i++ {
		if m.RowLower[i] == m.RowUpper[i] {
			continue
		}
		if !lp.InfiniteBound(m.RowLower[i], lp.DefaultInfiniteBound) &&
			!lp.InfiniteBound(m.RowUpper[i], lp.DefaultInfiniteBound) {
			fmt.Fprintf(w, "    RGS  %s  %s\n", rowNames[i], fnum(m.RowUpper[i]-m.RowLower[i]))
		}
	}

	fmt.Fprintln(w, "BOUNDS")
	for j := 0; j < m.NumCol; j++ {
		lo, up := m.ColLower[j], m.ColUpper[j]
		infLo := lo < 0 && lp.InfiniteBound(lo, lp.DefaultInfiniteBound)
		infUp := lp.InfiniteBound(up, lp.DefaultInfiniteBound)
		switch {
		case lo == up:
			fmt.Fprintf(w, " FX BND  %s  %s\n", colNames[j], fnum(lo))
		case infLo && infUp:
			fmt.Fprintf(w, " FR BND  %s\n", colNames[j])
		case infLo:
			fmt.Fprintf(w, " MI BND  %s\n", colNames[j])
			if up != 0 {
				fmt.Fprintf(w, " UP BND  %s  %s\n", colNames[j], fnum(up))
			}
		case lo == 0 && infUp:
			// default bound, nothing to write
		default:
			if lo != 0 {
				fmt.Fprintf(w, " LO BND  %s  %s\n", colNames[j], fnum(lo))
			}
			if !infUp {
				fmt.Fprintf(w, " UP BND  %s  %s\n", colNames[j], fnum(up))
			}
		}
	}

	fmt.Fprintln(w, "ENDATA")
	return status.ReaderOK, nil
}

func rowLetter(lo, up float64) string {
	switch {
	case lo == up:
		return "E"
	case lo < 0 && lp.InfiniteBound(lo, lp.DefaultInfiniteBound):
		return "L"
	case lp.InfiniteBound(up, lp.DefaultInfiniteBound):
		return "G"
	default:
		return "L"
	}
}

func rhsValue(lo, up float64) float64 {
	if !lp.InfiniteBound(up, lp.DefaultInfiniteBound) {
		return up
	}
	return lo
}

func fnum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func names(given []string, n int, prefix string, fixed bool, logger *logging.Logger) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		name := ""
		if i < len(given) {
			name = given[i]
		}
		if name == "" || len(name) > 8 {
			if fixed && name != "" {
				logger.Log(logging.Error, "mps: name %q too long for fixed format, regenerating", name)
			}
			name = fmt.Sprintf("%s%d", prefix, i)
		}
		out[i] = name
	}
	return out
}

// WriteEMS dumps m as the flat array format ReadEMS parses back: the
// scalars NumCol, NumRow, NumInt, Sense, Offset and Nnz, then Astart/
// Aindex/Avalue/ColCost/ColLower/ColUpper/RowLower/RowUpper, one token
// per line.
func WriteEMS(filename string, m *lp.LP) (status.FileReaderCode, error) {
	f, err := os.Create(filename)
	if err != nil {
		return status.ParserError, err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	defer w.Flush()

	writeInt := func(v int) { fmt.Fprintln(w, v) }
	writeFloat := func(v float64) { fmt.Fprintln(w, fnum(v)) }

	writeInt(m.NumCol)
	writeInt(m.NumRow)
	writeInt(m.NumInt)
	writeInt(int(m.Sense))
	writeFloat(m.Offset)
	writeInt(m.Nnz)
	for _, v := range m.Astart {
		writeInt(v)
	}
	for _, v := range m.Aindex {
		writeInt(v)
	}
	for _, v := range m.Avalue {
		writeFloat(v)
	}
	for _, v := range m.ColCost {
		writeFloat(v)
	}
	for _, v := range m.ColLower {
		writeFloat(v)
	}
	for _, v := range m.ColUpper {
		writeFloat(v)
	}
	for _, v := range m.RowLower {
		writeFloat(v)
	}
	for _, v := range m.RowUpper {
		writeFloat(v)
	}
	return status.ReaderOK, nil
}
