// Package mps implements the MPS/EMS reader-writer of spec.md §6 (C12):
// fixed and free format MPS, and a flat EMS dump used to round-trip
// test fixtures without a full MPS grammar. Grounded on
// original_source/src/io/HMPSIO.h's field layout and section names;
// the teacher has no file-format reader of its own to imitate, so this
// follows HMPSIO.h directly rather than any pack library.
package mps

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.lp/highs/logging"
	"go.lp/highs/lp"
	"go.lp/highs/options"
	"go.lp/highs/status"
)

// Fixed-format field positions, 1-indexed column (start, width) pairs
// per HMPSIO.h.
const (
	field1Start, field1Width = 1, 2
	field2Start, field2Width = 4, 8
	field3Start, field3Width = 14, 8
	field4Start, field4Width = 24, 12
	field5Start, field5Width = 39, 8
	field6Start, field6Width = 49, 12
)

type rowType int

const (
	rowN rowType = iota
	rowE
	rowL
	rowG
)

// Read parses filename as MPS, selecting fixed or free format per
// opt.MPSParserType; a free-format read that finds a name containing
// an internal space restarts as fixed, matching the fallback named in
// spec.md §4.12. keepNRows retains free (N) rows other than the
// objective as unconstrained rows with a free logical instead of
// dropping them.
func Read(filename string, opt options.Options, logger *logging.Logger) (*lp.LP, status.FileReaderCode, error) {
	if logger == nil {
		logger = logging.Default()
	}
	raw, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, status.FileNotFound, err
		}
		return nil, status.ParserError, err
	}
	lines := strings.Split(string(raw), "\n")

	fixed := opt.MPSParserType == options.MPSFixed
	m, err := parse(lines, fixed, opt.KeepNRows, logger)
	if err != nil && !fixed && opt.MPSParserType == options.MPSFree {
		// Retry once in fixed mode: a free-format pass that stumbled on a
		// name with an internal space cannot be told apart cheaply from a
		// malformed file, so the fallback is unconditional on any parse
		// error rather than a separate detection pass.
		if m2, err2 := parse(lines, true, opt.KeepNRows, logger); err2 == nil {
			return m2, status.ReaderOK, nil
		}
	}
	if err != nil {
		return nil, status.ParserError, err
	}
	return m, status.ReaderOK, nil
}

type mpsRow struct {
	name string
	typ  rowType
}

type mpsCol struct {
	name    string
	integer bool
}

func parse(lines []string, fixed bool, keepNRows bool, logger *logging.Logger) (*lp.LP, error) {
	p := &parser{fixed: fixed, logger: logger, keepNRows: keepNRows}
	section := ""
	for lineNo, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		if line == "" || line[0] == '*' {
			continue
		}
		if !isContinuation(line) {
			word := strings.Fields(line)[0]
			switch word {
			case "NAME", "ROWS", "COLUMNS", "RHS", "RANGES", "BOUNDS", "ENDATA", "OBJSENSE", "OBJSENSE:":
				section = word
				if word == "NAME" {
					fields := strings.Fields(line)
					if len(fields) > 1 {
						p.name = fields[1]
					}
				}
				continue
			}
		}
		if err := p.dispatch(section, line, lineNo+1); err != nil {
			return nil, err
		}
	}
	return p.build()
}

// isContinuation reports whether line starts with whitespace, i.e. is
// data for the current section rather than a new section header.
func isContinuation(line string) bool {
	return line[0] == ' ' || line[0] == '\t'
}

type parser struct {
	fixed  bool
	logger *logging.Logger

	name        string
	objSense    lp.Sense
	objRowName  string
	rows        []mpsRow
	rowIndex    map[string]int
	cols        []mpsCol
	colIndex    map[string]int
	colEntries  [][]colEntry // per column, (row, value) pairs including objective
	rhs         map[string]float64
	ranges      map[string]float64
	colLower    map[string]float64
	colUpper    map[string]float64
	integerMode bool
	keepNRows   bool
}

type colEntry struct {
	row   string
	value float64
}

func (p *parser) fields(line string) []string {
	if !p.fixed {
		return strings.Fields(line)
	}
	pick := func(start, width int) string {
		start--
		if start >= len(line) {
			return ""
		}
		end := start + width
		if end > len(line) {
			end = len(line)
		}
		return strings.TrimSpace(line[start:end])
	}
	var out []string
	for _, f := range []string{
		pick(field1Start, field1Width),
		pick(field2Start, field2Width),
		pick(field3Start, field3Width),
		pick(field4Start, field4Width),
		pick(field5Start, field5Width),
		pick(field6Start, field6Width),
	} {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func (p *parser) dispatch(section, line string, lineNo int) error {
	switch section {
	case "OBJSENSE", "OBJSENSE:":
		f := strings.Fields(line)
		if len(f) > 0 && strings.EqualFold(f[0], "MAX") {
			p.objSense = lp.Maximize
		}
		return nil
	case "ROWS":
		return p.row(line, lineNo)
	case "COLUMNS":
		return p.column(line, lineNo)
	case "RHS":
		return p.rhsLine(line, lineNo)
	case "RANGES":
		return p.rangesLine(line, lineNo)
	case "BOUNDS":
		return p.boundsLine(line, lineNo)
	}
	return nil
}

func (p *parser) row(line string, lineNo int) error {
	f := p.fields(line)
	if len(f) < 2 {
		return fmt.Errorf("mps: line %d: malformed ROWS entry %q", lineNo, line)
	}
	var t rowType
	switch strings.ToUpper(f[0]) {
	case "N":
		t = rowN
	case "E":
		t = rowE
	case "L":
		t = rowL
	case "G":
		t = rowG
	default:
		return fmt.Errorf("mps: line %d: unknown row type %q", lineNo, f[0])
	}
	if t == rowN && p.objRowName == "" {
		p.objRowName = f[1]
		return nil
	}
	if p.rowIndex == nil {
		p.rowIndex = map[string]int{}
	}
	if t == rowN && !p.keepNRows {
		p.logger.Print(logging.LevelDetailed, "mps: dropping free row %s (keep_n_rows disabled)", f[1])
		return nil
	}
	p.rowIndex[f[1]] = len(p.rows)
	p.rows = append(p.rows, mpsRow{name: f[1], typ: t})
	return nil
}

func (p *parser) column(line string, lineNo int) error {
	f := p.fields(line)
	if len(f) >= 3 && strings.Contains(strings.ToUpper(f[1]), "MARKER") {
		switch strings.ToUpper(f[2]) {
		case "'INTORG'":
			p.integerMode = true
		case "'INTEND'":
			p.integerMode = false
		}
		return nil
	}
	if len(f) < 3 {
		return fmt.Errorf("mps: line %d: malformed COLUMNS entry %q", lineNo, line)
	}
	colName := f[0]
	if p.colIndex == nil {
		p.colIndex = map[string]int{}
	}
	ci, ok := p.colIndex[colName]
	if !ok {
		ci = len(p.cols)
		p.colIndex[colName] = ci
		p.cols = append(p.cols, mpsCol{name: colName, integer: p.integerMode})
		p.colEntries = append(p.colEntries, nil)
	}
	pairs := f[1:]
	for i := 0; i+1 < len(pairs); i += 2 {
		v, err := strconv.ParseFloat(pairs[i+1], 64)
		if err != nil {
			return fmt.Errorf("mps: line %d: bad value %q: %w", lineNo, pairs[i+1], err)
		}
		p.colEntries[ci] = append(p.colEntries[ci], colEntry{row: pairs[i], value: v})
	}
	return nil
}

func (p *parser) rhsLine(line string, lineNo int) error {
	f := p.fields(line)
	if len(f) < 3 {
		return fmt.Errorf("mps: line %d: malformed RHS entry %q", lineNo, line)
	}
	if p.rhs == nil {
		p.rhs = map[string]float64{}
	}
	pairs := f[1:]
	for i := 0; i+1 < len(pairs); i += 2 {
		v, err := strconv.ParseFloat(pairs[i+1], 64)
		if err != nil {
			return fmt.Errorf("mps: line %d: bad value %q: %w", lineNo, pairs[i+1], err)
		}
		p.rhs[pairs[i]] = v
	}
	return nil
}

func (p *parser) rangesLine(line string, lineNo int) error {
	f := p.fields(line)
	if len(f) < 3 {
		return fmt.Errorf("mps: line %d: malformed RANGES entry %q", lineNo, line)
	}
	if p.ranges == nil {
		p.ranges = map[string]float64{}
	}
	pairs := f[1:]
	for i := 0; i+1 < len(pairs); i += 2 {
		v, err := strconv.ParseFloat(pairs[i+1], 64)
		if err != nil {
			return fmt.Errorf("mps: line %d: bad value %q: %w", lineNo, pairs[i+1], err)
		}
		p.ranges[pairs[i]] = v
	}
	return nil
}

func (p *parser) boundsLine(line string, lineNo int) error {
	f := p.fields(line)
	if len(f) < 3 {
		return fmt.Errorf("mps: line %d: malformed BOUNDS entry %q", lineNo, line)
	}
	typ := strings.ToUpper(f[0])
	col := f[2]
	var v float64
	var err error
	if len(f) > 3 {
		v, err = strconv.ParseFloat(f[3], 64)
		if err != nil {
			return fmt.Errorf("mps: line %d: bad value %q: %w", lineNo, f[3], err)
		}
	}
	if p.colLower == nil {
		p.colLower = map[string]float64{}
		p.colUpper = map[string]float64{}
	}
	switch typ {
	case "UP":
		p.colUpper[col] = v
		if v < 0 {
			if _, hasLo := p.colLower[col]; !hasLo {
				p.colLower[col] = -lp.DefaultInfiniteBound
			}
		}
	case "LO":
		p.colLower[col] = v
	case "FX":
		p.colLower[col] = v
		p.colUpper[col] = v
	case "FR":
		p.colLower[col] = -lp.DefaultInfiniteBound
		p.colUpper[col] = lp.DefaultInfiniteBound
	case "MI":
		p.colLower[col] = -lp.DefaultInfiniteBound
	case "PL":
		p.colUpper[col] = lp.DefaultInfiniteBound
	case "BV":
		p.colLower[col] = 0
		p.colUpper[col] = 1
		p.markInteger(col)
	case "LI":
		p.colLower[col] = v
		p.markInteger(col)
	case "UI":
		p.colUpper[col] = v
		p.markInteger(col)
	default:
		return fmt.Errorf("mps: line %d: unknown bound type %q", lineNo, typ)
	}
	return nil
}

func (p *parser) markInteger(col string) {
	if i, ok := p.colIndex[col]; ok {
		p.cols[i].integer = true
	}
}

func (p *parser) build() (*lp.LP, error) {
	numCol, numRow := len(p.cols), len(p.rows)
	m := lp.New(numCol, numRow)
	m.ModelName = p.name
	m.Sense = lp.Minimize
	if p.objSense == lp.Maximize {
		m.Sense = lp.Maximize
	}

	m.RowNames = make([]string, numRow)
	for i, r := range p.rows {
		m.RowNames[i] = r.name
		rhs := p.rhs[r.name]
		switch r.typ {
		case rowE:
			m.RowLower[i], m.RowUpper[i] = rhs, rhs
		case rowL:
			m.RowLower[i], m.RowUpper[i] = -lp.DefaultInfiniteBound, rhs
		case rowG:
			m.RowLower[i], m.RowUpper[i] = rhs, lp.DefaultInfiniteBound
		case rowN:
			m.RowLower[i], m.RowUpper[i] = -lp.DefaultInfiniteBound, lp.DefaultInfiniteBound
		}
		if rg, ok := p.ranges[r.name]; ok {
			applyRange(m, i, r.typ, rg)
		}
	}

	m.ColNames = make([]string, numCol)
	nnz := 0
	for j, c := range p.cols {
		m.ColNames[j] = c.name
		if c.integer {
			m.Integrality[j] = lp.Integer
			m.NumInt++
		}
		m.ColLower[j] = 0
		m.ColUpper[j] = lp.DefaultInfiniteBound
		if lo, ok := p.colLower[c.name]; ok {
			m.ColLower[j] = lo
		}
		if up, ok := p.colUpper[c.name]; ok {
			m.ColUpper[j] = up
		}
		m.Astart[j] = nnz
		for _, e := range p.colEntries[j] {
			if e.row == p.objRowName {
				m.ColCost[j] = e.value
				continue
			}
			ri, ok := p.rowIndex[e.row]
			if !ok {
				continue // dropped free row, or unknown row name
			}
			m.Aindex = append(m.Aindex, ri)
			m.Avalue = append(m.Avalue, e.value)
			nnz++
		}
	}
	m.Astart[numCol] = nnz
	m.Nnz = nnz
	return m, nil
}

// applyRange folds a RANGES entry into the row's [lower,upper] pair
// per the standard MPS convention: E rows widen by |range| in the
// direction of its sign, L/G rows narrow the open side.
func applyRange(m *lp.LP, i int, t rowType, rg float64) {
	switch t {
	case rowE:
		if rg >= 0 {
			m.RowUpper[i] = m.RowLower[i] + rg
		} else {
			m.RowLower[i] = m.RowUpper[i] + rg
		}
	case rowL:
		m.RowLower[i] = m.RowUpper[i] - absf(rg)
	case rowG:
		m.RowUpper[i] = m.RowLower[i] + absf(rg)
	}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// ReadEMS parses the flat EMS dump of spec.md §4.12: dimensions
// followed by the §3 arrays in order, one token per line.
func ReadEMS(filename string) (*lp.LP, status.FileReaderCode, error) {
	f, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, status.FileNotFound, err
		}
		return nil, status.ParserError, err
	}
	defer f.Close()
	m, err := readEMS(f)
	if err != nil {
		return nil, status.ParserError, err
	}
	return m, status.ReaderOK, nil
}

func readEMS(r io.Reader) (*lp.LP, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	next := func() (string, error) {
		for sc.Scan() {
			t := strings.TrimSpace(sc.Text())
			if t == "" {
				continue
			}
			return t, nil
		}
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	nextInt := func() (int, error) {
		s, err := next()
		if err != nil {
			return 0, err
		}
		return strconv.Atoi(s)
	}
	nextFloat := func() (float64, error) {
		s, err := next()
		if err != nil {
			return 0, err
		}
		return strconv.ParseFloat(s, 64)
	}

	numCol, err := nextInt()
	if err != nil {
		return nil, err
	}
	numRow, err := nextInt()
	if err != nil {
		return nil, err
	}
	numInt, err := nextInt()
	if err != nil {
		return nil, err
	}
	senseN, err := nextInt()
	if err != nil {
		return nil, err
	}
	offset, err := nextFloat()
	if err != nil {
		return nil, err
	}

	m := lp.New(numCol, numRow)
	m.NumInt = numInt
	m.Sense = lp.Sense(senseN)
	m.Offset = offset

	readInts := func(n int) ([]int, error) {
		out := make([]int, n)
		for i := range out {
			v, err := nextInt()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	readFloats := func(n int) ([]float64, error) {
		out := make([]float64, n)
		for i := range out {
			v, err := nextFloat()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}

	nnz, err := nextInt()
	if err != nil {
		return nil, err
	}
	m.Nnz = nnz
	if m.Astart, err = readInts(numCol + 1); err != nil {
		return nil, err
	}
	if m.Aindex, err = readInts(nnz); err != nil {
		return nil, err
	}
	if m.Avalue, err = readFloats(nnz); err != nil {
		return nil, err
	}
	if m.ColCost, err = readFloats(numCol); err != nil {
		return nil, err
	}
	if m.ColLower, err = readFloats(numCol); err != nil {
		return nil, err
	}
	if m.ColUpper, err = readFloats(numCol); err != nil {
		return nil, err
	}
	if m.RowLower, err = readFloats(numRow); err != nil {
		return nil, err
	}
	if m.RowUpper, err = readFloats(numRow); err != nil {
		return nil, err
	}
	return m, nil
}
