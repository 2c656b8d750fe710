package algebra

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNotSquare is returned when an inverse is requested of a
	// non-square matrix.
	ErrNotSquare = errors.New("algebra: matrix is not square")
	// ErrSingular is returned when a matrix has no inverse.
	ErrSingular = errors.New("algebra: matrix is singular")
)

// Matrix is a dense matrix of exact scalar expressions. The shape is fixed
// at construction; operations return new matrices. Shape mismatches panic,
// matching gonum/mat: they are programmer errors, not data conditions.
type Matrix struct {
	rows, cols int
	data       []Expr
}

// Zeros returns an r x c matrix of zeros.
func Zeros(r, c int) Matrix {
	if r < 0 || c < 0 {
		panic("algebra: negative dimension")
	}
	return Matrix{rows: r, cols: c, data: make([]Expr, r*c)}
}

// Identity returns the n x n identity matrix.
func Identity(n int) Matrix {
	m := Zeros(n, n)
	for i := 0; i < n; i++ {
		m.Set(i, i, One())
	}
	return m
}

// FromRows builds a matrix from row slices. All rows must have equal length.
func FromRows(rows [][]Expr) Matrix {
	if len(rows) == 0 {
		panic("algebra: FromRows of no rows")
	}
	c := len(rows[0])
	m := Zeros(len(rows), c)
	for i, row := range rows {
		if len(row) != c {
			panic("algebra: ragged rows")
		}
		copy(m.data[i*c:(i+1)*c], row)
	}
	return m
}

// Dims returns the row and column counts.
func (m Matrix) Dims() (int, int) { return m.rows, m.cols }

// At returns the element at row i, column j.
func (m Matrix) At(i, j int) Expr {
	m.check(i, j)
	return m.data[i*m.cols+j]
}

// Set assigns the element at row i, column j.
func (m Matrix) Set(i, j int, e Expr) {
	m.check(i, j)
	m.data[i*m.cols+j] = e
}

func (m Matrix) check(i, j int) {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(fmt.Sprintf("algebra: index (%d,%d) out of range for %dx%d matrix", i, j, m.rows, m.cols))
	}
}

func (m Matrix) clone() Matrix {
	out := Matrix{rows: m.rows, cols: m.cols, data: make([]Expr, len(m.data))}
	copy(out.data, m.data)
	return out
}

// Mul returns the matrix product m * o.
func (m Matrix) Mul(o Matrix) Matrix {
	if m.cols != o.rows {
		panic(fmt.Sprintf("algebra: dimension mismatch %dx%d * %dx%d", m.rows, m.cols, o.rows, o.cols))
	}
	out := Zeros(m.rows, o.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < o.cols; j++ {
			sum := Zero()
			for k := 0; k < m.cols; k++ {
				a := m.At(i, k)
				b := o.At(k, j)
				if a.IsZero() || b.IsZero() {
					continue
				}
				sum = sum.Add(a.Mul(b))
			}
			out.Set(i, j, sum)
		}
	}
	return out
}

// Neg returns -m.
func (m Matrix) Neg() Matrix {
	out := Zeros(m.rows, m.cols)
	for i := range m.data {
		out.data[i] = m.data[i].Neg()
	}
	return out
}

// VStack returns m stacked above o. Column counts must agree. Stacking onto
// an empty matrix is allowed so callers can fold over blocks.
func (m Matrix) VStack(o Matrix) Matrix {
	if m.rows == 0 {
		return o.clone()
	}
	if o.rows == 0 {
		return m.clone()
	}
	if m.cols != o.cols {
		panic(fmt.Sprintf("algebra: vstack column mismatch %d vs %d", m.cols, o.cols))
	}
	out := Zeros(m.rows+o.rows, m.cols)
	copy(out.data[:len(m.data)], m.data)
	copy(out.data[len(m.data):], o.data)
	return out
}

// Inverse returns the exact inverse of m via Gauss-Jordan elimination over
// the expression field. Fails with ErrNotSquare for a rectangular input and
// ErrSingular when no structurally nonzero pivot exists for some column.
func (m Matrix) Inverse() (Matrix, error) {
	n := m.rows
	if m.cols != n {
		return Matrix{}, fmt.Errorf("algebra: %dx%d: %w", m.rows, m.cols, ErrNotSquare)
	}
	a := m.clone()
	inv := Identity(n)
	for col := 0; col < n; col++ {
		pivot := -1
		for row := col; row < n; row++ {
			if !a.At(row, col).IsZero() {
				pivot = row
				break
			}
		}
		if pivot < 0 {
			return Matrix{}, fmt.Errorf("algebra: no pivot in column %d: %w", col, ErrSingular)
		}
		if pivot != col {
			a.swapRows(pivot, col)
			inv.swapRows(pivot, col)
		}
		scale := a.At(col, col).Inv()
		a.scaleRow(col, scale)
		inv.scaleRow(col, scale)
		for row := 0; row < n; row++ {
			if row == col {
				continue
			}
			factor := a.At(row, col)
			if factor.IsZero() {
				continue
			}
			a.addScaledRow(row, col, factor.Neg())
			inv.addScaledRow(row, col, factor.Neg())
		}
	}
	return inv, nil
}

func (m Matrix) swapRows(i, j int) {
	for c := 0; c < m.cols; c++ {
		m.data[i*m.cols+c], m.data[j*m.cols+c] = m.data[j*m.cols+c], m.data[i*m.cols+c]
	}
}

func (m Matrix) scaleRow(i int, s Expr) {
	for c := 0; c < m.cols; c++ {
		if !m.data[i*m.cols+c].IsZero() {
			m.data[i*m.cols+c] = m.data[i*m.cols+c].Mul(s)
		}
	}
}

// addScaledRow adds s times row j to row i in place.
func (m Matrix) addScaledRow(i, j int, s Expr) {
	for c := 0; c < m.cols; c++ {
		v := m.data[j*m.cols+c]
		if v.IsZero() {
			continue
		}
		m.data[i*m.cols+c] = m.data[i*m.cols+c].Add(v.Mul(s))
	}
}

// FreeSymbols returns the sorted union of symbols over all elements.
func (m Matrix) FreeSymbols() []string {
	set := map[string]struct{}{}
	for _, e := range m.data {
		for _, name := range e.FreeSymbols() {
			set[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Substitute replaces symbols elementwise, leaving unnamed symbols free.
func (m Matrix) Substitute(vals map[string]float64) (Matrix, error) {
	out := Zeros(m.rows, m.cols)
	for i, e := range m.data {
		sub, err := e.Substitute(vals)
		if err != nil {
			return Matrix{}, fmt.Errorf("algebra: element %d,%d: %w", i/m.cols, i%m.cols, err)
		}
		out.data[i] = sub
	}
	return out, nil
}

// Eval computes the numeric image of m at the given symbol values. Every
// free symbol must be supplied.
func (m Matrix) Eval(vals map[string]float64) (*mat.Dense, error) {
	out := mat.NewDense(m.rows, m.cols, nil)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			v, err := m.At(i, j).Eval(vals)
			if err != nil {
				return nil, fmt.Errorf("algebra: element %d,%d: %w", i, j, err)
			}
			out.Set(i, j, v)
		}
	}
	return out, nil
}

// Equal reports elementwise identity as rational functions.
func (m Matrix) Equal(o Matrix) bool {
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for i := range m.data {
		if !m.data[i].Equal(o.data[i]) {
			return false
		}
	}
	return true
}

func (m Matrix) String() string {
	var b strings.Builder
	for i := 0; i < m.rows; i++ {
		b.WriteString("[")
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(m.At(i, j).String())
		}
		b.WriteString("]\n")
	}
	return b.String()
}
