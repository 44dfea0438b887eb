package pdf

// matrix is a PDF affine transform [a b c d e f]
type matrix [6]float64

func identity() matrix { return matrix{1, 0, 0, 1, 0, 0} }

func translate(tx, ty float64) matrix { return matrix{1, 0, 0, 1, tx, ty} }

// multiply returns m×o: m applied first, then o
func (m matrix) multiply(o matrix) matrix {
	return matrix{
		m[0]*o[0] + m[1]*o[2],
		m[0]*o[1] + m[1]*o[3],
		m[2]*o[0] + m[3]*o[2],
		m[2]*o[1] + m[3]*o[3],
		m[4]*o[0] + m[5]*o[2] + o[4],
		m[4]*o[1] + m[5]*o[3] + o[5],
	}
}
