package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"immocli/internal/errors"
)

// FitOLS fits an ordinary-least-squares linear model with intercept over the
// dataset's feature schema. The fit exists purely for coefficient-level
// interpretation of the same features the boosted model consumes; its lower
// R² is expected and reported as-is. Standard errors, t statistics and
// two-sided p-values come from the classical normal-equations covariance.
func FitOLS(train Dataset) (*OLSSummary, error) {
	n := train.Rows()
	p := train.Schema.NumFeatures()
	terms := p + 1 // intercept first

	if n <= terms {
		return nil, errors.NewInsufficientDataError(n, terms)
	}

	x := mat.NewDense(n, terms, nil)
	y := mat.NewDense(n, 1, nil)
	for i, row := range train.Features {
		x.Set(i, 0, 1)
		for j, v := range row {
			x.Set(i, j+1, v)
		}
		y.Set(i, 0, train.Target[i])
	}

	var qr mat.QR
	qr.Factorize(x)

	var beta mat.Dense
	if err := qr.SolveTo(&beta, false, y); err != nil {
		return nil, fmt.Errorf("solve least squares (collinear features?): %w", err)
	}

	// Residual variance and R².
	var fitted mat.Dense
	fitted.Mul(x, &beta)

	yMean := mean(train.Target)
	var rss, tss float64
	for i := 0; i < n; i++ {
		r := y.At(i, 0) - fitted.At(i, 0)
		rss += r * r
		d := y.At(i, 0) - yMean
		tss += d * d
	}

	dof := float64(n - terms)
	sigma2 := rss / dof

	// Coefficient covariance: sigma² (XᵀX)⁻¹.
	var xtx, xtxInv mat.Dense
	xtx.Mul(x.T(), x)
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("invert normal equations (collinear features?): %w", err)
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dof}

	summary := &OLSSummary{
		Terms: make([]OLSTerm, terms),
		Rows:  n,
	}
	if tss > 0 {
		summary.R2 = 1 - rss/tss
	}

	for j := 0; j < terms; j++ {
		name := "const"
		if j > 0 {
			name = train.Schema.FeatureNames[j-1]
		}

		coef := beta.At(j, 0)
		se := math.Sqrt(sigma2 * xtxInv.At(j, j))

		term := OLSTerm{Name: name, Coefficient: coef, StdError: se}
		if se > 0 {
			term.TValue = coef / se
			term.PValue = 2 * tDist.Survival(math.Abs(term.TValue))
		} else {
			term.PValue = math.NaN()
		}
		summary.Terms[j] = term
	}

	return summary, nil
}
