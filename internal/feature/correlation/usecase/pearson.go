package usecase

import (
	"math"

	"github.com/shopspring/decimal"

	"altdata_backend/internal/feature/correlation/domain/entity"
)

// Pearson は x と y の標本ピアソン相関係数を返します。
//
//	r = (nΣxy − ΣxΣy) / sqrt((nΣx² − (Σx)²)(nΣy² − (Σy)²))
//
// どちらかの分散が0で分母が0になる場合は 0 を返します。結果のクランプは行いません。
func Pearson(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, ErrLengthMismatch
	}
	n := float64(len(x))
	if len(x) < 2 {
		return 0, ErrInsufficientData
	}

	var sx, sy, sxy, sxx, syy float64
	for i := range x {
		sx += x[i]
		sy += y[i]
		sxy += x[i] * y[i]
		sxx += x[i] * x[i]
		syy += y[i] * y[i]
	}

	num := n*sxy - sx*sy
	den := math.Sqrt((n*sxx - sx*sx) * (n*syy - sy*sy))
	if den == 0 {
		return 0, nil
	}
	return num / den, nil
}

// pearsonPoints は揃えた系列に対してPearsonを計算します。
func pearsonPoints(pts []entity.Point) (float64, error) {
	x := make([]float64, len(pts))
	y := make([]float64, len(pts))
	for i, p := range pts {
		x[i] = p.X
		y[i] = p.Y
	}
	return Pearson(x, y)
}

// round4 は表示用に小数点以下4桁へ丸めます。
func round4(r float64) float64 {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return r
	}
	return decimal.NewFromFloat(r).Round(4).InexactFloat64()
}
