package indicator

// SMA is the simple moving average of the last period closes. When fewer
// closes are available all of them are averaged. It returns 0 for no closes.
func SMA(closes []float64, period int) float64 {
	return Mean(tail(closes, period))
}
