package reconcile

import (
	"time"

	"github.com/rickgao/barcheck/internal/model"
)

// compare checks a and b field by field in OHLCV order. Equality is exact.
// On any difference it returns the pair selected by field, whichever field
// actually diverged.
func compare(day time.Time, a, b model.Bar, field ReportField) (model.Mismatch, bool) {
	if a.Open == b.Open &&
		a.High == b.High &&
		a.Low == b.Low &&
		a.Close == b.Close &&
		a.Volume == b.Volume {
		return model.Mismatch{}, false
	}

	return model.Mismatch{
		Day: day,
		A:   field.value(a),
		B:   field.value(b),
	}, true
}
