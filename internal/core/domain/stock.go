package domain

// Stock is a book's copy counters. Valid stock always satisfies
// 0 <= Available <= Total.
type Stock struct {
	Total     int
	Available int
}

// Valid reports whether the counters satisfy the stock invariant.
func (s Stock) Valid() bool {
	return s.Available >= 0 && s.Available <= s.Total
}

// Reserve claims one copy for an approved loan. Fails with ErrOutOfStock
// when no copy is available; the counters are left untouched.
func (s Stock) Reserve() (Stock, error) {
	if s.Available <= 0 {
		return s, ErrOutOfStock
	}
	s.Available--
	return s, nil
}

// Release returns one copy after a loan is returned. The result is clamped
// to Total; the second return value is true when clamping happened, which
// callers should log as a stock overflow warning. Clamping means a paired
// reserve was lost somewhere, but the invariant is never violated.
func (s Stock) Release() (Stock, bool) {
	if s.Available >= s.Total {
		s.Available = s.Total
		return s, true
	}
	s.Available++
	return s, false
}

// Resize changes Total to newTotal and shifts Available by the same signed
// delta, then clamps Available into [0, newTotal]. Copies out on loan stay
// out on loan: increasing Total frees new copies, decreasing it removes
// available copies first.
func (s Stock) Resize(newTotal int) Stock {
	if newTotal < 0 {
		newTotal = 0
	}
	delta := newTotal - s.Total
	s.Total = newTotal
	s.Available += delta
	if s.Available < 0 {
		s.Available = 0
	}
	if s.Available > s.Total {
		s.Available = s.Total
	}
	return s
}
