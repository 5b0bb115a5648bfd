package bce

// Accumulator keeps one value per key. The first value offered for a key is stored
// as-is; every later offer is passed to resolve together with the stored value and
// the result replaces it.
type Accumulator[K comparable, V any] struct {
	values  map[K]V
	resolve func(current, candidate V) V
}

// NewAccumulator creates an Accumulator with the given conflict policy.
func NewAccumulator[K comparable, V any](resolve func(current, candidate V) V) *Accumulator[K, V] {
	return &Accumulator[K, V]{
		values:  make(map[K]V),
		resolve: resolve,
	}
}

// Offer folds candidate into the value stored under key.
func (a *Accumulator[K, V]) Offer(key K, candidate V) {
	current, ok := a.values[key]
	if !ok {
		a.values[key] = candidate
		return
	}
	a.values[key] = a.resolve(current, candidate)
}

// Get returns the value stored under key.
func (a *Accumulator[K, V]) Get(key K) (V, bool) {
	v, ok := a.values[key]
	return v, ok
}

// Has reports whether key holds a value.
func (a *Accumulator[K, V]) Has(key K) bool {
	_, ok := a.values[key]
	return ok
}

// Len returns the number of keys.
func (a *Accumulator[K, V]) Len() int {
	return len(a.values)
}

// Keys returns the keys in unspecified order.
func (a *Accumulator[K, V]) Keys() []K {
	keys := make([]K, 0, len(a.values))
	for k := range a.values {
		keys = append(keys, k)
	}
	return keys
}

// KeepFirst is the policy for values where the first one seen wins.
func KeepFirst[V any](current, _ V) V {
	return current
}

// LowestRank keeps the candidate only when its rank is strictly lower.
func LowestRank(current, candidate RankedValue) RankedValue {
	if candidate.Rank < current.Rank {
		return candidate
	}
	return current
}

// FillContact fills the fields of current that are still empty from candidate.
func FillContact(current, candidate Contact) Contact {
	if current.Phone == "" {
		current.Phone = candidate.Phone
	}
	if current.Email == "" {
		current.Email = candidate.Email
	}
	if current.Website == "" {
		current.Website = candidate.Website
	}
	return current
}

// MergeActivity adds the candidate's codes to current and promotes the candidate's
// primary code when it is strictly longer (more specific).
func MergeActivity(current, candidate *CandidateActivity) *CandidateActivity {
	for code := range candidate.MatchedCodes {
		current.MatchedCodes[code] = struct{}{}
	}
	if len(candidate.PrimaryCode) > len(current.PrimaryCode) {
		current.PrimaryCode = candidate.PrimaryCode
		current.Category = candidate.Category
	}
	return current
}
