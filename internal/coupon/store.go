package coupon

// mapStore implements Store using a map for O(1) lookups.
type mapStore struct {
	coupons map[string]*Coupon
}

// NewMapStore creates a new map-based coupon store.
func NewMapStore(capacity int) Store {
	return &mapStore{
		coupons: make(map[string]*Coupon, capacity),
	}
}

// Get looks up a coupon definition by code.
func (s *mapStore) Get(code string) (*Coupon, bool) {
	c, ok := s.coupons[code]
	return c, ok
}

// Size returns the number of coupons in the store.
func (s *mapStore) Size() int {
	return len(s.coupons)
}

// Add adds a coupon definition to the store.
func (s *mapStore) Add(c *Coupon) {
	s.coupons[c.Code] = c
}
