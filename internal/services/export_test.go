package services

// SetOrderIDGenerator replaces the orderId generator of s.
func SetOrderIDGenerator(s *OrderService, gen func() string) {
	s.newOrderID = gen
}
