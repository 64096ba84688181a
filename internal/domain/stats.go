package domain

// Stats backs the admin dashboard counters.
type Stats struct {
	Products      int64 `json:"products"`
	Categories    int64 `json:"categories"`
	Customers     int64 `json:"customers"`
	Orders        int64 `json:"orders"`
	PendingOrders int64 `json:"pendingOrders"`
}
