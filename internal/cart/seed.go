package cart

// SeedCatalog returns the fixed items every shop session starts with, ahead
// of the remote catalog.
func SeedCatalog() []Item {
	return []Item{
		{ID: "seed-1", Name: "Retro Game Console", Image: "https://images.unsplash.com/photo-1486401899868-0e435ed85128", Price: 400},
		{ID: "seed-2", Name: "Mechanical Keyboard", Image: "https://images.unsplash.com/photo-1587829741301-dc798b83add3", Price: 150},
		{ID: "seed-3", Name: "Wireless Headphones", Image: "https://images.unsplash.com/photo-1505740420928-5e560c06d30e", Price: 250},
		{ID: "seed-4", Name: "Vintage Camera", Image: "https://images.unsplash.com/photo-1516035069371-29a1b244cc32", Price: 320},
		{ID: "seed-5", Name: "Smart Watch", Image: "https://images.unsplash.com/photo-1523275335684-37898b6baf30", Price: 199},
		{ID: "seed-6", Name: "Desk Lamp", Image: "https://images.unsplash.com/photo-1507473885765-e6ed057f782c", Price: 45},
	}
}
