package store

// Package is a purchasable offer: a one-time credit bundle or the monthly
// premium subscription. Prices are in satang (Stripe minor units, THB).
type Package struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Price   int64  `json:"price"`
	Credits int    `json:"credits"`
	Type    string `json:"type"`
}

var packages = map[string]*Package{
	"starter": {ID: "starter", Label: "Starter - 5 เครดิต", Price: 2900, Credits: 5, Type: "one_time"},
	"popular": {ID: "popular", Label: "Standard - 15 เครดิต", Price: 7900, Credits: 15, Type: "one_time"},
	"pro":     {ID: "pro", Label: "Pro - 30 เครดิต", Price: 14900, Credits: 30, Type: "one_time"},
	"premium": {ID: "premium", Label: "SatDuangDao Premium รายเดือน", Price: 9900, Credits: 0, Type: "subscription"},
}

func Find(id string) (*Package, bool) {
	pkg, ok := packages[id]
	return pkg, ok
}

// All returns the catalog in a stable order for the storefront.
func All() []*Package {
	return []*Package{packages["starter"], packages["popular"], packages["pro"], packages["premium"]}
}
