package filters

// Unassigned is the sentinel value a caller puts inside an inclusion list to
// match rows whose dimension is NULL or empty. It is distinct from an empty
// list, which leaves the dimension unrestricted.
const Unassigned = "Unassigned"

// Criteria is the structured filter object the dashboard and chat surfaces
// accept. All fields are optional; zero values restrict nothing.
type Criteria struct {
	StartDate string `json:"start_date,omitempty"` // inclusive, YYYY-MM-DD
	EndDate   string `json:"end_date,omitempty"`   // inclusive, YYYY-MM-DD
	Currency  string `json:"currency,omitempty"`

	Countries    []string `json:"countries,omitempty"`
	Clients      []string `json:"clients,omitempty"`
	ProductTypes []string `json:"product_types,omitempty"`
	Brands       []string `json:"brands,omitempty"`
	Suppliers    []string `json:"suppliers,omitempty"`

	// Dimensions holds ad-hoc inclusion lists keyed by dimension name.
	// Keys outside the allow-list fail validation.
	Dimensions map[string][]string `json:"dimensions,omitempty"`
}

// InvalidFilterError reports malformed caller input. It is surfaced as a
// client error before any query reaches the store.
type InvalidFilterError struct {
	Reason string
}

func (e *InvalidFilterError) Error() string {
	return "invalid filter: " + e.Reason
}
