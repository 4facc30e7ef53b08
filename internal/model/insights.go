package model

// SalesPoint is one sample of the revenue series from GET /analytics/sales.
type SalesPoint struct {
	Label   string  `json:"label"`
	Revenue float64 `json:"revenue"`
}

// Bucket is a labelled count in an attendee breakdown.
type Bucket struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// AttendeeInsights is the backend-computed audience breakdown.  The client
// renders it as received.
type AttendeeInsights struct {
	Ages      []Bucket `json:"ages"`
	Interests []Bucket `json:"interests"`
	Locations []Bucket `json:"locations"`
}
