package dto

type RouteResponse struct {
	LoadIDs []int   `json:"load_ids"`
	Time    float64 `json:"time"`
	Valid   bool    `json:"valid"`
}

type PlanResponse struct {
	RunID      string          `json:"run_id,omitempty"`
	Engine     string          `json:"engine"`
	Status     string          `json:"status"`
	Cached     bool            `json:"cached"`
	Cost       float64         `json:"cost"`
	NumDrivers int             `json:"num_drivers"`
	Valid      bool            `json:"valid"`
	Routes     []RouteResponse `json:"routes"`
	Unassigned []int           `json:"unassigned"`
	Warnings   []string        `json:"warnings"`
	ElapsedMS  int64           `json:"elapsed_ms"`
}
