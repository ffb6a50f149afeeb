package models

// SummaryRow is the per-item aggregate over a date window.
type SummaryRow struct {
	ItemName         string  `json:"item_name"`
	TotalSold        int     `json:"total_sold"`
	TotalRestocked   int     `json:"total_restocked"`
	AvgStartingStock float64 `json:"avg_starting_stock"`
	TotalStock       float64 `json:"total_stock"`
	CurrentStock     int     `json:"current_stock"`
	DaysTracked      int     `json:"days_tracked"`
	TurnoverRate     float64 `json:"turnover_rate"`
}

// DateFilter selects the ledger window for a summary. Days and the
// StartDate/EndDate range are mutually exclusive; an empty filter means all history.
type DateFilter struct {
	Days      *int
	StartDate string
	EndDate   string
}

// TheftStatus classifies a declared-versus-calculated sales comparison.
type TheftStatus string

const (
	TheftMatch    TheftStatus = "match"
	TheftShortage TheftStatus = "shortage"
	TheftSurplus  TheftStatus = "surplus"
)

// TheftCheck is the outcome of comparing calculated sales with declared sales.
type TheftCheck struct {
	ItemName        string      `json:"item_name,omitempty"`
	Date            string      `json:"date,omitempty"`
	CalculatedSales int         `json:"calculated_sales"`
	ActualSales     int         `json:"actual_sales"`
	Difference      int         `json:"difference"`
	Status          TheftStatus `json:"status"`
	Message         string      `json:"message"`
}

// TheftCheckRequest asks for a comparison. When CalculatedSales is nil the
// value is read from the ledger entry for (ItemName, Date). Calculated sales
// reach at most twice MaxCount (starting stock plus restocks).
type TheftCheckRequest struct {
	ItemName        string `validate:"required_without=CalculatedSales"`
	Date            string `validate:"omitempty,datetime=2006-01-02"`
	CalculatedSales *int   `validate:"omitempty,gte=0,lte=4294967294"`
	ActualSales     int    `validate:"gte=0,lte=2147483647"`
}
