package model

// InvoiceLine is one worked day on an invoice.
type InvoiceLine struct {
	Date      Day     `json:"date"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Hours     float64 `json:"hours"`
}

// Invoice is the computed summary for one calendar month.
// TotalHours and TotalAmount are exact; formatting happens on output.
type Invoice struct {
	Number         string        `json:"invoice_number"`
	Year           int           `json:"year"`
	Month          int           `json:"month"`
	MonthName      string        `json:"month_name"`
	Date           string        `json:"date"`
	RecipientEmail string        `json:"recipient_email"`
	Lines          []InvoiceLine `json:"line_items"`
	TotalHours     float64       `json:"total_hours"`
	HourlyRate     float64       `json:"hourly_rate"`
	TotalAmount    float64       `json:"total_amount"`
	ClientName     string        `json:"client_name"`
	ProviderName   string        `json:"provider_name"`
	Dispatched     bool          `json:"dispatched"`
}
