package dtos

import "github.com/google/uuid"

// UserAnalytics is the per-user rollup served by the admin analytics
// endpoint and rendered into the PDF report.
type UserAnalytics struct {
	UserID        uuid.UUID     `json:"userId"`
	Services      ServiceStats  `json:"services"`
	Spending      SpendingStats `json:"spending"`
	ReviewsGiven  ReviewStats   `json:"reviewsGiven"`
	DriverRatings *ReviewStats  `json:"driverRatings,omitempty"`
}

type ServiceStats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"byStatus"`
	ByType   map[string]int64 `json:"byType"`
}

// SpendingStats only counts COMPLETED payments in the money figures;
// PaymentCount includes every payment regardless of status.
type SpendingStats struct {
	TotalSpent        float64                `json:"totalSpent"`
	PaymentCount      int                    `json:"paymentCount"`
	CompletedPayments int                    `json:"completedPayments"`
	ByMethod          map[string]MethodTotal `json:"byMethod"`
	Monthly           []MonthlySpend         `json:"monthly"`
}

type MethodTotal struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

type MonthlySpend struct {
	Month  string  `json:"month"` // YYYY-MM
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// ReviewStats averages are 0 when nothing was rated. The optional
// dimensions are averaged over the reviews that filled them in.
type ReviewStats struct {
	Count              int     `json:"count"`
	AverageRating      float64 `json:"averageRating"`
	AveragePunctuality float64 `json:"averagePunctuality"`
	AverageCleanliness float64 `json:"averageCleanliness"`
	AverageCourtesy    float64 `json:"averageCourtesy"`
}
