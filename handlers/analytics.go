package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"time"

	"marketplace-backend/dtos"
	"marketplace-backend/models"
	"marketplace-backend/reports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type groupCount struct {
	Bucket string
	Count  int64
}

func countBy(db *gorm.DB, column string, userID uuid.UUID) (map[string]int64, int64, error) {
	var rows []groupCount
	err := db.Model(&models.Service{}).
		Select(column+" AS bucket, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	counts := make(map[string]int64, len(rows))
	var total int64
	for _, r := range rows {
		counts[r.Bucket] = r.Count
		total += r.Count
	}
	return counts, total, nil
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// summarizePayments reduces a payment history. Money figures only include
// completed payments.
func summarizePayments(payments []models.Payment) dtos.SpendingStats {
	stats := dtos.SpendingStats{
		PaymentCount: len(payments),
		ByMethod:     map[string]dtos.MethodTotal{},
		Monthly:      []dtos.MonthlySpend{},
	}

	total := decimal.Zero
	byMethod := map[string]decimal.Decimal{}
	methodCount := map[string]int{}
	byMonth := map[string]decimal.Decimal{}
	monthCount := map[string]int{}

	for _, p := range payments {
		if p.Status != models.PaymentStatusCompleted {
			continue
		}
		amount := decimal.NewFromFloat(p.Amount)
		stats.CompletedPayments++
		total = total.Add(amount)

		method := string(p.Method)
		byMethod[method] = byMethod[method].Add(amount)
		methodCount[method]++

		month := p.CreatedAt.UTC().Format("2006-01")
		byMonth[month] = byMonth[month].Add(amount)
		monthCount[month]++
	}

	stats.TotalSpent = money(total)
	for method, amount := range byMethod {
		stats.ByMethod[method] = dtos.MethodTotal{Count: methodCount[method], Amount: money(amount)}
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)
	for _, m := range months {
		stats.Monthly = append(stats.Monthly, dtos.MonthlySpend{Month: m, Count: monthCount[m], Amount: money(byMonth[m])})
	}

	return stats
}

// average is sum/n rounded to two places, or 0 when nothing was counted.
func average(sum decimal.Decimal, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum.Div(decimal.NewFromInt(int64(n))).Round(2).InexactFloat64()
}

type dimension struct {
	sum decimal.Decimal
	n   int
}

func (d *dimension) add(v *int) {
	if v == nil {
		return
	}
	d.sum = d.sum.Add(decimal.NewFromInt(int64(*v)))
	d.n++
}

func summarizeReviews(reviews []models.Review) dtos.ReviewStats {
	var rating, punctuality, cleanliness, courtesy dimension
	for _, r := range reviews {
		v := r.Rating
		rating.add(&v)
		punctuality.add(r.PunctualityRating)
		cleanliness.add(r.CleanlinessRating)
		courtesy.add(r.CourtesyRating)
	}
	return dtos.ReviewStats{
		Count:              len(reviews),
		AverageRating:      average(rating.sum, rating.n),
		AveragePunctuality: average(punctuality.sum, punctuality.n),
		AverageCleanliness: average(cleanliness.sum, cleanliness.n),
		AverageCourtesy:    average(courtesy.sum, courtesy.n),
	}
}

func buildUserAnalytics(db *gorm.DB, user models.User) (dtos.UserAnalytics, error) {
	a := dtos.UserAnalytics{UserID: user.ID}

	byStatus, total, err := countBy(db, "status", user.ID)
	if err != nil {
		return a, err
	}
	byType, _, err := countBy(db, "service_type", user.ID)
	if err != nil {
		return a, err
	}
	a.Services = dtos.ServiceStats{Total: total, ByStatus: byStatus, ByType: byType}

	var payments []models.Payment
	if err := db.Where("user_id = ?", user.ID).Order("created_at").Find(&payments).Error; err != nil {
		return a, err
	}
	a.Spending = summarizePayments(payments)

	var given []models.Review
	if err := db.Where("reviewer_id = ?", user.ID).Find(&given).Error; err != nil {
		return a, err
	}
	a.ReviewsGiven = summarizeReviews(given)

	if user.DriverProfile != nil {
		var received []models.Review
		if err := db.Where("driver_id = ?", user.DriverProfile.ID).Find(&received).Error; err != nil {
			return a, err
		}
		ratings := summarizeReviews(received)
		a.DriverRatings = &ratings
	}

	return a, nil
}

type AnalyticsHandler struct {
	DB *gorm.DB
}

func (h *AnalyticsHandler) loadUser(c *gin.Context) (*models.User, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	var user models.User
	if err := first(h.DB.WithContext(c.Request.Context()).Preload("DriverProfile"), &user, "User", "id = ?", id); err != nil {
		respondError(c, err)
		return nil, false
	}
	return &user, true
}

func (h *AnalyticsHandler) GetUserAnalytics(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}

	a, err := buildUserAnalytics(h.DB.WithContext(c.Request.Context()), *user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, a)
}

// GetUserAnalyticsReport serves the same rollup as a PDF download.
func (h *AnalyticsHandler) GetUserAnalyticsReport(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}

	a, err := buildUserAnalytics(h.DB.WithContext(c.Request.Context()), *user)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	subject := reports.Subject{
		Name:        user.FullName(),
		Email:       user.Email,
		Role:        user.Role,
		GeneratedAt: time.Now(),
	}
	if err := reports.WriteUserAnalytics(&buf, subject, a); err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("user-analytics-%s.pdf", user.ID.String()[:8])
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
