package normalize

import (
	"github.com/shopspring/decimal"

	"nestmind/apps/gateway/internal/domain"
)

const (
	housingFallbackAnswer = "I'm having trouble connecting right now. The housing market near most universities ranges from $500-1200/month for shared apartments. Check Facebook groups for your university and Zillow for listings. Always read the lease carefully before signing."
	budgetFallbackTopTip  = "Cook at home. Eating out is the #1 budget killer for students."
	guideFallbackAnswer   = "That's a great question. For most campus-related things, your international student office is the best first stop. They deal with this stuff daily and can give you advice specific to your situation. Also check your university's website for student resources."
	guideFallbackNote     = "Always keep your I-20 and passport documents safe and accessible."
	careerFallbackAnswer  = "The job market for international students is competitive but not impossible. Start with your university's career center - they often have connections with companies that sponsor visas. Apply to large tech companies and consulting firms early, they have the most established sponsorship programs."
	careerFallbackVisa    = "On F1 visa, you get 12 months OPT (36 months if STEM). Apply for OPT 90 days before graduation."
	careerFallbackOutlook = "Tech and engineering fields have the strongest demand for international talent."

	// ChatFallbackText is the conversational reply when the model is unavailable.
	ChatFallbackText = "having some connection issues right now. try again in a sec."
)

func housingFallback(meta domain.Meta) domain.HousingResponse {
	return domain.HousingResponse{
		Answer: housingFallbackAnswer,
		Tips: []string{
			"Check Facebook groups for student housing",
			"Never pay deposit before seeing the place",
			"Ask about utilities included or not",
		},
		PriceRange: &domain.PriceRange{Low: 500, High: 1200},
		Meta:       meta,
	}
}

func budgetFallback(req domain.BudgetRequest, meta domain.Meta) domain.BudgetResponse {
	summary := Summarize(req)
	return domain.BudgetResponse{
		Answer:         "Based on your expenses, you're spending about $" + formatAmount(summary.Total) + " so far. A good rule for students is 50/30/20 - 50% needs, 30% wants, 20% savings. Track every dollar for a week and you'll find at least $50 you didn't need to spend.",
		Anomalies:      []domain.Anomaly{},
		MonthlySummary: &summary,
		TopTip:         budgetFallbackTopTip,
		Meta:           meta,
	}
}

// Summarize projects a month from the expenses seen so far: projected is twice
// the running total and savings is income (0 when absent) minus projected.
func Summarize(req domain.BudgetRequest) domain.MonthlySummary {
	total := decimal.Zero
	for _, e := range req.Expenses {
		total = total.Add(decimal.NewFromFloat(e.Amount))
	}
	projected := total.Mul(decimal.NewFromInt(2))
	income := decimal.Zero
	if req.Income != nil {
		income = decimal.NewFromFloat(*req.Income)
	}
	return domain.MonthlySummary{
		Total:     total.InexactFloat64(),
		Projected: projected.InexactFloat64(),
		Savings:   income.Sub(projected).InexactFloat64(),
	}
}

func formatAmount(v float64) string {
	return decimal.NewFromFloat(v).String()
}

func guideFallback(meta domain.Meta) domain.GuideResponse {
	return domain.GuideResponse{
		Answer: guideFallbackAnswer,
		ActionSteps: []string{
			"Visit your international student office",
			"Check university website for resources",
			"Join student groups on social media",
		},
		ImportantNote: guideFallbackNote,
		RelatedTopics: []string{"student services", "campus resources"},
		Meta:          meta,
	}
}

func careerFallback(meta domain.Meta) domain.CareerResponse {
	return domain.CareerResponse{
		Answer: careerFallbackAnswer,
		NextSteps: []string{
			"Update your LinkedIn profile",
			"Visit university career center",
			"Start applying 6 months before graduation",
		},
		Companies:     []string{"Amazon", "Google", "Microsoft", "Deloitte", "JP Morgan"},
		VisaNote:      careerFallbackVisa,
		MarketOutlook: careerFallbackOutlook,
		Meta:          meta,
	}
}
