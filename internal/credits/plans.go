package credits

const (
	PlanFree    = "free"
	PlanStarter = "starter"
	PlanPro     = "pro"
	PlanUltra   = "ultra"

	WelcomeBonusCredits     = 5
	WelcomeBonusDescription = "Welcome bonus - Free tier"
)

// Plan defines a subscription plan tier.
type Plan struct {
	ID                string
	DisplayName       string
	MonthlyPriceCents int64
	YearlyPriceCents  int64
	MonthlyCredits    int
}

// Plans holds all available plans keyed by plan ID.
var Plans = map[string]*Plan{
	PlanFree: {
		ID:             PlanFree,
		DisplayName:    "Free",
		MonthlyCredits: 5,
	},
	PlanStarter: {
		ID:                PlanStarter,
		DisplayName:       "Starter",
		MonthlyPriceCents: 799,
		YearlyPriceCents:  7670,
		MonthlyCredits:    100,
	},
	PlanPro: {
		ID:                PlanPro,
		DisplayName:       "Pro",
		MonthlyPriceCents: 1499,
		YearlyPriceCents:  14390,
		MonthlyCredits:    200,
	},
	PlanUltra: {
		ID:                PlanUltra,
		DisplayName:       "Ultra",
		MonthlyPriceCents: 2999,
		YearlyPriceCents:  28790,
		MonthlyCredits:    400,
	},
}

// PlanOrder defines the display ordering of plans.
var PlanOrder = []string{PlanFree, PlanStarter, PlanPro, PlanUltra}

// GetPlan returns a plan by its ID.
func GetPlan(id string) *Plan {
	return Plans[id]
}

// CreditPack is a one-time credit purchase option.
type CreditPack struct {
	Credits    int
	PriceCents int64
	PriceID    string
}

var CreditPacks = []CreditPack{
	{Credits: 40, PriceCents: 399, PriceID: "credits_40"},
	{Credits: 80, PriceCents: 699, PriceID: "credits_80"},
	{Credits: 200, PriceCents: 1699, PriceID: "credits_200"},
	{Credits: 400, PriceCents: 3299, PriceID: "credits_400"},
}

// GetCreditPack returns the pack with the given price ID, or nil.
func GetCreditPack(priceID string) *CreditPack {
	for i := range CreditPacks {
		if CreditPacks[i].PriceID == priceID {
			return &CreditPacks[i]
		}
	}
	return nil
}
