package insights

import "time"

// financialTips is the fixed fallback rotation. Order matters: the daily
// index is position-sensitive, so reordering changes which tip users see.
var financialTips = []string{
	"Tracking every expense, no matter how small, is the first step to financial freedom.",
	"Consider the '50/30/20' rule: 50% Needs, 30% Wants, and 20% Savings.",
	"Automating your savings ensures you pay yourself first every month.",
	"Before an impulse purchase, wait 24 hours. Most of the time, the urge passes.",
	"Small changes in daily habits, like brewing coffee at home, can save thousands annually.",
	"Your net worth is more important than your salary. Focus on assets, not just income.",
	"Emergency funds are for peace of mind, not just for emergencies.",
	"Reviewing your subscriptions monthly can catch 'zombie' payments for services you no longer use.",
	"The best investment you can make is in your own financial education.",
	"Compound interest is the eighth wonder of the world. Start saving early.",
}

// DailyTip picks the tip for the calendar date of now: the sum of the date's
// numeric components (year + month + day) modulo the list length. Every user
// sees the same tip on the same day, with no randomness and no stored state.
func DailyTip(now time.Time) string {
	d := now.UTC()
	hash := d.Year() + int(d.Month()) + d.Day()
	return financialTips[hash%len(financialTips)]
}
