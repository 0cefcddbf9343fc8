package assistant

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"studentspend/internal/core"
)

// Greeting opens every conversation.
const Greeting = "Hi there! 👋 I'm your AI financial assistant. I'm here to help you manage your expenses, set savings goals, and make smarter financial decisions. How can I help you today?"

const (
	recentLimit     = 3
	noExpensesReply = "You haven't recorded any expenses yet. Start tracking to get personalized insights! 📝"
)

// largePurchase is the amount above which a recent expense earns a caution.
var largePurchase = decimal.NewFromInt(50)

var budgetTips = []string{
	"Try the 24-hour rule: wait a day before making non-essential purchases. You might find you don't need it! 🤔",
	"Use the envelope method: allocate cash for each spending category. When it's gone, you're done for the month! 💰",
	"Track every expense for a week - you'll be amazed at where your money goes! 📊",
	"Set up automatic transfers to savings so you save before you spend! 🏦",
	"Use apps to find coupons and cashback before shopping. Every dollar saved is a dollar earned! 🎯",
}

var usd = core.FormatDollars

func spendingReply(in Input, _ Source) string {
	s := in.Stats
	top, ok := s.TopCategory()
	if !ok {
		return fmt.Sprintf("You've spent %s this month out of your $%s goal.", usd(s.MonthlySpent), s.SavingsGoal.String())
	}
	head := fmt.Sprintf("You've spent %s this month. Your biggest expense category is %s with %s. ",
		usd(s.MonthlySpent), top.Category, usd(top.Amount))
	if s.OnTrack() {
		return head + fmt.Sprintf("Great news! You're still on track with %s left in your budget. Keep it up! 🎯", usd(s.CurrentSavings))
	}
	return head + fmt.Sprintf("You're over budget by %s. Consider reducing %s expenses or adjusting your savings goal. 💡",
		usd(s.Overage()), top.Category)
}

func savingsReply(in Input, _ Source) string {
	s := in.Stats
	head := fmt.Sprintf("Your savings goal is $%s. You've spent %s, which means you're ", s.SavingsGoal.String(), usd(s.MonthlySpent))
	if pct := s.RemainingPercent(); pct.IsPositive() {
		return head + fmt.Sprintf("doing great with %s%% of your goal remaining! 🌟", pct.StringFixed(1))
	}
	return head + "over budget. Try the 50/30/20 rule: 50% needs, 30% wants, 20% savings. Start small and build the habit! 💪"
}

func foodReply(in Input, _ Source) string {
	return fmt.Sprintf(`You've spent %s on food this month. Here are some tips: meal prep on Sundays, cook at home more often, and try the "$5 lunch challenge" - pack lunch instead of buying it! 🍱`,
		usd(in.Stats.Spent(core.Food)))
}

func transportReply(in Input, _ Source) string {
	return fmt.Sprintf("Transportation costs: %s this month. Consider carpooling, public transit, or biking when possible. Even walking more can save money and improve your health! 🚲",
		usd(in.Stats.Spent(core.Transport)))
}

func tipReply(_ Input, src Source) string {
	return budgetTips[src.IntN(len(budgetTips))]
}

func recentReply(in Input, _ Source) string {
	recent := core.RecentExpenses(in.Expenses, recentLimit)
	if len(recent) == 0 {
		return noExpensesReply
	}
	items := make([]string, 0, len(recent))
	large := false
	for _, e := range recent {
		items = append(items, fmt.Sprintf("$%s on %s", e.Amount.String(), e.Description))
		if e.Amount.GreaterThan(largePurchase) {
			large = true
		}
	}
	msg := "Your recent expenses: " + strings.Join(items, ", ") + ". "
	if large {
		return msg + "I notice some larger purchases - make sure they align with your financial goals! 🎯"
	}
	return msg + "Good job on keeping expenses reasonable! 👏"
}

func fallbackReply(in Input, src Source) string {
	s := in.Stats
	standing := "over budget"
	if s.OnTrack() {
		standing = "on track"
	}
	replies := []string{
		fmt.Sprintf("I'm here to help you manage your finances better! You currently have %s left in your monthly budget. What would you like to know? 💡", usd(s.CurrentSavings)),
		fmt.Sprintf("Great question! Based on your spending of %s this month, I can help you optimize your budget. What specific area interests you? 📊", usd(s.MonthlySpent)),
		fmt.Sprintf("Let's work together to improve your financial health! You're currently %s this month. Ask me about saving tips, expense analysis, or budgeting strategies! 🚀", standing),
		fmt.Sprintf("I love helping students save money! With %s in total expenses tracked, we can find patterns and opportunities to save. What's on your mind? 🎓", usd(s.TotalSpent)),
	}
	return replies[src.IntN(len(replies))]
}
