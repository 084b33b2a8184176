package notifier

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"CandleSentinel/internal/calculator"
	"CandleSentinel/internal/market"
	"CandleSentinel/internal/model"
)

const timeLayout = "2006-01-02 15:04"

// money renders a dollar amount with two decimals. Non-finite values are
// printed as-is since decimal cannot represent them.
func money(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprintf("$%v", v)
	}
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

func optMoney(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return money(*v)
}

// FormatAnalysis renders the headline block of a simulation run.
func FormatAnalysis(s model.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Intraday Simulation for %s (Reversed Logic)\n", s.Symbol)
	if s.Empty() {
		b.WriteString("Date Range: N/A\n")
	} else {
		fmt.Fprintf(&b, "Date Range: %s - %s\n", s.From.Format(timeLayout), s.To.Format(timeLayout))
	}
	fmt.Fprintf(&b, "Initial Capital: %s\n", money(s.InitialCapital))
	fmt.Fprintf(&b, "Final Capital: %s\n", money(s.FinalCapital))
	fmt.Fprintf(&b, "Total P/L: %s\n", money(s.TotalProfitLoss))
	fmt.Fprintf(&b, "Number of Trades: %d\n", s.TradeCount)
	return b.String()
}

// FormatTradeLog renders the ledger as a fixed-width table.
func FormatTradeLog(trades []model.Trade) string {
	if len(trades) == 0 {
		return "No trades executed yet.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-16s %-8s %-6s %10s %10s %6s %10s\n",
		"Time", "Action", "Ticker", "Buy", "Sell", "Qty", "P/L")
	for _, t := range trades {
		fmt.Fprintf(&b, "%-16s %-8s %-6s %10s %10s %6d %10s\n",
			t.Time.Format(timeLayout), t.Action, t.Ticker,
			optMoney(t.BuyPrice), optMoney(t.SellPrice), t.Quantity, optMoney(t.ProfitLoss))
	}
	return b.String()
}

// Marker is a chart annotation for a trade or a detected pattern.
type Marker struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
	Type  string    `json:"type"`
	Label string    `json:"label"`
}

// Markers lists trade markers followed by pattern markers. Trades are placed
// at their execution price; patterns at the close of their anchor candle.
func Markers(series model.Series, trades []model.Trade, occs []model.Occurrence) []Marker {
	out := make([]Marker, 0, len(trades)+len(occs))
	for _, t := range trades {
		price := t.SellPrice
		if t.Action == model.ActionBuy {
			price = t.BuyPrice
		}
		if price == nil {
			continue
		}
		out = append(out, Marker{Time: t.Time, Value: *price, Type: string(t.Action), Label: string(t.Action)})
	}
	for _, o := range occs {
		if o.Anchor < 0 || o.Anchor >= len(series) {
			continue
		}
		c := series[o.Anchor]
		out = append(out, Marker{Time: c.Time, Value: c.Close, Type: "Pattern", Label: string(o.Kind)})
	}
	return out
}

// FormatMarketStatus renders the exchange session state.
func FormatMarketStatus(st market.Status) string {
	if st.Open {
		return fmt.Sprintf("🟢 Market open | %s", st.Now.Format(timeLayout+" MST"))
	}
	if st.NextOpen.IsZero() {
		return "🔴 Market closed"
	}
	return fmt.Sprintf("🔴 Market closed | opens %s (in %s)",
		st.NextOpen.Format(timeLayout+" MST"), formatCountdown(st.Countdown))
}

func formatCountdown(d time.Duration) string {
	d = d.Truncate(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h >= 24 {
		return fmt.Sprintf("%dd %dh %dm", h/24, h%24, m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// FormatRunReport renders the Telegram message for a finished run.
func FormatRunReport(run *model.RunRecord, stats model.SessionStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🕯 <b>CandleSentinel</b> | %s\n\n", html.EscapeString(run.Symbol))
	fmt.Fprintf(&b, "<pre>%s</pre>\n", html.EscapeString(FormatAnalysis(run.Summary)))

	fmt.Fprintf(&b, "📈 <b>Session</b>: last %.2f | SMA20 %.2f | RSI14 %.1f | ATR14 %.3f\n",
		stats.LastClose, stats.SMA20, stats.RSI14, stats.ATR14)
	fmt.Fprintf(&b, "   range %.2f - %.2f (position %.0f%%)\n", stats.Low, stats.High, stats.Position*100)
	fmt.Fprintf(&b, "🔎 Patterns detected: %d\n", len(run.Patterns))

	if buy, ok := lastBuy(run.Trades); ok {
		fmt.Fprintf(&b, "🎯 Last entry %s: stop %s | target %s\n",
			money(*buy.BuyPrice),
			money(calculator.StopLoss(*buy.BuyPrice, run.Params.RiskPct)),
			money(calculator.TargetPrice(*buy.BuyPrice, run.Params.GreedPct)))
	}

	if len(run.Trades) > 0 {
		fmt.Fprintf(&b, "\n<pre>%s</pre>", html.EscapeString(FormatTradeLog(run.Trades)))
	} else {
		b.WriteString("\nNo trades executed yet.")
	}
	return b.String()
}

func lastBuy(trades []model.Trade) (model.Trade, bool) {
	for i := len(trades) - 1; i >= 0; i-- {
		if trades[i].Action == model.ActionBuy && trades[i].BuyPrice != nil {
			return trades[i], true
		}
	}
	return model.Trade{}, false
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return "Commands:\n" +
		"/backtest [SYMBOL] - simulate the latest session\n" +
		"/last [SYMBOL] - show the most recent recorded run\n" +
		"/status - market open/closed\n" +
		"/settings - show the simulation settings\n" +
		"/set FIELD VALUE - change capital, risk, greed, commission, platform or symbol\n" +
		"/reset - restore the default settings\n" +
		"/help - this message"
}
