// Command dashboard is a terminal front end for the proxy API: market table,
// mock portfolio, swap quotes, pools and address activity.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/aamijar/tokenomics/client"
	"github.com/aamijar/tokenomics/internal/core"
	"github.com/aamijar/tokenomics/internal/model"
	"github.com/aamijar/tokenomics/internal/portfolio"
)

const usage = `usage: dashboard [-api URL] <command> [flags]

commands:
  markets   [-ids a,b]                       market table
  portfolio                                  mock holdings valued at market prices
  quote     -from T -to T -amount N [-chain] swap quote
  swap      -from T -to T -amount N -sender ADDR [-chain] [-slippage BPS]
  pools                                      pool overview
  activity  ADDRESS                          recent activity of an address
  watch     [-ids a,b] [-interval 15s]       refresh the market table until interrupted
`

func main() {
	apiURL := flag.String("api", envOr("DASHBOARD_API", "http://localhost:8787"), "proxy API base URL")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app := &dashboard{
		api:       client.New(*apiURL, nil),
		portfolio: portfolio.NewStore(),
		out:       os.Stdout,
		logger:    slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}

	if err := app.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type dashboard struct {
	api       *client.Client
	portfolio *portfolio.Store
	out       io.Writer
	logger    *slog.Logger
}

var errUsage = errors.New("invalid usage")

func (d *dashboard) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "markets":
		fs := flag.NewFlagSet("markets", flag.ContinueOnError)
		ids := fs.String("ids", "", "comma-separated token ids")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return d.markets(ctx, splitIDs(*ids))
	case "portfolio":
		return d.showPortfolio(ctx)
	case "quote":
		fs := flag.NewFlagSet("quote", flag.ContinueOnError)
		from := fs.String("from", "", "token to sell")
		to := fs.String("to", "", "token to buy")
		amount := fs.String("amount", "", "amount to sell")
		chain := fs.Int64("chain", 1, "chain id")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return d.quote(ctx, model.QuoteParams{FromToken: *from, ToToken: *to, Amount: *amount, ChainID: *chain})
	case "swap":
		fs := flag.NewFlagSet("swap", flag.ContinueOnError)
		from := fs.String("from", "", "token to sell")
		to := fs.String("to", "", "token to buy")
		amount := fs.String("amount", "", "amount to sell")
		minOut := fs.String("min-out", "", "minimum amount to receive")
		sender := fs.String("sender", "", "wallet address")
		chain := fs.Int64("chain", 1, "chain id")
		slippage := fs.Int("slippage", 50, "slippage in basis points")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return d.swap(ctx, client.SwapRequest{
			FromToken:    *from,
			ToToken:      *to,
			Amount:       *amount,
			MinAmountOut: *minOut,
			ChainID:      *chain,
			From:         *sender,
			SlippageBps:  *slippage,
		})
	case "pools":
		return d.pools(ctx)
	case "activity":
		if len(args) != 1 {
			return fmt.Errorf("activity needs one address: %w", errUsage)
		}
		return d.activity(ctx, args[0])
	case "watch":
		fs := flag.NewFlagSet("watch", flag.ContinueOnError)
		ids := fs.String("ids", "", "comma-separated token ids")
		interval := fs.Duration("interval", core.DefaultInterval, "refresh interval")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return d.watch(ctx, splitIDs(*ids), *interval)
	default:
		return fmt.Errorf("unknown command %q: %w", command, errUsage)
	}
}

func (d *dashboard) markets(ctx context.Context, ids []string) error {
	rows, err := d.api.Prices(ctx, ids)
	if err != nil {
		return err
	}
	d.printMarkets(rows)
	return nil
}

func (d *dashboard) printMarkets(rows []model.MarketRow) {
	if len(rows) == 0 {
		fmt.Fprintln(d.out, "no market data available")
		return
	}

	w := tabwriter.NewWriter(d.out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "SYMBOL\tNAME\tPRICE\t24H\tMARKET CAP\t7D\t")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%+.2f%%\t%s\t%s\t\n",
			r.Symbol, r.Name, formatUSD(r.Price), r.Change24hPct, formatUSD(r.MarketCap), sparkline(r.Sparkline7d, 20))
	}
	_ = w.Flush()
}

func (d *dashboard) showPortfolio(ctx context.Context) error {
	rows, err := d.api.Prices(ctx, d.portfolio.IDs())
	if err != nil {
		return err
	}
	valuation := d.portfolio.Value(rows)

	w := tabwriter.NewWriter(d.out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "SYMBOL\tAMOUNT\tPRICE\tVALUE\t")
	for _, p := range valuation.Positions {
		price := "n/a"
		if p.Priced {
			price = "$" + p.Price.StringFixed(4)
		}
		fmt.Fprintf(w, "%s\t%g\t%s\t$%s\t\n", p.Symbol, p.Amount, price, p.Value.StringFixed(2))
	}
	fmt.Fprintf(w, "TOTAL\t\t\t$%s\t\n", valuation.Total.StringFixed(2))
	return w.Flush()
}

func (d *dashboard) quote(ctx context.Context, p model.QuoteParams) error {
	quote, err := d.api.Quote(ctx, p)
	if err != nil {
		return err
	}

	fmt.Fprintf(d.out, "%s %s -> %s %s via %s\n", quote.Amount, quote.FromToken, quote.ToAmount, quote.ToToken, quote.Provider)
	fmt.Fprintf(d.out, "price impact: %.2f%%  est. gas: %s\n", float64(quote.PriceImpactBps)/100, formatUSD(quote.EstimatedGasUSD))
	for _, step := range quote.Route {
		fmt.Fprintf(d.out, "  route: %s %.0f%%\n", step.Protocol, step.Portion*100)
	}
	d.printNotice(quote.Notice)
	return nil
}

func (d *dashboard) swap(ctx context.Context, req client.SwapRequest) error {
	tx, err := d.api.Swap(ctx, req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(d.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tx); err != nil {
		return err
	}
	d.printNotice(tx.Notice)
	return nil
}

func (d *dashboard) pools(ctx context.Context) error {
	overview, err := d.api.Pools(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(d.out, "total TVL: %s\n", formatUSD(overview.TVLUSD))
	w := tabwriter.NewWriter(d.out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "POOL\tCHAIN\tFEE\tTVL\tVOLUME 24H\tAPR\t")
	for _, p := range overview.Pools {
		fmt.Fprintf(w, "%s\t%s\t%.2f%%\t%s\t%s\t%.2f%%\t\n",
			p.Name, p.Chain, float64(p.FeeTierBps)/100, formatUSD(p.TVLUSD), formatUSD(p.Volume24hUSD), p.APR)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	d.printNotice(overview.Notice)
	return nil
}

func (d *dashboard) activity(ctx context.Context, address string) error {
	resp, err := d.api.Activity(ctx, address)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(d.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tCHAIN\tTYPE\tSTATUS\tSUMMARY\tHASH")
	for _, item := range resp.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			time.Unix(item.Timestamp, 0).Format(time.DateTime), item.Chain, item.Type, item.Status, item.Summary, item.Hash)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	d.printNotice(resp.Notice)
	return nil
}

func (d *dashboard) watch(ctx context.Context, ids []string, interval time.Duration) error {
	poller := core.NewPoller("markets", func(ctx context.Context) ([]model.MarketRow, error) {
		return d.api.Prices(ctx, ids)
	}, interval, nil, d.logger)
	poller.Start(ctx)

	for update := range poller.Updates() {
		fmt.Fprintf(d.out, "\n%s\n", update.At.Format(time.TimeOnly))
		if update.Err != nil {
			fmt.Fprintln(d.out, "refresh failed:", update.Err)
			continue
		}
		d.printMarkets(update.Value)
	}
	return nil
}

func (d *dashboard) printNotice(notice string) {
	if notice != "" {
		fmt.Fprintln(d.out, "note:", notice)
	}
}

func splitIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func formatUSD(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("$%.2fK", v/1e3)
	case v >= 1:
		return fmt.Sprintf("$%.2f", v)
	default:
		return fmt.Sprintf("$%.4f", v)
	}
}

var sparkBars = []rune("▁▂▃▄▅▆▇█")

// sparkline renders at most width points of values as block characters
func sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return ""
	}
	if len(values) > width {
		step := float64(len(values)) / float64(width)
		sampled := make([]float64, width)
		for i := range sampled {
			sampled[i] = values[int(float64(i)*step)]
		}
		values = sampled
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	var b strings.Builder
	for _, v := range values {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkBars)-1))
		}
		b.WriteRune(sparkBars[idx])
	}
	return b.String()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
