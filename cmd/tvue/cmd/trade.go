package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tvue/tradervue"
)

var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Create, query, update and delete trades",
}

var (
	tradeSymbol   string
	tradeNotes    string
	tradeRisk     float64
	tradeShared   bool
	tradeTags     []string
	tradeShowURL  bool
	tradeTagExpr  string
	tradeSide     string
	tradeDuration string
	tradeStart    string
	tradeEnd      string
	tradeWinners  bool
	tradeLosers   bool
	tradeMax      int
)

var tradeCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new trade, like the website's New Trade feature",
	RunE:  runTradeCreate,
}

var tradeListCmd = &cobra.Command{
	Use:   "list",
	Short: "Query trades matching the given filters",
	RunE:  runTradeList,
}

var tradeShowCmd = &cobra.Command{
	Use:   "show <trade-id>",
	Short: "Show one trade with its executions and comments",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeShow,
}

var tradeUpdateCmd = &cobra.Command{
	Use:   "update <trade-id>",
	Short: "Update notes, tags, risk or the shared flag of a trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeUpdate,
}

var tradeDeleteCmd = &cobra.Command{
	Use:   "delete <trade-id>...",
	Short: "Delete one or more trades",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTradeDelete,
}

func init() {
	rootCmd.AddCommand(tradeCmd)
	tradeCmd.AddCommand(tradeCreateCmd, tradeListCmd, tradeShowCmd, tradeUpdateCmd, tradeDeleteCmd)

	tradeCreateCmd.Flags().StringVarP(&tradeSymbol, "symbol", "s", "", "trade symbol (required)")
	tradeCreateCmd.Flags().StringVarP(&tradeNotes, "notes", "n", "", "trade notes, markdown allowed")
	tradeCreateCmd.Flags().Float64VarP(&tradeRisk, "risk", "r", 0, "initial risk")
	tradeCreateCmd.Flags().BoolVar(&tradeShared, "shared", false, "share the trade with other users")
	tradeCreateCmd.Flags().StringSliceVarP(&tradeTags, "tag", "t", nil, "tag to apply (repeatable)")
	tradeCreateCmd.Flags().BoolVar(&tradeShowURL, "url", false, "print the new trade's URL instead of its id")
	tradeCreateCmd.MarkFlagRequired("symbol")

	tradeListCmd.Flags().StringVarP(&tradeSymbol, "symbol", "s", "", "filter by symbol")
	tradeListCmd.Flags().StringVar(&tradeTagExpr, "tag", "", "filter by tag expression (AND/OR must be uppercase)")
	tradeListCmd.Flags().StringVar(&tradeSide, "side", "", "filter by side: Long or Short")
	tradeListCmd.Flags().StringVar(&tradeDuration, "duration", "", "filter by duration: Intraday or Multiday")
	tradeListCmd.Flags().StringVar(&tradeStart, "start", "", "trades on or after this date (YYYY-MM-DD)")
	tradeListCmd.Flags().StringVar(&tradeEnd, "end", "", "trades on or before this date (YYYY-MM-DD)")
	tradeListCmd.Flags().BoolVar(&tradeWinners, "winners", false, "only trades with positive gross P&L")
	tradeListCmd.Flags().BoolVar(&tradeLosers, "losers", false, "only trades with negative gross P&L")
	tradeListCmd.Flags().IntVar(&tradeMax, "max", 25, "maximum number of trades to return")

	tradeUpdateCmd.Flags().StringVarP(&tradeNotes, "notes", "n", "", "new notes")
	tradeUpdateCmd.Flags().Float64VarP(&tradeRisk, "risk", "r", 0, "new initial risk")
	tradeUpdateCmd.Flags().BoolVar(&tradeShared, "shared", false, "new shared flag")
	tradeUpdateCmd.Flags().StringSliceVarP(&tradeTags, "tag", "t", nil, "replacement tag list (repeatable)")
}

func parseTradeID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad trade id %q: %w", arg, err)
	}
	return id, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runTradeCreate(cmd *cobra.Command, args []string) error {
	r, err := newRun()
	if err != nil {
		return err
	}

	nt := tradervue.NewTrade{
		Symbol:      tradeSymbol,
		Notes:       tradeNotes,
		InitialRisk: tradeRisk,
		Shared:      tradeShared,
		Tags:        tradeTags,
	}

	if tradeShowURL {
		url, err := r.client.CreateTradeURL(cmd.Context(), nt)
		if err != nil {
			return r.finish(err)
		}
		fmt.Println(url)
		return r.finish(nil)
	}

	id, err := r.client.CreateTrade(cmd.Context(), nt)
	if err != nil {
		return r.finish(err)
	}
	fmt.Println(id)
	return r.finish(nil)
}

func listFilter() (tradervue.TradeFilter, error) {
	f := tradervue.TradeFilter{
		Symbol:   tradeSymbol,
		TagExpr:  tradeTagExpr,
		Side:     tradeSide,
		Duration: tradeDuration,
	}
	if tradeStart != "" {
		d, err := time.Parse("2006-01-02", tradeStart)
		if err != nil {
			return f, fmt.Errorf("bad --start date: %w", err)
		}
		f.StartDate = d
	}
	if tradeEnd != "" {
		d, err := time.Parse("2006-01-02", tradeEnd)
		if err != nil {
			return f, fmt.Errorf("bad --end date: %w", err)
		}
		f.EndDate = d
	}
	if tradeWinners && tradeLosers {
		return f, fmt.Errorf("--winners and --losers are mutually exclusive")
	}
	if tradeWinners {
		winners := true
		f.Winners = &winners
	}
	if tradeLosers {
		winners := false
		f.Winners = &winners
	}
	return f, nil
}

func runTradeList(cmd *cobra.Command, args []string) error {
	filter, err := listFilter()
	if err != nil {
		return err
	}

	r, err := newRun()
	if err != nil {
		return err
	}

	trades, err := r.client.GetTrades(cmd.Context(), filter, 0, tradeMax)
	if err != nil {
		return r.finish(err)
	}
	return r.finish(printJSON(trades))
}

func runTradeShow(cmd *cobra.Command, args []string) error {
	id, err := parseTradeID(args[0])
	if err != nil {
		return err
	}

	r, err := newRun()
	if err != nil {
		return err
	}

	trade, err := r.client.GetTrade(cmd.Context(), id)
	if err != nil {
		return r.finish(err)
	}

	if trade.ExecCount > 0 {
		if execs, err := r.client.GetTradeExecutions(cmd.Context(), id); err != nil {
			r.log.Errorf("executions unavailable: %v", err)
		} else {
			trade.Executions = execs
		}
	}
	if trade.CommentCount > 0 {
		if comments, err := r.client.GetTradeComments(cmd.Context(), id); err != nil {
			r.log.Errorf("comments unavailable: %v", err)
		} else {
			trade.Comments = comments
		}
	}

	return r.finish(printJSON(trade))
}

func runTradeUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseTradeID(args[0])
	if err != nil {
		return err
	}

	r, err := newRun()
	if err != nil {
		return err
	}

	var u tradervue.TradeUpdate
	if cmd.Flags().Changed("notes") {
		u.Notes = &tradeNotes
	}
	if cmd.Flags().Changed("shared") {
		u.Shared = &tradeShared
	}
	if cmd.Flags().Changed("risk") {
		u.InitialRisk = &tradeRisk
	}
	if cmd.Flags().Changed("tag") {
		u.Tags = tradeTags
	}

	return r.finish(r.client.UpdateTrade(cmd.Context(), id, u))
}

func runTradeDelete(cmd *cobra.Command, args []string) error {
	r, err := newRun()
	if err != nil {
		return err
	}

	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseTradeID(arg)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	for i, derr := range r.client.DeleteTrades(cmd.Context(), ids...) {
		if derr != nil {
			r.log.Errorf("delete trade %d: %v", ids[i], derr)
		} else {
			fmt.Printf("deleted trade %d\n", ids[i])
		}
	}
	return r.finish(nil)
}
