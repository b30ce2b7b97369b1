package main

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"text/tabwriter"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	farm "github.com/branched-services/go-farm"
	"github.com/branched-services/go-farm/metrics"
)

type planFlags struct {
	recipe   string
	amount   string
	from     string
	to       string
	account  string
	slippage float64
	deadline time.Duration
	metrics  bool
}

func newPlanCommand(g *globals) *cobra.Command {
	f := &planFlags{}
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Estimate a recipe and print its advancedFarm call",
		Example: `  farmplan plan --recipe usdt2bean --amount 1000 --account 0x... --rpc http://localhost:8545
  farmplan plan --recipe weth2bean --amount 0.5 --to internal --account 0x... --slippage 0.5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlan(cmd, g, f)
		},
	}

	cmd.Flags().StringVar(&f.recipe, "recipe", "", "Recipe name (see 'farmplan recipes')")
	cmd.Flags().StringVar(&f.amount, "amount", "", "Input amount in human units, e.g. 1000.5")
	cmd.Flags().StringVar(&f.from, "from", "external", "Source balance: external or internal")
	cmd.Flags().StringVar(&f.to, "to", "external", "Destination balance: external, internal or intransit")
	cmd.Flags().StringVar(&f.account, "account", "", "Account the transaction is planned for")
	cmd.Flags().Float64Var(&f.slippage, "slippage", 0, "Slippage percent (default: from config)")
	cmd.Flags().DurationVar(&f.deadline, "deadline", 20*time.Minute, "Deadline passed to venues that accept one")
	cmd.Flags().BoolVar(&f.metrics, "metrics", false, "Print simulation metrics to stderr")
	_ = cmd.MarkFlagRequired("recipe")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}

func runPlan(cmd *cobra.Command, g *globals, f *planFlags) error {
	e, err := g.load()
	if err != nil {
		return err
	}
	defer func() { _ = e.logger.Sync() }()

	if !common.IsHexAddress(f.account) {
		return fmt.Errorf("invalid account %q", f.account)
	}
	account := common.HexToAddress(f.account)
	from, err := farm.ParseBalanceMode(f.from)
	if err != nil {
		return err
	}
	to, err := farm.ParseBalanceMode(f.to)
	if err != nil {
		return err
	}
	slippage := e.cfg.Slippage
	if cmd.Flags().Changed("slippage") {
		slippage = f.slippage
	}

	builder, err := e.lib.Recipe(f.recipe)
	if err != nil {
		return err
	}
	tokenIn, tokenOut, err := e.lib.RecipeTokens(f.recipe)
	if err != nil {
		return err
	}
	amount, err := tokenIn.Amount(f.amount)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	step, err := builder(from, to)
	if err != nil {
		return err
	}

	if e.cfg.RPCURL == "" {
		return errNoRPC
	}
	ctx := cmd.Context()
	sim, release, err := g.dial(ctx, e.cfg.RPCURL, e.logger)
	if err != nil {
		return err
	}
	defer release()

	reg := prometheus.NewRegistry()
	wf := farm.NewWorkflow(f.recipe,
		farm.WithSimulator(metrics.Wrap(sim, reg)),
		farm.WithLogger(e.logger),
	)
	if err := wf.Add(step); err != nil {
		return err
	}

	opts := []farm.RunContextOption{
		farm.WithModes(from, to),
		farm.WithSlippage(slippage),
		farm.WithDeadline(time.Now().Add(f.deadline)),
	}
	est, err := wf.Estimate(ctx, amount.Raw(), farm.NewRunContext(account, opts...))
	if err != nil {
		return err
	}
	plan, err := wf.Execute(ctx, amount.Raw(), farm.NewRunContext(account, opts...), farm.WithQuote(est))
	if err != nil {
		return err
	}
	call, err := plan.EncodeFarm(e.lib.Beanstalk())
	if err != nil {
		return err
	}
	e.logger.Info("planned",
		zap.String("recipe", f.recipe),
		zap.String("run", plan.RunID),
		zap.Int("calls", plan.Len()),
	)

	if err := printPlan(cmd.OutOrStdout(), f.recipe, amount, tokenIn, tokenOut, est, plan, call); err != nil {
		return err
	}
	if f.metrics {
		return writeMetrics(cmd.ErrOrStderr(), reg)
	}
	return nil
}

func printPlan(w io.Writer, recipe string, in farm.Amount, tokenIn, tokenOut farm.Token, est *farm.Estimate, plan *farm.Plan, call *farm.Call) error {
	fmt.Fprintf(w, "recipe:    %s\n", recipe)
	fmt.Fprintf(w, "amount in: %s %s\n", in, tokenIn)
	fmt.Fprintf(w, "estimate:  %s %s\n", tokenOut.FromRaw(est.AmountOut), tokenOut)
	if !est.Authoritative {
		fmt.Fprintln(w, "warning:   some steps could not be simulated; the estimate may be off")
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tTARGET\tEXPECTED\tMIN OUT")
	for _, s := range plan.Leaves() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, s.Target.Hex(), orDash(s.Expected), orDash(s.MinAmountOut))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "to:    %s\n", call.Target().Hex())
	if v := call.EthValue(); v != nil && v.Sign() > 0 {
		fmt.Fprintf(w, "value: %s\n", v)
	}
	fmt.Fprintf(w, "data:  %s\n", hexutil.Encode(call.Data()))
	return nil
}

func orDash(v *big.Int) string {
	if v == nil {
		return "-"
	}
	return v.String()
}

func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	var errs []error
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
