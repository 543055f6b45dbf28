package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kydenul/handodds"
)

var combinationCmd = &cobra.Command{
	Use:   "combination <n> <k>",
	Short: "Print the binomial coefficient C(n, k)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := handodds.ParseCount(handodds.FieldN, args[0])
		if err != nil {
			return err
		}
		k, err := handodds.ParseCount(handodds.FieldK, args[1])
		if err != nil {
			return err
		}

		calc, err := newCalculator(cmd)
		if err != nil {
			return err
		}
		v, err := calc.Engine().Combination(n, k)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(v, 'f', -1, 64))
		return nil
	},
}

var badHandCmd = &cobra.Command{
	Use:   "bad-hand",
	Short: "Probability that a hand with a marked card has no good card",
	RunE: func(cmd *cobra.Command, args []string) error {
		var p handodds.BadHandParams
		var err error
		if p.Deck, err = countFlag(cmd, "deck", handodds.FieldDeck); err != nil {
			return err
		}
		if p.Hand, err = countFlag(cmd, "hand", handodds.FieldHand); err != nil {
			return err
		}
		if p.GoodCount, err = countFlag(cmd, "good", handodds.FieldGoodCount); err != nil {
			return err
		}
		if p.BadCount, err = countFlag(cmd, "bad", handodds.FieldBadCount); err != nil {
			return err
		}

		calc, err := newCalculator(cmd)
		if err != nil {
			return err
		}
		rate, err := calc.BadHand(p)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %.4f%s\n", handodds.DescriptionBadHand, rate, handodds.UnitPercent)

		trials, _ := cmd.Flags().GetInt("simulate")
		if trials <= 0 {
			return nil
		}
		sim, err := handodds.NewRandomSimulator().SimulateBadHand(p, trials)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "simulated (%d trials, %d with a marked card): %.4f%s ± %.4f\n",
			sim.Trials, sim.Samples, sim.Estimate, handodds.UnitPercent, sim.StdDev)
		return nil
	},
}

var mulliganCmd = &cobra.Command{
	Use:   "mulligan",
	Short: "Expected number of mulligans before a hand with a marked card",
	RunE: func(cmd *cobra.Command, args []string) error {
		var p handodds.MulliganParams
		var err error
		if p.Deck, err = countFlag(cmd, "deck", handodds.FieldDeck); err != nil {
			return err
		}
		if p.Hand, err = countFlag(cmd, "hand", handodds.FieldHand); err != nil {
			return err
		}
		if p.MarkedCount, err = countFlag(cmd, "marked", handodds.FieldMarkedCount); err != nil {
			return err
		}

		calc, err := newCalculator(cmd)
		if err != nil {
			return err
		}
		count, err := calc.ExpMulligan(p)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %.4f %s\n", handodds.DescriptionExpMulligan, count, handodds.UnitTimes)

		trials, _ := cmd.Flags().GetInt("simulate")
		if trials <= 0 {
			return nil
		}
		sim, err := handodds.NewRandomSimulator().SimulateMulligans(p, trials)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "simulated (%d trials): %.4f %s ± %.4f\n",
			sim.Trials, sim.Estimate, handodds.UnitTimes, sim.StdDev)
		if sim.Truncated > 0 {
			fmt.Fprintf(out, "warning: %d trials hit the %d redraw cap, the estimate is a lower bound\n",
				sim.Truncated, handodds.MaxRedrawsPerTrial)
		}
		return nil
	},
}

func init() {
	badHandCmd.Flags().String("deck", strconv.Itoa(handodds.DefaultDeckSize), "Cards in the deck")
	badHandCmd.Flags().String("hand", strconv.Itoa(handodds.DefaultHandSize), "Cards in the opening hand")
	badHandCmd.Flags().String("good", strconv.Itoa(handodds.DefaultGoodCount), "Desired marked cards in the deck")
	badHandCmd.Flags().String("bad", strconv.Itoa(handodds.DefaultBadCount), "Undesired marked cards in the deck")
	badHandCmd.Flags().Int("simulate", 0, "Also estimate the rate from this many shuffled hands")

	mulliganCmd.Flags().String("deck", strconv.Itoa(handodds.DefaultDeckSize), "Cards in the deck")
	mulliganCmd.Flags().String("hand", strconv.Itoa(handodds.DefaultHandSize), "Cards in the opening hand")
	mulliganCmd.Flags().String("marked", strconv.Itoa(handodds.DefaultMarkedCount), "Marked cards in the deck")
	mulliganCmd.Flags().Int("simulate", 0, "Also estimate the count from this many simulated sequences")
}
