package client

import (
	"fmt"

	"github.com/cloo-solutions/onetool/internal/calc"
	"github.com/cloo-solutions/onetool/internal/service"
	"github.com/spf13/cobra"
)

// CalcCmd creates the calc command. Calculations run on the server unless
// --local is set.
func CalcCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Run the finance and health calculators",
	}

	cmd.PersistentFlags().Bool("local", false, "Compute locally instead of calling the API")

	cmd.AddCommand(calcSIPCmd())
	cmd.AddCommand(calcEMICmd())
	cmd.AddCommand(calcBMICmd())

	return cmd
}

func calcSIPCmd() *cobra.Command {
	var in service.SIPInput

	cmd := &cobra.Command{
		Use:   "sip",
		Short: "Future value of a monthly investment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalc(cmd, "/calc/sip", in,
				func() (*calc.SIPResult, error) {
					return calc.SIP(in.Monthly, in.AnnualRate, in.Years)
				},
				func(res *calc.SIPResult) {
					fmt.Printf("Invested:     %.2f\n", res.Invested)
					fmt.Printf("Future value: %.2f\n", res.FutureValue)
					fmt.Printf("Gains:        %.2f\n", res.Gains)
				})
		},
	}

	cmd.Flags().Float64Var(&in.Monthly, "monthly", 0, "Monthly investment")
	cmd.Flags().Float64Var(&in.AnnualRate, "rate", 0, "Expected annual return in percent")
	cmd.Flags().IntVar(&in.Years, "years", 0, "Investment period in years")

	return cmd
}

func calcEMICmd() *cobra.Command {
	var in service.EMIInput

	cmd := &cobra.Command{
		Use:   "emi",
		Short: "Monthly installment of a loan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalc(cmd, "/calc/emi", in,
				func() (*calc.EMIResult, error) {
					res, err := calc.EMI(in.Principal, in.AnnualRate, in.Months)
					if res != nil {
						res.Schedule = nil
					}
					return res, err
				},
				func(res *calc.EMIResult) {
					fmt.Printf("Monthly payment: %.2f\n", res.Payment)
					fmt.Printf("Total payment:   %.2f\n", res.TotalPayment)
					fmt.Printf("Total interest:  %.2f\n", res.TotalInterest)
				})
		},
	}

	cmd.Flags().Float64Var(&in.Principal, "principal", 0, "Loan amount")
	cmd.Flags().Float64Var(&in.AnnualRate, "rate", 0, "Annual interest rate in percent")
	cmd.Flags().IntVar(&in.Months, "months", 0, "Loan tenure in months")

	return cmd
}

func calcBMICmd() *cobra.Command {
	var in service.BMIInput

	cmd := &cobra.Command{
		Use:   "bmi",
		Short: "Body mass index",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalc(cmd, "/calc/bmi", in,
				func() (*calc.BMIResult, error) {
					return calc.BMI(in.WeightKg, in.HeightCm)
				},
				func(res *calc.BMIResult) {
					fmt.Printf("BMI: %.1f (%s)\n", res.Value, res.Category)
				})
		},
	}

	cmd.Flags().Float64Var(&in.WeightKg, "weight", 0, "Weight in kilograms")
	cmd.Flags().Float64Var(&in.HeightCm, "height", 0, "Height in centimetres")

	return cmd
}

func runCalc[T any](cmd *cobra.Command, path string, in interface{}, local func() (*T, error), show func(*T)) error {
	outputJSON, _ := cmd.Flags().GetBool("output")
	useLocal, _ := cmd.Flags().GetBool("local")

	var res *T
	if useLocal {
		r, err := local()
		if err != nil {
			return err
		}
		res = r
	} else {
		api, err := NewAPIClientWithCmd(cmd, false)
		if err != nil {
			return err
		}
		resp, err := api.Post(cmd.Context(), path, in)
		if err != nil {
			return fmt.Errorf("calculation failed: %w", err)
		}
		res = new(T)
		if err := decodeData(resp, res); err != nil {
			return err
		}
	}

	if outputJSON {
		return printJSON(res)
	}
	show(res)
	return nil
}
