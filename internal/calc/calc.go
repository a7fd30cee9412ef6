// Package calc implements the closed-form calculators behind the finance and
// health tools.
package calc

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is returned for negative, zero, infinite or NaN inputs.
var ErrInvalidInput = errors.New("invalid input")

// SIPResult is the projection of a monthly systematic investment plan.
type SIPResult struct {
	Invested    float64 `json:"invested"`
	FutureValue float64 `json:"future_value"`
	Gains       float64 `json:"gains"`
}

// SIP projects the value of investing monthly at an annual rate for years,
// assuming contributions at the start of each month.
func SIP(monthly, annualRatePct float64, years int) (*SIPResult, error) {
	if err := positive("monthly amount", monthly); err != nil {
		return nil, err
	}
	if err := nonNegative("annual rate", annualRatePct); err != nil {
		return nil, err
	}
	if years <= 0 {
		return nil, fmt.Errorf("%w: years must be positive", ErrInvalidInput)
	}

	n := float64(years * 12)
	i := annualRatePct / 12 / 100

	var fv float64
	if i == 0 {
		fv = monthly * n
	} else {
		fv = monthly * ((math.Pow(1+i, n) - 1) / i) * (1 + i)
	}

	invested := monthly * n
	return &SIPResult{
		Invested:    round2(invested),
		FutureValue: round2(fv),
		Gains:       round2(fv - invested),
	}, nil
}

// Installment is one row of an amortization schedule.
type Installment struct {
	Month     int     `json:"month"`
	Payment   float64 `json:"payment"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Balance   float64 `json:"balance"`
}

// EMIResult is the equated monthly installment for a loan.
type EMIResult struct {
	Payment       float64       `json:"payment"`
	TotalPayment  float64       `json:"total_payment"`
	TotalInterest float64       `json:"total_interest"`
	Schedule      []Installment `json:"schedule,omitempty"`
}

// EMI computes the fixed monthly payment for principal over months at an
// annual rate, along with the month by month amortization schedule.
func EMI(principal, annualRatePct float64, months int) (*EMIResult, error) {
	if err := positive("principal", principal); err != nil {
		return nil, err
	}
	if err := nonNegative("annual rate", annualRatePct); err != nil {
		return nil, err
	}
	if months <= 0 {
		return nil, fmt.Errorf("%w: months must be positive", ErrInvalidInput)
	}
	if months > 1200 {
		return nil, fmt.Errorf("%w: months must be at most 1200", ErrInvalidInput)
	}

	r := annualRatePct / 12 / 100
	n := float64(months)

	var emi float64
	if r == 0 {
		emi = principal / n
	} else {
		f := math.Pow(1+r, n)
		emi = principal * r * f / (f - 1)
	}

	schedule := make([]Installment, 0, months)
	balance := principal
	for m := 1; m <= months; m++ {
		interest := balance * r
		princ := emi - interest
		balance -= princ
		if m == months || balance < 0 {
			balance = 0
		}
		schedule = append(schedule, Installment{
			Month:     m,
			Payment:   round2(emi),
			Principal: round2(princ),
			Interest:  round2(interest),
			Balance:   round2(balance),
		})
	}

	total := emi * n
	return &EMIResult{
		Payment:       round2(emi),
		TotalPayment:  round2(total),
		TotalInterest: round2(total - principal),
		Schedule:      schedule,
	}, nil
}

// BMICategory is the WHO adult weight classification.
type BMICategory string

const (
	BMIUnderweight BMICategory = "underweight"
	BMINormal      BMICategory = "normal"
	BMIOverweight  BMICategory = "overweight"
	BMIObese       BMICategory = "obese"
)

// BMIResult is a body mass index reading.
type BMIResult struct {
	Value    float64     `json:"value"`
	Category BMICategory `json:"category"`
}

// BMI computes body mass index from weight in kilograms and height in centimetres.
func BMI(weightKg, heightCm float64) (*BMIResult, error) {
	if err := positive("weight", weightKg); err != nil {
		return nil, err
	}
	if err := positive("height", heightCm); err != nil {
		return nil, err
	}

	m := heightCm / 100
	v := weightKg / (m * m)

	return &BMIResult{
		Value:    math.Round(v*10) / 10,
		Category: classifyBMI(v),
	}, nil
}

func classifyBMI(v float64) BMICategory {
	switch {
	case v < 18.5:
		return BMIUnderweight
	case v < 25:
		return BMINormal
	case v < 30:
		return BMIOverweight
	default:
		return BMIObese
	}
}

func positive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%w: %s must be a positive number", ErrInvalidInput, name)
	}
	return nil
}

func nonNegative(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidInput, name)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
