package service

import (
	"errors"

	"github.com/cloo-solutions/onetool/internal/calc"
	"github.com/cloo-solutions/onetool/internal/domain"
)

type SIPInput struct {
	Monthly    float64 `json:"monthly"`
	AnnualRate float64 `json:"annual_rate"`
	Years      int     `json:"years"`
}

type EMIInput struct {
	Principal  float64 `json:"principal"`
	AnnualRate float64 `json:"annual_rate"`
	Months     int     `json:"months"`
}

type BMIInput struct {
	WeightKg float64 `json:"weight_kg"`
	HeightCm float64 `json:"height_cm"`
}

// CalculatorService exposes the calc package with domain errors
type CalculatorService struct{}

func NewCalculatorService() *CalculatorService {
	return &CalculatorService{}
}

func (s *CalculatorService) SIP(input SIPInput) (*calc.SIPResult, error) {
	res, err := calc.SIP(input.Monthly, input.AnnualRate, input.Years)
	return res, calcError(err)
}

func (s *CalculatorService) EMI(input EMIInput) (*calc.EMIResult, error) {
	res, err := calc.EMI(input.Principal, input.AnnualRate, input.Months)
	return res, calcError(err)
}

func (s *CalculatorService) BMI(input BMIInput) (*calc.BMIResult, error) {
	res, err := calc.BMI(input.WeightKg, input.HeightCm)
	return res, calcError(err)
}

func calcError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, calc.ErrInvalidInput) {
		return domain.NewDomainErrorWithCause(domain.ErrCodeValidation, domain.ErrInvalidCalculation.Message, err)
	}
	return err
}
