package service

import (
	"testing"

	"github.com/cloo-solutions/onetool/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculatorService(t *testing.T) {
	svc := NewCalculatorService()

	sip, err := svc.SIP(SIPInput{Monthly: 1000, AnnualRate: 12, Years: 10})
	require.NoError(t, err)
	assert.InDelta(t, 232339.08, sip.FutureValue, 1.0)

	emi, err := svc.EMI(EMIInput{Principal: 100000, AnnualRate: 12, Months: 12})
	require.NoError(t, err)
	assert.InDelta(t, 8884.88, emi.Payment, 0.01)

	bmi, err := svc.BMI(BMIInput{WeightKg: 70, HeightCm: 175})
	require.NoError(t, err)
	assert.InDelta(t, 22.9, bmi.Value, 0.05)
}

func TestCalculatorService_InvalidInputIsValidationError(t *testing.T) {
	svc := NewCalculatorService()

	_, err := svc.SIP(SIPInput{Monthly: -5, AnnualRate: 12, Years: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidCalculation)

	var de *domain.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.ErrCodeValidation, de.Code)

	_, err = svc.EMI(EMIInput{Principal: 1000, AnnualRate: 10})
	assert.ErrorIs(t, err, domain.ErrInvalidCalculation)

	_, err = svc.BMI(BMIInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidCalculation)
}
