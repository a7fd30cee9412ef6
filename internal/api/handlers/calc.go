package handlers

import (
	"net/http"

	"github.com/cloo-solutions/onetool/internal/api"
	"github.com/cloo-solutions/onetool/internal/calc"
	"github.com/cloo-solutions/onetool/internal/service"
)

type Calculator interface {
	SIP(input service.SIPInput) (*calc.SIPResult, error)
	EMI(input service.EMIInput) (*calc.EMIResult, error)
	BMI(input service.BMIInput) (*calc.BMIResult, error)
}

type CalcHandler struct {
	svc Calculator
}

func NewCalcHandler(svc Calculator) *CalcHandler {
	return &CalcHandler{svc: svc}
}

func (h *CalcHandler) SIP(w http.ResponseWriter, r *http.Request) {
	var req service.SIPInput
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.SIP(req)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, res)
}

func (h *CalcHandler) EMI(w http.ResponseWriter, r *http.Request) {
	var req service.EMIInput
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.EMI(req)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	// The schedule is large; clients opt in.
	if r.URL.Query().Get("schedule") != "true" {
		res.Schedule = nil
	}
	api.Success(w, http.StatusOK, res)
}

func (h *CalcHandler) BMI(w http.ResponseWriter, r *http.Request) {
	var req service.BMIInput
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.BMI(req)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, res)
}
