package handler

import (
	"log/slog"
	"net/http"

	"github.com/connecther/connecther/internal/repository"
	"github.com/connecther/connecther/internal/service"
)

// DoctorHandler serves the find-a-doctor directory API.
type DoctorHandler struct {
	doctors *service.DoctorService
	logger  *slog.Logger
}

// NewDoctorHandler creates a DoctorHandler.
func NewDoctorHandler(doctors *service.DoctorService, logger *slog.Logger) *DoctorHandler {
	return &DoctorHandler{doctors: doctors, logger: logger}
}

// doctorListResponse wraps the result with the filter options the UI
// renders as dropdowns.
type doctorListResponse struct {
	Doctors          interface{} `json:"doctors"`
	InsuranceOptions []string    `json:"insuranceOptions"`
	SpecialtyOptions []string    `json:"specialtyOptions"`
}

// HandleList processes GET /api/doctors?zip=&insurance=&specialty=.
// Filters are conjunctive; omitted ones match everything.
func (h *DoctorHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repository.DoctorFilter{
		Zip:       q.Get("zip"),
		Insurance: q.Get("insurance"),
		Specialty: q.Get("specialty"),
	}

	doctors, err := h.doctors.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("listing doctors failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doctorListResponse{
		Doctors:          doctors,
		InsuranceOptions: service.InsuranceOptions,
		SpecialtyOptions: service.SpecialtyOptions,
	})
}
