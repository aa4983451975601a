package dto

// StartAcademicYearRequest is the body of POST /academic-year/start.
type StartAcademicYearRequest struct {
	Year string `json:"year" validate:"required"`
}
