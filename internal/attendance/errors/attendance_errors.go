package attendanceerrors

import (
	"net/http"

	"go-eduhr/internal/shared/apperror"
)

var (
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrNoEntries = apperror.New(
		apperror.CodeInvalidInput,
		"at least one attendance entry is required",
		http.StatusBadRequest,
	)
	ErrInvalidTeacherID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid teacher id",
		http.StatusBadRequest,
	)
	ErrUnknownTeachers = apperror.New(
		apperror.CodeInvalidInput,
		"every entry must reference an active teacher",
		http.StatusBadRequest,
	)
	ErrInvalidActor = apperror.New(
		apperror.CodeUnauthorized,
		"invalid session user",
		http.StatusUnauthorized,
	)
	ErrAttendanceContention = apperror.New(
		"ATTENDANCE_CONTENTION",
		"attendance could not be saved due to concurrent updates, please retry",
		http.StatusInternalServerError,
	)
)
