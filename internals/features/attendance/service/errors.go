// file: internals/features/attendance/service/errors.go
package service

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"sekolahku_backend/internals/features/attendance/repository"
)

/* =========================================================
   ERROR TAXONOMY
   Semua error operasional diteruskan apa adanya ke controller;
   selain itu dibungkus DatabaseError (pesan generik ke klien).
========================================================= */

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

type AlreadyMarkedError struct {
	StudentID string
	Date      string
	Session   string
}

func (e *AlreadyMarkedError) Error() string {
	return fmt.Sprintf("attendance already marked for student %s on %s (%s)", e.StudentID, e.Date, e.Session)
}

// BulkOperationError: kegagalan level batch (bukan per item).
type BulkOperationError struct {
	Operation string
	Message   string
}

func (e *BulkOperationError) Error() string {
	return fmt.Sprintf("bulk %s failed: %s", e.Operation, e.Message)
}

type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database error during %s: %v", e.Op, e.Err)
}
func (e *DatabaseError) Unwrap() error { return e.Err }

/* =========================================================
   HELPERS
========================================================= */

func notFound(resource string, id fmt.Stringer) error {
	s := ""
	if id != nil {
		s = id.String()
	}
	return &NotFoundError{Resource: resource, ID: s}
}

func invalid(field, msg string) error { return &ValidationError{Field: field, Message: msg} }

func forbidden(msg string) error { return &AuthorizationError{Message: msg} }

// dbErr: biarkan error taksonomi lewat, sisanya dibungkus DatabaseError.
func dbErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsOperational(err) {
		return err
	}
	return &DatabaseError{Op: op, Err: err}
}

// lookupErr: ErrNotFound repository → NotFoundError resource.
func lookupErr(op, resource string, id fmt.Stringer, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(resource, id)
	}
	return dbErr(op, err)
}

func IsOperational(err error) bool {
	var (
		nf *NotFoundError
		ve *ValidationError
		ae *AuthorizationError
		am *AlreadyMarkedError
		be *BulkOperationError
	)
	return errors.As(err, &nf) || errors.As(err, &ve) || errors.As(err, &ae) ||
		errors.As(err, &am) || errors.As(err, &be)
}

// StatusCode memetakan taksonomi ke HTTP status.
func StatusCode(err error) int {
	var (
		nf *NotFoundError
		ve *ValidationError
		ae *AuthorizationError
		am *AlreadyMarkedError
		be *BulkOperationError
		fe *fiber.Error
	)
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.As(err, &fe):
		return fe.Code
	case errors.As(err, &nf):
		return fiber.StatusNotFound
	case errors.As(err, &ve):
		return fiber.StatusBadRequest
	case errors.As(err, &ae):
		return fiber.StatusForbidden
	case errors.As(err, &am):
		return fiber.StatusConflict
	case errors.As(err, &be):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// PublicMessage: pesan aman untuk klien; error non-operasional dicatat di log.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	if IsOperational(err) {
		return err.Error()
	}
	log.Printf("[ERROR] attendance: %v", err)
	return "Terjadi kesalahan pada server"
}

// ErrorDetails: isi "errors" di envelope; nil untuk error tanpa detail.
func ErrorDetails(err error) any {
	var (
		ve *ValidationError
		be *BulkOperationError
		am *AlreadyMarkedError
	)
	switch {
	case errors.As(err, &ve) && ve.Field != "":
		return map[string][]string{ve.Field: {ve.Message}}
	case errors.As(err, &be):
		return fiber.Map{"operation": be.Operation}
	case errors.As(err, &am):
		return fiber.Map{"studentId": am.StudentID, "date": am.Date, "session": am.Session}
	}
	return nil
}
