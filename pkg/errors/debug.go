package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"google.golang.org/api/googleapi"
)

// upstream is implemented by collaborator errors that carry the remote
// status, such as an EmailJS send rejection.
type upstream interface {
	UpstreamStatus() int
}

type diagnosed interface {
	Diagnostic() string
}

// ErrorDump is the log view of an error chain.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Chain      []string `json:"chain,omitempty"`

	// Collaborator failures (EmailJS, Drive, GCS).
	UpstreamStatus int    `json:"upstream_status,omitempty"`
	Diagnostic     string `json:"diagnostic,omitempty"`

	// Audit store failures.
	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
}

// Dump flattens an error chain for structured logs and pulls out whatever
// the failing collaborator reported.
func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var up upstream
	var gerr *googleapi.Error
	switch {
	case errors.As(err, &up):
		d.UpstreamStatus = up.UpstreamStatus()
	case errors.As(err, &gerr):
		d.UpstreamStatus = gerr.Code
	}
	var diag diagnosed
	if errors.As(err, &diag) {
		d.Diagnostic = diag.Diagnostic()
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		d.PGCode = pgErr.Code
		d.PGConstraint = pgErr.ConstraintName
		d.PGTable = pgErr.TableName
		d.PGDetail = pgErr.Detail
	}
	return d
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code Code) bool {
	te := As(err)
	return te != nil && te.Code() == code
}
