package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrorDump flattens an error chain for structured logs. PG is set only when
// a Postgres error from pgx or lib/pq sits somewhere in the chain.
type ErrorDump struct {
	TopMessage string         `json:"top_message"`
	Code       Code           `json:"code,omitempty"`
	Retryable  bool           `json:"retryable"`
	Chain      []string       `json:"chain,omitempty"`
	PG         *PGDiagnostics `json:"pg,omitempty"`
}

// PGDiagnostics holds the server-side details of a failed statement.
type PGDiagnostics struct {
	Code       string `json:"code"`
	Constraint string `json:"constraint,omitempty"`
	Table      string `json:"table,omitempty"`
	Column     string `json:"column,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Message    string `json:"message,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}
	d := ErrorDump{TopMessage: err.Error(), PG: pgDiagnostics(err)}
	if te := As(err); te != nil {
		d.Code = te.Code()
		d.Retryable = te.Retryable()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	return d
}

// Fields renders the dump as logger fields, leaving out empty diagnostics.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{
		"error":           d.TopMessage,
		"error_code":      d.Code,
		"error_chain":     d.Chain,
		"error_retryable": d.Retryable,
	}
	if d.PG != nil {
		fields["pg_code"] = d.PG.Code
		for key, val := range map[string]string{
			"pg_constraint": d.PG.Constraint,
			"pg_table":      d.PG.Table,
			"pg_column":     d.PG.Column,
			"pg_detail":     d.PG.Detail,
			"pg_message":    d.PG.Message,
		} {
			if val != "" {
				fields[key] = val
			}
		}
	}
	return fields
}

func pgDiagnostics(err error) *PGDiagnostics {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return &PGDiagnostics{
			Code:       pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &PGDiagnostics{
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}
	}
	return nil
}
