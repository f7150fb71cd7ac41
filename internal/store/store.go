// Package store defines the persistence surface the record store talks to
// and the staging logic shared by its backends.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrStore matches every *Error via errors.Is.
var ErrStore = errors.New("store error")

// Error is an I/O, read or write failure reported by a backend.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("store %s: %v", e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }
func (e *Error) Is(target error) bool {
	return target == ErrStore
}

// Wrap returns nil for a nil err, else an *Error for op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Op: op, Err: err}
}

// FieldError reports a record field that is missing or not a string.
type FieldError struct {
	Key   string
	Field string
	Got   any
}

func (e *FieldError) Error() string {
	if e.Got == nil {
		return fmt.Sprintf("record %s: missing field %q", e.Key, e.Field)
	}
	return fmt.Sprintf("record %s: field %q is %T, want string", e.Key, e.Field, e.Got)
}

// Record is one persisted row. Key is assigned by the backend on insert and
// identifies the row for later updates and deletes.
type Record struct {
	Key    string         `json:"key"`
	Fields map[string]any `json:"fields"`
}

// NewRecord returns a record with a fresh key.
func NewRecord(fields map[string]any) Record {
	return Record{Key: uuid.NewString(), Fields: fields}
}

// String returns the string value of field.
func (r Record) String(field string) (string, error) {
	v, ok := r.Fields[field]
	if !ok || v == nil {
		return "", &FieldError{Key: r.Key, Field: field}
	}
	s, ok := v.(string)
	if !ok {
		return "", &FieldError{Key: r.Key, Field: field, Got: v}
	}
	return s, nil
}

// Set assigns field on the record's own copy of the field map.
func (r *Record) Set(field string, value any) {
	if r.Fields == nil {
		r.Fields = map[string]any{}
	}
	r.Fields[field] = value
}

// Clone deep-copies the field map.
func (r Record) Clone() Record {
	fields := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	return Record{Key: r.Key, Fields: fields}
}

// Backend is a persistent record store. Insert, Update and Delete only stage
// changes; Save commits them and Rollback discards them. FetchAll reflects
// staged changes. A failed Save leaves the changes staged.
type Backend interface {
	FetchAll(ctx context.Context) ([]Record, error)
	Insert(ctx context.Context, rec Record) error
	Update(ctx context.Context, rec Record) error
	Delete(ctx context.Context, rec Record) error
	Save(ctx context.Context) error
	Rollback()
	Close() error
}
