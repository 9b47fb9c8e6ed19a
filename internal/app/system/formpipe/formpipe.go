// internal/app/system/formpipe/formpipe.go
package formpipe

import (
	"context"
	"errors"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/dalemusser/dojo/internal/app/system/apiclient"
	"github.com/dalemusser/dojo/internal/app/system/inputval"
)

// ErrInFlight is returned when a form is submitted while a previous
// submission has not finished.
var ErrInFlight = errors.New("formpipe: submission already in flight")

// ErrInvalid is returned when local validation fails. The remote operation
// was not called; field errors are on the Form.
var ErrInvalid = errors.New("formpipe: input failed validation")

// Status is a snapshot of a form's view-model.
type Status struct {
	InFlight    bool
	FieldErrors map[string]string
	General     string
}

// Form holds the error slots and re-entrancy guard for one form.
// The zero value is ready to use.
type Form struct {
	// ErrorField, when set, receives non-validation failures instead of
	// the general slot.
	ErrorField string

	inFlight atomic.Bool

	mu      sync.Mutex
	fields  map[string]string
	general string
}

// Status returns a copy of the form state.
func (f *Form) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	fields := maps.Clone(f.fields)
	if fields == nil {
		fields = map[string]string{}
	}
	return Status{
		InFlight:    f.inFlight.Load(),
		FieldErrors: fields,
		General:     f.general,
	}
}

// InFlight reports whether a submission is running.
func (f *Form) InFlight() bool { return f.inFlight.Load() }

// Reset clears every error slot.
func (f *Form) Reset() {
	f.set(nil, "")
}

func (f *Form) set(fields map[string]string, general string) {
	f.mu.Lock()
	f.fields = fields
	f.general = general
	f.mu.Unlock()
}

// Submit runs the validate, submit, classify flow for one form:
//
//  1. validate input against its rule table, collecting every field error
//  2. on failure, record field errors, clear the general error, return ErrInvalid
//  3. mark the form in flight and call op
//  4. on success, clear all errors and call onSuccess (which may be nil)
//  5. on failure, map server validation errors to fields, anything else to
//     the general slot
//
// The in-flight flag is always released before Submit returns.
func Submit[In, Out any](ctx context.Context, f *Form, input In, op func(context.Context, In) (Out, error), onSuccess func(Out)) error {
	if f.inFlight.Load() {
		return ErrInFlight
	}

	if res := inputval.Validate(input); res.HasErrors() {
		f.set(res.Map(), "")
		return ErrInvalid
	}

	if !f.inFlight.CompareAndSwap(false, true) {
		return ErrInFlight
	}
	defer f.inFlight.Store(false)

	out, err := op(ctx, input)
	if err != nil {
		f.fail(err)
		return err
	}

	f.set(nil, "")
	if onSuccess != nil {
		onSuccess(out)
	}
	return nil
}

func (f *Form) fail(err error) {
	var ve *apiclient.ValidationError
	if errors.As(err, &ve) && len(ve.Fields) > 0 {
		f.set(maps.Clone(ve.Fields), "")
		return
	}
	msg := apiclient.Message(err)
	if f.ErrorField != "" {
		f.set(map[string]string{f.ErrorField: msg}, "")
		return
	}
	f.set(nil, msg)
}
