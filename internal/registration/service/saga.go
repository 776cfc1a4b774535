package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"passgate/internal/identity"
	"passgate/internal/registration/models"
)

var tracer = otel.Tracer("passgate/registration")

// registrationState carries values produced by one step to the next.
type registrationState struct {
	req        models.RegisterRequest
	validation *models.PasscodeValidation
	account    *identity.Account
	user       *models.User
}

// sagaStep is one external action. compensate, when set, runs if a later
// step fails after this one succeeded.
type sagaStep struct {
	name       string
	run        func(ctx context.Context, st *registrationState) error
	compensate func(ctx context.Context, st *registrationState, cause error)
}

// stepError identifies which step of the saga failed.
type stepError struct {
	step string
	err  error
}

func (e *stepError) Error() string {
	return fmt.Sprintf("registration step %s: %v", e.step, e.err)
}

func (e *stepError) Unwrap() error { return e.err }

// runSaga executes steps in order. On failure it runs the compensations of
// completed steps in reverse and returns a *stepError.
func runSaga(ctx context.Context, steps []sagaStep, st *registrationState) error {
	for i, step := range steps {
		stepCtx, span := tracer.Start(ctx, "registration."+step.name)
		err := step.run(stepCtx, st)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, step.name+" failed")
			span.End()
			for j := i - 1; j >= 0; j-- {
				if steps[j].compensate != nil {
					steps[j].compensate(ctx, st, err)
				}
			}
			return &stepError{step: step.name, err: err}
		}
		span.SetAttributes(attribute.Int("registration.step", i+1))
		span.End()
	}
	return nil
}
