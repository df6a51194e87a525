package checkout

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Step identifies the current checkout wizard step.
type Step string

const (
	StepContact  Step = "CONTACT"
	StepShipping Step = "SHIPPING"
	StepPayment  Step = "PAYMENT"
	StepSummary  Step = "SUMMARY"
)

var (
	ErrEmptyCart         = errors.New("cart is empty, nothing to check out")
	ErrNotStarted        = errors.New("checkout has not been started")
	ErrIllegalTransition = errors.New("illegal checkout step transition")

	// ErrIncompleteDraft is a programming-contract violation: the wizard
	// must never offer an incomplete draft for commit.
	ErrIncompleteDraft = errors.New("checkout draft is incomplete")
)

// ValidationError carries the per-field messages that blocked a forward
// transition.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed for fields: %v", names)
}

// CartGuard is the wizard's view of the cart: it only needs to know
// whether there is anything to check out.
type CartGuard interface {
	IsEmpty() bool
}

// Wizard sequences the checkout steps Contact, Shipping, Payment and
// Summary, accumulating a draft as each step validates. It never skips
// forward and never advances past a failed validation.
type Wizard struct {
	mu       sync.Mutex
	cart     CartGuard
	validate Validator

	active bool
	step   Step
	draft  Draft
}

func NewWizard(cart CartGuard, validate Validator) *Wizard {
	return &Wizard{
		cart:     cart,
		validate: validate,
	}
}

// Start enters the wizard at the contact step. An empty cart blocks
// entry; the caller redirects to the catalog instead. Starting an
// already-active wizard keeps the accumulated draft.
func (w *Wizard) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cart.IsEmpty() {
		return ErrEmptyCart
	}
	if w.active {
		return nil
	}

	w.active = true
	w.step = StepContact
	w.draft = Draft{}
	return nil
}

func (w *Wizard) Active() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

func (w *Wizard) Step() (Step, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.active {
		return "", ErrNotStarted
	}
	return w.step, nil
}

// Draft returns a copy of the accumulated draft.
func (w *Wizard) Draft() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

func (w *Wizard) SubmitContact(fields ContactFields) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.requireStep(StepContact); err != nil {
		return err
	}
	if errs := w.validate.Validate(fields); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}

	w.draft.Contact = fields
	w.step = StepShipping
	return nil
}

func (w *Wizard) SubmitShipping(fields ShippingFields) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.requireStep(StepShipping); err != nil {
		return err
	}
	if errs := w.validate.Validate(fields); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}

	w.draft.Shipping = fields
	w.step = StepPayment
	return nil
}

func (w *Wizard) SubmitPayment(fields PaymentFields) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.requireStep(StepPayment); err != nil {
		return err
	}
	if errs := w.validate.Validate(fields); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}

	// Card data is dropped before it ever reaches the draft when the
	// transfer method is chosen.
	w.draft.Payment = fields.scrub()
	w.step = StepSummary
	return nil
}

// Back moves one step backward without re-validation. Going back from
// the contact step is illegal.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.active {
		return ErrNotStarted
	}

	switch w.step {
	case StepShipping:
		w.step = StepContact
	case StepPayment:
		w.step = StepShipping
	case StepSummary:
		w.step = StepPayment
	default:
		return ErrIllegalTransition
	}
	return nil
}

// Confirm hands out the completed draft for order commit. Only legal
// from the summary step; an incomplete draft at this point is a
// contract violation and aborts the operation.
func (w *Wizard) Confirm() (Draft, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.requireStep(StepSummary); err != nil {
		return Draft{}, err
	}
	if !w.draft.Complete() {
		return Draft{}, ErrIncompleteDraft
	}

	return w.draft, nil
}

// Reset discards the draft and leaves the wizard. Called after a
// successful commit and on session resets.
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.active = false
	w.step = ""
	w.draft = Draft{}
}

func (w *Wizard) requireStep(step Step) error {
	if !w.active {
		return ErrNotStarted
	}
	if w.step != step {
		return fmt.Errorf("%w: at %s, expected %s", ErrIllegalTransition, w.step, step)
	}
	return nil
}
