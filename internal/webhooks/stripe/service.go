package stripewebhook

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bookride/backend/internal/adminlog"
	"github.com/bookride/backend/internal/bookings"
	"github.com/bookride/backend/pkg/db/models"
	dbtypes "github.com/bookride/backend/pkg/db/types"
	"github.com/bookride/backend/pkg/enums"
	pkgerrors "github.com/bookride/backend/pkg/errors"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"
)

// Action strings surfaced in webhook acks and stored event results.
const (
	ActionBookingConfirmed          = "booking_confirmed"
	ActionBookingPaymentFailed      = "booking_payment_failed"
	ActionBookingCancelled          = "booking_cancelled"
	ActionBookingFullyRefunded      = "booking_fully_refunded"
	ActionBookingPartiallyRefunded  = "booking_partially_refunded"
	ActionDisputeLogged             = "dispute_logged"
	ActionBookingAlreadyProcessed   = "booking_already_processed"
	ActionNoBookingFound            = "no_booking_found"
	ActionNoPaymentIntentInCharge   = "no_payment_intent_in_charge"
	ActionNoPaymentIntentInDispute  = "no_payment_intent_in_dispute"
	ActionIgnoredEventType          = "ignored_event_type"
)

// handledEventTypes is the fixed allow-list; everything else is acknowledged
// and dropped without touching the store.
var handledEventTypes = map[stripe.EventType]struct{}{
	stripe.EventTypePaymentIntentSucceeded:     {},
	stripe.EventTypePaymentIntentPaymentFailed: {},
	stripe.EventTypePaymentIntentCanceled:      {},
	stripe.EventTypeChargeRefunded:             {},
	stripe.EventTypeChargeDisputeCreated:       {},
}

// Handles reports whether the event type is on the processing allow-list.
func Handles(eventType stripe.EventType) bool {
	_, ok := handledEventTypes[eventType]
	return ok
}

// Result is the business outcome of one event dispatch. Lookups that miss and
// bookings already past pending are successes with a descriptive action, not
// errors; Stripe must not retry them.
type Result struct {
	Success   bool   `json:"success"`
	Action    string `json:"action"`
	BookingID string `json:"booking_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Outcome wraps a dispatch result with the duplicate flag.
type Outcome struct {
	Duplicate bool
	Result    *Result
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ServiceParams struct {
	BookingRepo       bookings.Repository
	EventRepo         EventRepository
	AdminLogRepo      adminlog.Repository
	StripeClient      StripeChargeClient
	TransactionRunner txRunner
}

type Service struct {
	bookingRepo  bookings.Repository
	eventRepo    EventRepository
	adminLogRepo adminlog.Repository
	stripe       StripeChargeClient
	txRunner     txRunner
}

func NewService(params ServiceParams) (*Service, error) {
	if params.BookingRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "booking repo required")
	}
	if params.EventRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "event repo required")
	}
	if params.AdminLogRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "admin log repo required")
	}
	if params.StripeClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe client required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &Service{
		bookingRepo:  params.BookingRepo,
		eventRepo:    params.EventRepo,
		adminLogRepo: params.AdminLogRepo,
		stripe:       params.StripeClient,
		txRunner:     params.TransactionRunner,
	}, nil
}

// Process records the event, dispatches it to the matching handler and
// attaches the result to the stored record. The insert happens before
// dispatch; a unique violation on event_id resolves the concurrent
// duplicate race in favor of the first delivery.
func (s *Service) Process(ctx context.Context, event *stripe.Event) (*Outcome, error) {
	if event == nil || event.Data == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}
	if !Handles(event.Type) {
		return &Outcome{Result: &Result{Success: true, Action: ActionIgnoredEventType}}, nil
	}

	if _, err := s.eventRepo.FindByEventID(ctx, event.ID); err == nil {
		return &Outcome{Duplicate: true}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up stripe event")
	}

	record := &models.StripeEvent{
		EventID:   event.ID,
		EventType: string(event.Type),
		Payload:   payloadFromEvent(event),
		Status:    enums.EventStatusProcessing,
	}
	if err := s.eventRepo.Insert(ctx, record); err != nil {
		if pkgerrors.IsUniqueViolation(err, "") {
			return &Outcome{Duplicate: true}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stripe event")
	}

	result, err := s.dispatch(ctx, event)
	if err != nil {
		failure := &Result{Success: false, Action: "handler_error", Error: err.Error()}
		_ = s.eventRepo.Complete(ctx, event.ID, enums.EventStatusFailed, resultToJSON(failure))
		return nil, err
	}

	if err := s.eventRepo.Complete(ctx, event.ID, enums.EventStatusProcessed, resultToJSON(result)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach event result")
	}

	return &Outcome{Result: result}, nil
}

func (s *Service) dispatch(ctx context.Context, event *stripe.Event) (*Result, error) {
	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		return s.handlePaymentSucceeded(ctx, event)
	case stripe.EventTypePaymentIntentPaymentFailed:
		return s.handlePaymentFailed(ctx, event)
	case stripe.EventTypePaymentIntentCanceled:
		return s.handlePaymentCanceled(ctx, event)
	case stripe.EventTypeChargeRefunded:
		return s.handleChargeRefunded(ctx, event)
	case stripe.EventTypeChargeDisputeCreated:
		return s.handleDisputeCreated(ctx, event)
	default:
		return &Result{Success: true, Action: ActionIgnoredEventType}, nil
	}
}

func (s *Service) handlePaymentSucceeded(ctx context.Context, event *stripe.Event) (*Result, error) {
	intent, err := decodePaymentIntent(event)
	if err != nil {
		return nil, err
	}

	booking, found, err := s.findBooking(ctx, intent.ID)
	if err != nil {
		return nil, err
	}
	if !found {
		return &Result{Success: true, Action: ActionNoBookingFound}, nil
	}

	if !booking.Status.CanTransitionTo(enums.BookingStatusConfirmed) {
		return &Result{Success: true, Action: ActionBookingAlreadyProcessed, BookingID: booking.ID.String()}, nil
	}

	booking.Status = enums.BookingStatusConfirmed
	booking.Payment = dbtypes.JSONMap{
		"status":         enums.PaymentStatusPaid.String(),
		"method":         "card",
		"transaction_id": intent.ID,
		"paid_at":        timestamp(),
	}
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm booking")
	}

	return &Result{Success: true, Action: ActionBookingConfirmed, BookingID: booking.ID.String()}, nil
}

func (s *Service) handlePaymentFailed(ctx context.Context, event *stripe.Event) (*Result, error) {
	intent, err := decodePaymentIntent(event)
	if err != nil {
		return nil, err
	}

	failureMessage := "Payment failed"
	if intent.LastPaymentError != nil && intent.LastPaymentError.Msg != "" {
		failureMessage = intent.LastPaymentError.Msg
	}

	booking, found, err := s.findBooking(ctx, intent.ID)
	if err != nil {
		return nil, err
	}
	if !found {
		return &Result{Success: true, Action: ActionNoBookingFound}, nil
	}

	if !booking.Status.CanTransitionTo(enums.BookingStatusPaymentFailed) {
		return &Result{Success: true, Action: ActionBookingAlreadyProcessed, BookingID: booking.ID.String()}, nil
	}

	booking.Status = enums.BookingStatusPaymentFailed
	booking.Payment = dbtypes.JSONMap{
		"status":         enums.PaymentStatusFailed.String(),
		"method":         "card",
		"transaction_id": intent.ID,
		"error_message":  failureMessage,
		"failed_at":      timestamp(),
	}
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark booking payment failed")
	}

	return &Result{Success: true, Action: ActionBookingPaymentFailed, BookingID: booking.ID.String()}, nil
}

func (s *Service) handlePaymentCanceled(ctx context.Context, event *stripe.Event) (*Result, error) {
	intent, err := decodePaymentIntent(event)
	if err != nil {
		return nil, err
	}

	booking, found, err := s.findBooking(ctx, intent.ID)
	if err != nil {
		return nil, err
	}
	if !found {
		return &Result{Success: true, Action: ActionNoBookingFound}, nil
	}

	if !booking.Status.CanTransitionTo(enums.BookingStatusCancelled) {
		return &Result{Success: true, Action: ActionBookingAlreadyProcessed, BookingID: booking.ID.String()}, nil
	}

	booking.Status = enums.BookingStatusCancelled
	booking.Payment = dbtypes.JSONMap{
		"status":         enums.PaymentStatusCancelled.String(),
		"method":         "card",
		"transaction_id": intent.ID,
		"cancelled_at":   timestamp(),
	}
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel booking")
	}

	return &Result{Success: true, Action: ActionBookingCancelled, BookingID: booking.ID.String()}, nil
}

func (s *Service) handleChargeRefunded(ctx context.Context, event *stripe.Event) (*Result, error) {
	var charge stripe.Charge
	if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode charge event")
	}

	if charge.PaymentIntent == nil || charge.PaymentIntent.ID == "" {
		return &Result{Success: true, Action: ActionNoPaymentIntentInCharge}, nil
	}

	booking, found, err := s.findBooking(ctx, charge.PaymentIntent.ID)
	if err != nil {
		return nil, err
	}
	if !found {
		return &Result{Success: true, Action: ActionNoBookingFound}, nil
	}

	fullRefund := charge.AmountRefunded >= charge.Amount

	refundStatus := enums.RefundStatusPartial
	action := ActionBookingPartiallyRefunded
	if fullRefund {
		refundStatus = enums.RefundStatusFull
		action = ActionBookingFullyRefunded
		booking.Status = enums.BookingStatusRefunded
	}

	booking.Payment = booking.Payment.Merge(map[string]any{
		"refund_status": refundStatus.String(),
		"refund_amount": minorUnitsToDecimal(charge.AmountRefunded),
		"refunded_at":   timestamp(),
	})
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record booking refund")
	}

	return &Result{Success: true, Action: action, BookingID: booking.ID.String()}, nil
}

// handleDisputeCreated applies no pending guard: a chargeback must surface on
// the booking whatever state it reached first.
func (s *Service) handleDisputeCreated(ctx context.Context, event *stripe.Event) (*Result, error) {
	var dispute stripe.Dispute
	if err := json.Unmarshal(event.Data.Raw, &dispute); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode dispute event")
	}

	if dispute.Charge == nil || dispute.Charge.ID == "" {
		return &Result{Success: true, Action: ActionNoPaymentIntentInDispute}, nil
	}

	// The dispute payload carries only the charge id; the payment intent
	// comes from a provider lookup.
	charge, err := s.stripe.GetCharge(ctx, dispute.Charge.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch disputed charge")
	}
	if charge.PaymentIntent == nil || charge.PaymentIntent.ID == "" {
		return &Result{Success: true, Action: ActionNoPaymentIntentInDispute}, nil
	}

	booking, found, err := s.findBooking(ctx, charge.PaymentIntent.ID)
	if err != nil {
		return nil, err
	}
	if !found {
		return &Result{Success: true, Action: ActionNoBookingFound}, nil
	}

	disputeAmount := minorUnitsToDecimal(dispute.Amount)

	booking.Status = enums.BookingStatusDisputed
	booking.Payment = booking.Payment.Merge(map[string]any{
		"dispute_id":         dispute.ID,
		"dispute_reason":     string(dispute.Reason),
		"dispute_amount":     disputeAmount,
		"dispute_created_at": timestamp(),
	})

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.bookingRepo.WithTx(tx).Update(ctx, booking); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark booking disputed")
		}
		entry := &models.AdminLog{
			Action:     "dispute_created",
			TargetType: "booking",
			TargetID:   booking.ID,
			Details: dbtypes.JSONMap{
				"dispute_id": dispute.ID,
				"reason":     string(dispute.Reason),
				"amount":     disputeAmount,
			},
		}
		if err := s.adminLogRepo.WithTx(tx).Append(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append dispute audit entry")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Result{Success: true, Action: ActionDisputeLogged, BookingID: booking.ID.String()}, nil
}

func (s *Service) findBooking(ctx context.Context, paymentIntentID string) (*models.Booking, bool, error) {
	if paymentIntentID == "" {
		return nil, false, nil
	}
	booking, err := s.bookingRepo.FindByPaymentIntentID(ctx, paymentIntentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up booking")
	}
	return booking, true, nil
}

func decodePaymentIntent(event *stripe.Event) (*stripe.PaymentIntent, error) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode payment intent event")
	}
	return &intent, nil
}

func payloadFromEvent(event *stripe.Event) dbtypes.JSONMap {
	var payload map[string]any
	if len(event.Data.Raw) > 0 {
		if err := json.Unmarshal(event.Data.Raw, &payload); err != nil {
			payload = nil
		}
	}
	return dbtypes.JSONMap(payload)
}

func resultToJSON(result *Result) dbtypes.JSONMap {
	if result == nil {
		return nil
	}
	out := dbtypes.JSONMap{
		"success": result.Success,
		"action":  result.Action,
	}
	if result.BookingID != "" {
		out["booking_id"] = result.BookingID
	}
	if result.Error != "" {
		out["error"] = result.Error
	}
	return out
}

func minorUnitsToDecimal(amount int64) float64 {
	return float64(amount) / 100
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
