package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestMetadataFor(t *testing.T) {
	cases := map[Code]int{
		CodeValidation: http.StatusBadRequest,
		CodeNotFound:   http.StatusNotFound,
		CodeConflict:   http.StatusConflict,
		CodeInternal:   http.StatusInternalServerError,
		CodeDependency: http.StatusServiceUnavailable,
	}
	for code, status := range cases {
		if got := MetadataFor(code).HTTPStatus; got != status {
			t.Errorf("MetadataFor(%s).HTTPStatus = %d, want %d", code, got, status)
		}
	}
	if got := MetadataFor(Code("bogus")).HTTPStatus; got != http.StatusInternalServerError {
		t.Errorf("unknown code should map to 500, got %d", got)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := Wrap(CodeDependency, cause, "query bookings")

	if !stdErrors.Is(err, cause) {
		t.Fatal("wrapped error should match its cause")
	}
	typed := As(fmt.Errorf("outer: %w", err))
	if typed == nil || typed.Code() != CodeDependency {
		t.Fatalf("As = %v", typed)
	}
}

func TestAsNonTypedError(t *testing.T) {
	if As(fmt.Errorf("plain")) != nil {
		t.Fatal("plain error should not convert")
	}
	if As(nil) != nil {
		t.Fatal("nil should not convert")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	pgxErr := &pgconn.PgError{Code: "23505", ConstraintName: "idx_stripe_events_event_id"}
	wrapped := Wrap(CodeDependency, pgxErr, "insert event")

	if !IsUniqueViolation(wrapped, "") {
		t.Fatal("expected unique violation for pgx error")
	}
	if !IsUniqueViolation(wrapped, "idx_stripe_events_event_id") {
		t.Fatal("expected match on constraint name")
	}
	if IsUniqueViolation(wrapped, "other_constraint") {
		t.Fatal("unexpected match on different constraint")
	}

	pqErr := &pq.Error{Code: "23505", Constraint: "idx_stripe_events_event_id"}
	if !IsUniqueViolation(fmt.Errorf("insert: %w", pqErr), "idx_stripe_events_event_id") {
		t.Fatal("expected unique violation for pq error")
	}

	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}, "") {
		t.Fatal("foreign key violation should not match")
	}
	if IsUniqueViolation(fmt.Errorf("plain"), "") {
		t.Fatal("plain error should not match")
	}
}

func TestDumpCollectsPGFields(t *testing.T) {
	pgxErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "idx_stripe_events_event_id",
		TableName:      "stripe_events",
	}
	dump := Dump(Wrap(CodeDependency, pgxErr, "insert event"))

	if dump.Code != CodeDependency {
		t.Fatalf("dump code = %q", dump.Code)
	}
	if dump.PGCode != "23505" || dump.PGConstraint != "idx_stripe_events_event_id" || dump.PGTable != "stripe_events" {
		t.Fatalf("dump pg fields = %+v", dump)
	}
	if len(dump.Chain) == 0 {
		t.Fatal("dump chain empty")
	}
}
