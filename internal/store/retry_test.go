package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &Store{db: db, path: "mock", now: func() time.Time { return fixed }}, mock
}

func TestExecRetriesWhileDatabaseIsLocked(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("DELETE FROM analysis_results").WillReturnError(errors.New("database is locked"))
	mock.ExpectExec("DELETE FROM analysis_results").WillReturnError(errors.New("SQLITE_BUSY"))
	mock.ExpectExec("DELETE FROM analysis_results").WillReturnResult(sqlmock.NewResult(0, 3))

	removed, err := s.ClearAnalysisResults(context.Background())
	if err != nil {
		t.Fatalf("ClearAnalysisResults: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestClearAnalysisResultsReportsRowsAffectedError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("DELETE FROM analysis_results").
		WillReturnResult(sqlmock.NewErrorResult(errors.New("rows affected unavailable")))

	removed, err := s.ClearAnalysisResults(context.Background())
	if err == nil {
		t.Fatalf("expected error, got %d removed", removed)
	}
	if removed != 0 {
		t.Fatalf("expected 0 removed on error, got %d", removed)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestExecDoesNotRetryOtherErrors(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("DELETE FROM analysis_results").WillReturnError(errors.New("disk I/O error"))

	if _, err := s.ClearAnalysisResults(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestExecGivesUpAfterBoundedAttempts(t *testing.T) {
	s, mock := newMockStore(t)
	for i := 0; i < busyRetryAttempts; i++ {
		mock.ExpectExec("DELETE FROM analysis_results").WillReturnError(errors.New("database is locked"))
	}

	_, err := s.ClearAnalysisResults(context.Background())
	if err == nil || !isSQLiteBusy(errors.Unwrap(err)) {
		t.Fatalf("expected busy error after retries, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestForeignKeyFailureMapsToUnknownCreator(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO yt_campaigns").WillReturnError(errors.New("constraint failed: FOREIGN KEY constraint failed (787)"))

	_, err := s.SetCampaignStatus(context.Background(), PlatformYouTube, "UCx", StatusContacted, "")
	if !errors.Is(err, ErrUnknownCreator) {
		t.Fatalf("expected ErrUnknownCreator, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestInvalidStatusNeverReachesDatabase(t *testing.T) {
	s, mock := newMockStore(t)
	_, err := s.SetCampaignStatus(context.Background(), PlatformInstagram, "jane", CampaignStatus("archived"), "")
	if !errors.Is(err, ErrInvalidCampaignStatus) {
		t.Fatalf("expected ErrInvalidCampaignStatus, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected database access: %v", err)
	}
}

func TestTimestampsSortAsText(t *testing.T) {
	early := formatTime(time.Date(2026, 1, 1, 0, 0, 0, 500, time.UTC))
	late := formatTime(time.Date(2026, 1, 1, 0, 0, 0, 5000, time.UTC))
	if !(early < late) {
		t.Fatalf("expected %q < %q", early, late)
	}
	parsed, err := parseTimeString(late)
	if err != nil {
		t.Fatalf("parseTimeString: %v", err)
	}
	if parsed.Nanosecond() != 5000 {
		t.Fatalf("expected nanoseconds preserved, got %d", parsed.Nanosecond())
	}
}
