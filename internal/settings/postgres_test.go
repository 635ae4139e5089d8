package settings

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"halo-summarizer/internal/llm"
)

func TestPostgresGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT provider, gemini_api_key, groq_api_key FROM settings`)).
		WithArgs(settingsRowID).
		WillReturnRows(sqlmock.NewRows([]string{"provider", "gemini_api_key", "groq_api_key"}).
			AddRow("groq", "", "q-key"))

	got, err := NewPostgresFromDB(db).Get(context.Background())
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	want := Settings{Provider: llm.ProviderGroq, GroqAPIKey: "q-key"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresGetEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`FROM settings`).
		WillReturnRows(sqlmock.NewRows([]string{"provider", "gemini_api_key", "groq_api_key"}))

	got, err := NewPostgresFromDB(db).Get(context.Background())
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if diff := cmp.Diff(Defaults(), got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestPostgresSave(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectExec(`INSERT INTO settings`).
		WithArgs(settingsRowID, "gemini", "g-key", "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := NewPostgresFromDB(db).Save(context.Background(), Settings{GeminiAPIKey: "g-key"}); err != nil {
		t.Fatalf("Save err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
