package storage

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/guttosm/bistpulse/internal/domain/models"
)

type dummyErr struct{}

func (dummyErr) Error() string { return "dummy" }

func newMockRepo(t *testing.T) (*pricesRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	repo := &pricesRepository{db: db}
	cleanup := func() { _ = db.Close() }
	return repo, mock, cleanup
}

func sampleRun() models.Run {
	return models.Run{
		ID:        "run-1",
		Range:     "5d",
		Interval:  "1d",
		StartedAt: time.Date(2024, 1, 5, 18, 0, 0, 0, time.UTC),
		Requested: 2,
		Succeeded: 1,
		RowCount:  1,
		CSVPath:   "data/BIST100_5d_1d_20240105_180000.csv",
		XLSXPath:  "data/BIST100_5d_1d_20240105_180000.xlsx",
	}
}

func sampleRow() models.PriceRow {
	return models.PriceRow{
		Ticker:    "AKBNK.IS",
		Timestamp: time.Date(2024, 1, 2, 7, 0, 0, 0, time.UTC),
		Open:      10, High: 10.5, Low: 9.8, Close: 10.2, AdjClose: 10.1, Volume: 100,
		Range: "5d", Interval: "1d",
	}
}

func TestPersistRun_SQLMock(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO runs`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep := mock.ExpectPrepare(`INSERT INTO prices`)
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
	mprep := mock.ExpectPrepare(`INSERT INTO symbol_meta`)
	mprep.ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
	for i := 0; i < 3; i++ { // last_run_id, last_run_at, last_run_rows
		mock.ExpectExec(`INSERT INTO meta`).WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	err := repo.PersistRun(sampleRun(), []models.PriceRow{sampleRow()},
		[]models.SymbolMeta{{Symbol: "AKBNK.IS", Currency: "TRY"}})
	if err != nil {
		t.Fatalf("PersistRun: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPersistRun_ErrorOnBegin(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectBegin().WillReturnError(dummyErr{})
	if err := repo.PersistRun(sampleRun(), nil, nil); err == nil {
		t.Fatalf("expected error on begin")
	}
}

func TestPersistRun_ErrorOnRunInsert(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO runs`).WillReturnError(dummyErr{})
	mock.ExpectRollback()

	if err := repo.PersistRun(sampleRun(), nil, nil); err == nil {
		t.Fatalf("expected error on run insert")
	}
}

func TestPersistRun_ErrorOnPriceUpsert(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO runs`).WillReturnResult(sqlmock.NewResult(1, 1))
	prep := mock.ExpectPrepare(`INSERT INTO prices`)
	prep.ExpectExec().WillReturnError(dummyErr{})
	mock.ExpectRollback()

	if err := repo.PersistRun(sampleRun(), []models.PriceRow{sampleRow()}, nil); err == nil {
		t.Fatalf("expected error on price upsert")
	}
}

func TestGetTickerSummary_SQLMock(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	selectRegex := regexp.MustCompile(`SELECT\s+COUNT\(\*\),`)

	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		from, to  *time.Time
		argsCount int
		bars      int64
	}{
		{name: "no dates", from: nil, to: nil, argsCount: 4, bars: 21},
		{name: "with from", from: &day, to: nil, argsCount: 6, bars: 10},
		{name: "with range", from: &day, to: &day2, argsCount: 8, bars: 5},
		{name: "no data", from: nil, to: nil, argsCount: 4, bars: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cols := []string{"count", "first", "last", "min_low", "max_high", "total_vol", "last_close"}
			var rows *sqlmock.Rows
			if tc.bars == 0 {
				rows = sqlmock.NewRows(cols).AddRow(0, nil, nil, nil, nil, nil, nil)
			} else {
				rows = sqlmock.NewRows(cols).
					AddRow(tc.bars, "2024-01-02 07:00:00", "2024-01-31 07:00:00", 41.2, 48.86, 1000.0, 47.1)
			}
			mock.ExpectQuery(selectRegex.String()).WillReturnRows(rows)

			out, err := repo.GetTickerSummary("AKBNK.IS", "1d", tc.from, tc.to)
			if err != nil {
				t.Fatalf("GetTickerSummary: %v", err)
			}
			if tc.bars == 0 {
				if out != nil {
					t.Fatalf("want nil summary, got %+v", out)
				}
				return
			}
			if out == nil || out.Bars != tc.bars || out.MaxHigh != 48.86 || out.LastClose != 47.1 {
				t.Fatalf("unexpected summary: %+v", out)
			}
			if out.Ticker != "AKBNK.IS" || out.Interval != "1d" {
				t.Fatalf("summary not tagged with key: %+v", out)
			}
		})
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetMeta_SQLMock(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM meta WHERE key = ?")).
		WithArgs("last_run_id").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("run-1"))
	v, err := repo.GetMeta("last_run_id")
	if err != nil || v != "run-1" {
		t.Fatalf("GetMeta: v=%q err=%v", v, err)
	}

	// missing key → empty string, no error
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM meta WHERE key = ?")).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))
	v, err = repo.GetMeta("nope")
	if err != nil || v != "" {
		t.Fatalf("GetMeta missing: v=%q err=%v", v, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNewPricesRepository_Construct(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func() { _ = db.Close() }()
	if NewPricesRepository(db) == nil {
		t.Fatalf("expected non-nil repository")
	}
}
