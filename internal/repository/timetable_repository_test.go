package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/require"

	"github.com/Likhith025/timetablegen/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTimetableRepositoryCreateVersionedAssignsNextVersion(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) + 1 FROM timetable_versions")).
		WithArgs("tt-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_versions")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	version := &models.TimetableVersion{
		TimetableID: "tt-1",
		Status:      string(models.GenerationStatusSuccess),
		Result:      types.JSONText(`{"generationStatus":"success"}`),
	}
	require.NoError(t, repo.CreateVersioned(context.Background(), nil, version))
	require.Equal(t, 3, version.Version)
	require.NotEmpty(t, version.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryCreateVersionedRequiresTimetableID(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	err := repo.CreateVersioned(context.Background(), nil, &models.TimetableVersion{})
	require.Error(t, err)
}

func TestTimetableRepositoryLatest(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	rows := sqlmock.NewRows([]string{"id", "timetable_id", "version", "status", "result", "created_at"}).
		AddRow("ver-2", "tt-1", 2, "partial", []byte(`{}`), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, timetable_id, version, status, result, created_at")).
		WithArgs("tt-1").
		WillReturnRows(rows)

	latest, err := repo.Latest(context.Background(), "tt-1")
	require.NoError(t, err)
	require.Equal(t, "ver-2", latest.ID)
	require.Equal(t, 2, latest.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryHistoryDefaultLimit(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	rows := sqlmock.NewRows([]string{"id", "timetable_id", "version", "status", "result", "created_at"}).
		AddRow("ver-2", "tt-1", 2, "success", []byte(`{}`), time.Now()).
		AddRow("ver-1", "tt-1", 1, "partial", []byte(`{}`), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, timetable_id, version, status, result, created_at")).
		WithArgs("tt-1", 20).
		WillReturnRows(rows)

	versions, err := repo.History(context.Background(), "tt-1", 0)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	require.Equal(t, 2, versions[0].Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryUpdateResultNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetable_versions SET result")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateResult(context.Background(), nil, "missing", types.JSONText(`{}`))
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
