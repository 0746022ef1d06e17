package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppliedMigrations(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		want    []AppliedMigration
		wantErr string
	}{
		{
			name: "ordered versions",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT version, dirty FROM public\.schema_migrations ORDER BY version ASC`).
					WillReturnRows(sqlmock.NewRows([]string{"version", "dirty"}).
						AddRow(1, false).
						AddRow(2, true))
			},
			want: []AppliedMigration{{Version: 1}, {Version: 2, Dirty: true}},
		},
		{
			name: "none applied",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT version, dirty FROM public\.schema_migrations`).
					WillReturnRows(sqlmock.NewRows([]string{"version", "dirty"}))
			},
			want: []AppliedMigration{},
		},
		{
			name: "query error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT version, dirty FROM public\.schema_migrations`).
					WillReturnError(errors.New("relation does not exist"))
			},
			wantErr: "failed to query migrations",
		},
		{
			name: "row error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT version, dirty FROM public\.schema_migrations`).
					WillReturnRows(sqlmock.NewRows([]string{"version", "dirty"}).
						AddRow(1, false).
						RowError(0, errors.New("connection reset")))
			},
			wantErr: "failed to iterate migrations",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sqlDB, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer sqlDB.Close()

			tt.setup(mock)

			got, err := appliedMigrations(context.Background(), sqlDB, "public", "schema_migrations")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestNewMigrator_RequiresConfig(t *testing.T) {
	_, err := NewMigrator(nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration config is required")
}
