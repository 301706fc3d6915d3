package passenger_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/WaveLink/WL-Backend/internal/db/dbtest"
	"github.com/WaveLink/WL-Backend/internal/passenger"
	"github.com/stretchr/testify/require"
)

func TestGormStore_PreferencesPreloadRoutes(t *testing.T) {
	req := require.New(t)
	svc, mock := dbtest.New(t)

	mock.ExpectQuery(`SELECT \* FROM "transit"."passenger_preferences" WHERE "passenger_id" = \$1 ORDER BY "preferred_time"`).
		WithArgs(passengerID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "passenger_id", "route_id", "preferred_time"}).
			AddRow("p-1", passengerID, "route-ab", "08:00"))
	mock.ExpectQuery(`SELECT \* FROM "transit"."routes" WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "base_price"}).
			AddRow("route-ab", "Airport Express", 3.5))

	got, err := passenger.NewStore(svc).Preferences(context.Background(), passengerID)
	req.NoError(err)
	req.Len(got, 1)
	req.NotNil(got[0].Route)
	req.Equal("Airport Express", got[0].Route.Name)
}

func TestGormStore_PreferenceExists(t *testing.T) {
	svc, mock := dbtest.New(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "transit"."passenger_preferences" WHERE "passenger_id" = \$1 AND "preferred_time" = \$2 AND "route_id" = \$3`).
		WithArgs(passengerID, "08:00", "route-ab").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err := passenger.NewStore(svc).PreferenceExists(context.Background(), passengerID, "route-ab", "08:00")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestGormStore_DeletePreferenceNotOwned(t *testing.T) {
	svc, mock := dbtest.New(t)

	mock.ExpectExec(`DELETE FROM "transit"."passenger_preferences" WHERE "id" = \$1 AND "passenger_id" = \$2`).
		WithArgs("p-9", passengerID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := passenger.NewStore(svc).DeletePreference(context.Background(), passengerID, "p-9")
	require.NoError(t, err)
	require.False(t, removed)
}

func TestGormStore_AddPreferencesOneStatement(t *testing.T) {
	svc, mock := dbtest.New(t)

	mock.ExpectExec(`INSERT INTO "transit"."passenger_preferences" .* VALUES \(.*\),\(.*\)`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	prefs := []passenger.Preference{
		{PassengerID: passengerID, RouteID: "route-ab", PreferredTime: "08:00"},
		{PassengerID: passengerID, RouteID: "route-ba", PreferredTime: "18:00"},
	}
	require.NoError(t, passenger.NewStore(svc).AddPreferences(context.Background(), prefs))
	require.NotEmpty(t, prefs[0].ID)
}
