package passenger

import (
	"context"
	"fmt"
	"strings"

	"github.com/WaveLink/WL-Backend/internal/db"
	"github.com/WaveLink/WL-Backend/internal/session"
	"github.com/WaveLink/WL-Backend/internal/transit"
	"github.com/WaveLink/WL-Backend/internal/utils"
	"github.com/pkg/errors"
)

const (
	msgSameTerminal    = "'From' and 'To' terminals cannot be the same. Skipping row."
	msgNoRoute         = "Could not find a valid route for one of your selections. Skipping."
	msgAlreadyExists   = "Preference already exists and was skipped."
	msgPreferencesSent = "New preferences saved successfully!"
)

// TimeSlots returns the half-hour departure slots offered on the dashboard,
// 08:00 through 20:00.
func TimeSlots() []string {
	slots := make([]string, 0, 25)
	for hour := 8; hour <= 20; hour++ {
		slots = append(slots, fmt.Sprintf("%02d:00", hour))
		if hour != 20 {
			slots = append(slots, fmt.Sprintf("%02d:30", hour))
		}
	}
	return slots
}

// PreferenceRow is one from/to/time line of the preferences form.
type PreferenceRow struct {
	From string
	To   string
	Time string
}

// Rows zips the parallel form lists, stopping at the shortest.
func Rows(from, to, times []string) []PreferenceRow {
	n := len(from)
	if len(to) < n {
		n = len(to)
	}
	if len(times) < n {
		n = len(times)
	}
	rows := make([]PreferenceRow, n)
	for i := 0; i < n; i++ {
		rows[i] = PreferenceRow{
			From: strings.TrimSpace(from[i]),
			To:   strings.TrimSpace(to[i]),
			Time: strings.TrimSpace(times[i]),
		}
	}
	return rows
}

// Plan is the outcome of checking submitted rows: the preferences to insert
// and the notices for rows that were skipped.
type Plan struct {
	New     []Preference
	Notices []session.Flash
}

func (p *Plan) notice(category, message string) {
	p.Notices = append(p.Notices, session.Flash{Category: category, Message: message})
}

// PlanPreferences resolves each row to a route and keeps only combinations
// the passenger does not already have. A lookup failure aborts the plan but
// the notices gathered so far are returned with the error.
func PlanPreferences(ctx context.Context, store Store, network transit.Network, passengerID string, rows []PreferenceRow) (*Plan, error) {
	plan := &Plan{}
	seen := make(map[string]bool)

	for _, row := range rows {
		if row.From == "" || row.To == "" || row.Time == "" {
			continue
		}
		if row.From == row.To {
			plan.notice(session.FlashError, msgSameTerminal)
			continue
		}

		if !utils.IsUUID(row.From) || !utils.IsUUID(row.To) {
			plan.notice(session.FlashError, msgNoRoute)
			continue
		}
		route, err := network.RouteBetween(ctx, row.From, row.To)
		if errors.Is(err, db.ErrNotFound) {
			plan.notice(session.FlashError, msgNoRoute)
			continue
		}
		if err != nil {
			return plan, err
		}

		key := route.ID + "|" + row.Time
		if seen[key] {
			plan.notice(session.FlashInfo, msgAlreadyExists)
			continue
		}
		exists, err := store.PreferenceExists(ctx, passengerID, route.ID, row.Time)
		if err != nil {
			return plan, err
		}
		seen[key] = true
		if exists {
			plan.notice(session.FlashInfo, msgAlreadyExists)
			continue
		}

		plan.New = append(plan.New, Preference{
			PassengerID:   passengerID,
			RouteID:       route.ID,
			PreferredTime: row.Time,
		})
	}
	return plan, nil
}
