package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/airpath/airpath/internal/core"
)

// Notification is an advance-notice (PPR/PN) requirement for one airport.
// HoursNotice may be absent even when the summary text mentions one; use
// EffectiveHoursNotice to recover it.
type Notification struct {
	ICAO                string   `json:"icao"`
	HoursNotice         *int     `json:"hours_notice,omitempty"`
	Summary             string   `json:"summary,omitempty"`
	OperatingHoursStart string   `json:"operating_hours_start,omitempty"`
	OperatingHoursEnd   string   `json:"operating_hours_end,omitempty"`
	WeekdayRules        string   `json:"weekday_rules,omitempty"`
	ContactInfo         string   `json:"contact_info,omitempty"`
	Confidence          *float64 `json:"confidence,omitempty"`
}

// Patterns accepted when recovering an hours value from free text:
// "24h notice", "24 hr notice", "4 hours prior notice", "PPR 24 HR",
// "48HR PN". Mirrors the AIP-text parser feeding the bundled store.
var hoursNoticePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\s*h(?:rs?|ours?)?\s*(?:prior\s+)?(?:notice|advance|PN)`),
	regexp.MustCompile(`(?i)(?:PPR|PN)\s*(?:MNM\s+)?(\d+)\s*h(?:rs?|ours?)?`),
	regexp.MustCompile(`(?i)(\d+)\s*h(?:rs?|ours?)?\s*(?:PPR|PN)`),
}

// ParseHoursNotice extracts an hours-of-notice value from free text. When
// several values match, the minimum wins; ok is false when nothing matches.
func ParseHoursNotice(text string) (hours int, ok bool) {
	min := 0
	for _, re := range hoursNoticePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil || n <= 0 {
				continue
			}
			if !ok || n < min {
				min = n
				ok = true
			}
		}
	}
	return min, ok
}

// EffectiveHoursNotice resolves the notice hours for a record: the direct
// field when present, else a parse of the summary text.
func (n Notification) EffectiveHoursNotice() (int, bool) {
	if n.HoursNotice != nil {
		return *n.HoursNotice, true
	}
	return ParseHoursNotice(n.Summary)
}

const notificationCols = "icao, hours_notice, summary, operating_hours_start, operating_hours_end, weekday_rules, contact_info, confidence"

func scanNotification(scan func(...any) error) (Notification, error) {
	var n Notification
	var hours sql.NullInt64
	var summary, opStart, opEnd, weekday, contact sql.NullString
	var conf sql.NullFloat64
	if err := scan(&n.ICAO, &hours, &summary, &opStart, &opEnd, &weekday, &contact, &conf); err != nil {
		return Notification{}, err
	}
	if hours.Valid {
		v := int(hours.Int64)
		n.HoursNotice = &v
	}
	n.Summary = summary.String
	n.OperatingHoursStart = opStart.String
	n.OperatingHoursEnd = opEnd.String
	n.WeekdayRules = weekday.String
	n.ContactInfo = contact.String
	if conf.Valid {
		n.Confidence = &conf.Float64
	}
	return n, nil
}

// NotificationFor returns the notification record for one airport, or a
// NotFoundError when the store has none.
func (s *DB) NotificationFor(ctx context.Context, icao string) (Notification, error) {
	icao = strings.ToUpper(strings.TrimSpace(icao))
	row := s.db.QueryRowContext(ctx,
		`SELECT `+notificationCols+` FROM notifications WHERE UPPER(icao) = ?`, icao)
	n, err := scanNotification(row.Scan)
	if err == sql.ErrNoRows {
		return Notification{}, &core.NotFoundError{Kind: "notification", Ref: icao}
	}
	if err != nil {
		return Notification{}, fmt.Errorf("notification %s: %w", icao, err)
	}
	return n, nil
}

// NotificationsByHours returns records with a positive direct hours value,
// optionally capped at maxHours, ordered ascending by hours. The country
// filter is coarse: notifications carry no country, so it matches on the
// airport's ICAO prefix (e.g. "LF" for France).
func (s *DB) NotificationsByHours(ctx context.Context, maxHours *int, icaoPrefix string, limit int) ([]Notification, error) {
	q := `SELECT ` + notificationCols + ` FROM notifications
		WHERE hours_notice IS NOT NULL AND hours_notice > 0`
	args := []any{}
	if maxHours != nil {
		q += ` AND hours_notice <= ?`
		args = append(args, *maxHours)
	}
	if icaoPrefix != "" {
		q += ` AND UPPER(icao) LIKE ?`
		args = append(args, strings.ToUpper(icaoPrefix)+"%")
	}
	q += ` ORDER BY hours_notice ASC, icao ASC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("notifications by hours: %w", err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		n, err := scanNotification(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// NotificationSet returns ICAO -> record for bulk joins in vicinity queries.
func (s *DB) NotificationSet(ctx context.Context) (map[string]Notification, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+notificationCols+` FROM notifications`)
	if err != nil {
		return nil, fmt.Errorf("notifications: %w", err)
	}
	defer rows.Close()

	set := make(map[string]Notification)
	for rows.Next() {
		n, err := scanNotification(rows.Scan)
		if err != nil {
			return nil, err
		}
		set[strings.ToUpper(n.ICAO)] = n
	}
	return set, rows.Err()
}
