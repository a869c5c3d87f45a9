package domain

import "time"

// Season is the observation window of a growing season, from 1 March through
// the current date.
type Season struct {
	Year  int       `json:"year"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SeasonFor returns the season containing now. Dates before 1 March belong
// to the previous year's season.
func SeasonFor(now time.Time) Season {
	today := Day(now)
	year := today.Year()
	if today.Before(time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		year--
	}
	return Season{
		Year:  year,
		Start: time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC),
		End:   today,
	}
}

// CurrentSeason returns the season for the package clock's current time.
func CurrentSeason() Season {
	return SeasonFor(clock.Now())
}

// DefaultPlantingDate is 15 May of the season year.
func (s Season) DefaultPlantingDate() time.Time {
	return time.Date(s.Year, time.May, 15, 0, 0, 0, 0, time.UTC)
}

// Days returns the number of calendar days in the window, inclusive.
func (s Season) Days() int {
	return DaysBetween(s.Start, s.End) + 1
}
