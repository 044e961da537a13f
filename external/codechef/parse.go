package codechef

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/riskibarqy/contest-radar/internal/domain/contest"
)

const (
	// CodeChef only shows a countdown, so the contest length is assumed.
	assumedContestDuration = 2 * time.Hour
	solvedHeaderPrefix     = "Total Problems Solved:"
)

var firstInteger = regexp.MustCompile(`\d+`)

// Selectors locates contest and profile data in rendered CodeChef pages.
// The contest page uses generated CSS module class names that change between deploys.
type Selectors struct {
	ContestTable   string
	ContestRow     string
	ContestLink    string
	ContestTimer   string
	TimerDays      string
	TimerHours     string
	ProfileReady   string
	ProfileHeaders string
	ProfileRating  string
}

func DefaultSelectors() Selectors {
	return Selectors{
		ContestTable:   "._table__container_14pun_344",
		ContestRow:     "._flex__container_14pun_528",
		ContestLink:    "a",
		ContestTimer:   "._timer__container_14pun_590",
		TimerDays:      "p:nth-child(1)",
		TimerHours:     "p:nth-child(2)",
		ProfileReady:   ".problems-solved",
		ProfileHeaders: "h3",
		ProfileRating:  ".rating-number",
	}
}

func (s Selectors) withDefaults() Selectors {
	def := DefaultSelectors()
	pick := func(v, fallback string) string {
		if strings.TrimSpace(v) == "" {
			return fallback
		}
		return v
	}
	return Selectors{
		ContestTable:   pick(s.ContestTable, def.ContestTable),
		ContestRow:     pick(s.ContestRow, def.ContestRow),
		ContestLink:    pick(s.ContestLink, def.ContestLink),
		ContestTimer:   pick(s.ContestTimer, def.ContestTimer),
		TimerDays:      pick(s.TimerDays, def.TimerDays),
		TimerHours:     pick(s.TimerHours, def.TimerHours),
		ProfileReady:   pick(s.ProfileReady, def.ProfileReady),
		ProfileHeaders: pick(s.ProfileHeaders, def.ProfileHeaders),
		ProfileRating:  pick(s.ProfileRating, def.ProfileRating),
	}
}

// ParseRelativeStart turns a "2 Days" / "5 Hrs" countdown into an absolute start time.
// Unparseable parts count as zero.
func ParseRelativeStart(now time.Time, daysText, hoursText string) time.Time {
	days := parseLeadingInt(daysText)
	hours := parseLeadingInt(hoursText)
	return now.Add(time.Duration(days)*24*time.Hour + time.Duration(hours)*time.Hour)
}

// parseLeadingInt reads an optional sign and the digits at the start of s, ignoring leading spaces.
func parseLeadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

func parseContests(html string, base *url.URL, now time.Time, sel Selectors) ([]contest.Contest, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse contests page: %w", err)
	}

	tables := doc.Find(sel.ContestTable)
	if tables.Length() < 2 {
		return nil, fmt.Errorf("upcoming contest table not found: selector=%q tables=%d", sel.ContestTable, tables.Length())
	}

	var out []contest.Contest
	tables.Eq(1).Find(sel.ContestRow).Each(func(_ int, row *goquery.Selection) {
		link := row.Find(sel.ContestLink).First()
		timer := row.Find(sel.ContestTimer).First()
		if link.Length() == 0 || timer.Length() == 0 {
			return
		}
		name := strings.TrimSpace(link.Text())
		if name == "" {
			return
		}

		daysText := textOr(timer.Find(sel.TimerDays).First(), "0")
		hoursText := textOr(timer.Find(sel.TimerHours).First(), "0")
		start := ParseRelativeStart(now, daysText, hoursText)

		out = append(out, contest.Contest{
			Platform:        contest.PlatformCodeChef,
			Name:            name,
			URL:             absoluteURL(base, link.AttrOr("href", "")),
			StartTime:       start,
			EndTime:         start.Add(assumedContestDuration),
			DurationSeconds: int64(assumedContestDuration / time.Second),
			RelativeTime:    daysText + " " + hoursText,
		})
	})
	return out, nil
}

func parseProfile(html string, sel Selectors) (profile, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return profile{}, fmt.Errorf("parse profile page: %w", err)
	}
	if doc.Find(sel.ProfileReady).Length() == 0 {
		return profile{}, fmt.Errorf("profile page has no %q element", sel.ProfileReady)
	}

	var p profile
	doc.Find(sel.ProfileHeaders).EachWithBreak(func(_ int, h *goquery.Selection) bool {
		text := strings.TrimSpace(h.Text())
		if !strings.HasPrefix(text, solvedHeaderPrefix) {
			return true
		}
		if match := firstInteger.FindString(text); match != "" {
			p.Solved, _ = strconv.Atoi(match)
		}
		return false
	})
	if rating := doc.Find(sel.ProfileRating).First(); rating.Length() > 0 {
		p.Rating = max(parseLeadingInt(rating.Text()), 0)
	}
	return p, nil
}

func textOr(s *goquery.Selection, fallback string) string {
	if s.Length() == 0 {
		return fallback
	}
	text := strings.TrimSpace(s.Text())
	if text == "" {
		return fallback
	}
	return text
}

func absoluteURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return base.String()
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
