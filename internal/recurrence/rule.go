package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

var (
	ErrEmptyRule    = errors.New("recurrence rule is empty")
	ErrSubDailyRule = errors.New("recurrence rule repeats more often than daily")
)

const rulePrefix = "RRULE:"

// repairAnchor is only used to check that a rule parses.
var repairAnchor = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Rule is an RFC 5545 recurrence rule anchored at a task's start date.
type Rule struct {
	text string
	rr   *rrule.RRule
}

// ParseRule accepts either a bare "FREQ=..." rule or one carrying the RRULE:
// prefix. A leading DTSTART line is ignored; dtstart always wins.
// HOURLY, MINUTELY and SECONDLY rules are rejected: due dates are whole days.
func ParseRule(text string, dtstart time.Time) (rule *Rule, err error) {
	body := normalizeRule(text)
	if body == "" {
		return nil, ErrEmptyRule
	}

	defer func() {
		if r := recover(); r != nil {
			rule, err = nil, fmt.Errorf("parse rule %q: %v", text, r)
		}
	}()

	opt, err := rrule.StrToROption(body)
	if err != nil {
		return nil, fmt.Errorf("parse rule %q: %w", text, err)
	}
	switch opt.Freq {
	case rrule.HOURLY, rrule.MINUTELY, rrule.SECONDLY:
		return nil, fmt.Errorf("parse rule %q: %w", text, ErrSubDailyRule)
	}
	opt.Dtstart = Day(dtstart)
	rr, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("build rule %q: %w", text, err)
	}
	return &Rule{text: body, rr: rr}, nil
}

func (r *Rule) String() string {
	return rulePrefix + r.text
}

// OccursOn reports whether the rule fires within [day, day+1).
func (r *Rule) OccursOn(day time.Time) bool {
	return len(r.Between(day, day)) > 0
}

// Between returns the distinct calendar dates in [from, to] (both inclusive)
// on which the rule fires, in ascending order.
func (r *Rule) Between(from, to time.Time) (days []time.Time) {
	from, to = Day(from), Day(to)
	if to.Before(from) {
		return nil
	}
	end := addDays(to, 1)

	defer func() {
		if rec := recover(); rec != nil {
			days = nil
		}
	}()

	var last time.Time
	for _, t := range r.rr.Between(from, end, true) {
		if !t.Before(end) {
			break
		}
		d := Day(t)
		if d.Equal(last) {
			continue
		}
		days = append(days, d)
		last = d
	}
	return days
}

// normalizeRule strips surrounding whitespace, a DTSTART line and the RRULE:
// prefix, and upper-cases the remaining rule body.
func normalizeRule(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	var body string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		upper := strings.ToUpper(line)
		if line == "" || strings.HasPrefix(upper, "DTSTART") {
			continue
		}
		body = upper
	}
	body = strings.TrimPrefix(body, rulePrefix)
	return strings.Trim(body, "; ")
}

// RepairRule returns the canonical RRULE:-prefixed form of text when it
// parses, and the trimmed input with ok=false otherwise.
func RepairRule(text string) (string, bool) {
	rule, err := ParseRule(text, repairAnchor)
	if err != nil {
		return strings.TrimSpace(text), false
	}
	return rule.String(), true
}
