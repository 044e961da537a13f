package contest

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

type Platform string

const (
	PlatformCodeforces Platform = "Codeforces"
	PlatformLeetCode   Platform = "LeetCode"
	PlatformCodeChef   Platform = "CodeChef"
)

// Platforms lists every supported platform in a fixed order.
func Platforms() []Platform {
	return []Platform{PlatformCodeforces, PlatformLeetCode, PlatformCodeChef}
}

func ParsePlatform(raw string) (Platform, bool) {
	value := strings.TrimSpace(raw)
	for _, p := range Platforms() {
		if strings.EqualFold(value, string(p)) {
			return p, true
		}
	}
	return "", false
}

func (p Platform) String() string {
	return string(p)
}

// Contest is one upcoming contest as stored. Identity is (Platform, Name).
type Contest struct {
	Platform        Platform `validate:"required,oneof=Codeforces LeetCode CodeChef"`
	Name            string   `validate:"required"`
	URL             string   `validate:"required,url"`
	StartTime       time.Time
	EndTime         time.Time
	DurationSeconds int64 `validate:"gte=0"`
	// RelativeTime keeps CodeChef's countdown text, e.g. "2 Days 5 Hrs".
	RelativeTime string
}

func (c Contest) Key() string {
	return Key(c.Platform, c.Name)
}

func Key(platform Platform, name string) string {
	return string(platform) + ":" + strings.TrimSpace(name)
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks required fields and that the contest window is well formed.
func (c Contest) Validate() error {
	if err := structValidator().Struct(c); err != nil {
		return fmt.Errorf("contest %q: %w", c.Key(), err)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("contest name is blank")
	}
	if c.StartTime.IsZero() {
		return fmt.Errorf("contest %q: start time is required", c.Key())
	}
	if !c.EndTime.IsZero() && c.EndTime.Before(c.StartTime) {
		return fmt.Errorf("contest %q: end time %s before start time %s", c.Key(), c.EndTime, c.StartTime)
	}
	if !c.EndTime.IsZero() && c.DurationSeconds > 0 {
		if span := int64(c.EndTime.Sub(c.StartTime) / time.Second); span != c.DurationSeconds {
			return fmt.Errorf("contest %q: duration %ds does not match window %ds", c.Key(), c.DurationSeconds, span)
		}
	}
	return nil
}
