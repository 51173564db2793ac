package registration

import (
	"errors"

	"github.com/kozaktomas/marathon-booth/internal/database"
	"github.com/kozaktomas/marathon-booth/internal/messages"
	"github.com/kozaktomas/marathon-booth/internal/runner"
)

// Form is the raw registration input.
type Form struct {
	Nickname string `json:"nickname"`
	Language string `json:"language"`
	// TargetTime is a finish time as HHMMSS or HH:MM:SS. When set it decides the bracket.
	TargetTime string `json:"targetTime,omitempty"`
	// Bracket is a 1-based bracket index, used when TargetTime is empty.
	Bracket       int `json:"bracket,omitempty"`
	MessageNumber int `json:"messageNumber"`
}

// Resolved is a validated form with every index turned into display text.
type Resolved struct {
	Nickname   string           `json:"nickname"`
	Locale     messages.Locale  `json:"language"`
	Bracket    runner.Bracket   `json:"targetTimeNumber"`
	TargetTime string           `json:"targetTime"`
	MessageNum int              `json:"messageNumber"`
	Message    string           `json:"message"`
	Phrases    messages.Phrases `json:"phrases"`
}

// NewRunner converts the resolved registration into a store payload.
func (r Resolved) NewRunner() database.NewRunner {
	return database.NewRunner{
		Nickname:         r.Nickname,
		Language:         string(r.Locale),
		TargetTime:       r.TargetTime,
		TargetTimeNumber: int(r.Bracket),
		Message:          r.Message,
		MessageNumber:    r.MessageNum,
		UpperPhrase:      r.Phrases.Upper,
		LowerPhrase:      r.Phrases.Lower,
	}
}

// Resolve validates f against the catalog and resolves bracket, intent text and
// phrases. Phrases are drawn here, once; every field error is reported together.
func Resolve(catalog *messages.Catalog, f Form, src runner.IntSource) (Resolved, error) {
	var (
		res  Resolved
		errs []error
	)

	res.Nickname = runner.NormalizeNickname(f.Nickname)
	if res.Nickname == "" {
		errs = append(errs, &ValidationError{Field: "nickname", Message: "nickname must not be empty"})
	}

	res.Locale = messages.Locale(f.Language)
	if f.Language == "" {
		res.Locale = messages.DefaultLocale
		if locales := catalog.Locales(); len(locales) > 0 {
			res.Locale = locales[0]
		}
	}
	table, ok := catalog.Table(res.Locale)
	if !ok {
		errs = append(errs, &ValidationError{Field: "language", Message: "unsupported language"})
		return res, errors.Join(errs...)
	}

	switch {
	case f.TargetTime != "":
		seconds, err := runner.ParseTargetTime(f.TargetTime)
		if err != nil {
			errs = append(errs, &ValidationError{Field: "targetTime", Message: err.Error()})
			break
		}
		res.Bracket = runner.ClassifySeconds(seconds)
		res.TargetTime = runner.FormatTargetTime(seconds)
	case f.Bracket != 0:
		label, ok := table.BracketLabel(f.Bracket)
		if !ok || !runner.Bracket(f.Bracket).Valid() {
			errs = append(errs, &ValidationError{Field: "bracket", Message: "bracket must be between 1 and 3"})
			break
		}
		res.Bracket = runner.Bracket(f.Bracket)
		res.TargetTime = label
	default:
		errs = append(errs, &ValidationError{Field: "targetTime", Message: "target time or bracket is required"})
	}

	intent, ok := table.Intent(f.MessageNumber)
	if !ok {
		errs = append(errs, &ValidationError{Field: "messageNumber", Message: "message selection is out of range"})
	} else {
		res.MessageNum = f.MessageNumber
		res.Message = intent
	}

	if len(errs) > 0 {
		return res, errors.Join(errs...)
	}

	res.Phrases = catalog.Generate(res.Locale, res.MessageNum, int(res.Bracket), src)
	return res, nil
}
