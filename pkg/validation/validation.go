package validation

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Messages surfaced next to offending fields.
const (
	MessageRequired      = "This field is required."
	MessageInvalidFormat = "Invalid format."
)

// MinimumMessage renders the minLength failure text.
func MinimumMessage(n int) string {
	return fmt.Sprintf("Minimum %d characters.", n)
}

// MaximumMessage renders the maxLength failure text.
func MaximumMessage(n int) string {
	return fmt.Sprintf("Maximum %d characters.", n)
}

// ErrorMap maps a field id to its error text. A pass always produces a fresh
// map; entries from earlier passes never carry over.
type ErrorMap map[string]string

// Empty reports whether no field failed.
func (m ErrorMap) Empty() bool {
	return len(m) == 0
}

// Values holds collected input keyed by field id: strings for single value
// controls, bool for toggles and []string for checkbox groups.
type Values map[string]any

// Clone copies the map and any option slices it holds.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for key, value := range v {
		if list, ok := value.([]string); ok {
			value = append([]string{}, list...)
		}
		out[key] = value
	}
	return out
}

// PatternPolicy decides how a pattern that fails to compile is treated.
type PatternPolicy int

const (
	// PatternFailClosed reports MessageInvalidFormat for any value.
	PatternFailClosed PatternPolicy = iota
	// PatternSkip ignores the rule.
	PatternSkip
)

// Option configures a Validator.
type Option func(*Validator)

// WithLogger attaches a logger used for malformed pattern warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithPatternPolicy overrides the malformed pattern policy.
func WithPatternPolicy(policy PatternPolicy) Option {
	return func(v *Validator) {
		v.policy = policy
	}
}

type compiled struct {
	re  *regexp.Regexp
	err error
}

// Validator evaluates field rules. Compiled patterns are cached, so a single
// Validator should be reused across passes. It is safe for concurrent use.
type Validator struct {
	logger *zap.Logger
	policy PatternPolicy

	mu       sync.Mutex
	patterns map[string]compiled
}

// New constructs a Validator.
func New(options ...Option) *Validator {
	v := &Validator{
		logger:   zap.NewNop(),
		policy:   PatternFailClosed,
		patterns: make(map[string]compiled),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(v)
	}
	return v
}

var defaultValidator = New()

// Validate runs the default Validator.
func Validate(fields []model.Field, values Values) ErrorMap {
	return defaultValidator.Validate(fields, values)
}

// Validate evaluates every field against values and returns the errors. Only
// the supplied fields are checked; callers pass the fields of the step being
// displayed.
func (v *Validator) Validate(fields []model.Field, values Values) ErrorMap {
	errs := make(ErrorMap)
	for _, field := range fields {
		if msg, failed := v.Field(field, values[field.ID]); failed {
			errs[field.ID] = msg
		}
	}
	return errs
}

// Field evaluates the rules of one field in order: required, minLength,
// maxLength, pattern. The first failing rule wins.
func (v *Validator) Field(field model.Field, value any) (string, bool) {
	if isEmpty(value) {
		if field.Required {
			return MessageRequired, true
		}
	}

	text, isText := asText(value)
	if !isText {
		return "", false
	}
	length := utf8.RuneCountInString(text)

	if min, ok := field.MinLengthValue(); ok && min > 0 && length < min {
		return MinimumMessage(min), true
	}
	if max, ok := field.MaxLengthValue(); ok && length > max {
		return MaximumMessage(max), true
	}

	if field.Pattern == "" {
		return "", false
	}
	re, err := v.compile(field.Pattern)
	if err != nil {
		if v.policy == PatternSkip {
			return "", false
		}
		return MessageInvalidFormat, true
	}
	if !re.MatchString(text) {
		return MessageInvalidFormat, true
	}
	return "", false
}

func (v *Validator) compile(expr string) (*regexp.Regexp, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if c, ok := v.patterns[expr]; ok {
		return c.re, c.err
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		v.logger.Warn("malformed field pattern",
			zap.String("pattern", expr),
			zap.Error(err),
		)
	}
	v.patterns[expr] = compiled{re: re, err: err}
	return re, err
}

// CheckPattern reports whether expr compiles. The configuration panel calls
// it before accepting a pattern.
func CheckPattern(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	if _, err := regexp.Compile(expr); err != nil {
		return fmt.Errorf("validation: invalid pattern %q: %w", expr, err)
	}
	return nil
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

func asText(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	default:
		return "", false
	}
}
