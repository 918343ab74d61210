package config

import (
	"errors"
	"fmt"
	"math"
	"regexp"
)

// ErrInvalidConfig marks configuration errors. These are fatal at
// process startup and never surface during an analysis request.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config carries every externally overridable knob of the detector:
// analyzer weights, the generic-name dictionary, comment phrase
// templates, and all numeric thresholds.
type Config struct {
	// Weights maps analyzer IDs to their aggregation weight. The
	// values must sum to 1.0.
	Weights map[string]float64 `yaml:"weights"`

	// GenericNames is the dictionary of identifier base names the
	// naming heuristic treats as generic.
	GenericNames []string `yaml:"generic_names"`

	// CommentTemplates are regular expressions matching templated,
	// over-explanatory comment constructions.
	CommentTemplates []string `yaml:"comment_templates"`

	Thresholds Thresholds `yaml:"thresholds"`
	Verdicts   Verdicts   `yaml:"verdicts"`

	compiledTemplates []*regexp.Regexp
	genericSet        map[string]bool
}

// Thresholds holds the numeric tuning values for the analyzers.
type Thresholds struct {
	// GenericNameRatio is the ratio above which GenericNaming is emitted.
	GenericNameRatio float64 `yaml:"generic_name_ratio"`

	// TemplatedComment is the phrase sub-signal level above which
	// TemplatedComment is emitted.
	TemplatedComment float64 `yaml:"templated_comment"`

	// CommentBandLow/High bound the "natural" comment-to-code ratio.
	CommentBandLow  float64 `yaml:"comment_band_low"`
	CommentBandHigh float64 `yaml:"comment_band_high"`

	// UniformityFloor and UniformityUpper bound the coefficient of
	// variation scoring ramp for the structural heuristic.
	UniformityFloor float64 `yaml:"uniformity_floor"`
	UniformityUpper float64 `yaml:"uniformity_upper"`

	// MinBlocks is the minimum block count before the structural
	// heuristic scores at all.
	MinBlocks int `yaml:"min_blocks"`

	// StyleWindow is the sliding window size, in blocks, for the
	// style inconsistency detector.
	StyleWindow int `yaml:"style_window"`

	// StyleZScore is the normalized distance above which consecutive
	// windows mark a discontinuity.
	StyleZScore float64 `yaml:"style_z_score"`

	// ApproximateDiscount multiplies every raw score when the model
	// fidelity is Approximate.
	ApproximateDiscount float64 `yaml:"approximate_discount"`
}

// Verdicts holds the inclusive lower bounds of the upper two
// confidence bands.
type Verdicts struct {
	PossibleAt int `yaml:"possible_at"`
	LikelyAIAt int `yaml:"likely_ai_at"`
}

// Validate checks ranges and compiles the comment templates. It must
// be called once at startup; analyzers assume a validated config.
func (c *Config) Validate() error {
	if len(c.Weights) == 0 {
		return fmt.Errorf("%w: no analyzer weights configured", ErrInvalidConfig)
	}
	sum := 0.0
	for id, w := range c.Weights {
		if w < 0 || w > 1 {
			return fmt.Errorf("%w: weight for %q is %v, want [0,1]", ErrInvalidConfig, id, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("%w: analyzer weights sum to %v, want 1.0", ErrInvalidConfig, sum)
	}

	t := c.Thresholds
	if t.GenericNameRatio < 0 || t.GenericNameRatio > 1 {
		return fmt.Errorf("%w: generic_name_ratio %v out of [0,1]", ErrInvalidConfig, t.GenericNameRatio)
	}
	if t.CommentBandLow < 0 || t.CommentBandHigh <= t.CommentBandLow {
		return fmt.Errorf("%w: comment band [%v,%v] is not a valid interval", ErrInvalidConfig, t.CommentBandLow, t.CommentBandHigh)
	}
	if t.UniformityFloor <= 0 || t.UniformityUpper <= t.UniformityFloor {
		return fmt.Errorf("%w: uniformity ramp [%v,%v] is not a valid interval", ErrInvalidConfig, t.UniformityFloor, t.UniformityUpper)
	}
	if t.MinBlocks < 1 {
		return fmt.Errorf("%w: min_blocks %d must be positive", ErrInvalidConfig, t.MinBlocks)
	}
	if t.StyleWindow < 2 {
		return fmt.Errorf("%w: style_window %d must be at least 2", ErrInvalidConfig, t.StyleWindow)
	}
	if t.StyleZScore <= 0 {
		return fmt.Errorf("%w: style_z_score %v must be positive", ErrInvalidConfig, t.StyleZScore)
	}
	if t.ApproximateDiscount <= 0 || t.ApproximateDiscount > 1 {
		return fmt.Errorf("%w: approximate_discount %v out of (0,1]", ErrInvalidConfig, t.ApproximateDiscount)
	}

	v := c.Verdicts
	if v.PossibleAt <= 0 || v.LikelyAIAt <= v.PossibleAt || v.LikelyAIAt > 100 {
		return fmt.Errorf("%w: verdict bands %d/%d are not ordered within (0,100]", ErrInvalidConfig, v.PossibleAt, v.LikelyAIAt)
	}

	c.compiledTemplates = make([]*regexp.Regexp, 0, len(c.CommentTemplates))
	for _, pat := range c.CommentTemplates {
		re, err := regexp.Compile(pat)
		if err != nil {
			return fmt.Errorf("%w: comment template %q: %v", ErrInvalidConfig, pat, err)
		}
		c.compiledTemplates = append(c.compiledTemplates, re)
	}

	c.genericSet = make(map[string]bool, len(c.GenericNames))
	for _, n := range c.GenericNames {
		c.genericSet[n] = true
	}

	return nil
}

// CompiledTemplates returns the compiled comment template regexes.
func (c *Config) CompiledTemplates() []*regexp.Regexp {
	return c.compiledTemplates
}

// GenericSet returns the generic-name dictionary as a lookup set.
func (c *Config) GenericSet() map[string]bool {
	return c.genericSet
}
