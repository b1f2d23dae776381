package enrollment

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/p-n-ai/pai-cohort/internal/shared"
)

// Params are the named simulation parameters.
type Params struct {
	LowAge           float64  `yaml:"lowAge"`           // fraction of freshmen entering at 14
	FailChance       float64  `yaml:"failChance"`       // fail probability of a regular course
	Honors           float64  `yaml:"honors"`           // base honors probability
	HonorsCompound   float64  `yaml:"honorsCompound"`   // growth per honors course held
	HonorsFailChance float64  `yaml:"honorsFailChance"` // fail probability of an honors course
	HonorsFallOut    float64  `yaml:"honorsFallOut"`    // probability of passing without honors
	Band             float64  `yaml:"band"`             // probability of taking the optional special
	DropoutAge       int      `yaml:"dropoutAge"`       // students older than this may drop out
	DropoutChance    float64  `yaml:"dropoutChance"`
	MaxAge           int      `yaml:"maxAge"` // students older than this are dropped
	Electives        int      `yaml:"electives"`
	MaxCourses       int      `yaml:"maxCourses"`
	Enrollment       int      `yaml:"enrollment"`
	EnrollmentMargin int      `yaml:"enrollmentMargin"`
	Skippable        []string `yaml:"skippable"`

	ElectiveGrade    int    `yaml:"electiveGrade"`    // grade from which electives are offered
	PushGrade        int    `yaml:"pushGrade"`        // grade from which no slots are reserved for electives
	MandatorySpecial string `yaml:"mandatorySpecial"` // taken every year ("" = none)
	OptionalSpecial  string `yaml:"optionalSpecial"`  // taken with probability Band ("" = none)
	Capstone         string `yaml:"capstone"`         // taken in the terminal grade ("" = none)
}

// DefaultParams returns the parameters of the default simulation.
func DefaultParams() Params {
	return Params{
		LowAge:           0.4,
		FailChance:       0.08,
		Honors:           0.15,
		HonorsCompound:   0.25,
		HonorsFailChance: 0.04,
		HonorsFallOut:    0.1,
		Band:             0.5,
		DropoutAge:       17,
		DropoutChance:    0.05,
		MaxAge:           20,
		Electives:        2,
		MaxCourses:       7,
		Enrollment:       110,
		EnrollmentMargin: 11,
		Skippable:        []string{"Algebra I", "Earth Science"},
		ElectiveGrade:    10,
		PushGrade:        11,
		MandatorySpecial: "PE",
		OptionalSpecial:  "Band",
		Capstone:         "College Success",
	}
}

// ParamNames lists the names accepted by Set.
func ParamNames() []string {
	return []string{
		"lowAge", "failChance", "honors", "honorsCompound", "honorsFailChance",
		"honorsFallOut", "band", "dropoutAge", "dropoutChance", "maxAge",
		"electives", "maxCourses", "enrollment", "enrollmentMargin", "skippable",
		"electiveGrade", "pushGrade", "mandatorySpecial", "optionalSpecial", "capstone",
	}
}

// LoadParams reads a YAML parameter file on top of the defaults.
func LoadParams(path string) (Params, error) {
	p := DefaultParams()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("reading params: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return p, fmt.Errorf("parsing params %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Set assigns one parameter by name. Skippable takes a comma separated list.
func (p *Params) Set(name, value string) error {
	const op = "params.Set"

	float := func(dst *float64) error {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return shared.ValidationError(op, "%s: %q is not a number", name, value)
		}
		*dst = v
		return nil
	}
	integer := func(dst *int) error {
		v, err := strconv.Atoi(value)
		if err != nil {
			return shared.ValidationError(op, "%s: %q is not an integer", name, value)
		}
		*dst = v
		return nil
	}

	switch name {
	case "lowAge":
		return float(&p.LowAge)
	case "failChance":
		return float(&p.FailChance)
	case "honors":
		return float(&p.Honors)
	case "honorsCompound":
		return float(&p.HonorsCompound)
	case "honorsFailChance":
		return float(&p.HonorsFailChance)
	case "honorsFallOut":
		return float(&p.HonorsFallOut)
	case "band":
		return float(&p.Band)
	case "dropoutAge":
		return integer(&p.DropoutAge)
	case "dropoutChance":
		return float(&p.DropoutChance)
	case "maxAge":
		return integer(&p.MaxAge)
	case "electives":
		return integer(&p.Electives)
	case "maxCourses":
		return integer(&p.MaxCourses)
	case "enrollment":
		return integer(&p.Enrollment)
	case "enrollmentMargin":
		return integer(&p.EnrollmentMargin)
	case "electiveGrade":
		return integer(&p.ElectiveGrade)
	case "pushGrade":
		return integer(&p.PushGrade)
	case "skippable":
		p.Skippable = nil
		for _, s := range strings.Split(value, ",") {
			if s = strings.TrimSpace(s); s != "" {
				p.Skippable = append(p.Skippable, s)
			}
		}
		return nil
	case "mandatorySpecial":
		p.MandatorySpecial = value
	case "optionalSpecial":
		p.OptionalSpecial = value
	case "capstone":
		p.Capstone = value
	default:
		return shared.ValidationError(op, "unknown parameter %q (known: %s)", name, strings.Join(ParamNames(), ", "))
	}
	return nil
}

// Validate checks ranges.
func (p Params) Validate() error {
	const op = "params.Validate"

	probs := []struct {
		name string
		v    float64
	}{
		{"lowAge", p.LowAge},
		{"failChance", p.FailChance},
		{"honors", p.Honors},
		{"honorsFailChance", p.HonorsFailChance},
		{"honorsFallOut", p.HonorsFallOut},
		{"band", p.Band},
		{"dropoutChance", p.DropoutChance},
	}
	for _, pr := range probs {
		if pr.v < 0 || pr.v > 1 {
			return shared.ValidationError(op, "%s must be within [0, 1], got %v", pr.name, pr.v)
		}
	}

	switch {
	case p.HonorsCompound < 0:
		return shared.ValidationError(op, "honorsCompound must not be negative, got %v", p.HonorsCompound)
	case p.MaxCourses < 0:
		return shared.ValidationError(op, "maxCourses must not be negative, got %d", p.MaxCourses)
	case p.Electives < 0:
		return shared.ValidationError(op, "electives must not be negative, got %d", p.Electives)
	case p.Enrollment < 0:
		return shared.ValidationError(op, "enrollment must not be negative, got %d", p.Enrollment)
	case p.EnrollmentMargin < 0:
		return shared.ValidationError(op, "enrollmentMargin must not be negative, got %d", p.EnrollmentMargin)
	case p.MaxAge < 0 || p.DropoutAge < 0:
		return shared.ValidationError(op, "ages must not be negative")
	}
	if slices.Contains(p.Skippable, "") {
		return shared.ValidationError(op, "skippable contains an empty course name")
	}
	return nil
}
