package design

import (
	"fmt"
	"sort"
)

// ValidationSeverity indicates whether a validation finding is an error or
// merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // the design is inconsistent
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Name     string // shape or selection concerned, empty if design-level
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %q: %s", e.Severity, e.Name, e.Message)
}

// Validate runs the structural checks and returns every finding, errors and
// warnings together. It never mutates the design.
func (d *Design) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateShapes(d)...)
	errs = append(errs, validateSelections(d)...)
	return errs
}

// Split separates findings by severity.
func Split(findings []ValidationError) (errs, warnings []ValidationError) {
	for _, f := range findings {
		if f.Severity == SeverityWarning {
			warnings = append(warnings, f)
		} else {
			errs = append(errs, f)
		}
	}
	return errs, warnings
}

// validateShapes checks for empty names, nil shapes and redefinitions.
func validateShapes(d *Design) []ValidationError {
	var errs []ValidationError

	counts := make(map[string]int)
	for _, name := range d.Order {
		counts[name]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		n := d.Shapes[name]
		if name == "" {
			errs = append(errs, ValidationError{
				Message:  "shape defined with an empty name",
				Severity: SeverityError,
			})
			continue
		}
		if counts[name] > 1 {
			errs = append(errs, ValidationError{
				Name:     name,
				Message:  fmt.Sprintf("shape defined %d times; the last definition wins", counts[name]),
				Severity: SeverityWarning,
			})
		}
		if n != nil && n.Shape == nil {
			errs = append(errs, ValidationError{
				Name:     name,
				Message:  "shape has no geometry",
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateSelections checks for duplicate names, broken index entries and
// empty results.
func validateSelections(d *Design) []ValidationError {
	var errs []ValidationError

	for name, i := range d.NameIndex {
		if i < 0 || i >= len(d.Selections) || d.Selections[i].Name != name {
			errs = append(errs, ValidationError{
				Name:     name,
				Message:  "name index entry does not match any selection",
				Severity: SeverityError,
			})
		}
	}

	seen := make(map[string]bool)
	for _, s := range d.Selections {
		if s.Name != "" {
			if seen[s.Name] {
				errs = append(errs, ValidationError{
					Name:     s.Name,
					Message:  "duplicate selection name",
					Severity: SeverityError,
				})
			}
			seen[s.Name] = true
		}
		if len(s.Entities) == 0 {
			label := s.Name
			if label == "" {
				label = s.Query
			}
			errs = append(errs, ValidationError{
				Name:     label,
				Message:  fmt.Sprintf("query %q selected nothing", s.Query),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}
