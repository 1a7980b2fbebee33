package main

import (
	"fmt"

	"github.com/chazu/facet/pkg/config"
	"github.com/chazu/facet/pkg/design"
	"github.com/chazu/facet/pkg/engine"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/kernel/brep"
	"github.com/chazu/facet/pkg/logging"
	"github.com/sirupsen/logrus"
)

// App runs design scripts and reports their selections.
type App struct {
	cfg    *config.Config
	log    *logrus.Logger
	kernel kernel.Kernel
	engine *engine.Engine
}

// EntityData is the JSON-serializable summary of one selected entity.
type EntityData struct {
	Name     string     `json:"name"`
	Kind     string     `json:"kind"`
	GeomType string     `json:"geomType"`
	Center   [3]float64 `json:"center"`
}

// SelectionData is one named or anonymous selection made by a script.
type SelectionData struct {
	Name     string       `json:"name,omitempty"`
	Query    string       `json:"query"`
	Count    int          `json:"count"`
	Entities []EntityData `json:"entities"`
}

// EvalErrorData is a JSON-serializable eval error or warning.
type EvalErrorData struct {
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

// EvalResult is the full result of evaluating a script.
type EvalResult struct {
	Shapes     []string        `json:"shapes"`
	Selections []SelectionData `json:"selections"`
	Errors     []EvalErrorData `json:"errors"`
	Warnings   []EvalErrorData `json:"warnings"`
}

// NewApp creates an App with the reference B-rep kernel. A nil cfg or
// logger falls back to the defaults.
func NewApp(cfg *config.Config, logger *logrus.Logger) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	k := brep.New()
	opts := append(cfg.EngineOptions(), engine.WithLogger(logging.Component(logger, "engine")))
	return &App{
		cfg:    cfg,
		log:    logger,
		kernel: k,
		engine: engine.NewEngine(k, opts...),
	}
}

// Evaluate runs a design script and returns its selections, errors and
// validation warnings.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Shapes:     []string{},
		Selections: []SelectionData{},
		Errors:     []EvalErrorData{},
		Warnings:   []EvalErrorData{},
	}

	d, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		a.log.WithError(err).Error("evaluate failed")
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	if len(evalErrs) > 0 {
		a.log.WithError(engine.Combine(evalErrs)).Warn("script has errors")
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Message: e.Message,
			})
		}
		return result
	}

	errs, warnings := design.Split(d.Validate())
	for _, v := range errs {
		result.Errors = append(result.Errors, validationData(v))
	}
	for _, v := range warnings {
		result.Warnings = append(result.Warnings, validationData(v))
	}

	for _, name := range d.Order {
		if d.Shapes[name] != nil && !contains(result.Shapes, name) {
			result.Shapes = append(result.Shapes, name)
		}
	}
	for _, s := range d.Selections {
		result.Selections = append(result.Selections, selectionData(s))
	}
	return result
}

func validationData(v design.ValidationError) EvalErrorData {
	return EvalErrorData{Message: v.Error()}
}

func selectionData(s *design.Selection) SelectionData {
	sd := SelectionData{
		Name:     s.Name,
		Query:    s.Query,
		Count:    len(s.Entities),
		Entities: make([]EntityData, 0, len(s.Entities)),
	}
	for _, e := range s.Entities {
		sd.Entities = append(sd.Entities, entityData(e))
	}
	return sd
}

func entityData(e kernel.Entity) EntityData {
	c := e.CenterOfMass()
	return EntityData{
		Name:     fmt.Sprint(e),
		Kind:     e.Kind().String(),
		GeomType: string(e.GeomType()),
		Center:   [3]float64{c.X, c.Y, c.Z},
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
