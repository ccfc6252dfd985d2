package runner

import (
	"context"
	"regexp"
	"strings"
	"time"

	"auth_harness/application/assert"
	"auth_harness/application/page"
	"auth_harness/domain/entities"

	"github.com/sirupsen/logrus"
)

// Scenario is one independent check of the target. Run gets a fresh browser
// session and its own assertion engine, and must not share state with any
// other scenario.
type Scenario struct {
	Name        string
	Description string
	Tags        []string
	Run         func(ctx context.Context, env *Env) error
}

// Env is everything a running scenario may touch
type Env struct {
	Page        *page.LoginPage
	Assert      *assert.Engine
	Credentials entities.Credential
	Options     Options
	Logger      *logrus.Entry
}

// Options are the run-wide settings the orchestrator injects into scenarios
type Options struct {
	Target            string
	LoginURL          string
	AuthURLPattern    *regexp.Regexp
	NavigationTimeout time.Duration
	WaitTimeout       time.Duration
	ScenarioTimeout   time.Duration
	Parallelism       int
	Credentials       entities.Credential
}

// HasTag reports whether the scenario carries tag
func (s Scenario) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Select keeps scenarios matching filter, a comma separated list of tags or
// name fragments. An empty filter keeps everything.
func Select(scenarios []Scenario, filter string) []Scenario {
	var terms []string
	for _, term := range strings.Split(filter, ",") {
		if term = strings.TrimSpace(term); term != "" {
			terms = append(terms, strings.ToLower(term))
		}
	}
	if len(terms) == 0 {
		return scenarios
	}

	var selected []Scenario
	for _, sc := range scenarios {
		name := strings.ToLower(sc.Name)
		for _, term := range terms {
			if sc.HasTag(term) || strings.Contains(name, term) {
				selected = append(selected, sc)
				break
			}
		}
	}
	return selected
}
