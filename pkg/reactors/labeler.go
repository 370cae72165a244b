package reactors

import (
	"context"
	"regexp"
	"slices"

	"github.com/Abraxas-365/reactorbot/pkg/config"
	"github.com/Abraxas-365/reactorbot/pkg/kernel"
	"github.com/Abraxas-365/reactorbot/pkg/reactor"
)

// LabelAdder adds labels to an issue or pull request.
type LabelAdder interface {
	AddLabels(ctx context.Context, repo kernel.RepoRef, number int, labels ...string) ([]string, error)
}

type labelRule struct {
	label string
	title *regexp.Regexp
	body  *regexp.Regexp
}

func (r labelRule) matches(s subject) bool {
	if r.title != nil && !r.title.MatchString(s.Title) {
		return false
	}
	if r.body != nil && !r.body.MatchString(s.Body) {
		return false
	}
	return true
}

// Labeler adds labels whose patterns match a new or edited issue or pull request.
type Labeler struct {
	gh    LabelAdder
	rules []labelRule
}

var _ reactor.Reactor = (*Labeler)(nil)

// LabelResult lists the labels a Labeler added.
type LabelResult struct {
	Added []string `json:"added"`
}

// NewLabeler compiles rules.
func NewLabeler(gh LabelAdder, rules []config.LabelRule) (*Labeler, error) {
	compiled := make([]labelRule, 0, len(rules))
	for i, r := range rules {
		lr := labelRule{label: r.Label}
		var err error
		if r.Title != "" {
			if lr.title, err = regexp.Compile(r.Title); err != nil {
				return nil, invalidRule("labels", i, err)
			}
		}
		if r.Body != "" {
			if lr.body, err = regexp.Compile(r.Body); err != nil {
				return nil, invalidRule("labels", i, err)
			}
		}
		compiled = append(compiled, lr)
	}
	return &Labeler{gh: gh, rules: compiled}, nil
}

func (l *Labeler) Name() string { return "labeler" }

func (l *Labeler) Filter(_ context.Context, ev *reactor.Event) bool {
	if len(l.rules) == 0 {
		return false
	}
	if ev.Name != "pull_request" && ev.Name != "issues" {
		return false
	}
	return slices.Contains([]string{"opened", "edited", "reopened", ActionSweep}, ev.Action)
}

func (l *Labeler) React(ctx context.Context, ev *reactor.Event) (any, error) {
	s, ok := subjectOf(ev)
	if !ok {
		return nil, unsupportedPayload(ev)
	}

	var missing []string
	for _, r := range l.rules {
		if r.matches(s) && !slices.Contains(s.Labels, r.label) && !slices.Contains(missing, r.label) {
			missing = append(missing, r.label)
		}
	}
	if len(missing) == 0 {
		return LabelResult{Added: []string{}}, nil
	}

	if _, err := l.gh.AddLabels(ctx, ev.Repo, s.Number, missing...); err != nil {
		return nil, err
	}
	return LabelResult{Added: missing}, nil
}
