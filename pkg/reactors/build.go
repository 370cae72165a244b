package reactors

import (
	"github.com/Abraxas-365/reactorbot/pkg/config"
	"github.com/Abraxas-365/reactorbot/pkg/githubx"
	"github.com/Abraxas-365/reactorbot/pkg/reactor"
)

// Deps are the collaborators reactors are built from.
type Deps struct {
	GitHub *githubx.Client
	Jobs   JobEnqueuer
	Rules  config.Rules
}

// Names lists every reactor Build knows, in dispatch order.
var Names = []string{"labeler", "status", "reminder"}

// Build returns the named reactors in the given order.
func Build(names []string, deps Deps) ([]reactor.Reactor, error) {
	out := make([]reactor.Reactor, 0, len(names))
	for _, name := range names {
		switch name {
		case "labeler":
			l, err := NewLabeler(deps.GitHub, deps.Rules.Labels)
			if err != nil {
				return nil, err
			}
			out = append(out, l)
		case "status":
			out = append(out, NewStatus(deps.GitHub, deps.Rules.Status))
		case "reminder":
			out = append(out, NewReminder(deps.Jobs, deps.Rules.Reminder))
		default:
			return nil, reactorsErrors.New(ErrUnknownReactor).
				WithDetail("reactor", name).
				WithDetail("known", Names)
		}
	}
	return out, nil
}
