package config

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/Abraxas-365/reactorbot/pkg/fsx"
	"gopkg.in/yaml.v3"
)

// Rules is the reactor rule data loaded from the rules file.
//
//	labels:
//	  - label: bug
//	    title: '(?i)\bfix'
//	status:
//	  context: reactorbot/labels
//	  required_labels: [ready-for-review]
//	reminder:
//	  delay: 48h
//	  recipients: [team@example.com]
type Rules struct {
	Labels   []LabelRule  `yaml:"labels"`
	Status   StatusRule   `yaml:"status"`
	Reminder ReminderRule `yaml:"reminder"`
}

// LabelRule adds Label when Title (and Body, if set) match. Both are
// regular expressions.
type LabelRule struct {
	Label string `yaml:"label"`
	Title string `yaml:"title"`
	Body  string `yaml:"body,omitempty"`
}

// StatusRule reports a commit status that succeeds once any of
// RequiredLabels is on the pull request.
type StatusRule struct {
	Context        string   `yaml:"context"`
	RequiredLabels []string `yaml:"required_labels"`
	TargetURL      string   `yaml:"target_url,omitempty"`
}

// ReminderRule schedules a review reminder Delay after a pull request opens.
type ReminderRule struct {
	Delay      time.Duration `yaml:"delay"`
	Recipients []string      `yaml:"recipients"`
	Queue      string        `yaml:"queue,omitempty"`
}

func defaultRules() Rules {
	return Rules{
		Status:   StatusRule{Context: "reactorbot/labels"},
		Reminder: ReminderRule{Queue: "default"},
	}
}

// LoadRules reads a YAML rules file from location, a local path or any URI
// files can resolve.
func LoadRules(ctx context.Context, files fsx.FileReader, location string) (Rules, error) {
	data, err := files.ReadFile(ctx, location)
	if err != nil {
		return Rules{}, configErrors.NewWithCause(ErrRulesFile, err).WithDetail("path", location)
	}
	return ParseRules(data)
}

// ParseRules decodes YAML rules over the defaults. Unknown keys are errors.
func ParseRules(data []byte) (Rules, error) {
	rules := defaultRules()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rules); err != nil && !errors.Is(err, io.EOF) {
		return Rules{}, configErrors.NewWithCause(ErrRulesFile, err)
	}
	return rules, nil
}
