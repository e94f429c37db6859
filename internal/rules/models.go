package rules

import (
	rulespkg "github.com/dtnitsch/imgbot/pkg/rules"
)

type ruleOutput struct {
	Tag        string            `json:"tag"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Link       string            `json:"link"`
	Selector   string            `json:"selector"`
}

func toRuleOutput(r rulespkg.Rule) ruleOutput {
	return ruleOutput{
		Tag:        r.Tag,
		Attributes: r.Attributes,
		Link:       r.LinkAttribute,
		Selector:   r.Selector(),
	}
}

type resolveOutput struct {
	URL    string `yaml:"url"`
	Kind   string `yaml:"kind"`
	Target string `yaml:"target,omitempty"`
	Error  string `yaml:"error,omitempty"`
}
