package config

import (
	"fmt"
	"path/filepath"
	"regexp"
)

// MatchPromptRule finds the first rule whose Command regex matches argv0
// (compared against both the full path and its base name, so a rule
// written as `bash` matches an argv0 of `/bin/bash`). Returns nil if none
// match. A malformed Command regex is reported as an error immediately
// rather than silently skipped, since a broken rule is a config mistake
// worth surfacing. Callers use this to look up a rule's Pattern for their
// own prompt recognition — it never changes how Actions are segmented.
func MatchPromptRule(rules []PromptRule, argv0 string) (*PromptRule, error) {
	base := filepath.Base(argv0)
	for i := range rules {
		re, err := regexp.Compile(rules[i].Command)
		if err != nil {
			return nil, fmt.Errorf("config: prompt rule %q: %w", rules[i].Command, err)
		}
		if re.MatchString(argv0) || re.MatchString(base) {
			return &rules[i], nil
		}
	}
	return nil, nil
}
