// Package scope enforces the allow/deny glob policy restricting which
// absolute paths the untrusted front-end can reach. The pattern set is
// loaded once from the host's permission configuration and immutable for
// the process lifetime; evaluation is pure string matching with no I/O.
//
// Matching is doublestar glob matching over slash-normalized absolute
// paths. Deny patterns override allow patterns: an operation proceeds only
// when at least one allow pattern matches and no deny pattern matches.
package scope

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/glimmerdesk/fsbridge/internal/basedir"
	"github.com/glimmerdesk/fsbridge/internal/shared/fserr"
)

// Class groups operations for scoping. A rule may target specific classes;
// a rule with no classes applies to all of them.
type Class string

const (
	ClassRead  Class = "read"
	ClassWrite Class = "write"
	ClassWatch Class = "watch"
)

// Rule is one configured pattern. Pattern may reference base-directory
// tokens as $VARIABLES ("$APPDATA/**"), expanded when the policy is built.
type Rule struct {
	Pattern string  `json:"pattern"`
	Classes []Class `json:"classes,omitempty"`
}

// Config is the declarative policy as the host hands it over.
type Config struct {
	Allow []Rule `json:"allow"`
	Deny  []Rule `json:"deny"`
}

type compiledRule struct {
	pattern string
	classes map[Class]bool // nil means every class
}

func (r compiledRule) appliesTo(class Class) bool {
	return r.classes == nil || r.classes[class]
}

// Policy answers "is this absolute path permitted for this operation
// class". Immutable after New; safe for concurrent use without locking.
type Policy struct {
	allow []compiledRule
	deny  []compiledRule
}

// New compiles the configured rules. Base-directory variables are expanded
// here rather than per match: the concrete roots are stable for one process
// lifetime, which is exactly the policy's lifetime.
func New(cfg Config, baseDirs basedir.Resolver) (*Policy, error) {
	vars, err := expandVars(baseDirs)
	if err != nil {
		return nil, err
	}

	p := &Policy{}
	p.allow, err = compileRules(cfg.Allow, vars)
	if err != nil {
		return nil, fmt.Errorf("allow rules: %w", err)
	}
	p.deny, err = compileRules(cfg.Deny, vars)
	if err != nil {
		return nil, fmt.Errorf("deny rules: %w", err)
	}
	return p, nil
}

func compileRules(rules []Rule, vars map[string]string) ([]compiledRule, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		pattern := substitute(rule.Pattern, vars)
		pattern = filepath.ToSlash(pattern)
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid glob pattern %q", rule.Pattern)
		}
		var classes map[Class]bool
		if len(rule.Classes) > 0 {
			classes = make(map[Class]bool, len(rule.Classes))
			for _, c := range rule.Classes {
				classes[c] = true
			}
		}
		compiled = append(compiled, compiledRule{pattern: pattern, classes: classes})
	}
	return compiled, nil
}

// Allowed reports the policy decision for an absolute path.
func (p *Policy) Allowed(path string, class Class) bool {
	candidate := filepath.ToSlash(filepath.Clean(path))

	for _, rule := range p.deny {
		if rule.appliesTo(class) && matches(rule.pattern, candidate) {
			return false
		}
	}
	for _, rule := range p.allow {
		if rule.appliesTo(class) && matches(rule.pattern, candidate) {
			return true
		}
	}
	return false
}

// Authorize wraps Allowed into the boundary error taxonomy. A denied path
// surfaces as ScopeViolation, never as not-found, so the caller can tell
// "doesn't exist" from "not allowed to know".
func (p *Policy) Authorize(path string, class Class) error {
	if !p.Allowed(path, class) {
		return fserr.Newf(fserr.KindScopeViolation,
			"path %q is not allowed for %s operations", path, class)
	}
	return nil
}

// matches also accepts a directory-granting pattern for the directory
// itself: "/tmp/app/**" permits "/tmp/app" so a scope over a tree covers
// operations on its root.
func matches(pattern, candidate string) bool {
	if ok, _ := doublestar.Match(pattern, candidate); ok {
		return true
	}
	if trimmed, found := strings.CutSuffix(pattern, "/**"); found {
		if ok, _ := doublestar.Match(trimmed, candidate); ok {
			return true
		}
	}
	return false
}

// expandVars builds the $VARIABLE table from every resolvable base
// directory. Tokens the platform cannot supply are simply absent: a pattern
// naming one will then never match, which fails closed.
func expandVars(baseDirs basedir.Resolver) (map[string]string, error) {
	vars := make(map[string]string)
	if baseDirs == nil {
		return vars, nil
	}
	for _, dir := range basedir.All() {
		root, err := baseDirs.Resolve(dir)
		if err != nil {
			continue
		}
		vars[strings.ToUpper(dir.String())] = root
	}
	return vars, nil
}

// substitute replaces $VARIABLE references longest-name-first so $APPDATA
// is not clipped by $APP-style prefixes.
func substitute(pattern string, vars map[string]string) string {
	if !strings.Contains(pattern, "$") {
		return pattern
	}
	longest := make([]string, 0, len(vars))
	for name := range vars {
		longest = append(longest, name)
	}
	// Insertion sort by descending length; the table is tiny.
	for i := 1; i < len(longest); i++ {
		for j := i; j > 0 && len(longest[j]) > len(longest[j-1]); j-- {
			longest[j], longest[j-1] = longest[j-1], longest[j]
		}
	}
	for _, name := range longest {
		pattern = strings.ReplaceAll(pattern, "$"+name, vars[name])
	}
	return pattern
}
