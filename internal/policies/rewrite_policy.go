package policies

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/bmatcuk/doublestar/v4"

	"bendis/internal/ports"
	"bendis/internal/types"
)

const globMeta = "*?[{\\"

// RewritePolicy maps upstream git remotes onto mirror remotes. Rules are
// tried in declaration order and the first match wins.
type RewritePolicy struct {
	Rules      []types.RewriteRule
	exactIndex map[string]int
	globs      []globPattern
}

type globPattern struct {
	pattern   string
	prefix    string
	suffix    string
	ruleIndex int
}

// NewRewritePolicy validates and compiles rules.
func NewRewritePolicy(rules []types.RewriteRule) (RewritePolicy, error) {
	if err := ValidateRewriteRules(rules); err != nil {
		return RewritePolicy{}, err
	}
	policy := RewritePolicy{Rules: append([]types.RewriteRule(nil), rules...)}
	policy.compile()
	return policy, nil
}

// ValidateRewriteRules rejects rules with an unusable pattern or target.
func ValidateRewriteRules(rules []types.RewriteRule) error {
	for idx, rule := range rules {
		pattern := strings.TrimSpace(rule.Pattern)
		if pattern == "" {
			return invalidRule(idx, "pattern is empty")
		}
		if !doublestar.ValidatePattern(pattern) {
			return invalidRule(idx, fmt.Sprintf("pattern %q is not a valid glob", pattern))
		}
		target := strings.TrimSpace(rule.Target)
		if target == "" {
			return invalidRule(idx, "target is empty")
		}
		if strings.Count(target, "*") > 1 {
			return invalidRule(idx, fmt.Sprintf("target %q has more than one *", target))
		}
	}
	return nil
}

func invalidRule(idx int, reason string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("invalid rewrite rule #%d: %s", idx+1, reason))
}

// Rewrite returns the mirror remote for url, or url itself when no rule
// matches.
func (p RewritePolicy) Rewrite(url string) string {
	idx, capture := p.match(NormalizeRemote(url))
	if idx < 0 {
		return url
	}
	target := strings.TrimSpace(p.Rules[idx].Target)
	if strings.Contains(target, "*") {
		return strings.Replace(target, "*", capture, 1)
	}
	return target
}

// Matches reports whether any rule applies to url.
func (p RewritePolicy) Matches(url string) bool {
	idx, _ := p.match(NormalizeRemote(url))
	return idx >= 0
}

func (p RewritePolicy) match(subject string) (int, string) {
	best := -1
	capture := ""
	if idx, ok := p.exactIndex[subject]; ok {
		best = idx
	}
	for _, glob := range p.globs {
		if best >= 0 && glob.ruleIndex > best {
			break
		}
		ok, err := doublestar.Match(glob.pattern, subject)
		if err != nil || !ok {
			continue
		}
		best = glob.ruleIndex
		capture = glob.capture(subject)
		break
	}
	return best, capture
}

func (g globPattern) capture(subject string) string {
	if len(subject) < len(g.prefix)+len(g.suffix) {
		return ""
	}
	return subject[len(g.prefix) : len(subject)-len(g.suffix)]
}

func (p *RewritePolicy) compile() {
	p.exactIndex = map[string]int{}
	p.globs = nil
	for idx, rule := range p.Rules {
		pattern := strings.TrimSpace(rule.Pattern)
		first := strings.IndexAny(pattern, globMeta)
		if first < 0 {
			if _, ok := p.exactIndex[pattern]; !ok {
				p.exactIndex[pattern] = idx
			}
			continue
		}
		suffix := ""
		if last := strings.LastIndexAny(pattern, "*?]}"); last >= 0 && last < len(pattern)-1 {
			suffix = pattern[last+1:]
		}
		p.globs = append(p.globs, globPattern{
			pattern:   pattern,
			prefix:    pattern[:first],
			suffix:    suffix,
			ruleIndex: idx,
		})
	}
}

// NormalizeRemote reduces a git remote to host/path so that https, ssh
// and scp-style spellings of the same repository match the same rules.
func NormalizeRemote(url string) string {
	remote := strings.TrimSpace(url)
	if idx := strings.Index(remote, "://"); idx >= 0 {
		remote = remote[idx+3:]
		if at := strings.Index(remote, "@"); at >= 0 {
			if slash := strings.Index(remote, "/"); slash < 0 || at < slash {
				remote = remote[at+1:]
			}
		}
		return remote
	}
	colon := strings.Index(remote, ":")
	slash := strings.Index(remote, "/")
	if colon > 0 && (slash < 0 || colon < slash) {
		host := remote[:colon]
		if at := strings.LastIndex(host, "@"); at >= 0 {
			host = host[at+1:]
		}
		return host + "/" + strings.TrimPrefix(remote[colon+1:], "/")
	}
	return remote
}

// RewriteURL applies rules to url. Invalid rules leave url unchanged.
func RewriteURL(url string, rules []types.RewriteRule) string {
	policy, err := NewRewritePolicy(rules)
	if err != nil {
		return url
	}
	return policy.Rewrite(url)
}

var _ ports.RewritePolicyPort = RewritePolicy{}
