package config

import (
	"os"
	"strings"
)

func isVariableChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// lookupVariable resolves a variable name (without the leading '$'). Names
// starting with '_' refer to the environment variable without the prefix.
func (p *Parser) lookupVariable(name string) (string, bool) {
	if strings.HasPrefix(name, "_") {
		if len(name) == 1 {
			return "", false
		}
		return os.LookupEnv(name[1:])
	}

	value, ok := p.variables[name]
	return value, ok
}

// defineVariable stores the raw value, it is expanded on use. Variables
// starting with '_' are exported to the environment as well.
func (p *Parser) defineVariable(name, value string) {
	if name == "" {
		p.diagf("variable definition without a name")
		return
	}

	p.variables[name] = value

	if strings.HasPrefix(name, "_") && len(name) > 1 {
		if err := os.Setenv(name[1:], p.expand(value)); err != nil {
			p.diagf("export $%s: %v", name, err)
		}
	}
}

// expand replaces all references to variables in value. Passes are repeated
// until one pass does not substitute anything, so variables may reference
// other variables. Unresolved references are reported and kept, `\$` is an
// escaped dollar sign.
func (p *Parser) expand(value string) string {
	if strings.IndexByte(value, '$') < 0 {
		return value
	}

	unresolved := make(map[string]struct{})
	for pass := 0; ; pass++ {
		if pass == p.maxPasses {
			p.diagf("expansion of %q stopped after %d passes", value, pass)
			break
		}

		var n int
		value, n = p.expandPass(value, unresolved)
		if n == 0 {
			break
		}
	}

	return strings.Replace(value, `\$`, `$`, -1)
}

// expandPass does one left-to-right pass over s and returns the result
// together with the number of substitutions.
func (p *Parser) expandPass(s string, unresolved map[string]struct{}) (string, int) {
	var (
		buf strings.Builder
		n   int
	)

	for i := 0; i < len(s); i++ {
		c := s[i]

		if c == '\\' && i+1 < len(s) && s[i+1] == '$' {
			buf.WriteString(`\$`)
			i++
			continue
		}

		if c != '$' {
			buf.WriteByte(c)
			continue
		}

		end := i + 1
		for end < len(s) && isVariableChar(s[end]) {
			end++
		}

		name := s[i+1 : end]
		if name == "" {
			buf.WriteByte(c)
			continue
		}

		value, ok := p.lookupVariable(name)
		if ok {
			buf.WriteString(value)
			n++
		} else {
			if _, seen := unresolved[name]; !seen {
				unresolved[name] = struct{}{}
				p.diagf("undefined variable $%s", name)
			}
			buf.WriteString(s[i:end])
		}

		i = end - 1
	}

	return buf.String(), n
}
