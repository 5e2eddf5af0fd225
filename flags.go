package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// choice is a string flag which only accepts a fixed set of values.
type choice struct {
	value   *string
	allowed []string
}

var _ pflag.Value = &choice{}

func newChoice(p *string, def string, allowed ...string) *choice {
	*p = def
	return &choice{value: p, allowed: allowed}
}

func (c *choice) String() string { return *c.value }

func (c *choice) Set(s string) error {
	for _, a := range c.allowed {
		if s == a {
			*c.value = s
			return nil
		}
	}

	return errors.Errorf("must be one of %v", strings.Join(c.allowed, ", "))
}

func (c *choice) Type() string { return "string" }
