package main

import (
	"fmt"

	"github.com/lox/rpsplus/internal/narrate"
)

// RulesCmd prints the rules
type RulesCmd struct{}

func (c *RulesCmd) Run() error {
	fmt.Println(narrate.Rules)
	return nil
}
