package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
)

// flagSet wraps flag.FlagSet to add support for the value kinds the
// standard library's flag package doesn't cover: uint64 and 256-bit
// unsigned integers (call value, literal word arguments).
type flagSet struct {
	*flag.FlagSet
}

// newCustomFlagSet creates a flagSet with ContinueOnError behavior.
func newCustomFlagSet(name string) *flagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	return &flagSet{FlagSet: fs}
}

// Uint64Var defines a uint64 flag.
func (fs *flagSet) Uint64Var(p *uint64, name string, value uint64, usage string) {
	fs.FlagSet.Var(&uint64Value{p: p}, name, usage)
	*p = value
}

// Uint256Var defines a flag accepting a decimal or 0x-prefixed hex
// 256-bit literal, the width every EVM stack word and storage value is
// symbolically modeled at.
func (fs *flagSet) Uint256Var(p **uint256.Int, name string, value *uint256.Int, usage string) {
	fs.FlagSet.Var(&uint256Value{p: p}, name, usage)
	*p = value
}

type uint64Value struct {
	p *uint64
}

func (v *uint64Value) String() string {
	if v.p == nil {
		return "0"
	}
	return strconv.FormatUint(*v.p, 10)
}

func (v *uint64Value) Set(s string) error {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid uint64 value %q", s)
	}
	*v.p = n
	return nil
}

type uint256Value struct {
	p **uint256.Int
}

func (v *uint256Value) String() string {
	if v.p == nil || *v.p == nil {
		return "0"
	}
	return (*v.p).Hex()
}

func (v *uint256Value) Set(s string) error {
	var n *uint256.Int
	var err error
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, err = uint256.FromHex(s)
	} else {
		n, err = uint256.FromDecimal(s)
	}
	if err != nil {
		return fmt.Errorf("invalid 256-bit value %q: %w", s, err)
	}
	*v.p = n
	return nil
}
