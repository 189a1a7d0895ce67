// Command laserevm runs a contract's bytecode through the symbolic
// execution engine and reports any issues the registered detection
// modules found.
//
// Usage:
//
//	laserevm [flags]
//
// Flags:
//
//	--code            Runtime/init bytecode, as a 0x-prefixed hex string
//	--codefile        Path to a file holding the same, instead of --code
//	--max-depth       Maximum instructions per explored path (default: 64)
//	--transactions    Message-call phases to run after creation (default: 2)
//	--exec-timeout    Wall-clock seconds per message-call phase (default: 30)
//	--create-timeout  Wall-clock seconds for the creation phase (default: 30)
//	--call-value      Decimal or 0x-prefixed call value applied to every
//	                  message-call phase (default: symbolic, unconstrained)
//	--format          Issue report format: text, json, color (default: text)
//	--version         Print version and exit
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/holiman/uint256"

	"github.com/laserevm/laserevm/analysis"
	"github.com/laserevm/laserevm/analysis/modules"
	types "github.com/laserevm/laserevm/internal/evmtypes"
	"github.com/laserevm/laserevm/laser"
	laserlog "github.com/laserevm/laserevm/log"
	"github.com/laserevm/laserevm/smt"
	"github.com/laserevm/laserevm/state"
	"github.com/laserevm/laserevm/transaction"
)

var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

// contractAddress is the fixed address the analyzed contract is
// deployed at. Nothing in the engine depends on its value; it only
// needs to be stable across the creation phase and every message-call
// phase that follows.
var contractAddress = types.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")

func main() {
	os.Exit(run(os.Args[1:]))
}

// Config bundles everything parseFlags fills in from the command line.
type Config struct {
	Code          string
	CodeFile      string
	MaxDepth      int
	Transactions  int
	ExecTimeout   int
	CreateTimeout int
	CallValue     *uint256.Int
	Format        string
}

func defaultConfig() Config {
	return Config{
		MaxDepth:      64,
		Transactions:  2,
		ExecTimeout:   30,
		CreateTimeout: 30,
		CallValue:     nil,
		Format:        "text",
	}
}

// run is the actual entry point, returning an exit code. It accepts CLI
// arguments (without the program name) so it can be exercised directly.
func run(args []string) int {
	cfg, exit, code := parseFlags(args)
	if exit {
		return code
	}

	initCode, err := loadCode(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	log := laserlog.Default().Module("laserevm")
	log.Info("starting analysis", "bytes", len(initCode), "maxdepth", cfg.MaxDepth, "transactions", cfg.Transactions)

	solver := smt.NewIndependenceSolver(func() smt.Solver { return smt.NewConstraintSolver() })

	assertion := modules.NewAssertionFailure(solver)
	integer := modules.NewIntegerArithmetic(solver)
	externalCalls := modules.NewExternalCalls(solver)

	engine := laser.New(laser.Config{
		MaxDepth:         cfg.MaxDepth,
		ExecutionTimeout: time.Duration(cfg.ExecTimeout) * time.Second,
		CreateTimeout:    time.Duration(cfg.CreateTimeout) * time.Second,
		TransactionCount: cfg.Transactions,
		Modules:          []laser.Module{assertion, integer, externalCalls},
	})

	creation := &transaction.ContractCreation{
		TxID:       "create0",
		NewAddress: contractAddress,
		InitCode:   initCode,
		CallerAddr: smt.BitVecSym("creator", smt.DefaultWidth),
		Value:      smt.BitVecVal(0, smt.DefaultWidth),
		GasPrice:   smt.BitVecSym("gasprice_create0", smt.DefaultWidth),
		Origin:     smt.BitVecSym("origin_create0", smt.DefaultWidth),
	}
	engine.RunCreation(creation, "contract")

	callValue := func(phase int) *smt.BitVec {
		if cfg.CallValue != nil {
			return smt.BitVecValFromBig(cfg.CallValue.ToBig(), smt.DefaultWidth)
		}
		return smt.BitVecSym(fmt.Sprintf("callvalue_call%d", phase), smt.DefaultWidth)
	}

	engine.RunMessageCall(contractAddress, "contract", func(phase int, world *state.WorldState) *transaction.MessageCall {
		txID := fmt.Sprintf("call%d", phase)
		return &transaction.MessageCall{
			TxID:           txID,
			Callee:         contractAddress,
			StorageContext: contractAddress,
			CallerAddr:     smt.BitVecSym("caller_"+txID, smt.DefaultWidth),
			Data:           state.NewSymbolicCalldata(txID),
			Value:          callValue(phase),
			GasPrice:       smt.BitVecSym("gasprice_"+txID, smt.DefaultWidth),
			Origin:         smt.BitVecSym("origin_"+txID, smt.DefaultWidth),
		}
	})

	log.Info("analysis complete", "cfg_nodes", len(engine.Graph.Nodes()), "open_states", len(engine.OpenStates))

	issues := append(append(assertion.Issues(), integer.Issues()...), externalCalls.Issues()...)
	printIssues(os.Stdout, issues, cfg.Format)

	if len(issues) > 0 {
		return 1
	}
	return 0
}

// loadCode resolves the init/runtime bytecode from either --code or
// --codefile, decoding the 0x-prefixed hex string either way.
func loadCode(cfg Config) ([]byte, error) {
	hexStr := cfg.Code
	if cfg.CodeFile != "" {
		data, err := os.ReadFile(cfg.CodeFile)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", cfg.CodeFile, err)
		}
		hexStr = string(data)
	}
	if hexStr == "" {
		return nil, fmt.Errorf("no bytecode given: pass --code or --codefile")
	}
	hexStr = strings.TrimSpace(hexStr)
	hexStr = strings.TrimPrefix(strings.TrimPrefix(hexStr, "0x"), "0X")
	return hex.DecodeString(hexStr)
}

// printIssues renders every issue found using the requested formatter.
func printIssues(w *os.File, issues []analysis.Issue, format string) {
	if len(issues) == 0 {
		fmt.Fprintln(w, "no issues found")
		return
	}

	var formatter laserlog.LogFormatter
	switch format {
	case "json":
		formatter = &laserlog.JSONFormatter{}
	case "color":
		formatter = &laserlog.ColorFormatter{}
	default:
		formatter = &laserlog.TextFormatter{}
	}

	for _, issue := range issues {
		level := laserlog.WARN
		if issue.Severity == analysis.High {
			level = laserlog.ERROR
		}
		entry := laserlog.LogEntry{
			Level:   level,
			Message: fmt.Sprintf("%s: %s", issue.SWCID, issue.Title),
			Fields: map[string]interface{}{
				"severity": string(issue.Severity),
				"address":  issue.Address,
				"contract": issue.ContractName,
				"function": issue.FunctionName,
				"detail":   issue.DescriptionHead,
			},
		}
		fmt.Fprintln(w, formatter.Format(entry))
		if issue.Debug != "" {
			fmt.Fprintln(w, issue.Debug)
		}
	}
}

// parseFlags parses CLI arguments into a Config. Returns the config,
// whether the caller should exit immediately, and the exit code.
func parseFlags(args []string) (Config, bool, int) {
	cfg := defaultConfig()
	fs := newFlagSet(&cfg)

	showVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cfg, true, 2
	}

	if *showVersion {
		fmt.Printf("laserevm %s (commit %s)\n", version, commit)
		return cfg, true, 0
	}

	return cfg, false, 0
}

// newFlagSet creates a flag.FlagSet that binds all CLI flags to the given Config.
func newFlagSet(cfg *Config) *flagSet {
	fs := newCustomFlagSet("laserevm")
	fs.StringVar(&cfg.Code, "code", cfg.Code, "runtime/init bytecode as 0x-prefixed hex")
	fs.StringVar(&cfg.CodeFile, "codefile", cfg.CodeFile, "path to a file holding the bytecode, instead of --code")
	fs.IntVar(&cfg.MaxDepth, "max-depth", cfg.MaxDepth, "maximum instructions per explored path")
	fs.IntVar(&cfg.Transactions, "transactions", cfg.Transactions, "message-call phases to run after creation")
	fs.IntVar(&cfg.ExecTimeout, "exec-timeout", cfg.ExecTimeout, "wall-clock seconds per message-call phase")
	fs.IntVar(&cfg.CreateTimeout, "create-timeout", cfg.CreateTimeout, "wall-clock seconds for the creation phase")
	fs.Uint256Var(&cfg.CallValue, "call-value", cfg.CallValue, "decimal or 0x-prefixed call value for every message-call phase (default: symbolic)")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "issue report format: text, json, color")
	return fs
}
