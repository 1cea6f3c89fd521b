// Package schema ships the versioned upgrade scripts and loads them into
// an upgrade registry. Scripts live in per-dialect directories under
// sql/ and are named upgrade_from_<X>_to_<Y>.sql; every dialect must
// expose the same chain of versions.
package schema

import (
	"embed"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/LHolmes69/ccs-calendarserver/upgrade"
	"github.com/LHolmes69/ccs-calendarserver/upgrade/dialect"
)

//go:embed sql
var scripts embed.FS

var scriptName = regexp.MustCompile(`^upgrade_from_(\d+)_to_(\d+)\.sql$`)

// LoadRegistry reads the embedded upgrade scripts for the given dialect
// and builds a validated registry. The shipped chain must be gapless.
func LoadRegistry(d dialect.Dialect) (*upgrade.Registry, error) {
	steps, err := loadSteps(d.ScriptDir())
	if err != nil {
		return nil, err
	}
	registry, err := upgrade.NewRegistry(steps)
	if err != nil {
		return nil, err
	}
	if err := registry.VerifyChain(); err != nil {
		return nil, fmt.Errorf("dialect %s: %w", d.Name(), err)
	}
	return registry, nil
}

// Dialects lists the script directories shipped in the binary.
func Dialects() ([]string, error) {
	entries, err := scripts.ReadDir("sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded scripts: %w", err)
	}
	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// VerifyDialects confirms every shipped dialect exposes an identical
// chain of (from, to) versions. It catches a script added for one
// backend but forgotten for another before any upgrade runs.
func VerifyDialects() error {
	dirs, err := Dialects()
	if err != nil {
		return err
	}
	var reference []string
	var referenceDir string
	for _, dir := range dirs {
		steps, err := loadSteps(dir)
		if err != nil {
			return err
		}
		registry, err := upgrade.NewRegistry(steps)
		if err != nil {
			return fmt.Errorf("dialect %s: %w", dir, err)
		}
		if err := registry.VerifyChain(); err != nil {
			return fmt.Errorf("dialect %s: %w", dir, err)
		}
		chain := make([]string, 0, len(steps))
		for _, step := range registry.Steps() {
			chain = append(chain, fmt.Sprintf("%d->%d", step.From, step.To))
		}
		if reference == nil {
			reference = chain
			referenceDir = dir
			continue
		}
		if strings.Join(chain, ",") != strings.Join(reference, ",") {
			return fmt.Errorf("dialect %s chain [%s] differs from %s chain [%s]",
				dir, strings.Join(chain, ","), referenceDir, strings.Join(reference, ","))
		}
	}
	return nil
}

// loadSteps parses every script in one dialect directory.
func loadSteps(dir string) ([]upgrade.Step, error) {
	full := path.Join("sql", dir)
	entries, err := scripts.ReadDir(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read scripts for %s: %w", dir, err)
	}
	var steps []upgrade.Step
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := scriptName.FindStringSubmatch(entry.Name())
		if m == nil {
			return nil, fmt.Errorf("unexpected script name %s in %s", entry.Name(), dir)
		}
		from, _ := strconv.Atoi(m[1])
		to, _ := strconv.Atoi(m[2])
		body, err := scripts.ReadFile(path.Join(full, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}
		steps = append(steps, upgrade.Step{
			From:       from,
			To:         to,
			Statements: SplitStatements(string(body)),
		})
	}
	return steps, nil
}

// SplitStatements splits a script into individual statements on
// semicolons, honoring single-quoted literals and stripping -- line
// comments. Statement order is preserved exactly.
func SplitStatements(script string) []string {
	var statements []string
	var current strings.Builder
	inQuote := false
	runes := []rune(script)

	flush := func() {
		stmt := strings.TrimSpace(current.String())
		current.Reset()
		if stmt != "" {
			statements = append(statements, stmt)
		}
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\'':
			inQuote = !inQuote
			current.WriteRune(r)
		case !inQuote && r == '-' && i+1 < len(runes) && runes[i+1] == '-':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			current.WriteRune('\n')
		case !inQuote && r == ';':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return statements
}
