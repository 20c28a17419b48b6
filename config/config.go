// Package config layers an optional key=value configuration file beneath
// command-line flags, the same precedence boost::program_options gives the
// original tool: po::store is called first for the command line, then for
// the config file, and the first store for a given key wins. flag.FlagSet
// has no notion of "was this flag set explicitly," so callers must track
// that themselves and pass it in as explicit.
package config

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
)

// ApplyFile reads path as a sequence of "key value" or "key=value" lines
// and calls fs.Set for every key fs declares that was not already set
// explicitly on the command line. Blank lines and lines starting with '#'
// are skipped.
func ApplyFile(fs *flag.FlagSet, path string, explicit map[string]bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, val := splitConfigLine(line)
		if key == "" {
			return fmt.Errorf("%s:%d: malformed configuration line %q", path, lineNum, line)
		}
		if explicit[key] {
			continue
		}

		fl := fs.Lookup(key)
		if fl == nil {
			return fmt.Errorf("%s:%d: unknown option %q", path, lineNum, key)
		}
		if err := fl.Value.Set(val); err != nil {
			return fmt.Errorf("%s:%d: option %q: %w", path, lineNum, key, err)
		}
	}
	return scanner.Err()
}

// splitConfigLine accepts both "key value" (the boost::program_options
// config-file grammar) and "key=value" forms. A bare key with no value is
// treated as a boolean flag set to "true".
func splitConfigLine(line string) (key, val string) {
	if idx := strings.IndexByte(line, '='); idx >= 0 {
		return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:])
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", ""
	}
	if len(fields) == 1 {
		return fields[0], "true"
	}
	return fields[0], strings.Join(fields[1:], " ")
}

// ExplicitFlags returns the set of flag names the user passed on the
// command line, keyed the same way fs.Visit reports them. Call this after
// fs.Parse and before ApplyFile.
func ExplicitFlags(fs *flag.FlagSet) map[string]bool {
	explicit := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) {
		explicit[fl.Name] = true
	})
	return explicit
}
