package cli

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// readRRFile reads RR intervals from path, or stdin when path is "-"
func readRRFile(path string, stdin io.Reader) ([]int, error) {
	if path == "-" {
		return parseRR(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening RR file: %w", err)
	}
	defer f.Close()
	return parseRR(f)
}

// parseRR reads RR intervals separated by whitespace, commas or semicolons.
// Lines starting with # are skipped, as is a non-numeric header line.
// Values below 10 are taken as seconds (0.85) and converted to milliseconds.
func parseRR(r io.Reader) ([]int, error) {
	var rr []int
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.FieldsFunc(text, func(c rune) bool {
			return c == ',' || c == ';' || c == ' ' || c == '\t'
		})
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				if len(rr) == 0 {
					break // header
				}
				return nil, fmt.Errorf("line %d: %q is not an RR interval", line, f)
			}
			if v < 10 {
				v *= 1000
			}
			rr = append(rr, int(math.Round(v)))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading RR intervals: %w", err)
	}
	if len(rr) == 0 {
		return nil, fmt.Errorf("no RR intervals found")
	}
	return rr, nil
}
