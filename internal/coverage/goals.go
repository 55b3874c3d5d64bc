package coverage

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/verte-zerg/chainpick/internal/model"
)

var (
	majorityRe = regexp.MustCompile(`majority(\d{1,2})`)
	pairRe     = regexp.MustCompile(`([a-z])\s*(\d{1,2})`)
)

// ParseGoals turns a goal spec into per-letter targets. Every letter starts
// at 1; "majorityN" sets all letters to N, tokens like "a3" set one letter
// and bare letters set that letter to 0.
func ParseGoals(spec string) [Letters]int {
	var targets [Letters]int
	for i := range targets {
		targets[i] = 1
	}
	s := strings.Join(strings.Fields(strings.ToLower(spec)), " ")
	if s == "" {
		return targets
	}

	if m := majorityRe.FindStringSubmatch(s); m != nil {
		base := clampGoal(m[1])
		for i := range targets {
			targets[i] = base
		}
	}
	rest := majorityRe.ReplaceAllString(s, "")
	for _, m := range pairRe.FindAllStringSubmatch(rest, -1) {
		targets[m[1][0]-'a'] = clampGoal(m[2])
	}
	for _, r := range pairRe.ReplaceAllString(rest, "") {
		if i, ok := letterIndex(r); ok {
			targets[i] = 0
		}
	}
	return targets
}

// Targets returns the targets for the goal settings. Disabled goals mean one
// of every letter.
func Targets(enabled bool, spec string) [Letters]int {
	if !enabled {
		return ParseGoals("")
	}
	return ParseGoals(spec)
}

// FormatGoals renders targets back into the shortest spec ParseGoals accepts.
func FormatGoals(targets [Letters]int) string {
	freq := map[int]int{}
	for _, v := range targets {
		freq[v]++
	}
	base := 1
	for v, n := range freq {
		if n > freq[base] || (n == freq[base] && v < base) {
			base = v
		}
	}
	var parts []string
	if base != 1 {
		parts = append(parts, "majority"+strconv.Itoa(base))
	}
	for i, v := range targets {
		if v == base {
			continue
		}
		parts = append(parts, string(rune('a'+i))+strconv.Itoa(v))
	}
	return strings.Join(parts, " ")
}

func clampGoal(digits string) int {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return model.ClampInt(n, 0, MaxValue)
}
