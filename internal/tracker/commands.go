package tracker

import (
	"context"
	"strings"
)

// Commands enumerates the subcommands the tracker knows by parsing its help
// listing: the block above "Additional", lines mentioning "timew" but not
// "Usage", second field of each.
func Commands(ctx context.Context, gw Gateway) ([]string, error) {
	out, err := gw.Run(ctx, "help")
	if err != nil {
		return nil, err
	}
	return parseHelp(out), nil
}

func parseHelp(out string) []string {
	lines := strings.Split(out, "\n")
	for i, line := range lines {
		if strings.Contains(line, "Additional") {
			lines = lines[:i]
			break
		}
	}

	seen := map[string]bool{}
	var cmds []string
	for _, line := range lines {
		if !strings.Contains(line, "timew") || strings.Contains(line, "Usage") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || seen[fields[1]] {
			continue
		}
		seen[fields[1]] = true
		cmds = append(cmds, fields[1])
	}
	return cmds
}

// Tags returns every tag known to the tracker, parsed from `tags` output:
// the first field of each line below the dashed separator.
func Tags(ctx context.Context, gw Gateway) ([]string, error) {
	out, err := gw.Run(ctx, "tags")
	if err != nil {
		return nil, err
	}

	var tags []string
	body := false
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if !body {
			body = strings.HasPrefix(trimmed, "---")
			continue
		}
		if fields := strings.Fields(trimmed); len(fields) > 0 {
			tags = append(tags, fields[0])
		}
	}
	return tags, nil
}
