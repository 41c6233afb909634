package commands

import (
	"strconv"
	"strings"
)

// parseRoleArg extracts a role reference from a "role:" argument. Accepted
// forms: role:<@&123> (mention), role:@Name and role:Name. The gateway
// resolves names to IDs, so a mention yields an ID directly and a name is
// returned as-is for the gateway's role lookup.
func parseRoleArg(arg string) (roleID, roleName string, ok bool) {
	if !strings.HasPrefix(arg, "role:") {
		return "", "", false
	}
	ref := strings.TrimPrefix(arg, "role:")
	if strings.HasPrefix(ref, "<@&") && strings.HasSuffix(ref, ">") {
		return ref[3 : len(ref)-1], "", true
	}
	return "", strings.TrimPrefix(ref, "@"), ref != ""
}

// parseLinks splits a "link:" argument into its comma-separated URLs.
func parseLinks(arg string) []string {
	raw := strings.TrimPrefix(arg, "link:")
	var links []string
	for _, l := range strings.Split(raw, ",") {
		if l = strings.TrimSpace(l); l != "" {
			links = append(links, l)
		}
	}
	return links
}

// parseTaskID parses a task selector: an integer >= 1.
func parseTaskID(arg string) (int, bool) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// titleAndLinks splits trailing args into the task title and an optional
// "link:" list. Everything before the first link: token joins into the
// title.
func titleAndLinks(args []string) (title string, links []string) {
	var titleParts []string
	for i, arg := range args {
		if strings.HasPrefix(arg, "link:") {
			links = parseLinks(strings.Join(args[i:], " "))
			break
		}
		titleParts = append(titleParts, arg)
	}
	return strings.Join(titleParts, " "), links
}
