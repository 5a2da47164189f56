package daemon

import (
	"fmt"
	"os/user"
	"strconv"

	"golang.org/x/sys/unix"
)

const fallbackGroup = "nobody"

// lowerGroup switches the real and effective gid to name, falling back to
// nobody when the group does not exist.
func lowerGroup(name string) (int, error) {
	group, err := user.LookupGroup(name)
	if err != nil && name != fallbackGroup {
		group, err = user.LookupGroup(fallbackGroup)
	}
	if err != nil {
		return 0, fmt.Errorf("lookup group %q: %w", name, err)
	}
	gid, err := strconv.Atoi(group.Gid)
	if err != nil {
		return 0, fmt.Errorf("parse gid %q: %w", group.Gid, err)
	}
	if err := unix.Setgid(gid); err != nil {
		return 0, fmt.Errorf("setgid %d: %w", gid, err)
	}
	return gid, nil
}
