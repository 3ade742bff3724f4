package datfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/samber/lo"
)

// DefaultAccountRoot is where the desktop client keeps one directory per account.
const DefaultAccountRoot = "~/Documents/xwechat_files"

var ignoredAccountPrefixes = []string{"all", "applet", "backup", "wmpf"}

// IsAccountDir reports whether dir holds an account's data stores.
func IsAccountDir(dir string) bool {
	return isDir(filepath.Join(dir, "db_storage")) || isDir(filepath.Join(dir, "FileStorage", "Image"))
}

// FindAccountDir picks an account directory under root. Directories with data stores win over
// bare candidates; within a class the alphabetically first name wins. A root that is itself an
// account directory is returned unchanged.
func FindAccountDir(root string) (string, error) {
	if root == "" {
		return "", ErrNoAccountDir
	}
	if IsAccountDir(root) {
		return root, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoAccountDir, err)
	}

	names := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		return e.Name(), e.IsDir() && isCandidateName(e.Name())
	})
	sort.Strings(names)

	high, low := lo.FilterReject(names, func(name string, _ int) bool {
		return IsAccountDir(filepath.Join(root, name))
	})
	if len(high) > 0 {
		return filepath.Join(root, high[0]), nil
	}
	if len(low) > 0 {
		return filepath.Join(root, low[0]), nil
	}
	return "", ErrNoAccountDir
}

// AutoLocate resolves an account directory. A non-empty explicit path is used as an account
// directory or as a root to search; otherwise root (default DefaultAccountRoot) is searched.
func AutoLocate(explicit, root string) (string, error) {
	if explicit != "" {
		return FindAccountDir(explicit)
	}
	if root == "" {
		root = DefaultAccountRoot
	}
	expanded, err := homedir.Expand(root)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoAccountDir, err)
	}
	return FindAccountDir(expanded)
}

func isCandidateName(name string) bool {
	lower := strings.ToLower(name)
	if lo.SomeBy(ignoredAccountPrefixes, func(p string) bool { return strings.HasPrefix(lower, p) }) {
		return false
	}
	return strings.HasPrefix(name, "wxid_") || len(name) > 5
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
