package datfile

import (
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"wxkey/coloransi"

	"github.com/Moonlight-Companies/gologger/logger"
)

var monthToken = regexp.MustCompile(`\d{4}-\d{2}`)

// TemplateLocator walks an account directory for template files.
type TemplateLocator struct {
	Suffix  string
	MaxWalk int // stop walking after this many matches
	Keep    int // return at most this many, most recent first

	log *logger.Logger
}

func NewTemplateLocator(suffix string, maxWalk, keep int) *TemplateLocator {
	return &TemplateLocator{
		Suffix:  suffix,
		MaxWalk: maxWalk,
		Keep:    keep,
		log:     logger.NewLogger(coloransi.Component("templates")),
	}
}

// Find walks dir depth-first. Unreadable entries are skipped. The result is sorted by the
// YYYY-MM token in the path, newest first; paths without a token keep their walk order after
// the dated ones.
func (l *TemplateLocator) Find(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			l.log.Debugln("skip", path, err)
			if d != nil && d.IsDir() && path != dir {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), l.Suffix) {
			return nil
		}
		files = append(files, path)
		if len(files) >= l.MaxWalk {
			return fs.SkipAll
		}
		return nil
	})
	if len(files) == 0 {
		if err != nil {
			return nil, err
		}
		return nil, ErrNoTemplates
	}

	SortByMonth(files)
	if len(files) > l.Keep {
		files = files[:l.Keep]
	}
	l.log.Infoln("found", len(files), "template files under", dir)
	return files, nil
}

// SortByMonth orders paths by their YYYY-MM token, newest first. The sort is stable.
func SortByMonth(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		return monthToken.FindString(paths[i]) > monthToken.FindString(paths[j])
	})
}
