package source

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
)

// LeaseWorkbookKeyword marks the lease summary workbook by file name.
const LeaseWorkbookKeyword = "שכירויות"

var errFound = errors.New("found")

// FindWorkbook walks root and returns the first .xlsx whose base name
// contains keyword, or "" when there is none.
func FindWorkbook(root, keyword string) (string, error) {
	var match string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasSuffix(strings.ToLower(name), ".xlsx") && strings.Contains(name, keyword) {
			match = path
			return errFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, errFound) {
		return "", err
	}
	return match, nil
}
