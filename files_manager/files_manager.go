package files_manager

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"tiffs2pdfs/contracts"
)

type TIFFGroup = contracts.TIFFGroup
type ConversionJob = contracts.ConversionJob

// ErrRootNotFound is returned when the scan root is missing, unreadable or not a directory.
var ErrRootNotFound = fmt.Errorf("root directory not found: %w", fs.ErrNotExist)

// SkipFunc receives entries the walk could not read. The walk continues after it returns.
type SkipFunc func(path string, err error)

func IsTIFF(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".tiff" || ext == ".tif"
}

func checkRoot(root string) error {
	if root == "" {
		return fmt.Errorf("%w: empty path", ErrRootNotFound)
	}
	stat, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRootNotFound, err)
	}
	if !stat.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrRootNotFound, root)
	}
	if _, err := os.ReadDir(root); err != nil {
		return fmt.Errorf("%w: %v", ErrRootNotFound, err)
	}
	return nil
}

// ScanTIFFGroups walks root recursively and groups every TIFF file by its parent
// directory. Groups are ordered by directory path and files within a group by
// path, so the first file of a group does not depend on the filesystem.
func ScanTIFFGroups(root string, onSkip SkipFunc) ([]TIFFGroup, error) {
	if err := checkRoot(root); err != nil {
		return nil, err
	}
	if onSkip == nil {
		onSkip = func(string, error) {}
	}

	byDir := make(map[string][]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("%w: %v", ErrRootNotFound, err)
			}
			onSkip(path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !IsTIFF(d.Name()) {
			return nil
		}
		if !d.Type().IsRegular() {
			info, statErr := os.Stat(path)
			if statErr != nil {
				onSkip(path, statErr)
				return nil
			}
			if !info.Mode().IsRegular() {
				return nil
			}
		}
		dir := filepath.Dir(path)
		byDir[dir] = append(byDir[dir], path)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrRootNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error while scanning directory: %w", err)
	}

	groups := make([]TIFFGroup, 0, len(byDir))
	for dir, files := range byDir {
		sort.Strings(files)
		groups = append(groups, TIFFGroup{Dir: dir, Files: files})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Dir < groups[j].Dir })
	return groups, nil
}

func CountTIFFs(groups []TIFFGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Files)
	}
	return n
}

func getTIFFName(filePath string) string {
	return strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
}

// OutputPath names the PDF after the group's first file and places it next to the sources.
func OutputPath(group TIFFGroup) string {
	if len(group.Files) == 0 {
		return ""
	}
	return filepath.Join(group.Dir, getTIFFName(group.Files[0])+".pdf")
}

func NewConversionJob(group TIFFGroup) ConversionJob {
	return ConversionJob{
		Group:      group,
		OutputPath: OutputPath(group),
	}
}
