package dataset

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// fileName matches "<base>.<ddmmyyyy>.<type>[.<subtype>].json[.zst]".
var fileName = regexp.MustCompile(`^(?P<base>.+?)\.(?P<time>\d{8})\.(?P<type>\w+)(?:\.(?P<subtype>\w+))?\.json(?:\.zst)?$`)

// Discover scans dir for dataset files and groups them into a collection.
// Entries are sorted by dataset name and items by time. When both a plain
// and a compressed variant exist, the compressed one is listed.
func Discover(dir string) (Collection, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("dataset: discover %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return group(names), nil
}

func group(names []string) Collection {
	grouped := map[string]map[string]*Algorithms{}
	for _, name := range names {
		m := fileName.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		base, ts, typ, sub := m[1], m[2], m[3], m[4]
		byTime := grouped[base]
		if byTime == nil {
			byTime = map[string]*Algorithms{}
			grouped[base] = byTime
		}
		a := byTime[ts]
		if a == nil {
			a = &Algorithms{Position: map[string]string{}}
			byTime[ts] = a
		}
		switch {
		case typ == "position" && sub != "":
			a.Position[sub] = name
		case typ == "feature":
			a.Feature = name
		case typ == "meta":
			a.Meta = name
		case typ == "schema":
			a.Schema = name
		}
	}

	coll := make(Collection, 0, len(grouped))
	for base, byTime := range grouped {
		e := Entry{Dataset: base, Source: "local"}
		for ts, a := range byTime {
			e.Items = append(e.Items, Item{Algorithms: *a, Time: ts})
		}
		sort.Slice(e.Items, func(i, j int) bool { return e.Items[i].Time < e.Items[j].Time })
		coll = append(coll, e)
	}
	sort.Slice(coll, func(i, j int) bool { return coll[i].Dataset < coll[j].Dataset })
	return coll
}

// Stem returns the dataset name of a CSV or archive path: the file name
// without directory and extension.
func Stem(path string) string {
	name := path[strings.LastIndexAny(path, `/\`)+1:]
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return name
}
