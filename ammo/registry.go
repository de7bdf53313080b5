package ammo

import (
	"slices"

	"github.com/fleetmod/escadra/errors"
)

// Record is implemented by every Ammo version.
type Record interface {
	Version() string
}

var versions = map[string]func() Record{
	"1.151": func() Record { return new(V1151) },
	"1.163": func() Record { return new(V1163) },
}

// New returns a pointer to an empty record of the given game version.
func New(version string) (Record, error) {
	ctor, ok := versions[version]
	if !ok {
		return nil, errors.NotFound(errors.PhaseConfig, "ammo version", version)
	}
	return ctor(), nil
}

// Versions lists the supported game versions in ascending order.
func Versions() []string {
	out := make([]string, 0, len(versions))
	for v := range versions {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
