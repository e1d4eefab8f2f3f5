package selector

import (
	"errors"
	"fmt"
)

// ErrUnknownGroup is returned for a pump group name that does not exist.
var ErrUnknownGroup = errors.New("unknown pump group")

// groupTemplate is the ordered parameter list shared by every pump; %d is
// the pump number.
var groupTemplate = []string{
	"caudalDeAlimentacionNido%dM3PerH",
	"presionNido%dPsi",
	"ciclonesOperNido%dCount",
	"velocidadBomba%dRpm",
	"potenciaBomba%dKw",
	"amperajeBomba%dAmp",
	"cwNido%dPercent",
	"densidadPulpaNido%dKgxm3",
	"flujoDeAguaDeSelladoBomba%dM3PerHr",
	"p80Nido%dUm",
}

const pumpCount = 4

var (
	groupNames []string
	groups     map[string][]string
)

func init() {
	groups = make(map[string][]string, pumpCount)
	for n := 1; n <= pumpCount; n++ {
		name := fmt.Sprintf("pump%d", n)
		cols := make([]string, len(groupTemplate))
		for i, tmpl := range groupTemplate {
			cols[i] = fmt.Sprintf(tmpl, n)
		}
		groupNames = append(groupNames, name)
		groups[name] = cols
	}
}

// Groups lists the pump group names in declaration order.
func Groups() []string {
	out := make([]string, len(groupNames))
	copy(out, groupNames)
	return out
}

// SelectGroup returns the ten parameter columns of the named pump.
func SelectGroup(name string) ([]string, error) {
	cols, ok := groups[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, name)
	}
	out := make([]string, len(cols))
	copy(out, cols)
	return out, nil
}

// GroupOf returns the pump group that owns column, if any.
func GroupOf(column string) (string, bool) {
	for _, name := range groupNames {
		for _, c := range groups[name] {
			if c == column {
				return name, true
			}
		}
	}
	return "", false
}
