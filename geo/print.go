package geo

import (
	"fmt"
	"io"
	"strings"
)

// Print writes one line per node: the child label, level, bounds and either
// the stored point, "absent" or "switching to children".
func (r *Region) Print(w io.Writer) error { return r.print(w, "", "") }

func (r *Region) String() string {
	sb := &strings.Builder{}
	r.print(sb, "", "")
	return sb.String()
}

func (r *Region) print(w io.Writer, indent, label string) error {
	state := "absent"
	if r.Quadrants != nil {
		state = "switching to children"
	} else if r.Point != nil {
		state = "point " + r.Point.String()
	}
	if _, err := fmt.Fprintf(w, "%s%slvl=%d %v %s\n", indent, label, r.Lvl, r.Area, state); err != nil {
		return err
	}
	for i, c := range r.Quadrants {
		label := fmt.Sprintf("%d.%d ", r.Lvl, i)
		if c != nil {
			if err := c.print(w, indent+"  ", label); err != nil {
				return err
			}
		} else if _, err := fmt.Fprintf(w, "%s  %sabsent\n", indent, label); err != nil {
			return err
		}
	}
	return nil
}
