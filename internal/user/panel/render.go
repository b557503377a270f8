package panel

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Render writes the panel as plain text: banner, table, then the open form.
func Render(w io.Writer, v View) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "Users")
	if v.Banner != "" {
		fmt.Fprintf(tw, "! %s\n", v.Banner)
	}

	switch v.State {
	case StateLoading:
		fmt.Fprintln(tw, "Loading...")
	case StateError:
		// таблица не показывается, пока список не загружен
	default:
		fmt.Fprintln(tw, "ID\tFirst Name\tLast Name\tEmail\tManager")
		for _, u := range v.Users {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.FirstName, u.LastName, u.Email, yesNo(u.IsManager))
		}
	}

	if v.Form != nil {
		fmt.Fprintf(tw, "\n== %s ==\n", v.Form.Title())
		fmt.Fprintf(tw, "First Name:\t%s\n", v.Form.FirstName)
		fmt.Fprintf(tw, "Last Name:\t%s\n", v.Form.LastName)
		fmt.Fprintf(tw, "Email:\t%s\n", v.Form.Email)
		fmt.Fprintf(tw, "Is Manager:\t%s\n", yesNo(v.Form.IsManager))
		if v.FormError != "" {
			fmt.Fprintf(tw, "! %s\n", v.FormError)
		}
		if v.ControlsDisabled {
			fmt.Fprintln(tw, "Saving...")
		}
	}

	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
