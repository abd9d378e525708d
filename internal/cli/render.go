package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"diyclient/internal/model"
	"diyclient/internal/profile"
)

const dateLayout = "2006-01-02"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func marks(p model.Project) string {
	var m []string
	if p.IsLiked {
		m = append(m, "liked")
	}
	if p.IsSaved {
		m = append(m, "saved")
	}
	if p.IsAuthor {
		m = append(m, "yours")
	}
	return strings.Join(m, ",")
}

func renderProjects(w io.Writer, projects []model.Project) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tDIFFICULTY\tLIKES\tCOMMENTS\tAUTHOR\t")
	for _, p := range projects {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			p.ID, p.Title, p.Category, p.Difficulty, p.LikeCount, p.CommentCount, p.Author.Username, marks(p))
	}
	tw.Flush()
}

func renderPagination(w io.Writer, p model.Pagination) {
	fmt.Fprintf(w, "Page %d of %d (%d projects)\n", p.CurrentPage, p.TotalPages, p.TotalProjects)
}

func renderCategories(w io.Writer, cats []model.CategoryCount) {
	tw := newTable(w)
	fmt.Fprintln(tw, "CATEGORY\tPROJECTS")
	for _, c := range cats {
		fmt.Fprintf(tw, "%s\t%d\n", c.Name, c.Count)
	}
	tw.Flush()
}

func renderStats(w io.Writer, s model.PlatformStats) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Projects\t%d\n", s.TotalProjects)
	fmt.Fprintf(tw, "Makers\t%d\n", s.TotalUsers)
	fmt.Fprintf(tw, "This week\t%d\n", s.RecentProjects)
	tw.Flush()
}

func renderProject(w io.Writer, p *model.Project) {
	fmt.Fprintf(w, "%s\n", p.Title)
	fmt.Fprintf(w, "by %s on %s\n", p.Author.Username, p.CreatedAt.Format(dateLayout))
	fmt.Fprintf(w, "%s | %s | %s | $%.2f\n", p.Category, p.Difficulty, p.EstimatedTime, p.TotalCost)
	fmt.Fprintf(w, "%d likes, %d views, %d comments", p.LikeCount, p.Views, p.CommentCount)
	if m := marks(*p); m != "" {
		fmt.Fprintf(w, " [%s]", m)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Image: %s\n", p.MainImage())
	if len(p.Tags) > 0 {
		fmt.Fprintf(w, "Tags: %s\n", strings.Join(p.Tags, ", "))
	}
	fmt.Fprintf(w, "\n%s\n", p.Description)

	if len(p.Materials) > 0 {
		fmt.Fprintln(w, "\nMaterials")
		tw := newTable(w)
		for _, m := range p.Materials {
			fmt.Fprintf(tw, "  %s\t%s\t$%.2f\n", m.Name, m.Quantity, m.EstimatedCost)
		}
		tw.Flush()
	}
	if len(p.Tools) > 0 {
		fmt.Fprintln(w, "\nTools")
		for _, t := range p.Tools {
			opt := ""
			if !t.Required {
				opt = " (optional)"
			}
			fmt.Fprintf(w, "  %s%s\n", t.Name, opt)
		}
	}
	if len(p.Steps) > 0 {
		fmt.Fprintln(w, "\nSteps")
		for _, s := range p.Steps {
			fmt.Fprintf(w, "  %d. %s\n", s.StepNumber, s.Title)
			if s.Description != "" {
				fmt.Fprintf(w, "     %s\n", s.Description)
			}
			for _, tip := range s.Tips {
				fmt.Fprintf(w, "     tip: %s\n", tip)
			}
		}
	}
	fmt.Fprintf(w, "\nComments (%d)\n", p.CommentCount)
	for _, c := range p.Comments {
		fmt.Fprintf(w, "  %s (%s): %s\n", c.User.Username, c.CreatedAt.Format(dateLayout), c.Text)
	}
}

func renderProfile(w io.Writer, s profile.State) {
	if s.Profile != nil {
		u := s.Profile.User
		fmt.Fprintf(w, "%s", u.Username)
		if u.IsOwnProfile {
			fmt.Fprint(w, " (you)")
		}
		fmt.Fprintf(w, ", joined %s\n", u.CreatedAt.Format(dateLayout))
		st := s.Profile.Stats
		fmt.Fprintf(w, "%d projects, %d likes, %d views, %d comments, %d saved\n\n",
			st.TotalProjects, st.TotalLikes, st.TotalViews, st.TotalComments, st.SavedProjectsCount)
	}

	switch s.Tab {
	case profile.TabRecent:
		if s.Profile != nil {
			renderProjects(w, s.Profile.RecentProjects)
		}
	case profile.TabCategories:
		if s.Profile == nil {
			return
		}
		tw := newTable(w)
		fmt.Fprintln(tw, "CATEGORY\tPROJECTS\tSHARE")
		for _, c := range s.Profile.CategoryStats {
			fmt.Fprintf(tw, "%s\t%d\t%.0f%%\n", c.Name, c.Count, s.CategoryShare(c.Name))
		}
		tw.Flush()
	default:
		if len(s.Projects) == 0 {
			fmt.Fprintln(w, "No projects yet.")
			return
		}
		renderProjects(w, s.Projects)
		renderPagination(w, s.Pagination)
	}
}
