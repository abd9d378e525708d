package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"diyclient/internal/projectform"
)

// draftFile is the document read by publish.
type draftFile struct {
	Projects []yaml.Node `yaml:"projects"`
}

// decodeDraft overlays the YAML in r onto base. Keys missing from the
// document keep base's values.
func decodeDraft(r io.Reader, base projectform.Form) (projectform.Form, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&base); err != nil {
		return projectform.Form{}, fmt.Errorf("decode draft: %w", err)
	}
	return base, nil
}

func readDraft(path string, base projectform.Form) (projectform.Form, error) {
	f, err := os.Open(path)
	if err != nil {
		return projectform.Form{}, err
	}
	defer f.Close()
	return decodeDraft(f, base)
}

func readDraftFile(path string) ([]yaml.Node, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc draftFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return doc.Projects, nil
}

func dumpDraft(w io.Writer, form *projectform.Form) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(form); err != nil {
		return err
	}
	return enc.Close()
}

// applyDraft replays draft onto the controller's working form through the
// same operations the editor screen uses.
func applyDraft(c *projectform.Controller, draft projectform.Form) error {
	scalars := []struct{ field, value string }{
		{"title", draft.Title},
		{"description", draft.Description},
		{"category", draft.Category},
		{"difficulty", draft.Difficulty},
		{"estimatedTime", draft.EstimatedTime},
		{"totalCost", draft.TotalCost},
		{"tags", draft.Tags},
		{"isPublished", strconv.FormatBool(draft.IsPublished)},
		{"isFeatured", strconv.FormatBool(draft.IsFeatured)},
	}
	for _, s := range scalars {
		if err := c.SetField(s.field, s.value); err != nil {
			return err
		}
	}

	rows := map[projectform.List][]map[string]string{}
	for _, m := range draft.Materials {
		rows[projectform.Materials] = append(rows[projectform.Materials], map[string]string{
			"name": m.Name, "quantity": m.Quantity, "estimatedCost": m.EstimatedCost,
		})
	}
	for _, t := range draft.Tools {
		rows[projectform.Tools] = append(rows[projectform.Tools], map[string]string{
			"name": t.Name, "required": strconv.FormatBool(t.Required),
		})
	}
	for _, s := range draft.Steps {
		rows[projectform.Steps] = append(rows[projectform.Steps], map[string]string{
			"title": s.Title, "description": s.Description, "imageUrl": s.ImageURL, "tips": s.Tips,
		})
	}
	for _, img := range draft.Images {
		rows[projectform.Images] = append(rows[projectform.Images], map[string]string{
			"url": img.URL, "caption": img.Caption, "isMainImage": strconv.FormatBool(img.IsMainImage),
		})
	}

	for _, list := range projectform.Lists {
		if err := c.Edit(func(f *projectform.Form) error {
			n, err := f.Len(list)
			if err != nil {
				return err
			}
			for i := n - 1; i >= 0; i-- {
				if err := f.RemoveItem(list, i); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
			return err
		}
		for _, tmpl := range rows[list] {
			if err := c.AddItem(list, tmpl); err != nil {
				return err
			}
		}
	}
	return nil
}
