// Package projectform implements the create and edit project screens.
package projectform

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	apperrors "diyclient/internal/errors"
	"diyclient/internal/model"
)

// List names a repeatable section of the form.
type List string

const (
	Materials List = "materials"
	Tools     List = "tools"
	Steps     List = "steps"
	Images    List = "images"
)

// Lists are the repeatable sections in display order.
var Lists = []List{Materials, Tools, Steps, Images}

// MaterialRow is an editable material. EstimatedCost is kept as typed.
type MaterialRow struct {
	Name          string `yaml:"name"`
	Quantity      string `yaml:"quantity"`
	EstimatedCost string `yaml:"estimatedCost"`
}

// ToolRow is an editable tool.
type ToolRow struct {
	Name     string `yaml:"name"`
	Required bool   `yaml:"required"`
}

// StepRow is an editable step. Tips are comma separated.
type StepRow struct {
	StepNumber  int    `yaml:"stepNumber"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	ImageURL    string `yaml:"imageUrl"`
	Tips        string `yaml:"tips,omitempty"`
}

// ImageRow is an editable image.
type ImageRow struct {
	URL         string `yaml:"url"`
	IsMainImage bool   `yaml:"isMainImage"`
	Caption     string `yaml:"caption"`
}

// Form is the project editor's working copy. TotalCost and Tags hold the raw
// text the user typed.
type Form struct {
	Title         string        `yaml:"title"`
	Description   string        `yaml:"description"`
	Category      string        `yaml:"category"`
	Difficulty    string        `yaml:"difficulty"`
	EstimatedTime string        `yaml:"estimatedTime"`
	TotalCost     string        `yaml:"totalCost"`
	Tags          string        `yaml:"tags"`
	Materials     []MaterialRow `yaml:"materials"`
	Tools         []ToolRow     `yaml:"tools"`
	Steps         []StepRow     `yaml:"steps"`
	Images        []ImageRow    `yaml:"images"`
	IsPublished   bool          `yaml:"isPublished"`
	IsFeatured    bool          `yaml:"isFeatured"`
}

func blankMaterial() MaterialRow { return MaterialRow{EstimatedCost: "0"} }

func blankTool() ToolRow { return ToolRow{Required: true} }

func blankImage(main bool) ImageRow { return ImageRow{IsMainImage: main} }

// NewForm returns a fresh form with one empty row in every list.
func NewForm() *Form {
	return &Form{
		Difficulty:  string(model.Beginner),
		TotalCost:   "0",
		Materials:   []MaterialRow{blankMaterial()},
		Tools:       []ToolRow{blankTool()},
		Steps:       []StepRow{{StepNumber: 1}},
		Images:      []ImageRow{blankImage(true)},
		IsPublished: true,
	}
}

// FromProject hydrates a form from a stored project. Empty lists get one
// placeholder row.
func FromProject(p model.Project) *Form {
	f := &Form{
		Title:         p.Title,
		Description:   p.Description,
		Category:      p.Category,
		Difficulty:    string(p.Difficulty),
		EstimatedTime: p.EstimatedTime,
		TotalCost:     formatCost(p.TotalCost),
		Tags:          strings.Join(p.Tags, ", "),
		IsPublished:   p.IsPublished,
		IsFeatured:    p.IsFeatured,
	}
	if f.Difficulty == "" {
		f.Difficulty = string(model.Beginner)
	}
	for _, m := range p.Materials {
		f.Materials = append(f.Materials, MaterialRow{Name: m.Name, Quantity: m.Quantity, EstimatedCost: formatCost(m.EstimatedCost)})
	}
	for _, t := range p.Tools {
		f.Tools = append(f.Tools, ToolRow{Name: t.Name, Required: t.Required})
	}
	for _, s := range p.Steps {
		f.Steps = append(f.Steps, StepRow{
			StepNumber:  s.StepNumber,
			Title:       s.Title,
			Description: s.Description,
			ImageURL:    s.ImageURL,
			Tips:        strings.Join(s.Tips, ", "),
		})
	}
	for _, img := range p.Images {
		f.Images = append(f.Images, ImageRow{URL: img.URL, IsMainImage: img.IsMainImage, Caption: img.Caption})
	}

	if len(f.Materials) == 0 {
		f.Materials = []MaterialRow{blankMaterial()}
	}
	if len(f.Tools) == 0 {
		f.Tools = []ToolRow{blankTool()}
	}
	if len(f.Steps) == 0 {
		f.Steps = []StepRow{{StepNumber: 1}}
	}
	if len(f.Images) == 0 {
		f.Images = []ImageRow{blankImage(true)}
	}
	return f
}

// Clone returns a deep copy of f.
func (f *Form) Clone() Form {
	out := *f
	out.Materials = append([]MaterialRow(nil), f.Materials...)
	out.Tools = append([]ToolRow(nil), f.Tools...)
	out.Steps = append([]StepRow(nil), f.Steps...)
	out.Images = append([]ImageRow(nil), f.Images...)
	return out
}

// Len returns the number of rows in list.
func (f *Form) Len(list List) (int, error) {
	switch list {
	case Materials:
		return len(f.Materials), nil
	case Tools:
		return len(f.Tools), nil
	case Steps:
		return len(f.Steps), nil
	case Images:
		return len(f.Images), nil
	}
	return 0, fmt.Errorf("unknown list %q", list)
}

// SetField sets one scalar field.
func (f *Form) SetField(field, value string) error {
	switch field {
	case "title":
		f.Title = value
	case "description":
		f.Description = value
	case "category":
		f.Category = value
	case "difficulty":
		f.Difficulty = value
	case "estimatedTime":
		f.EstimatedTime = value
	case "totalCost":
		f.TotalCost = value
	case "tags":
		f.Tags = value
	case "isPublished":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("isPublished: %w", err)
		}
		f.IsPublished = b
	case "isFeatured":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("isFeatured: %w", err)
		}
		f.IsFeatured = b
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

// AddItem appends a blank row to list, then applies template field by field.
// A new step is numbered after the existing ones whatever the template says.
// On error the form is unchanged.
func (f *Form) AddItem(list List, template map[string]string) error {
	n, err := f.Len(list)
	if err != nil {
		return err
	}

	trial := f.Clone()
	switch list {
	case Materials:
		trial.Materials = append(trial.Materials, blankMaterial())
	case Tools:
		trial.Tools = append(trial.Tools, blankTool())
	case Steps:
		trial.Steps = append(trial.Steps, StepRow{})
	case Images:
		trial.Images = append(trial.Images, blankImage(false))
	}
	for field, value := range template {
		if list == Steps && field == "stepNumber" {
			continue
		}
		if err := trial.UpdateField(list, n, field, value); err != nil {
			return err
		}
	}
	if list == Steps {
		trial.Steps[n].StepNumber = n + 1
	}
	*f = trial
	return nil
}

// RemoveItem removes the row at index, keeping the order of the others.
// Steps are renumbered 1..n afterwards.
func (f *Form) RemoveItem(list List, index int) error {
	n, err := f.Len(list)
	if err != nil {
		return err
	}
	if index < 0 || index >= n {
		return fmt.Errorf("%s: index %d out of range [0,%d)", list, index, n)
	}
	switch list {
	case Materials:
		f.Materials = append(f.Materials[:index:index], f.Materials[index+1:]...)
	case Tools:
		f.Tools = append(f.Tools[:index:index], f.Tools[index+1:]...)
	case Steps:
		f.Steps = append(f.Steps[:index:index], f.Steps[index+1:]...)
		for i := range f.Steps {
			f.Steps[i].StepNumber = i + 1
		}
	case Images:
		f.Images = append(f.Images[:index:index], f.Images[index+1:]...)
	}
	return nil
}

// UpdateField changes one field of the row at index. Other rows are untouched.
func (f *Form) UpdateField(list List, index int, field, value string) error {
	n, err := f.Len(list)
	if err != nil {
		return err
	}
	if index < 0 || index >= n {
		return fmt.Errorf("%s: index %d out of range [0,%d)", list, index, n)
	}

	unknown := fmt.Errorf("%s: unknown field %q", list, field)
	switch list {
	case Materials:
		row := &f.Materials[index]
		switch field {
		case "name":
			row.Name = value
		case "quantity":
			row.Quantity = value
		case "estimatedCost":
			row.EstimatedCost = value
		default:
			return unknown
		}
	case Tools:
		row := &f.Tools[index]
		switch field {
		case "name":
			row.Name = value
		case "required":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("tools[%d].required: %w", index, err)
			}
			row.Required = b
		default:
			return unknown
		}
	case Steps:
		row := &f.Steps[index]
		switch field {
		case "title":
			row.Title = value
		case "description":
			row.Description = value
		case "imageUrl":
			row.ImageURL = value
		case "tips":
			row.Tips = value
		default:
			return unknown
		}
	case Images:
		row := &f.Images[index]
		switch field {
		case "url":
			row.URL = value
		case "caption":
			row.Caption = value
		case "isMainImage":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("images[%d].isMainImage: %w", index, err)
			}
			row.IsMainImage = b
		default:
			return unknown
		}
	}
	return nil
}

// SplitList splits comma separated text, trimming entries and dropping empty
// ones while keeping order.
func SplitList(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ParseCost reads a cost as typed. Empty, unparsable, negative and
// out-of-range input all yield 0.
func ParseCost(raw string) float64 {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || d.IsNegative() {
		return 0
	}
	v := d.InexactFloat64()
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

func formatCost(v float64) string {
	return decimal.NewFromFloat(v).String()
}

// Payload builds the request body from the form.
func (f *Form) Payload() model.ProjectPayload {
	p := model.ProjectPayload{
		Title:         strings.TrimSpace(f.Title),
		Description:   strings.TrimSpace(f.Description),
		Category:      f.Category,
		Difficulty:    model.Difficulty(f.Difficulty),
		EstimatedTime: strings.TrimSpace(f.EstimatedTime),
		TotalCost:     ParseCost(f.TotalCost),
		Tags:          SplitList(f.Tags),
		Materials:     make([]model.Material, 0, len(f.Materials)),
		Tools:         make([]model.Tool, 0, len(f.Tools)),
		Steps:         make([]model.Step, 0, len(f.Steps)),
		Images:        make([]model.Image, 0, len(f.Images)),
		IsPublished:   f.IsPublished,
		IsFeatured:    f.IsFeatured,
	}
	for _, m := range f.Materials {
		p.Materials = append(p.Materials, model.Material{Name: m.Name, Quantity: m.Quantity, EstimatedCost: ParseCost(m.EstimatedCost)})
	}
	for _, t := range f.Tools {
		p.Tools = append(p.Tools, model.Tool{Name: t.Name, Required: t.Required})
	}
	for _, s := range f.Steps {
		step := model.Step{StepNumber: s.StepNumber, Title: s.Title, Description: s.Description, ImageURL: s.ImageURL}
		if tips := SplitList(s.Tips); len(tips) > 0 {
			step.Tips = tips
		}
		p.Steps = append(p.Steps, step)
	}
	for _, img := range f.Images {
		p.Images = append(p.Images, model.Image{URL: img.URL, IsMainImage: img.IsMainImage, Caption: img.Caption})
	}
	return p
}

type requiredFields struct {
	Title       string `validate:"required"`
	Description string `validate:"required"`
	Category    string `validate:"required"`
	Difficulty  string `validate:"oneof=Beginner Intermediate Advanced"`
}

var validate = validator.New()

// Validate runs the required-field checks.
func (f *Form) Validate() error {
	err := validate.Struct(requiredFields{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Category:    strings.TrimSpace(f.Category),
		Difficulty:  f.Difficulty,
	})
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return &apperrors.ValidationError{Fields: fields}
}
